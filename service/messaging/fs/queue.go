package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/storage"
	"github.com/viant/evalrt/internal/clock"
	"github.com/viant/evalrt/internal/idgen"
	"github.com/viant/evalrt/service/messaging"
)

// MessageState represents the state of a message in the filesystem queue
type MessageState string

const (
	MessageStatePending    MessageState = "pending"
	MessageStateProcessing MessageState = "processing"
	MessageStateCompleted  MessageState = "completed"
	MessageStateFailed     MessageState = "failed"
)

// Message implements messaging.Message for the filesystem queue
type Message[T any] struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Data      T            `json:"data"`
	State     MessageState `json:"state"`
	Error     string       `json:"error,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
	Retries   int          `json:"retries"`

	queue     *Queue[T]
	processed bool
	mu        sync.Mutex
}

// T returns the message payload
func (m *Message[T]) T() *T {
	return &m.Data
}

// Ack moves the message to the completed directory
func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return messaging.ErrAlreadyProcessed
	}
	m.processed = true
	m.State = MessageStateCompleted
	m.UpdatedAt = clock.Now()
	return m.queue.completeMessage(context.Background(), m)
}

// Nack moves the message to the failed directory for a retry, or to the
// dead letter directory once the retry limit is exceeded.
func (m *Message[T]) Nack(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.processed {
		return messaging.ErrAlreadyProcessed
	}
	m.processed = true
	m.State = MessageStateFailed
	if err != nil {
		m.Error = err.Error()
	}
	m.Retries++
	m.UpdatedAt = clock.Now()
	return m.queue.failMessage(context.Background(), m)
}

// QueueConfig holds configuration for filesystem queue
type QueueConfig struct {
	BasePath   string
	MaxRetries int
}

// DefaultConfig returns a default queue configuration
func DefaultConfig() QueueConfig {
	return QueueConfig{
		BasePath:   "/tmp/evalrt/queue",
		MaxRetries: 3,
	}
}

// Queue implements a durable messaging.Queue on top of afs.  File names are
// prefixed with a monotonic sequence so that listing order equals publish order.
type Queue[T any] struct {
	fs            afs.Service
	config        QueueConfig
	pendingDir    string
	processingDir string
	completedDir  string
	failedDir     string
	dlqDir        string
	mu            sync.Mutex
	sequence      int64
}

// NewQueue creates a new filesystem-based queue
func NewQueue[T any](fs afs.Service, config QueueConfig) (*Queue[T], error) {
	if config.BasePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	q := &Queue[T]{
		fs:            fs,
		config:        config,
		pendingDir:    path.Join(config.BasePath, "pending"),
		processingDir: path.Join(config.BasePath, "processing"),
		completedDir:  path.Join(config.BasePath, "completed"),
		failedDir:     path.Join(config.BasePath, "failed"),
		dlqDir:        path.Join(config.BasePath, "dlq"),
	}
	ctx := context.Background()
	for _, dir := range []string{q.pendingDir, q.processingDir, q.completedDir, q.failedDir, q.dlqDir} {
		exists, _ := fs.Exists(ctx, dir)
		if !exists {
			if err := fs.Create(ctx, dir, file.DefaultDirOsMode, true); err != nil {
				return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}
	return q, nil
}

// Publish writes a new message to the pending directory
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	now := clock.Now()
	id := idgen.New()
	message := &Message[T]{
		ID:        id,
		Name:      q.nextFilename(now, id),
		Data:      *t,
		State:     MessageStatePending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return q.uploadMessage(ctx, path.Join(q.pendingDir, message.Name), data)
}

// Consume moves the oldest retry-eligible or pending message to the
// processing directory and returns it; a nil message means the queue is empty.
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	message, err := q.claimFailed(ctx)
	if err != nil || message != nil {
		return message, err
	}
	objects, err := q.listMessages(ctx, q.pendingDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending messages: %w", err)
	}
	if len(objects) == 0 {
		return nil, nil
	}
	obj := objects[0]
	message, err = q.readMessageFromURL(ctx, obj.URL())
	if err != nil {
		_ = q.fs.Move(ctx, obj.URL(), path.Join(q.failedDir, "invalid-"+obj.Name()))
		return nil, err
	}
	if err = q.claim(ctx, obj, message); err != nil {
		return nil, err
	}
	return message, nil
}

func (q *Queue[T]) claimFailed(ctx context.Context) (*Message[T], error) {
	objects, err := q.listMessages(ctx, q.failedDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list failed messages: %w", err)
	}
	for _, obj := range objects {
		message, err := q.readMessageFromURL(ctx, obj.URL())
		if err != nil {
			_ = q.fs.Move(ctx, obj.URL(), path.Join(q.dlqDir, "invalid-"+obj.Name()))
			return nil, err
		}
		if message.Retries > q.config.MaxRetries {
			if err := q.fs.Move(ctx, obj.URL(), path.Join(q.dlqDir, obj.Name())); err != nil {
				return nil, fmt.Errorf("failed to move message to DLQ: %w", err)
			}
			continue
		}
		if err = q.claim(ctx, obj, message); err != nil {
			return nil, err
		}
		return message, nil
	}
	return nil, nil
}

func (q *Queue[T]) claim(ctx context.Context, obj storage.Object, message *Message[T]) error {
	message.State = MessageStateProcessing
	message.UpdatedAt = clock.Now()
	message.queue = q
	if message.Name == "" {
		message.Name = obj.Name()
	}
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal updated message: %w", err)
	}
	if err := q.uploadMessage(ctx, path.Join(q.processingDir, message.Name), data); err != nil {
		return fmt.Errorf("failed to move message to processing directory: %w", err)
	}
	if err := q.fs.Delete(ctx, obj.URL()); err != nil {
		return fmt.Errorf("failed to delete message %v: %w", obj.Name(), err)
	}
	return nil
}

func (q *Queue[T]) completeMessage(ctx context.Context, m *Message[T]) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.moveFromProcessing(ctx, m, q.completedDir)
}

func (q *Queue[T]) failMessage(ctx context.Context, m *Message[T]) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if m.Retries > q.config.MaxRetries {
		return q.moveFromProcessing(ctx, m, q.dlqDir)
	}
	return q.moveFromProcessing(ctx, m, q.failedDir)
}

func (q *Queue[T]) moveFromProcessing(ctx context.Context, m *Message[T], destDir string) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal message %v: %w", m.ID, err)
	}
	if err := q.uploadMessage(ctx, path.Join(destDir, m.Name), data); err != nil {
		return fmt.Errorf("failed to write message %v to %v: %w", m.ID, destDir, err)
	}
	processingPath := path.Join(q.processingDir, m.Name)
	if exists, _ := q.fs.Exists(ctx, processingPath); exists {
		if err := q.fs.Delete(ctx, processingPath); err != nil {
			return fmt.Errorf("failed to delete message from processing directory: %w", err)
		}
	}
	return nil
}

// Size returns the number of pending messages
func (q *Queue[T]) Size(ctx context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	objects, err := q.listMessages(ctx, q.pendingDir)
	return len(objects), err
}

// DLQSize returns the number of dead-lettered messages
func (q *Queue[T]) DLQSize(ctx context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	objects, err := q.listMessages(ctx, q.dlqDir)
	return len(objects), err
}

// nextFilename returns a name ordered after every previously generated one
func (q *Queue[T]) nextFilename(now time.Time, id string) string {
	seq := now.UnixNano()
	if seq <= q.sequence {
		seq = q.sequence + 1
	}
	q.sequence = seq
	return fmt.Sprintf("%020d-%s.json", seq, id)
}

func (q *Queue[T]) listMessages(ctx context.Context, dir string) ([]storage.Object, error) {
	objects, err := q.fs.List(ctx, dir, option.NewRecursive(false))
	if err != nil {
		return nil, err
	}
	var result []storage.Object
	for _, obj := range objects {
		if !obj.IsDir() && strings.HasSuffix(obj.Name(), ".json") {
			result = append(result, obj)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result, nil
}

func (q *Queue[T]) uploadMessage(ctx context.Context, URL string, data []byte) error {
	return q.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewBuffer(data))
}

func (q *Queue[T]) readMessageFromURL(ctx context.Context, URL string) (*Message[T], error) {
	data, err := q.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read message %s: %w", URL, err)
	}
	var message Message[T]
	if err := json.Unmarshal(data, &message); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message %s: %w", URL, err)
	}
	return &message, nil
}

var _ messaging.Queue[any] = (*Queue[any])(nil)
