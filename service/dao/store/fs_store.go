package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	neturl "net/url"
	"sort"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"
	"github.com/viant/evalrt/service/dao"
	"github.com/viant/toolbox"
)

// FSStore persists JSON encoded records as files under a base URL, one file per key.
type FSStore[K comparable, T any] struct {
	basePath string
	fs       afs.Service
	mu       sync.RWMutex
	entity   Entity[K, T]
}

// Save persists a record
func (s *FSStore[K, T]) Save(ctx context.Context, v *T) error {
	if v == nil {
		return dao.ErrNilEntity
	}
	key := s.entity.Key(v)
	var zero K
	if key == zero {
		return dao.ErrInvalidID
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %v: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	URL := s.recordURL(key)
	if err = s.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save record %s: %w", URL, err)
	}
	return nil
}

// Load reads a record
func (s *FSStore[K, T]) Load(ctx context.Context, key K) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	URL := s.recordURL(key)
	exists, err := s.fs.Exists(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to check record %s: %w", URL, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %v", dao.ErrNotFound, key)
	}
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to read record %s: %w", URL, err)
	}
	ret := new(T)
	if err = json.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record %s: %w", URL, err)
	}
	return ret, nil
}

// Delete removes a record
func (s *FSStore[K, T]) Delete(ctx context.Context, key K) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	URL := s.recordURL(key)
	exists, err := s.fs.Exists(ctx, URL)
	if err != nil {
		return fmt.Errorf("failed to check record %s: %w", URL, err)
	}
	if !exists {
		return fmt.Errorf("%w: %v", dao.ErrNotFound, key)
	}
	return s.fs.Delete(ctx, URL)
}

// List returns matching records ordered by file name
func (s *FSStore[K, T]) List(ctx context.Context, parameters ...*dao.Parameter) ([]*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	objects, err := s.fs.List(ctx, s.basePath, option.NewRecursive(false))
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Name() < objects[j].Name() })
	var result []*T
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			return nil, fmt.Errorf("failed to read record %s: %w", object.URL(), err)
		}
		record := new(T)
		if err = json.Unmarshal(data, record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record %s: %w", object.URL(), err)
		}
		if !s.entity.match(record, parameters) {
			continue
		}
		result = append(result, record)
	}
	return result, nil
}

// recordURL escapes the key so that composite keys map to a single file name
func (s *FSStore[K, T]) recordURL(key K) string {
	return url.Join(s.basePath, neturl.PathEscape(toolbox.AsString(key))+".json")
}

// NewFSStore creates a store under basePath, creating the directory when missing
func NewFSStore[K comparable, T any](fs afs.Service, basePath string, entity Entity[K, T]) (*FSStore[K, T], error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	ctx := context.Background()
	if exists, _ := fs.Exists(ctx, basePath); !exists {
		if err := fs.Create(ctx, basePath, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create base directory: %w", err)
		}
	}
	return &FSStore[K, T]{
		basePath: url.Normalize(basePath, file.Scheme),
		fs:       fs,
		entity:   entity,
	}, nil
}

var _ dao.Service[string, struct{}] = (*FSStore[string, struct{}])(nil)
