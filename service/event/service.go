package event

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/viant/afs"
	"github.com/viant/evalrt/service/messaging"
	"github.com/viant/evalrt/service/messaging/fs"
	"github.com/viant/evalrt/service/messaging/memory"
)

// Service owns the handler registry, the queue vendor used across the
// runtime, and an optional mirror of dispatched events for observers.
type Service struct {
	*Registry
	publisher         *Publisher
	listener          *Listener
	mux               sync.Mutex
	queueVendor       messaging.Vendor
	fsNewQueueConfig  func(name string) fs.QueueConfig
	memNewQueueConfig func(name string) memory.Config
	logger            *slog.Logger
	pollInterval      time.Duration
}

// Vendor returns the configured queue vendor
func (s *Service) Vendor() messaging.Vendor {
	return s.queueVendor
}

// Dispatch calls registered handlers and, when a listener is set, mirrors the event
func (s *Service) Dispatch(ctx context.Context, event *Event) error {
	err := s.Registry.Dispatch(ctx, event)
	s.mux.Lock()
	mirrored := s.listener != nil
	s.mux.Unlock()
	if mirrored {
		if pubErr := s.publisher.Publish(ctx, event); pubErr != nil {
			s.logger.Warn("failed to mirror event", "type", event.Type(), "error", pubErr)
		}
	}
	return err
}

// SetListener replaces the observer of mirrored events
func (s *Service) SetListener(ctx context.Context, handler func(*Event)) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.listener != nil {
		s.listener.Stop()
	}
	s.listener = NewListener(s.publisher, handler, s.logger, s.pollInterval)
	s.listener.Start(ctx)
}

// Close stops the listener if any
func (s *Service) Close() {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.listener != nil {
		s.listener.Stop()
		s.listener = nil
	}
}

// New creates an event service for the supplied queue vendor
func New(queueVendor messaging.Vendor, opts ...Option) (*Service, error) {
	ret := &Service{
		Registry:     NewRegistry(),
		queueVendor:  queueVendor,
		logger:       slog.Default(),
		pollInterval: 50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(ret)
	}
	switch queueVendor {
	case messaging.VendorFS:
		if ret.fsNewQueueConfig == nil {
			return nil, fmt.Errorf("fs queue vendor requires fsNewQueueConfig")
		}
	case messaging.VendorMemory:
		if ret.memNewQueueConfig == nil {
			ret.memNewQueueConfig = func(string) memory.Config { return memory.DefaultConfig() }
		}
	default:
		return nil, fmt.Errorf("unsupported queue vendor: %s", queueVendor)
	}
	queue, err := QueueOf[Event](ret, "event")
	if err != nil {
		return nil, err
	}
	ret.publisher = NewPublisher(queue)
	return ret, nil
}

// QueueOf creates a named queue on the configured vendor
func QueueOf[T any](s *Service, name string) (messaging.Queue[T], error) {
	switch s.queueVendor {
	case messaging.VendorFS:
		return fs.NewQueue[T](afs.New(), s.fsNewQueueConfig(name))
	case messaging.VendorMemory:
		return memory.NewQueue[T](s.memNewQueueConfig(name)), nil
	}
	return nil, fmt.Errorf("unsupported queue vendor: %s", s.queueVendor)
}
