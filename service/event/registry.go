package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Handler reacts to a dispatched event
type Handler func(ctx context.Context, event *Event) error

// Registry keeps handlers keyed by event type
type Registry struct {
	mux      sync.RWMutex
	handlers map[Type][]Handler
}

// Register appends handler for the supplied type
func (r *Registry) Register(eventType Type, handler Handler) {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.handlers[eventType] = append(r.handlers[eventType], handler)
}

// Count returns the number of handlers registered for eventType
func (r *Registry) Count(eventType Type) int {
	r.mux.RLock()
	defer r.mux.RUnlock()
	return len(r.handlers[eventType])
}

// Dispatch calls every handler registered for the event type in registration
// order; all handlers run even when one fails, errors are joined.
func (r *Registry) Dispatch(ctx context.Context, event *Event) error {
	r.mux.RLock()
	handlers := append([]Handler(nil), r.handlers[event.Type()]...)
	r.mux.RUnlock()
	var errs []error
	for i, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("%v handler #%d failed: %w", event.Type(), i, err))
		}
	}
	return errors.Join(errs...)
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[Type][]Handler)}
}
