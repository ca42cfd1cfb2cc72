package store

import (
	"context"
	"sync"

	"github.com/viant/evalrt/service/dao"
	"github.com/viant/evalrt/service/dao/criteria"
)

// Entity describes how a store reads its values
type Entity[K comparable, T any] struct {
	// Key extracts the entity key
	Key func(*T) K
	// Fields exposes values matched against List parameters; optional
	Fields func(*T) map[string]string
	// Clone copies a value so that callers never share store memory; optional
	Clone func(*T) *T
}

func (e *Entity[K, T]) clone(v *T) *T {
	if e.Clone == nil {
		return v
	}
	return e.Clone(v)
}

func (e *Entity[K, T]) match(v *T, parameters []*dao.Parameter) bool {
	if e.Fields == nil || len(parameters) == 0 {
		return true
	}
	return criteria.Match(e.Fields(v), parameters)
}

// MemoryStore is a generic in-memory implementation of dao.Service.  List
// returns records in insertion order.
type MemoryStore[K comparable, T any] struct {
	mu      sync.RWMutex
	records map[K]*T
	keys    []K
	entity  Entity[K, T]
}

// NewMemoryStore creates a new MemoryStore.
func NewMemoryStore[K comparable, T any](entity Entity[K, T]) *MemoryStore[K, T] {
	return &MemoryStore[K, T]{
		records: make(map[K]*T),
		entity:  entity,
	}
}

// Save stores or overwrites a record.
func (s *MemoryStore[K, T]) Save(_ context.Context, v *T) error {
	if v == nil {
		return dao.ErrNilEntity
	}
	key := s.entity.Key(v)
	var zero K
	if key == zero {
		return dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.records[key] = s.entity.clone(v)
	return nil
}

// Load returns a record by key.
func (s *MemoryStore[K, T]) Load(_ context.Context, key K) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.records[key]
	if !ok {
		return nil, dao.ErrNotFound
	}
	return s.entity.clone(v), nil
}

// Delete removes a record.
func (s *MemoryStore[K, T]) Delete(_ context.Context, key K) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[key]; !ok {
		return dao.ErrNotFound
	}
	delete(s.records, key)
	for i, candidate := range s.keys {
		if candidate == key {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
	return nil
}

// List returns the records matching parameters.
func (s *MemoryStore[K, T]) List(_ context.Context, parameters ...*dao.Parameter) ([]*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*T, 0, len(s.records))
	for _, key := range s.keys {
		v := s.records[key]
		if !s.entity.match(v, parameters) {
			continue
		}
		out = append(out, s.entity.clone(v))
	}
	return out, nil
}

var _ dao.Service[string, struct{}] = (*MemoryStore[string, struct{}])(nil)
