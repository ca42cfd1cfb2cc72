package journal

import (
	"context"
	"sync"
)

// Memory keeps entries in process
type Memory struct {
	mux     sync.RWMutex
	entries []*Entry
}

// Append stores a copy of entry
func (m *Memory) Append(_ context.Context, entry *Entry) error {
	m.mux.Lock()
	defer m.mux.Unlock()
	entry.Seq = int64(len(m.entries) + 1)
	clone := *entry
	m.entries = append(m.entries, &clone)
	return nil
}

// List returns entries in append order
func (m *Memory) List(_ context.Context, evaluatorID string) ([]*Entry, error) {
	m.mux.RLock()
	defer m.mux.RUnlock()
	var result []*Entry
	for _, entry := range m.entries {
		if evaluatorID != "" && entry.EvaluatorID != evaluatorID {
			continue
		}
		clone := *entry
		result = append(result, &clone)
	}
	return result, nil
}

// Close is a no-op
func (m *Memory) Close() error {
	return nil
}

// NewMemory creates an empty memory journal
func NewMemory() *Memory {
	return &Memory{}
}
