package telemetry

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Metrics is a registry of uniquely named metrics
type Metrics struct {
	mux     sync.RWMutex
	index   map[string]*Metric
	metrics []*Metric
}

// TryRegister adds metric unless one with the same name exists
func (m *Metrics) TryRegister(metric *Metric) bool {
	m.mux.Lock()
	defer m.mux.Unlock()
	if _, ok := m.index[metric.Name()]; ok {
		return false
	}
	m.index[metric.Name()] = metric
	m.metrics = append(m.metrics, metric)
	return true
}

// Get returns a registered metric
func (m *Metrics) Get(name string) (*Metric, bool) {
	m.mux.RLock()
	defer m.mux.RUnlock()
	ret, ok := m.index[name]
	return ret, ok
}

// List returns metrics in registration order
func (m *Metrics) List() []*Metric {
	m.mux.RLock()
	defer m.mux.RUnlock()
	return append([]*Metric(nil), m.metrics...)
}

// Snapshot returns name to value pairs
func (m *Metrics) Snapshot() map[string]interface{} {
	result := map[string]interface{}{}
	for _, metric := range m.List() {
		result[metric.Name()] = metric.Value()
	}
	return result
}

// Serialize encodes metrics as a JSON array
func (m *Metrics) Serialize() ([]byte, error) {
	return json.Marshal(m.List())
}

// Deserialize decodes a JSON array produced by Serialize
func Deserialize(data []byte) (*Metrics, error) {
	var metrics []*Metric
	if err := json.Unmarshal(data, &metrics); err != nil {
		return nil, fmt.Errorf("failed to deserialize metrics: %w", err)
	}
	ret := NewMetrics()
	for _, metric := range metrics {
		if !ret.TryRegister(metric) {
			return nil, fmt.Errorf("duplicate metric: %v", metric.Name())
		}
	}
	return ret, nil
}

// NewMetrics creates a registry with the supplied metrics
func NewMetrics(metrics ...*Metric) *Metrics {
	ret := &Metrics{index: map[string]*Metric{}}
	for _, metric := range metrics {
		ret.TryRegister(metric)
	}
	return ret
}
