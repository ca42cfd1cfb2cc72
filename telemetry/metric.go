package telemetry

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/viant/evalrt/internal/clock"
	"github.com/viant/toolbox"
)

// Type identifies the metric value kind
type Type string

const (
	TypeCounter Type = "counter"
	TypeInteger Type = "integer"
	TypeDouble  Type = "double"
	TypeString  Type = "string"
)

// Metric is a named, timestamped value.  Counters only move through
// Increment/Decrement; gauges are overwritten with Set.
type Metric struct {
	mux         sync.RWMutex
	name        string
	description string
	kind        Type
	timestamp   time.Time
	value       interface{}
}

type metricJSON struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Type        Type        `json:"type"`
	Timestamp   time.Time   `json:"timestamp"`
	Value       interface{} `json:"value"`
}

// Name returns the metric name
func (m *Metric) Name() string { return m.name }

// Description returns the metric description
func (m *Metric) Description() string { return m.description }

// Type returns the metric kind
func (m *Metric) Type() Type { return m.kind }

// Timestamp returns the time of the last change
func (m *Metric) Timestamp() time.Time {
	m.mux.RLock()
	defer m.mux.RUnlock()
	return m.timestamp
}

// Value returns the current value
func (m *Metric) Value() interface{} {
	m.mux.RLock()
	defer m.mux.RUnlock()
	return m.value
}

// Int returns the value of a counter or integer gauge
func (m *Metric) Int() int {
	return toolbox.AsInt(m.Value())
}

// Increment adds n to a counter or integer gauge
func (m *Metric) Increment(n int) error {
	m.mux.Lock()
	defer m.mux.Unlock()
	if m.kind != TypeCounter && m.kind != TypeInteger {
		return fmt.Errorf("cannot increment %v metric %v", m.kind, m.name)
	}
	m.value = toolbox.AsInt(m.value) + n
	m.timestamp = clock.Now()
	return nil
}

// Decrement subtracts n from a counter or integer gauge
func (m *Metric) Decrement(n int) error {
	return m.Increment(-n)
}

// Set replaces the value of a gauge
func (m *Metric) Set(value interface{}) error {
	if m.kind == TypeCounter {
		return fmt.Errorf("cannot set counter %v, use Increment", m.name)
	}
	normalized, err := normalize(m.kind, value)
	if err != nil {
		return fmt.Errorf("cannot set %v: %w", m.name, err)
	}
	m.mux.Lock()
	defer m.mux.Unlock()
	m.value = normalized
	m.timestamp = clock.Now()
	return nil
}

// Copy returns a snapshot
func (m *Metric) Copy() *Metric {
	m.mux.RLock()
	defer m.mux.RUnlock()
	return &Metric{name: m.name, description: m.description, kind: m.kind, timestamp: m.timestamp, value: m.value}
}

// String returns the value in text form
func (m *Metric) String() string {
	return toolbox.AsString(m.Value())
}

// MarshalJSON encodes the metric
func (m *Metric) MarshalJSON() ([]byte, error) {
	m.mux.RLock()
	defer m.mux.RUnlock()
	return json.Marshal(&metricJSON{Name: m.name, Description: m.description, Type: m.kind, Timestamp: m.timestamp, Value: m.value})
}

// UnmarshalJSON decodes the metric, converting the value to its type
func (m *Metric) UnmarshalJSON(data []byte) error {
	aux := &metricJSON{}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	value, err := normalize(aux.Type, aux.Value)
	if err != nil {
		return fmt.Errorf("invalid metric %v: %w", aux.Name, err)
	}
	m.mux.Lock()
	defer m.mux.Unlock()
	m.name, m.description, m.kind, m.timestamp, m.value = aux.Name, aux.Description, aux.Type, aux.Timestamp, value
	return nil
}

func normalize(kind Type, value interface{}) (interface{}, error) {
	switch kind {
	case TypeCounter, TypeInteger:
		return toolbox.ToInt(value)
	case TypeDouble:
		return toolbox.ToFloat(value)
	case TypeString:
		return toolbox.AsString(value), nil
	}
	return nil, fmt.Errorf("unsupported metric type: %q", kind)
}

func newMetric(name, description string, kind Type, value interface{}) *Metric {
	return &Metric{name: name, description: description, kind: kind, value: value, timestamp: clock.Now()}
}

// NewCounter creates a counter starting at zero
func NewCounter(name, description string) *Metric {
	return newMetric(name, description, TypeCounter, 0)
}

// NewIntegerGauge creates an integer gauge starting at zero
func NewIntegerGauge(name, description string) *Metric {
	return newMetric(name, description, TypeInteger, 0)
}

// NewDoubleGauge creates a floating point gauge starting at zero
func NewDoubleGauge(name, description string) *Metric {
	return newMetric(name, description, TypeDouble, 0.0)
}

// NewStringGauge creates a text gauge
func NewStringGauge(name, description, value string) *Metric {
	return newMetric(name, description, TypeString, value)
}
