package telemetry

import (
	"fmt"
	"sync"
)

// KeyValue is one sunk metric observation
type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type metricData struct {
	current *Metric
	history []*Metric
	changes int
}

// Data aggregates metric updates between sinks.  Gauges keep the values
// observed since the last reset; counters only report their latest value.
type Data struct {
	mux   sync.Mutex
	names []string
	index map[string]*metricData
}

// Update records every metric whose timestamp moved since the last update
func (d *Data) Update(metrics *Metrics) error {
	d.mux.Lock()
	defer d.mux.Unlock()
	for _, metric := range metrics.List() {
		snapshot := metric.Copy()
		data, ok := d.index[snapshot.Name()]
		if !ok {
			d.index[snapshot.Name()] = &metricData{current: snapshot, changes: 1}
			d.names = append(d.names, snapshot.Name())
			continue
		}
		if data.current.Type() != snapshot.Type() {
			return fmt.Errorf("cannot update %v metric %v with %v", data.current.Type(), snapshot.Name(), snapshot.Type())
		}
		if !snapshot.Timestamp().After(data.current.Timestamp()) {
			continue
		}
		if snapshot.Type() != TypeCounter {
			data.history = append(data.history, data.current)
		}
		data.current = snapshot
		data.changes++
	}
	return nil
}

// Changes returns the number of changes since the last reset
func (d *Data) Changes() int {
	d.mux.Lock()
	defer d.mux.Unlock()
	total := 0
	for _, data := range d.index {
		total += data.changes
	}
	return total
}

// TriggerSink returns true when changes since the last reset exceed threshold
func (d *Data) TriggerSink(threshold int) bool {
	return d.Changes() > threshold
}

// Reset clears change counts and gauge history
func (d *Data) Reset() {
	d.mux.Lock()
	defer d.mux.Unlock()
	for _, data := range d.index {
		data.changes = 0
		data.history = nil
	}
}

// KeyValues returns gauge history followed by the current value, per metric
func (d *Data) KeyValues() []KeyValue {
	d.mux.Lock()
	defer d.mux.Unlock()
	var result []KeyValue
	for _, name := range d.names {
		data := d.index[name]
		for _, record := range data.history {
			result = append(result, KeyValue{Key: name, Value: record.String()})
		}
		result = append(result, KeyValue{Key: name, Value: data.current.String()})
	}
	return result
}

// NewData creates empty aggregation
func NewData() *Data {
	return &Data{index: map[string]*metricData{}}
}
