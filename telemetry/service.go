package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DriverStateMetric names the driver state observation
const DriverStateMetric = "DriverState"

// Service pushes aggregated metrics to sinks once enough changes accumulated
type Service struct {
	mux       sync.Mutex
	data      *Data
	sinks     []Sink
	threshold int
	logger    *slog.Logger
}

// Update aggregates metrics and sinks them when the threshold is exceeded
func (s *Service) Update(ctx context.Context, metrics *Metrics) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	if err := s.data.Update(metrics); err != nil {
		return err
	}
	if s.data.TriggerSink(s.threshold) {
		s.sink(ctx, s.data.KeyValues())
		s.data.Reset()
	}
	return nil
}

// Complete flushes the aggregated metrics regardless of the threshold
func (s *Service) Complete(ctx context.Context) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.sink(ctx, s.data.KeyValues())
	s.data.Reset()
	s.logger.Info("telemetry completed")
}

// DriverState sinks the driver state immediately
func (s *Service) DriverState(ctx context.Context, state string, updated time.Time) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.sink(ctx, []KeyValue{
		{Key: DriverStateMetric, Value: state},
		{Key: "TimeUpdated", Value: updated.Format(time.RFC3339)},
	})
}

func (s *Service) sink(ctx context.Context, values []KeyValue) {
	if len(values) == 0 {
		return
	}
	for _, sink := range s.sinks {
		if err := sink.Sink(ctx, values); err != nil {
			s.logger.Error("metrics sink failed", "error", err)
		}
	}
}

// Option configures the Service
type Option func(s *Service)

// WithSinks appends sinks
func WithSinks(sinks ...Sink) Option {
	return func(s *Service) {
		s.sinks = append(s.sinks, sinks...)
	}
}

// WithThreshold sets the number of changes that triggers a sink
func WithThreshold(threshold int) Option {
	return func(s *Service) {
		s.threshold = threshold
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a metrics service
func NewService(opts ...Option) *Service {
	ret := &Service{data: NewData(), threshold: 1, logger: slog.Default()}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}
