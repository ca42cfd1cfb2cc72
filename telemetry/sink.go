package telemetry

import (
	"context"
	"log/slog"
)

// Sink receives aggregated metric observations
type Sink interface {
	Sink(ctx context.Context, values []KeyValue) error
}

// SinkFunc adapts a function to Sink
type SinkFunc func(ctx context.Context, values []KeyValue) error

// Sink calls f
func (f SinkFunc) Sink(ctx context.Context, values []KeyValue) error {
	return f(ctx, values)
}

// LogSink writes observations to a structured logger
type LogSink struct {
	logger *slog.Logger
}

// Sink logs every observation at info level
func (s *LogSink) Sink(ctx context.Context, values []KeyValue) error {
	for _, value := range values {
		s.logger.InfoContext(ctx, "metric", "name", value.Key, "value", value.Value)
	}
	return nil
}

// NewLogSink creates a log sink
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger.With("component", "telemetry")}
}
