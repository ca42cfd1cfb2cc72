package evalrt

import (
	"log/slog"

	"github.com/viant/evalrt/model"
	"github.com/viant/evalrt/service/dao/registry"
	"github.com/viant/evalrt/service/journal"
	"github.com/viant/evalrt/service/messaging"
	"github.com/viant/evalrt/telemetry"
	"github.com/viant/evalrt/tracing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option configures the Service
type Option func(s *Service)

// WithConfig sets the configuration; nil keeps DefaultConfig
func WithConfig(config *Config) Option {
	return func(s *Service) {
		if config != nil {
			s.config = config
		}
	}
}

// WithLogger sets the logger, overriding the log section of the configuration
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithQueue sets the intent queue, overriding driver queue settings
func WithQueue(queue messaging.Queue[model.Intent]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithRegistry sets the driver registry
func WithRegistry(registry *registry.Registry) Option {
	return func(s *Service) {
		s.registry = registry
	}
}

// WithJournal sets the intent journal
func WithJournal(journal journal.Journal) Option {
	return func(s *Service) {
		s.journal = journal
	}
}

// WithTelemetrySinks appends metric sinks
func WithTelemetrySinks(sinks ...telemetry.Sink) Option {
	return func(s *Service) {
		s.sinks = append(s.sinks, sinks...)
	}
}

// WithResultProvider sets the provider producing task return values
func WithResultProvider(provider model.ResultProvider) Option {
	return func(s *Service) {
		s.result = provider
	}
}

// WithRuntimeConfiguration binds launcher supplied runtime settings
func WithRuntimeConfiguration(configuration model.Configuration) Option {
	return func(s *Service) {
		s.runtimeConfig = configuration
	}
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile is empty the
// stdout exporter is used; otherwise traces are written to the supplied file path.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		if err := tracing.Init(serviceName, serviceVersion, outputFile); err != nil {
			s.initErrors = append(s.initErrors, err)
		}
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom SpanExporter.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		if err := tracing.InitWithExporter(serviceName, serviceVersion, exporter); err != nil {
			s.initErrors = append(s.initErrors, err)
		}
	}
}
