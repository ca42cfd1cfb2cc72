package driver

import (
	"log/slog"
	"time"

	"github.com/viant/evalrt/model"
	"github.com/viant/evalrt/service/dao/registry"
	"github.com/viant/evalrt/service/event"
	"github.com/viant/evalrt/service/journal"
	"github.com/viant/evalrt/service/messaging"
	"github.com/viant/evalrt/telemetry"
)

// Option configures the driver
type Option func(d *Driver)

// WithQueue sets the intent queue
func WithQueue(queue messaging.Queue[model.Intent]) Option {
	return func(d *Driver) {
		d.queue = queue
	}
}

// WithEvents sets the event service holding registered handlers
func WithEvents(events *event.Service) Option {
	return func(d *Driver) {
		d.events = events
	}
}

// WithRegistry sets the evaluator, context and task stores
func WithRegistry(registry *registry.Registry) Option {
	return func(d *Driver) {
		d.registry = registry
	}
}

// WithJournal sets the intent journal
func WithJournal(journal journal.Journal) Option {
	return func(d *Driver) {
		d.journal = journal
	}
}

// WithTelemetry sets the metrics service
func WithTelemetry(service *telemetry.Service) Option {
	return func(d *Driver) {
		d.telemetry = service
	}
}

// WithResultProvider sets the provider used when an intent carries none
func WithResultProvider(provider model.ResultProvider) Option {
	return func(d *Driver) {
		d.result = provider
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithPollInterval sets the idle wait used with non blocking queues
func WithPollInterval(interval time.Duration) Option {
	return func(d *Driver) {
		if interval > 0 {
			d.pollInterval = interval
		}
	}
}
