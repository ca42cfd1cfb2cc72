package evalrt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/viant/afs/url"
	"github.com/viant/evalrt/internal/logging"
	"github.com/viant/evalrt/model"
	"github.com/viant/evalrt/service/allocator"
	"github.com/viant/evalrt/service/dao/registry"
	"github.com/viant/evalrt/service/driver"
	"github.com/viant/evalrt/service/event"
	"github.com/viant/evalrt/service/journal"
	"github.com/viant/evalrt/service/messaging"
	"github.com/viant/evalrt/service/messaging/fs"
	"github.com/viant/evalrt/service/messaging/memory"
	"github.com/viant/evalrt/telemetry"
	"github.com/viant/evalrt/tracing"
)

// Version is reported by tracing and the status API
const Version = "0.1.0"

// Service assembles the evaluator runtime from Config and options
type Service struct {
	config        *Config
	logger        *slog.Logger
	queue         messaging.Queue[model.Intent]
	registry      *registry.Registry
	journal       journal.Journal
	sinks         []telemetry.Sink
	result        model.ResultProvider
	runtimeConfig model.Configuration
	initErrors    []error
	runtime       *Runtime
}

func (s *Service) init(options []Option) error {
	for _, option := range options {
		option(s)
	}
	if err := errors.Join(s.initErrors...); err != nil {
		return err
	}
	if err := s.config.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if s.logger == nil {
		s.logger = logging.NewLogger(logging.ParseLevel(s.config.Log.Level), s.config.Log.Format)
	}
	if s.config.Tracing.Enabled {
		if err := tracing.Init(s.config.Tracing.ServiceName, Version, s.config.Tracing.OutputFile); err != nil {
			return fmt.Errorf("failed to init tracing: %w", err)
		}
	}
	pollInterval := time.Duration(s.config.Driver.PollIntervalMs) * time.Millisecond
	events, err := s.newEventService(pollInterval)
	if err != nil {
		return err
	}
	if err = s.ensureBaseSetup(events); err != nil {
		return err
	}

	sinks := s.sinks
	if s.config.Telemetry.LogSink {
		sinks = append(sinks, telemetry.NewLogSink(s.logger))
	}
	metrics := telemetry.NewService(
		telemetry.WithThreshold(s.config.Telemetry.Threshold),
		telemetry.WithSinks(sinks...),
		telemetry.WithLogger(s.logger))

	aDriver, err := driver.New(
		driver.WithQueue(s.queue),
		driver.WithEvents(events),
		driver.WithRegistry(s.registry),
		driver.WithJournal(s.journal),
		driver.WithTelemetry(metrics),
		driver.WithResultProvider(s.result),
		driver.WithLogger(s.logger),
		driver.WithPollInterval(pollInterval))
	if err != nil {
		_ = s.journal.Close()
		return err
	}
	s.runtime.driver = aDriver
	s.runtime.allocator = allocator.New(aDriver, s.config.Allocator,
		allocator.WithResultProvider(s.result),
		allocator.WithLogger(s.logger))
	s.runtime.configuration = s.runtimeConfig
	return nil
}

func (s *Service) newEventService(pollInterval time.Duration) (*event.Service, error) {
	driverConfig := s.config.Driver
	return event.New(driverConfig.QueueVendor,
		event.WithLogger(s.logger),
		event.WithPollInterval(pollInterval),
		event.WithNewMemoryQueueConfig(func(string) memory.Config {
			return memory.Config{MaxRetries: driverConfig.MaxRetries, DeadLetter: true}
		}),
		event.WithNewFsQueueConfig(func(name string) fs.QueueConfig {
			return fs.QueueConfig{BasePath: url.Join(driverConfig.QueuePath, name), MaxRetries: driverConfig.MaxRetries}
		}))
}

func (s *Service) ensureBaseSetup(events *event.Service) error {
	var err error
	if s.queue == nil {
		if s.queue, err = event.QueueOf[model.Intent](events, "intent"); err != nil {
			return fmt.Errorf("failed to create intent queue: %w", err)
		}
	}
	if s.registry == nil {
		if s.registry, err = registry.New(s.config.Driver.RegistryVendor, s.config.Driver.RegistryPath); err != nil {
			return fmt.Errorf("failed to create registry: %w", err)
		}
	}
	if s.journal == nil {
		if s.journal, err = journal.New(context.Background(), s.config.Driver.JournalVendor, s.config.Driver.JournalPath, s.logger); err != nil {
			return fmt.Errorf("failed to create journal: %w", err)
		}
	}
	return nil
}

// Runtime returns the runtime
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// Config returns the effective configuration
func (s *Service) Config() *Config {
	return s.config
}

// Logger returns the service logger
func (s *Service) Logger() *slog.Logger {
	return s.logger
}

// New creates a runtime service; without options every component is in-memory.
func New(options ...Option) (*Service, error) {
	ret := &Service{config: DefaultConfig(), runtime: &Runtime{}}
	if err := ret.init(options); err != nil {
		return nil, err
	}
	return ret, nil
}
