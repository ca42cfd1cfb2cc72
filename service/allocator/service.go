package allocator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/viant/evalrt/internal/idgen"
	"github.com/viant/evalrt/model"
	"github.com/viant/evalrt/runtime/evaluator"
	"github.com/viant/evalrt/tracing"
)

// Driver receives allocated evaluators and their intents
type Driver interface {
	evaluator.Sink
	Allocated(ctx context.Context, ev *evaluator.Evaluator) error
}

// Service allocates evaluators
type Service struct {
	config    Config
	driver    Driver
	result    model.ResultProvider
	logger    *slog.Logger
	mux       sync.Mutex
	allocated int
}

// Option configures the allocator
type Option func(s *Service)

// WithResultProvider sets the provider handed to every evaluator
func WithResultProvider(provider model.ResultProvider) Option {
	return func(s *Service) {
		s.result = provider
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

// Allocate creates request.Number evaluators.  Zero request fields take the
// configured defaults.
func (s *Service) Allocate(ctx context.Context, request *model.EvaluatorRequest) (ret []*evaluator.Evaluator, err error) {
	ctx, span := tracing.StartSpan(ctx, "allocator.Allocate", tracing.KindInternal)
	defer func() { tracing.EndSpan(span, err) }()
	if err = request.Validate(); err != nil {
		return nil, err
	}

	s.mux.Lock()
	if s.config.MaxEvaluators > 0 && s.allocated+request.Number > s.config.MaxEvaluators {
		available := s.config.MaxEvaluators - s.allocated
		s.mux.Unlock()
		return nil, fmt.Errorf("%w: requested %d, available %d", ErrCapacityExceeded, request.Number, available)
	}
	s.allocated += request.Number
	s.mux.Unlock()

	descriptor := s.descriptor(request)
	var opts []evaluator.Option
	opts = append(opts, evaluator.WithLogger(s.logger))
	if s.result != nil {
		opts = append(opts, evaluator.WithResultProvider(s.result))
	}
	for i := 0; i < request.Number; i++ {
		ev := evaluator.New(idgen.Prefixed(s.config.IDPrefix), descriptor, s.driver, opts...)
		if err = s.driver.Allocated(ctx, ev); err != nil {
			s.logger.Warn("allocation handler failed", "evaluator", ev.ID(), "error", err)
		}
		ret = append(ret, ev)
	}
	return ret, nil
}

func (s *Service) descriptor(request *model.EvaluatorRequest) model.Descriptor {
	ret := model.Descriptor{
		Memory:      request.Memory,
		Cores:       request.Cores,
		Rack:        request.Rack,
		Process:     request.Process,
		RuntimeName: request.RuntimeName,
		Host:        s.config.Host,
		Platform:    s.config.Platform,
	}
	if ret.Memory == 0 {
		ret.Memory = s.config.Memory
	}
	if ret.Cores == 0 {
		ret.Cores = s.config.Cores
	}
	if ret.Process == "" {
		ret.Process = s.config.Process
	}
	if ret.RuntimeName == "" {
		ret.RuntimeName = s.config.RuntimeName
	}
	return ret
}

// Allocated returns the number of evaluators allocated so far
func (s *Service) Allocated() int {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.allocated
}

// New creates an allocator bound to driver
func New(driver Driver, config Config, opts ...Option) *Service {
	ret := &Service{config: config, driver: driver, logger: slog.Default()}
	for _, opt := range opts {
		opt(ret)
	}
	ret.logger = ret.logger.With("component", "allocator")
	return ret
}
