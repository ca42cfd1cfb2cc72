package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/viant/evalrt/model"
	"github.com/viant/evalrt/tracing"
)

// RootContextIdentifierPrefix prefixes the synthetic root context created by SubmitTask
const RootContextIdentifierPrefix = "ROOT.CONTEXT."

// Sink receives the intents produced by evaluators in call order
type Sink interface {
	Add(ctx context.Context, intent *model.Intent) error
}

// Evaluator is an allocated evaluator.  It accepts exactly one root context
// submission and can be closed once; every accepted operation is handed to
// the sink as an intent.
type Evaluator struct {
	id         string
	descriptor model.Descriptor
	sink       Sink
	result     model.ResultProvider
	logger     *slog.Logger

	mux         sync.Mutex
	state       model.State
	rootContext *model.Context
}

// ID returns the evaluator identifier
func (e *Evaluator) ID() string {
	return e.id
}

// Descriptor returns the evaluator descriptor
func (e *Evaluator) Descriptor() model.Descriptor {
	return e.descriptor
}

// State returns the current lifecycle state
func (e *Evaluator) State() model.State {
	e.mux.Lock()
	defer e.mux.Unlock()
	return e.state
}

// RootContext returns a copy of the root context or nil when none was submitted
func (e *Evaluator) RootContext() *model.Context {
	e.mux.Lock()
	defer e.mux.Unlock()
	return e.rootContext.Clone()
}

// SubmitTask starts a task on a synthetic root context named after the evaluator
func (e *Evaluator) SubmitTask(ctx context.Context, taskConfig model.Configuration) error {
	return e.submit(ctx, "SubmitTask", func() (*model.Intent, error) {
		taskID, err := taskConfig.Identifier(model.TaskIdentifier)
		if err != nil {
			return nil, err
		}
		root := model.NewRootContext(e.id, RootContextIdentifierPrefix+e.id)
		return model.NewCreateContextAndTask(root, model.NewTask(taskID, root), e.result), nil
	})
}

// SubmitContext creates the root context
func (e *Evaluator) SubmitContext(ctx context.Context, contextConfig model.Configuration) error {
	return e.submit(ctx, "SubmitContext", func() (*model.Intent, error) {
		root, err := e.newRootContext(contextConfig, nil)
		if err != nil {
			return nil, err
		}
		return model.NewCreateContext(root), nil
	})
}

// SubmitContextAndService creates the root context with the services named by
// serviceConfig attached.  Services do not change the resulting state or intent kind.
func (e *Evaluator) SubmitContextAndService(ctx context.Context, contextConfig, serviceConfig model.Configuration) error {
	return e.submit(ctx, "SubmitContextAndService", func() (*model.Intent, error) {
		root, err := e.newRootContext(contextConfig, serviceConfig)
		if err != nil {
			return nil, err
		}
		return model.NewCreateContext(root), nil
	})
}

// SubmitContextAndTask creates the root context and starts a task on it
func (e *Evaluator) SubmitContextAndTask(ctx context.Context, contextConfig, taskConfig model.Configuration) error {
	return e.submitContextAndTask(ctx, "SubmitContextAndTask", contextConfig, nil, taskConfig)
}

// SubmitContextAndServiceAndTask behaves as SubmitContextAndTask, additionally
// recording the services named by serviceConfig on the root context.
func (e *Evaluator) SubmitContextAndServiceAndTask(ctx context.Context, contextConfig, serviceConfig, taskConfig model.Configuration) error {
	return e.submitContextAndTask(ctx, "SubmitContextAndServiceAndTask", contextConfig, serviceConfig, taskConfig)
}

func (e *Evaluator) submitContextAndTask(ctx context.Context, name string, contextConfig, serviceConfig, taskConfig model.Configuration) error {
	return e.submit(ctx, name, func() (*model.Intent, error) {
		root, err := e.newRootContext(contextConfig, serviceConfig)
		if err != nil {
			return nil, err
		}
		taskID, err := taskConfig.Identifier(model.TaskIdentifier)
		if err != nil {
			return nil, err
		}
		return model.NewCreateContextAndTask(root, model.NewTask(taskID, root), e.result), nil
	})
}

// Close releases the evaluator.  It fails when the evaluator is already closed.
func (e *Evaluator) Close(ctx context.Context) (err error) {
	ctx, span := tracing.StartSpan(ctx, "evaluator.Close", tracing.KindProducer)
	span.WithAttributes(map[string]string{"evaluator.id": e.id})
	defer func() { tracing.EndSpan(span, err) }()

	e.mux.Lock()
	defer e.mux.Unlock()
	next, err := Transition(e.state, OperationClose)
	if err != nil {
		return fmt.Errorf("failed to close evaluator %v: %w", e.id, err)
	}
	intent := model.NewCloseEvaluator(e.id)
	if err = e.sink.Add(ctx, intent); err != nil {
		return fmt.Errorf("failed to enqueue %v for evaluator %v: %w", intent.Kind, e.id, err)
	}
	e.state = next
	e.logger.Debug("evaluator closed", "evaluator", e.id, "intent", intent.ID)
	return nil
}

// SetProcess always fails: the process is bound before allocation.
func (e *Evaluator) SetProcess(process model.ProcessKind) error {
	return fmt.Errorf("%w: cannot set process %v on allocated evaluator %v", model.ErrUnsupportedOperation, process, e.id)
}

// AddFile is a no-op; files are distributed before allocation.
func (e *Evaluator) AddFile(path string) {}

// AddLibrary is a no-op; libraries are distributed before allocation.
func (e *Evaluator) AddLibrary(path string) {}

func (e *Evaluator) newRootContext(contextConfig, serviceConfig model.Configuration) (*model.Context, error) {
	contextID, err := contextConfig.Identifier(model.ContextIdentifier)
	if err != nil {
		return nil, err
	}
	return model.NewRootContext(e.id, contextID, serviceConfig.Services()...), nil
}

// submit validates the transition, builds the intent and commits the bound
// state only once the sink accepted it.
func (e *Evaluator) submit(ctx context.Context, name string, build func() (*model.Intent, error)) (err error) {
	ctx, span := tracing.StartSpan(ctx, "evaluator."+name, tracing.KindProducer)
	span.WithAttributes(map[string]string{"evaluator.id": e.id})
	defer func() { tracing.EndSpan(span, err) }()

	e.mux.Lock()
	defer e.mux.Unlock()
	next, err := Transition(e.state, OperationSubmit)
	if err != nil {
		e.logger.Warn("submission rejected", "evaluator", e.id, "operation", name, "state", e.state)
		return fmt.Errorf("failed to %v on evaluator %v: %w", name, e.id, err)
	}
	intent, err := build()
	if err != nil {
		return fmt.Errorf("failed to %v on evaluator %v: %w", name, e.id, err)
	}
	if err = e.sink.Add(ctx, intent); err != nil {
		return fmt.Errorf("failed to enqueue %v for evaluator %v: %w", intent.Kind, e.id, err)
	}
	e.state = next
	e.rootContext = intent.Context.Clone()
	e.logger.Debug("intent enqueued", "evaluator", e.id, "operation", name, "kind", intent.Kind, "context", intent.ContextID(), "task", intent.TaskID())
	return nil
}

// New creates an allocated evaluator bound to sink
func New(id string, descriptor model.Descriptor, sink Sink, opts ...Option) *Evaluator {
	ret := &Evaluator{
		id:         id,
		descriptor: descriptor,
		sink:       sink,
		logger:     slog.Default(),
		state:      model.StateAllocated,
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}
