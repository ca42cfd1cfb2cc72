package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/viant/evalrt/internal/clock"
	"github.com/viant/evalrt/model"
	"github.com/viant/evalrt/runtime/evaluator"
	"github.com/viant/evalrt/service/dao"
	"github.com/viant/evalrt/service/dao/registry"
	"github.com/viant/evalrt/service/event"
	"github.com/viant/evalrt/service/journal"
	"github.com/viant/evalrt/service/messaging"
	"github.com/viant/evalrt/service/messaging/memory"
	"github.com/viant/evalrt/telemetry"
	"github.com/viant/evalrt/tracing"
)

// Driver states reported to telemetry
const (
	StateRunning = "Running"
	StateStopped = "Stopped"
)

// Driver drains evaluator intents in enqueue order, keeps the registry of
// evaluators, contexts and tasks, and dispatches lifecycle events.
//
// Handlers for intent events run one at a time on the worker goroutine (or
// the Step caller).  Allocation and task completion events run on the
// calling goroutine.
type Driver struct {
	queue        messaging.Queue[model.Intent]
	events       *event.Service
	registry     *registry.Registry
	journal      journal.Journal
	telemetry    *telemetry.Service
	metrics      *telemetry.Metrics
	result       model.ResultProvider
	logger       *slog.Logger
	pollInterval time.Duration

	stateMux      sync.Mutex
	providers     map[string]model.ResultProvider
	taskProviders map[model.ScopedID]model.ResultProvider
	allocated     map[string]*evaluator.Evaluator

	runMux sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

var _ evaluator.Sink = (*Driver)(nil)

// Add validates and enqueues an intent
func (d *Driver) Add(ctx context.Context, intent *model.Intent) error {
	if err := intent.Validate(); err != nil {
		return err
	}
	if intent.Result != nil {
		d.stateMux.Lock()
		d.providers[intent.ID] = intent.Result
		d.stateMux.Unlock()
	}
	if err := d.queue.Publish(ctx, intent); err != nil {
		d.stateMux.Lock()
		delete(d.providers, intent.ID)
		d.stateMux.Unlock()
		return fmt.Errorf("failed to publish %v intent: %w", intent.Kind, err)
	}
	return nil
}

// Allocated registers a newly allocated evaluator and emits evaluator-allocated
func (d *Driver) Allocated(ctx context.Context, ev *evaluator.Evaluator) error {
	record := &model.EvaluatorRecord{
		ID:          ev.ID(),
		Descriptor:  ev.Descriptor(),
		State:       model.StateAllocated,
		AllocatedAt: clock.Now(),
	}
	d.stateMux.Lock()
	if _, err := d.registry.Evaluators.Load(ctx, record.ID); err == nil {
		d.stateMux.Unlock()
		return fmt.Errorf("%w: evaluator %v already allocated", model.ErrIllegalState, record.ID)
	}
	err := d.registry.Evaluators.Save(ctx, record)
	if err == nil {
		d.allocated[record.ID] = ev
	}
	d.stateMux.Unlock()
	if err != nil {
		return fmt.Errorf("failed to register evaluator %v: %w", record.ID, err)
	}
	d.increment(telemetry.EvaluatorsAllocated, 1)
	d.updateTelemetry(ctx)
	d.logger.Info("evaluator allocated", "evaluator", record.ID, "descriptor", record.Descriptor.String())
	allocated := event.NewEvent(&event.Context{Type: event.TypeEvaluatorAllocated, EvaluatorID: record.ID}, record.Clone())
	allocated.Allocated = ev
	return d.events.Dispatch(ctx, allocated)
}

// AllocatedEvaluator returns the live evaluator until it is closed
func (d *Driver) AllocatedEvaluator(id string) (*evaluator.Evaluator, bool) {
	d.stateMux.Lock()
	defer d.stateMux.Unlock()
	ev, ok := d.allocated[id]
	return ev, ok
}

// Step consumes and dispatches one intent.  It returns false when a non
// blocking queue was empty.  Dispatch failures are logged and journalled;
// the intent is acknowledged either way.
func (d *Driver) Step(ctx context.Context) (bool, error) {
	msg, err := d.queue.Consume(ctx)
	if err != nil {
		return false, err
	}
	if msg == nil {
		return false, nil
	}
	intent := msg.T()
	dispatchErr := d.dispatch(ctx, intent)
	if dispatchErr != nil {
		d.logger.Error("intent dispatch failed", "intent", intent.ID, "kind", intent.Kind, "evaluator", intent.EvaluatorID, "error", dispatchErr)
	}
	entry := journal.NewEntry(intent, clock.Now(), dispatchErr)
	var errs []error
	if err = d.journal.Append(ctx, entry); err != nil {
		errs = append(errs, fmt.Errorf("failed to journal intent %v: %w", intent.ID, err))
	}
	d.increment(telemetry.IntentsDrained, 1)
	d.updateTelemetry(ctx)
	if err = msg.Ack(); err != nil {
		errs = append(errs, fmt.Errorf("failed to ack intent %v: %w", intent.ID, err))
	}
	return true, errors.Join(errs...)
}

func (d *Driver) dispatch(ctx context.Context, intent *model.Intent) (err error) {
	ctx, span := tracing.StartSpan(ctx, "driver.dispatch "+string(intent.Kind), tracing.KindConsumer)
	span.WithAttributes(map[string]string{"evaluator.id": intent.EvaluatorID, "intent.id": intent.ID})
	defer func() { tracing.EndSpan(span, err) }()

	var events []*event.Event
	switch intent.Kind {
	case model.IntentCreateContext, model.IntentCreateContextAndTask:
		events, err = d.createContext(ctx, intent)
	case model.IntentCloseEvaluator:
		events, err = d.closeEvaluator(ctx, intent)
	default:
		err = fmt.Errorf("%w: unsupported intent kind %q", model.ErrInvalidArgument, intent.Kind)
	}
	if err != nil {
		return err
	}
	var errs []error
	for _, anEvent := range events {
		if dispatchErr := d.events.Dispatch(ctx, anEvent); dispatchErr != nil {
			errs = append(errs, dispatchErr)
		}
	}
	return errors.Join(errs...)
}

func (d *Driver) createContext(ctx context.Context, intent *model.Intent) ([]*event.Event, error) {
	d.stateMux.Lock()
	defer d.stateMux.Unlock()
	provider := d.providers[intent.ID]
	delete(d.providers, intent.ID)

	record, err := d.openEvaluator(ctx, intent.EvaluatorID)
	if err != nil {
		return nil, err
	}
	contextKey := model.NewScopedID(record.ID, intent.Context.ID)
	if _, err = d.registry.Contexts.Load(ctx, contextKey); err == nil {
		return nil, fmt.Errorf("%w: context %v already exists on evaluator %v", model.ErrIllegalState, intent.Context.ID, record.ID)
	}
	if intent.Context.IsRoot() && record.RootContextID != "" {
		return nil, fmt.Errorf("%w: evaluator %v already has root context %v", model.ErrIllegalState, record.ID, record.RootContextID)
	}
	var taskKey model.ScopedID
	if intent.Kind == model.IntentCreateContextAndTask {
		taskKey = model.NewScopedID(record.ID, intent.Task.ID)
		if _, err = d.registry.Tasks.Load(ctx, taskKey); err == nil {
			return nil, fmt.Errorf("%w: task %v already exists on evaluator %v", model.ErrIllegalState, intent.Task.ID, record.ID)
		}
	}
	lookup := func(id string) *model.Context {
		if id == intent.Context.ID {
			return intent.Context
		}
		found, _ := d.registry.Contexts.Load(ctx, model.NewScopedID(record.ID, id))
		return found
	}
	if _, err = model.Lineage(intent.Context.ID, lookup); err != nil {
		return nil, err
	}
	if err = d.registry.Contexts.Save(ctx, intent.Context); err != nil {
		return nil, err
	}
	if intent.Kind == model.IntentCreateContextAndTask {
		if err = d.registry.Tasks.Save(ctx, intent.Task); err != nil {
			_ = d.registry.Contexts.Delete(ctx, contextKey)
			return nil, err
		}
	}
	if intent.Context.IsRoot() {
		record.RootContextID = intent.Context.ID
	}
	if intent.Kind == model.IntentCreateContextAndTask {
		record.TaskID = intent.Task.ID
	}
	record.State = model.StateBound
	if err = d.registry.Evaluators.Save(ctx, record); err != nil {
		_ = d.registry.Contexts.Delete(ctx, contextKey)
		if intent.Kind == model.IntentCreateContextAndTask {
			_ = d.registry.Tasks.Delete(ctx, taskKey)
		}
		return nil, err
	}
	d.increment(telemetry.ContextsActive, 1)
	eventContext := &event.Context{Type: event.TypeContextActive, EvaluatorID: record.ID, ContextID: intent.Context.ID, IntentID: intent.ID}
	contextActive := event.NewEvent(eventContext, nil)
	contextActive.ActiveContext = intent.Context.Clone()
	events := []*event.Event{contextActive}

	if intent.Kind == model.IntentCreateContextAndTask {
		if provider == nil {
			provider = intent.Result
		}
		if provider != nil {
			d.taskProviders[taskKey] = provider
		}
		d.increment(telemetry.TasksRunning, 1)
		taskContext := *eventContext
		taskContext.Type = event.TypeTaskRunning
		taskContext.TaskID = intent.Task.ID
		taskRunning := event.NewEvent(&taskContext, nil)
		taskRunning.ActiveContext = intent.Context.Clone()
		taskRunning.Task = intent.Task.Clone()
		events = append(events, taskRunning)
	}
	for _, anEvent := range events {
		anEvent.Evaluator = record.Clone()
		anEvent.Allocated = d.allocated[record.ID]
	}
	return events, nil
}

func (d *Driver) closeEvaluator(ctx context.Context, intent *model.Intent) ([]*event.Event, error) {
	d.stateMux.Lock()
	defer d.stateMux.Unlock()
	record, err := d.openEvaluator(ctx, intent.EvaluatorID)
	if err != nil {
		return nil, err
	}
	byEvaluator := dao.NewParameter(dao.ParamEvaluatorID, record.ID)
	tasks, err := d.registry.Tasks.List(ctx, byEvaluator)
	if err != nil {
		return nil, err
	}
	for _, task := range tasks {
		if err = d.registry.Tasks.Delete(ctx, task.Key()); err != nil {
			return nil, err
		}
		delete(d.taskProviders, task.Key())
	}
	contexts, err := d.registry.Contexts.List(ctx, byEvaluator)
	if err != nil {
		return nil, err
	}
	for _, aContext := range contexts {
		if err = d.registry.Contexts.Delete(ctx, aContext.Key()); err != nil {
			return nil, err
		}
	}
	closedAt := clock.Now()
	record.State = model.StateClosed
	record.ClosedAt = &closedAt
	record.TaskID = ""
	if err = d.registry.Evaluators.Save(ctx, record); err != nil {
		return nil, err
	}
	d.increment(telemetry.TasksRunning, -len(tasks))
	d.increment(telemetry.ContextsActive, -len(contexts))
	d.increment(telemetry.EvaluatorsClosed, 1)
	closed := event.NewEvent(&event.Context{Type: event.TypeEvaluatorClosed, EvaluatorID: record.ID, IntentID: intent.ID}, record.Clone())
	closed.Allocated = d.allocated[record.ID]
	delete(d.allocated, record.ID)
	return []*event.Event{closed}, nil
}

// openEvaluator loads a registered evaluator that is not closed
func (d *Driver) openEvaluator(ctx context.Context, id string) (*model.EvaluatorRecord, error) {
	record, err := d.registry.Evaluators.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown evaluator %v: %v", model.ErrIllegalState, id, err)
	}
	if record.State.IsTerminal() {
		return nil, fmt.Errorf("%w: evaluator %v is closed", model.ErrIllegalState, id)
	}
	return record, nil
}

// CompleteTask obtains the return value of the evaluator's task, releases the
// task and emits task-completed
func (d *Driver) CompleteTask(ctx context.Context, evaluatorID, taskID string) ([]byte, error) {
	key := model.NewScopedID(evaluatorID, taskID)
	d.stateMux.Lock()
	task, err := d.registry.Tasks.Load(ctx, key)
	if err != nil {
		d.stateMux.Unlock()
		return nil, fmt.Errorf("failed to complete task %v: %w", key, err)
	}
	provider := d.taskProviders[key]
	if provider == nil {
		provider = d.result
	}
	delete(d.taskProviders, key)
	err = d.registry.Tasks.Delete(ctx, key)
	var record *model.EvaluatorRecord
	if err == nil {
		if record, err = d.registry.Evaluators.Load(ctx, task.EvaluatorID); err == nil && record.TaskID == taskID {
			record.TaskID = ""
			err = d.registry.Evaluators.Save(ctx, record)
		}
	}
	allocated := d.allocated[task.EvaluatorID]
	d.stateMux.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to release task %v: %w", key, err)
	}
	d.increment(telemetry.TasksRunning, -1)
	d.increment(telemetry.TasksCompleted, 1)
	d.updateTelemetry(ctx)

	var value []byte
	if provider != nil {
		if value, err = provider.ReturnValue(ctx, task); err != nil {
			return nil, fmt.Errorf("failed to obtain task %v return value: %w", taskID, err)
		}
	}
	completed := event.NewEvent(&event.Context{Type: event.TypeTaskCompleted, EvaluatorID: task.EvaluatorID, ContextID: task.ContextID, TaskID: task.ID}, record)
	completed.Task = task
	completed.Result = value
	completed.Allocated = allocated
	return value, d.events.Dispatch(ctx, completed)
}

// Evaluator returns the registered evaluator record
func (d *Driver) Evaluator(ctx context.Context, id string) (*model.EvaluatorRecord, error) {
	return d.registry.Evaluators.Load(ctx, id)
}

// Evaluators lists evaluator records, optionally filtered by dao parameters
func (d *Driver) Evaluators(ctx context.Context, parameters ...*dao.Parameter) ([]*model.EvaluatorRecord, error) {
	return d.registry.Evaluators.List(ctx, parameters...)
}

// Context returns an active context of the evaluator
func (d *Driver) Context(ctx context.Context, evaluatorID, id string) (*model.Context, error) {
	return d.registry.Contexts.Load(ctx, model.NewScopedID(evaluatorID, id))
}

// Contexts lists the active contexts of the evaluator
func (d *Driver) Contexts(ctx context.Context, evaluatorID string) ([]*model.Context, error) {
	return d.registry.Contexts.List(ctx, dao.NewParameter(dao.ParamEvaluatorID, evaluatorID))
}

// Task returns a running task of the evaluator
func (d *Driver) Task(ctx context.Context, evaluatorID, id string) (*model.Task, error) {
	return d.registry.Tasks.Load(ctx, model.NewScopedID(evaluatorID, id))
}

// Journal lists drained intents; an empty evaluatorID lists all
func (d *Driver) Journal(ctx context.Context, evaluatorID string) ([]*journal.Entry, error) {
	return d.journal.List(ctx, evaluatorID)
}

// Metrics returns the driver metrics
func (d *Driver) Metrics() *telemetry.Metrics {
	return d.metrics
}

// Events returns the event service
func (d *Driver) Events() *event.Service {
	return d.events
}

// Handle registers handler for eventType
func (d *Driver) Handle(eventType event.Type, handler event.Handler) {
	d.events.Register(eventType, handler)
}

func (d *Driver) increment(name string, n int) {
	if n == 0 {
		return
	}
	if metric, ok := d.metrics.Get(name); ok {
		_ = metric.Increment(n)
	}
}

func (d *Driver) updateTelemetry(ctx context.Context) {
	if err := d.telemetry.Update(ctx, d.metrics); err != nil {
		d.logger.Warn("failed to update telemetry", "error", err)
	}
}

// Start launches the worker draining the queue until Shutdown or ctx is done
func (d *Driver) Start(ctx context.Context) error {
	d.runMux.Lock()
	defer d.runMux.Unlock()
	if d.cancel != nil {
		return fmt.Errorf("%w: driver already started", model.ErrIllegalState)
	}
	ctx, d.cancel = context.WithCancel(ctx)
	d.done = make(chan struct{})
	d.telemetry.DriverState(ctx, StateRunning, clock.Now())
	go d.run(ctx, d.done)
	d.logger.Info("driver started")
	return nil
}

func (d *Driver) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		processed, err := d.Step(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			d.logger.Error("driver step failed", "error", err)
		}
		if processed {
			continue
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(d.pollInterval):
		}
	}
}

// Shutdown stops the worker, flushes telemetry and closes the journal
func (d *Driver) Shutdown(ctx context.Context) error {
	d.runMux.Lock()
	defer d.runMux.Unlock()
	if d.cancel != nil {
		d.cancel()
		<-d.done
		d.cancel = nil
	}
	d.events.Close()
	d.telemetry.Complete(ctx)
	d.telemetry.DriverState(ctx, StateStopped, clock.Now())
	d.logger.Info("driver stopped")
	return d.journal.Close()
}

// New creates a driver; unset collaborators default to in-memory implementations
func New(opts ...Option) (*Driver, error) {
	ret := &Driver{
		logger:       slog.Default(),
		pollInterval: 50 * time.Millisecond,
		providers:     map[string]model.ResultProvider{},
		taskProviders: map[model.ScopedID]model.ResultProvider{},
		allocated:    map[string]*evaluator.Evaluator{},
		metrics:      telemetry.NewDriverMetrics(),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.queue == nil {
		ret.queue = memory.NewQueue[model.Intent](memory.DefaultConfig())
	}
	if ret.events == nil {
		events, err := event.New(messaging.VendorMemory, event.WithLogger(ret.logger))
		if err != nil {
			return nil, err
		}
		ret.events = events
	}
	if ret.registry == nil {
		ret.registry = registry.NewMemory()
	}
	if ret.journal == nil {
		ret.journal = journal.NewMemory()
	}
	if ret.telemetry == nil {
		ret.telemetry = telemetry.NewService(telemetry.WithLogger(ret.logger))
	}
	ret.logger = ret.logger.With("component", "driver")
	return ret, nil
}
