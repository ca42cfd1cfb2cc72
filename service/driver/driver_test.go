package driver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/evalrt/model"
	"github.com/viant/evalrt/runtime/evaluator"
	"github.com/viant/evalrt/service/dao"
	"github.com/viant/evalrt/service/dao/registry"
	"github.com/viant/evalrt/service/event"
	"github.com/viant/evalrt/service/messaging/fs"
	"github.com/viant/evalrt/telemetry"
)

type recorder struct {
	mux    sync.Mutex
	events []*event.Event
}

func (r *recorder) handler(ctx context.Context, anEvent *event.Event) error {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.events = append(r.events, anEvent)
	return nil
}

func (r *recorder) types() []event.Type {
	r.mux.Lock()
	defer r.mux.Unlock()
	var result []event.Type
	for _, anEvent := range r.events {
		result = append(result, anEvent.Type())
	}
	return result
}

func newDriver(t *testing.T, opts ...Option) (*Driver, *recorder) {
	d, err := New(opts...)
	require.NoError(t, err)
	rec := &recorder{}
	for _, eventType := range event.Types {
		d.Handle(eventType, rec.handler)
	}
	return d, rec
}

func allocate(t *testing.T, d *Driver, id string, opts ...evaluator.Option) *evaluator.Evaluator {
	ev := evaluator.New(id, model.Descriptor{Memory: 256, Cores: 1, Process: model.ProcessJVM, Platform: model.PlatformLinux}, d, opts...)
	require.NoError(t, d.Allocated(context.Background(), ev))
	return ev
}

func drain(t *testing.T, d *Driver, n int) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for i := 0; i < n; i++ {
		processed, err := d.Step(ctx)
		require.NoError(t, err)
		require.True(t, processed)
	}
}

func TestDriver_ContextBeforeClose(t *testing.T) {
	ctx := context.Background()
	d, rec := newDriver(t)
	ev := allocate(t, d, "E1")

	require.NoError(t, ev.SubmitContext(ctx, model.NewContextConfiguration("C1")))
	require.NoError(t, ev.Close(ctx))
	drain(t, d, 2)

	entries, err := d.Journal(ctx, "E1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, model.IntentCreateContext, entries[0].Kind)
	assert.Equal(t, "C1", entries[0].ContextID)
	assert.Equal(t, model.IntentCloseEvaluator, entries[1].Kind)
	assert.Empty(t, entries[0].Error)
	assert.Empty(t, entries[1].Error)

	assert.Equal(t, []event.Type{event.TypeEvaluatorAllocated, event.TypeContextActive, event.TypeEvaluatorClosed}, rec.types())
	record, err := d.Evaluator(ctx, "E1")
	require.NoError(t, err)
	assert.Equal(t, model.StateClosed, record.State)
	assert.Equal(t, "C1", record.RootContextID)
	assert.NotNil(t, record.ClosedAt)

	_, err = d.Context(ctx, "E1", "C1")
	assert.True(t, errors.Is(err, dao.ErrNotFound))
	active, _ := d.Metrics().Get(telemetry.ContextsActive)
	assert.Equal(t, 0, active.Int())
	drained, _ := d.Metrics().Get(telemetry.IntentsDrained)
	assert.Equal(t, 2, drained.Int())
}

func TestDriver_TaskLifecycle(t *testing.T) {
	ctx := context.Background()
	provider := model.ResultFunc(func(ctx context.Context, task *model.Task) ([]byte, error) {
		return []byte("hello from " + task.ID), nil
	})
	d, rec := newDriver(t)
	ev := allocate(t, d, "E1", evaluator.WithResultProvider(provider))

	require.NoError(t, ev.SubmitTask(ctx, model.NewTaskConfiguration("T1")))
	drain(t, d, 1)
	assert.Equal(t, []event.Type{event.TypeEvaluatorAllocated, event.TypeContextActive, event.TypeTaskRunning}, rec.types())
	running := rec.events[2]
	assert.Equal(t, "T1", running.Task.ID)
	assert.Equal(t, evaluator.RootContextIdentifierPrefix+"E1", running.ActiveContext.ID)
	assert.Equal(t, model.StateBound, running.Evaluator.State)
	assert.Same(t, ev, running.Allocated)

	task, err := d.Task(ctx, "E1", "T1")
	require.NoError(t, err)
	assert.Equal(t, "ROOT.CONTEXT.E1", task.ContextID)

	value, err := d.CompleteTask(ctx, "E1", "T1")
	require.NoError(t, err)
	assert.Equal(t, "hello from T1", string(value))
	completed := rec.events[3]
	assert.Equal(t, event.TypeTaskCompleted, completed.Type())
	assert.Equal(t, value, completed.Result)

	_, err = d.CompleteTask(ctx, "E1", "T1")
	assert.True(t, errors.Is(err, dao.ErrNotFound))

	record, err := d.Evaluator(ctx, "E1")
	require.NoError(t, err)
	assert.Empty(t, record.TaskID)
	done, _ := d.Metrics().Get(telemetry.TasksCompleted)
	assert.Equal(t, 1, done.Int())
	running2, _ := d.Metrics().Get(telemetry.TasksRunning)
	assert.Equal(t, 0, running2.Int())
}

func TestDriver_FallbackResultProvider(t *testing.T) {
	ctx := context.Background()
	fallback := model.ResultFunc(func(ctx context.Context, task *model.Task) ([]byte, error) { return []byte("fallback"), nil })
	d, _ := newDriver(t, WithResultProvider(fallback))
	ev := allocate(t, d, "E1")
	require.NoError(t, ev.SubmitContextAndTask(ctx, model.NewContextConfiguration("C1"), model.NewTaskConfiguration("T1")))
	drain(t, d, 1)
	value, err := d.CompleteTask(ctx, "E1", "T1")
	require.NoError(t, err)
	assert.Equal(t, "fallback", string(value))
}

func TestDriver_DispatchFailuresAreJournalled(t *testing.T) {
	ctx := context.Background()
	d, rec := newDriver(t)
	d.Handle(event.TypeContextActive, func(ctx context.Context, anEvent *event.Event) error {
		return errors.New("handler failed")
	})

	require.NoError(t, d.Add(ctx, model.NewCloseEvaluator("ghost")))
	ev := allocate(t, d, "E1")
	require.NoError(t, ev.SubmitContext(ctx, model.NewContextConfiguration("C1")))
	drain(t, d, 2)

	entries, err := d.Journal(ctx, "")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Contains(t, entries[0].Error, "unknown evaluator ghost")
	assert.Contains(t, entries[1].Error, "handler failed")
	assert.Equal(t, []event.Type{event.TypeEvaluatorAllocated, event.TypeContextActive}, rec.types())

	err = d.Allocated(ctx, ev)
	assert.True(t, errors.Is(err, model.ErrIllegalState))
	err = d.Add(ctx, &model.Intent{Kind: model.IntentCreateContext})
	assert.True(t, errors.Is(err, model.ErrInvalidArgument))
}

func TestDriver_StartShutdown(t *testing.T) {
	d, _ := newDriver(t)
	closed := make(chan string, 4)
	d.Handle(event.TypeTaskRunning, func(ctx context.Context, anEvent *event.Event) error {
		_, err := d.CompleteTask(ctx, anEvent.Context.EvaluatorID, anEvent.Task.ID)
		return err
	})
	d.Handle(event.TypeEvaluatorAllocated, func(ctx context.Context, anEvent *event.Event) error {
		return anEvent.Allocated.SubmitTask(ctx, model.NewTaskConfiguration("T"+anEvent.Allocated.ID()))
	})
	d.Handle(event.TypeTaskCompleted, func(ctx context.Context, anEvent *event.Event) error {
		return anEvent.Allocated.Close(ctx)
	})
	d.Handle(event.TypeEvaluatorClosed, func(ctx context.Context, anEvent *event.Event) error {
		assert.NotNil(t, anEvent.Allocated)
		closed <- anEvent.Context.EvaluatorID
		return nil
	})

	ctx := context.Background()
	require.NoError(t, d.Start(ctx))
	assert.Error(t, d.Start(ctx))
	for i := 0; i < 3; i++ {
		allocate(t, d, fmt.Sprintf("E%d", i))
	}
	seen := map[string]bool{}
	for len(seen) < 3 {
		select {
		case id := <-closed:
			seen[id] = true
		case <-time.After(2 * time.Second):
			t.Fatalf("only %v evaluators closed", len(seen))
		}
	}
	require.NoError(t, d.Shutdown(ctx))
	_, ok := d.AllocatedEvaluator("E1")
	assert.False(t, ok)

	records, err := d.Evaluators(ctx, dao.NewParameter(dao.ParamState, string(model.StateClosed)))
	require.NoError(t, err)
	assert.Len(t, records, 3)
	entries, err := d.Journal(ctx, "E1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, model.IntentCreateContextAndTask, entries[0].Kind)
	assert.Equal(t, model.IntentCloseEvaluator, entries[1].Kind)
}

func TestDriver_FSQueue(t *testing.T) {
	ctx := context.Background()
	queue, err := fs.NewQueue[model.Intent](afs.New(), fs.QueueConfig{BasePath: t.TempDir(), MaxRetries: 1})
	require.NoError(t, err)
	d, rec := newDriver(t, WithQueue(queue))
	provider := model.ResultFunc(func(ctx context.Context, task *model.Task) ([]byte, error) { return []byte("durable"), nil })
	ev := allocate(t, d, "E1", evaluator.WithResultProvider(provider))

	require.NoError(t, ev.SubmitContextAndServiceAndTask(ctx, model.NewContextConfiguration("C1"), model.NewServiceConfiguration("cache"), model.NewTaskConfiguration("T1")))
	require.NoError(t, ev.Close(ctx))
	drain(t, d, 1)

	running := rec.events[len(rec.events)-1]
	assert.Equal(t, event.TypeTaskRunning, running.Type())
	assert.Equal(t, "cache", running.ActiveContext.Services[0].Name)
	value, err := d.CompleteTask(ctx, "E1", "T1")
	require.NoError(t, err)
	assert.Equal(t, "durable", string(value))

	drain(t, d, 1)
	processed, err := d.Step(ctx)
	assert.NoError(t, err)
	assert.False(t, processed)
	assert.Equal(t, event.TypeEvaluatorClosed, rec.events[len(rec.events)-1].Type())
}

func TestDriver_ContextIDsAreScopedByEvaluator(t *testing.T) {
	ctx := context.Background()
	d, rec := newDriver(t)
	first := allocate(t, d, "E1")
	second := allocate(t, d, "E2")

	require.NoError(t, first.SubmitContext(ctx, model.NewContextConfiguration("C1")))
	require.NoError(t, second.SubmitContext(ctx, model.NewContextConfiguration("C1")))
	drain(t, d, 2)

	entries, err := d.Journal(ctx, "")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, entry := range entries {
		assert.Empty(t, entry.Error, entry.EvaluatorID)
	}
	assert.Equal(t, []event.Type{event.TypeEvaluatorAllocated, event.TypeEvaluatorAllocated, event.TypeContextActive, event.TypeContextActive}, rec.types())
	for _, id := range []string{"E1", "E2"} {
		record, err := d.Evaluator(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, model.StateBound, record.State, id)
		assert.Equal(t, "C1", record.RootContextID, id)
		aContext, err := d.Context(ctx, id, "C1")
		require.NoError(t, err)
		assert.Equal(t, id, aContext.EvaluatorID)
	}
	active, _ := d.Metrics().Get(telemetry.ContextsActive)
	assert.Equal(t, 2, active.Int())

	require.NoError(t, first.Close(ctx))
	drain(t, d, 1)
	_, err = d.Context(ctx, "E1", "C1")
	assert.True(t, errors.Is(err, dao.ErrNotFound))
	remaining, err := d.Contexts(ctx, "E2")
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, 1, active.Int())
}

func TestDriver_TaskIDsAreScopedByEvaluator(t *testing.T) {
	ctx := context.Background()
	value := func(prefix string) model.ResultFunc {
		return func(ctx context.Context, task *model.Task) ([]byte, error) {
			return []byte(prefix + task.ID), nil
		}
	}
	d, _ := newDriver(t)
	first := allocate(t, d, "E1", evaluator.WithResultProvider(value("first ")))
	second := allocate(t, d, "E2", evaluator.WithResultProvider(value("second ")))
	third := allocate(t, d, "E3")

	require.NoError(t, first.SubmitTask(ctx, model.NewTaskConfiguration("T1")))
	require.NoError(t, second.SubmitTask(ctx, model.NewTaskConfiguration("T1")))
	require.NoError(t, third.SubmitTask(ctx, model.NewTaskConfiguration("T1")))
	drain(t, d, 3)

	running, _ := d.Metrics().Get(telemetry.TasksRunning)
	assert.Equal(t, 3, running.Int())
	result, err := d.CompleteTask(ctx, "E2", "T1")
	require.NoError(t, err)
	assert.Equal(t, "second T1", string(result))
	task, err := d.Task(ctx, "E1", "T1")
	require.NoError(t, err)
	assert.Equal(t, evaluator.RootContextIdentifierPrefix+"E1", task.ContextID)

	require.NoError(t, first.Close(ctx))
	require.NoError(t, second.Close(ctx))
	drain(t, d, 2)
	assert.Equal(t, 1, running.Int())
	_, err = d.CompleteTask(ctx, "E1", "T1")
	assert.True(t, errors.Is(err, dao.ErrNotFound))

	require.NoError(t, third.Close(ctx))
	drain(t, d, 1)
	assert.Equal(t, 0, running.Int())
	entries, err := d.Journal(ctx, "")
	require.NoError(t, err)
	for _, entry := range entries {
		assert.Empty(t, entry.Error, entry.EvaluatorID)
	}
}

type failingTasks struct {
	dao.Service[model.ScopedID, model.Task]
}

func (f *failingTasks) Save(ctx context.Context, task *model.Task) error {
	return errors.New("tasks store unavailable")
}

func TestDriver_TaskSaveFailureReleasesContext(t *testing.T) {
	ctx := context.Background()
	stores := registry.NewMemory()
	stores.Tasks = &failingTasks{Service: stores.Tasks}
	d, rec := newDriver(t, WithRegistry(stores))
	ev := allocate(t, d, "E1")

	require.NoError(t, ev.SubmitTask(ctx, model.NewTaskConfiguration("T1")))
	drain(t, d, 1)

	entries, err := d.Journal(ctx, "E1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Error, "tasks store unavailable")
	assert.Equal(t, []event.Type{event.TypeEvaluatorAllocated}, rec.types())

	contexts, err := d.Contexts(ctx, "E1")
	require.NoError(t, err)
	assert.Empty(t, contexts)
	record, err := d.Evaluator(ctx, "E1")
	require.NoError(t, err)
	assert.Equal(t, model.StateAllocated, record.State)
	assert.Empty(t, record.RootContextID)
	assert.Empty(t, record.TaskID)
	for _, name := range []string{telemetry.ContextsActive, telemetry.TasksRunning} {
		metric, _ := d.Metrics().Get(name)
		assert.Equal(t, 0, metric.Int(), name)
	}
}
