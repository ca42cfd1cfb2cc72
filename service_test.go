package evalrt_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/evalrt"
	"github.com/viant/evalrt/internal/logging"
	"github.com/viant/evalrt/model"
	"github.com/viant/evalrt/service/allocator"
	"github.com/viant/evalrt/service/dao"
	"github.com/viant/evalrt/service/dao/registry"
	"github.com/viant/evalrt/service/event"
	"github.com/viant/evalrt/service/journal"
	"github.com/viant/evalrt/service/messaging"
	"github.com/viant/evalrt/telemetry"
)

// helloFlow submits a task on allocation, completes it once running and
// closes the evaluator on completion.
func helloFlow(t *testing.T, rt *evalrt.Runtime) <-chan string {
	closed := make(chan string, 16)
	rt.Handle(event.TypeEvaluatorAllocated, func(ctx context.Context, anEvent *event.Event) error {
		return anEvent.Allocated.SubmitTask(ctx, model.NewTaskConfiguration("HelloTask-"+anEvent.Allocated.ID()))
	})
	rt.Handle(event.TypeTaskRunning, func(ctx context.Context, anEvent *event.Event) error {
		_, err := rt.CompleteTask(ctx, anEvent.Context.EvaluatorID, anEvent.Task.ID)
		return err
	})
	rt.Handle(event.TypeTaskCompleted, func(ctx context.Context, anEvent *event.Event) error {
		return anEvent.Allocated.Close(ctx)
	})
	rt.Handle(event.TypeEvaluatorClosed, func(ctx context.Context, anEvent *event.Event) error {
		closed <- anEvent.Context.EvaluatorID
		return nil
	})
	return closed
}

func awaitClosed(t *testing.T, closed <-chan string, n int) {
	t.Helper()
	seen := map[string]bool{}
	for len(seen) < n {
		select {
		case id := <-closed:
			seen[id] = true
		case <-time.After(5 * time.Second):
			t.Fatalf("only %v of %v evaluators closed", len(seen), n)
		}
	}
}

func TestService_HelloFlow(t *testing.T) {
	ctx := context.Background()
	var mux sync.Mutex
	var sunk []telemetry.KeyValue
	sink := telemetry.SinkFunc(func(ctx context.Context, values []telemetry.KeyValue) error {
		mux.Lock()
		defer mux.Unlock()
		sunk = append(sunk, values...)
		return nil
	})
	result := model.ResultFunc(func(ctx context.Context, task *model.Task) ([]byte, error) {
		return []byte("Hello, " + task.ID), nil
	})
	config := evalrt.DefaultConfig()
	config.Allocator.IDPrefix = "hello-"
	srv, err := evalrt.New(
		evalrt.WithConfig(config),
		evalrt.WithLogger(logging.Discard()),
		evalrt.WithResultProvider(result),
		evalrt.WithTelemetrySinks(sink))
	require.NoError(t, err)
	rt := srv.Runtime()

	var results sync.Map
	rt.Handle(event.TypeTaskCompleted, func(ctx context.Context, anEvent *event.Event) error {
		results.Store(anEvent.Task.ID, string(anEvent.Result))
		return nil
	})
	closed := helloFlow(t, rt)
	require.NoError(t, rt.Start(ctx))
	evaluators, err := rt.Allocate(ctx, &model.EvaluatorRequest{Number: 3, Memory: 64})
	require.NoError(t, err)
	require.Len(t, evaluators, 3)
	awaitClosed(t, closed, 3)
	require.NoError(t, rt.Shutdown(ctx))

	assert.Equal(t, 3, rt.Allocated())
	for _, ev := range evaluators {
		assert.Equal(t, model.StateClosed, ev.State())
		assert.Contains(t, ev.ID(), "hello-")
		assert.Equal(t, 64, ev.Descriptor().Memory)
		value, ok := results.Load("HelloTask-" + ev.ID())
		require.True(t, ok)
		assert.Equal(t, "Hello, HelloTask-"+ev.ID(), value)

		entries, err := rt.Journal(ctx, ev.ID())
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, model.IntentCreateContextAndTask, entries[0].Kind)
		assert.Equal(t, model.IntentCloseEvaluator, entries[1].Kind)
		_, ok = rt.AllocatedEvaluator(ev.ID())
		assert.False(t, ok)
	}
	records, err := rt.Evaluators(ctx, dao.NewParameter(dao.ParamState, string(model.StateClosed)))
	require.NoError(t, err)
	assert.Len(t, records, 3)
	completed, _ := rt.Metrics().Get(telemetry.TasksCompleted)
	assert.Equal(t, 3, completed.Int())

	mux.Lock()
	defer mux.Unlock()
	assert.NotEmpty(t, sunk)
}

func TestService_DurableBackends(t *testing.T) {
	ctx := context.Background()
	baseDir := t.TempDir()
	config := evalrt.DefaultConfig()
	config.Driver.QueueVendor = messaging.VendorFS
	config.Driver.QueuePath = filepath.Join(baseDir, "queue")
	config.Driver.RegistryVendor = registry.VendorFS
	config.Driver.RegistryPath = filepath.Join(baseDir, "registry")
	config.Driver.JournalVendor = journal.VendorSQLite
	config.Driver.JournalPath = filepath.Join(baseDir, "journal.db")
	config.Driver.PollIntervalMs = 5
	config.Telemetry.LogSink = false

	srv, err := evalrt.New(evalrt.WithConfig(config), evalrt.WithLogger(logging.Discard()))
	require.NoError(t, err)
	rt := srv.Runtime()
	closed := helloFlow(t, rt)
	require.NoError(t, rt.Start(ctx))
	_, err = rt.Allocate(ctx, &model.EvaluatorRequest{Number: 2})
	require.NoError(t, err)
	awaitClosed(t, closed, 2)

	var entries []*journal.Entry
	require.Eventually(t, func() bool {
		entries, err = rt.Journal(ctx, "")
		return err == nil && len(entries) == 4
	}, 5*time.Second, 10*time.Millisecond)
	for i, entry := range entries {
		assert.EqualValues(t, i+1, entry.Seq)
		assert.Empty(t, entry.Error)
	}
	require.NoError(t, rt.Shutdown(ctx))
}

func TestService_CapacityAndConfig(t *testing.T) {
	ctx := context.Background()
	config := evalrt.DefaultConfig()
	config.Allocator.MaxEvaluators = 2
	srv, err := evalrt.New(evalrt.WithConfig(config), evalrt.WithLogger(logging.Discard()))
	require.NoError(t, err)
	assert.Same(t, config, srv.Config())

	_, err = srv.Runtime().Allocate(ctx, &model.EvaluatorRequest{Number: 3})
	assert.True(t, errors.Is(err, allocator.ErrCapacityExceeded))
	_, err = srv.Runtime().Allocate(ctx, &model.EvaluatorRequest{Number: 0})
	assert.True(t, errors.Is(err, model.ErrInvalidArgument))

	invalid := evalrt.DefaultConfig()
	invalid.Driver.JournalVendor = journal.VendorSQLite
	_, err = evalrt.New(evalrt.WithConfig(invalid), evalrt.WithLogger(logging.Discard()))
	assert.ErrorContains(t, err, "driver.journalPath")
}

func TestService_RuntimeConfiguration(t *testing.T) {
	configuration := model.Configuration{"azure.batch.pool.id": "pool"}
	srv, err := evalrt.New(evalrt.WithLogger(logging.Discard()), evalrt.WithRuntimeConfiguration(configuration))
	require.NoError(t, err)
	assert.Equal(t, "pool", fmt.Sprint(srv.Runtime().Configuration()["azure.batch.pool.id"]))
	assert.NotNil(t, srv.Runtime().Driver())
}
