package evalrt

import (
	"context"

	"github.com/viant/evalrt/model"
	"github.com/viant/evalrt/runtime/evaluator"
	"github.com/viant/evalrt/service/allocator"
	"github.com/viant/evalrt/service/dao"
	"github.com/viant/evalrt/service/driver"
	"github.com/viant/evalrt/service/event"
	"github.com/viant/evalrt/service/journal"
	"github.com/viant/evalrt/telemetry"
)

// Runtime represents an evaluator runtime
type Runtime struct {
	driver        *driver.Driver
	allocator     *allocator.Service
	configuration model.Configuration
}

// Start starts draining the intent queue
func (r *Runtime) Start(ctx context.Context) error {
	return r.driver.Start(ctx)
}

// Shutdown stops the driver and releases its journal
func (r *Runtime) Shutdown(ctx context.Context) error {
	return r.driver.Shutdown(ctx)
}

// Allocate allocates evaluators; handlers registered for evaluator-allocated
// run before Allocate returns.
func (r *Runtime) Allocate(ctx context.Context, request *model.EvaluatorRequest) ([]*evaluator.Evaluator, error) {
	return r.allocator.Allocate(ctx, request)
}

// AllocatedEvaluator returns a live evaluator until it is closed
func (r *Runtime) AllocatedEvaluator(id string) (*evaluator.Evaluator, bool) {
	return r.driver.AllocatedEvaluator(id)
}

// Allocated returns the number of evaluators allocated so far
func (r *Runtime) Allocated() int {
	return r.allocator.Allocated()
}

// Handle registers handler for eventType
func (r *Runtime) Handle(eventType event.Type, handler event.Handler) {
	r.driver.Handle(eventType, handler)
}

// CompleteTask completes a running task of the evaluator and returns its value
func (r *Runtime) CompleteTask(ctx context.Context, evaluatorID, taskID string) ([]byte, error) {
	return r.driver.CompleteTask(ctx, evaluatorID, taskID)
}

// Evaluator returns an evaluator record
func (r *Runtime) Evaluator(ctx context.Context, id string) (*model.EvaluatorRecord, error) {
	return r.driver.Evaluator(ctx, id)
}

// Evaluators returns evaluator records
func (r *Runtime) Evaluators(ctx context.Context, parameters ...*dao.Parameter) ([]*model.EvaluatorRecord, error) {
	return r.driver.Evaluators(ctx, parameters...)
}

// Context returns an active context of the evaluator
func (r *Runtime) Context(ctx context.Context, evaluatorID, id string) (*model.Context, error) {
	return r.driver.Context(ctx, evaluatorID, id)
}

// Contexts lists the active contexts of the evaluator
func (r *Runtime) Contexts(ctx context.Context, evaluatorID string) ([]*model.Context, error) {
	return r.driver.Contexts(ctx, evaluatorID)
}

// Task returns a running task of the evaluator
func (r *Runtime) Task(ctx context.Context, evaluatorID, id string) (*model.Task, error) {
	return r.driver.Task(ctx, evaluatorID, id)
}

// Journal returns drained intents; an empty evaluatorID lists all
func (r *Runtime) Journal(ctx context.Context, evaluatorID string) ([]*journal.Entry, error) {
	return r.driver.Journal(ctx, evaluatorID)
}

// Metrics returns driver metrics
func (r *Runtime) Metrics() *telemetry.Metrics {
	return r.driver.Metrics()
}

// Driver returns the underlying driver
func (r *Runtime) Driver() *driver.Driver {
	return r.driver
}

// Configuration returns runtime settings bound by a launcher, if any
func (r *Runtime) Configuration() model.Configuration {
	return r.configuration
}
