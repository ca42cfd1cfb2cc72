// Package evalrt provides an evaluator lifecycle runtime.
//
// An allocated evaluator accepts at most one root context submission
// (optionally with a task) and at most one close.  Submissions are turned into
// intents and enqueued; a single driver drains them in order, maintains the
// evaluator, context and task registries, and dispatches lifecycle events to
// registered handlers:
//
//   - allocator – creates evaluators bound to the driver
//   - driver    – drains intents, journals them and updates telemetry
//   - event     – handler registry for evaluator-allocated, context-active,
//     task-running, task-completed and evaluator-closed
//
// Typical use:
//
//	srv, _ := evalrt.New()
//	rt := srv.Runtime()
//	rt.Handle(event.TypeEvaluatorAllocated, onAllocated)
//	_ = rt.Start(ctx)
//	evaluators, _ := rt.Allocate(ctx, &model.EvaluatorRequest{Number: 2})
//	_ = evaluators[0].SubmitTask(ctx, model.NewTaskConfiguration("T1"))
//	defer rt.Shutdown(ctx)
package evalrt
