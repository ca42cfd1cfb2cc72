package model

import "context"

// Task represents a unit of work bound to exactly one context
type Task struct {
	ID          string `json:"id"`
	ContextID   string `json:"contextId"`
	EvaluatorID string `json:"evaluatorId"`
}

// NewTask creates a task bound to the supplied context
func NewTask(id string, aContext *Context) *Task {
	return &Task{ID: id, ContextID: aContext.ID, EvaluatorID: aContext.EvaluatorID}
}

// Clone returns a copy
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	ret := *t
	return &ret
}

// ResultProvider supplies the return value of a task once it completes.  The
// evaluator passes it through to the driver without inspecting it.
type ResultProvider interface {
	ReturnValue(ctx context.Context, task *Task) ([]byte, error)
}

// ResultFunc adapts a function to ResultProvider
type ResultFunc func(ctx context.Context, task *Task) ([]byte, error)

// ReturnValue calls f
func (f ResultFunc) ReturnValue(ctx context.Context, task *Task) ([]byte, error) {
	return f(ctx, task)
}
