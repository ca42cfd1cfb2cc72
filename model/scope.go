package model

import "net/url"

// ScopedID identifies a context or task within its evaluator.  Context and
// task identifiers are only unique per evaluator, so registries key them by
// both parts.
type ScopedID struct {
	EvaluatorID string
	ID          string
}

// String returns evaluatorID/id with both parts path escaped
func (s ScopedID) String() string {
	return url.PathEscape(s.EvaluatorID) + "/" + url.PathEscape(s.ID)
}

// NewScopedID creates an evaluator scoped identifier
func NewScopedID(evaluatorID, id string) ScopedID {
	return ScopedID{EvaluatorID: evaluatorID, ID: id}
}

// Key returns the context identifier scoped by its evaluator
func (c *Context) Key() ScopedID {
	return ScopedID{EvaluatorID: c.EvaluatorID, ID: c.ID}
}

// Key returns the task identifier scoped by its evaluator
func (t *Task) Key() ScopedID {
	return ScopedID{EvaluatorID: t.EvaluatorID, ID: t.ID}
}
