package model

import "fmt"

// Context represents an execution context pushed on an evaluator.  The owning
// evaluator and the parent are referenced by identifier; an empty ParentID
// marks a root context.
type Context struct {
	ID          string     `json:"id"`
	ParentID    string     `json:"parentId,omitempty"`
	EvaluatorID string     `json:"evaluatorId"`
	Services    []*Service `json:"services,omitempty"`
}

// IsRoot returns true if context has no parent
func (c *Context) IsRoot() bool {
	return c.ParentID == ""
}

// Clone returns a deep copy
func (c *Context) Clone() *Context {
	if c == nil {
		return nil
	}
	ret := *c
	if len(c.Services) > 0 {
		ret.Services = make([]*Service, len(c.Services))
		for i, service := range c.Services {
			clone := *service
			ret.Services[i] = &clone
		}
	}
	return &ret
}

// NewRootContext creates a root context for the supplied evaluator
func NewRootContext(evaluatorID, id string, services ...*Service) *Context {
	return &Context{ID: id, EvaluatorID: evaluatorID, Services: services}
}

// NewChildContext creates a context stacked on top of parent
func NewChildContext(parent *Context, id string) (*Context, error) {
	if parent == nil {
		return nil, fmt.Errorf("%w: parent context was nil", ErrInvalidArgument)
	}
	if id == "" || id == parent.ID {
		return nil, fmt.Errorf("%w: invalid child context id %q", ErrInvalidArgument, id)
	}
	return &Context{ID: id, ParentID: parent.ID, EvaluatorID: parent.EvaluatorID}, nil
}

// Lineage returns the chain of contexts from id up to its root, resolving
// parents with lookup.  It fails on an unknown context, a parent owned by
// another evaluator, or a cycle.
func Lineage(id string, lookup func(id string) *Context) ([]*Context, error) {
	var result []*Context
	visited := map[string]bool{}
	evaluatorID := ""
	for current := id; current != ""; {
		if visited[current] {
			return nil, fmt.Errorf("%w: context cycle detected at %v", ErrIllegalState, current)
		}
		visited[current] = true
		node := lookup(current)
		if node == nil {
			return nil, fmt.Errorf("%w: unknown context %v", ErrIllegalState, current)
		}
		if evaluatorID == "" {
			evaluatorID = node.EvaluatorID
		} else if node.EvaluatorID != evaluatorID {
			return nil, fmt.Errorf("%w: context %v belongs to evaluator %v, expected %v", ErrIllegalState, node.ID, node.EvaluatorID, evaluatorID)
		}
		result = append(result, node)
		current = node.ParentID
	}
	return result, nil
}
