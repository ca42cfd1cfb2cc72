package model

import (
	"fmt"
	"time"

	"github.com/viant/evalrt/internal/clock"
	"github.com/viant/evalrt/internal/idgen"
)

// IntentKind tags an Intent variant
type IntentKind string

const (
	IntentCreateContext        IntentKind = "CreateContext"
	IntentCreateContextAndTask IntentKind = "CreateContextAndTask"
	IntentCloseEvaluator       IntentKind = "CloseEvaluator"
)

// Intent is a queued record describing one evaluator transition the driver
// has to realise.  Intents are built only through the New* constructors and
// must not be modified afterwards; the queue order is the only guarantee
// offered to the driver.
type Intent struct {
	ID          string     `json:"id"`
	Kind        IntentKind `json:"kind"`
	EvaluatorID string     `json:"evaluatorId"`
	Context     *Context   `json:"context,omitempty"`
	Task        *Task      `json:"task,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`

	// Result is an opaque capability; it does not survive serialisation, in
	// which case the driver falls back to its own provider.
	Result ResultProvider `json:"-"`
}

// NewCreateContext returns an intent creating the supplied context
func NewCreateContext(aContext *Context) *Intent {
	return &Intent{
		ID:          idgen.New(),
		Kind:        IntentCreateContext,
		EvaluatorID: aContext.EvaluatorID,
		Context:     aContext.Clone(),
		CreatedAt:   clock.Now(),
	}
}

// NewCreateContextAndTask returns an intent creating a context and starting a task on it
func NewCreateContextAndTask(aContext *Context, task *Task, result ResultProvider) *Intent {
	return &Intent{
		ID:          idgen.New(),
		Kind:        IntentCreateContextAndTask,
		EvaluatorID: aContext.EvaluatorID,
		Context:     aContext.Clone(),
		Task:        task.Clone(),
		CreatedAt:   clock.Now(),
		Result:      result,
	}
}

// NewCloseEvaluator returns an intent releasing the evaluator
func NewCloseEvaluator(evaluatorID string) *Intent {
	return &Intent{
		ID:          idgen.New(),
		Kind:        IntentCloseEvaluator,
		EvaluatorID: evaluatorID,
		CreatedAt:   clock.Now(),
	}
}

// ContextID returns the created context id or empty string
func (i *Intent) ContextID() string {
	if i.Context == nil {
		return ""
	}
	return i.Context.ID
}

// TaskID returns the started task id or empty string
func (i *Intent) TaskID() string {
	if i.Task == nil {
		return ""
	}
	return i.Task.ID
}

// Validate checks that the intent is a well formed variant
func (i *Intent) Validate() error {
	if i == nil {
		return fmt.Errorf("%w: intent was nil", ErrInvalidArgument)
	}
	if i.EvaluatorID == "" {
		return fmt.Errorf("%w: %v intent evaluator id was empty", ErrInvalidArgument, i.Kind)
	}
	switch i.Kind {
	case IntentCreateContext:
		if i.Task != nil {
			return fmt.Errorf("%w: %v intent must not carry a task", ErrInvalidArgument, i.Kind)
		}
		return i.validateContext()
	case IntentCreateContextAndTask:
		if err := i.validateContext(); err != nil {
			return err
		}
		if i.Task == nil || i.Task.ID == "" {
			return fmt.Errorf("%w: %v intent task was empty", ErrInvalidArgument, i.Kind)
		}
		if i.Task.ContextID != i.Context.ID || i.Task.EvaluatorID != i.EvaluatorID {
			return fmt.Errorf("%w: task %v is not bound to context %v", ErrInvalidArgument, i.Task.ID, i.Context.ID)
		}
		return nil
	case IntentCloseEvaluator:
		if i.Context != nil || i.Task != nil {
			return fmt.Errorf("%w: %v intent must not carry context or task", ErrInvalidArgument, i.Kind)
		}
		return nil
	}
	return fmt.Errorf("%w: unsupported intent kind: %q", ErrInvalidArgument, i.Kind)
}

func (i *Intent) validateContext() error {
	if i.Context == nil || i.Context.ID == "" {
		return fmt.Errorf("%w: %v intent context was empty", ErrInvalidArgument, i.Kind)
	}
	if i.Context.EvaluatorID != i.EvaluatorID {
		return fmt.Errorf("%w: context %v belongs to evaluator %v, expected %v", ErrInvalidArgument, i.Context.ID, i.Context.EvaluatorID, i.EvaluatorID)
	}
	return nil
}
