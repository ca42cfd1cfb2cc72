package event

import (
	"time"

	"github.com/viant/evalrt/internal/clock"
	"github.com/viant/evalrt/model"
	"github.com/viant/evalrt/runtime/evaluator"
)

// Type identifies a driver event kind
type Type string

const (
	TypeEvaluatorAllocated Type = "evaluator-allocated"
	TypeContextActive      Type = "context-active"
	TypeTaskRunning        Type = "task-running"
	TypeTaskCompleted      Type = "task-completed"
	TypeEvaluatorClosed    Type = "evaluator-closed"
)

// Types lists every event type in lifecycle order
var Types = []Type{TypeEvaluatorAllocated, TypeContextActive, TypeTaskRunning, TypeTaskCompleted, TypeEvaluatorClosed}

// Context identifies the subject of an event
type Context struct {
	Type        Type   `json:"type"`
	EvaluatorID string `json:"evaluatorId"`
	ContextID   string `json:"contextId,omitempty"`
	TaskID      string `json:"taskId,omitempty"`
	IntentID    string `json:"intentId,omitempty"`
}

// Event is delivered to handlers registered for its type
type Event struct {
	Context       *Context               `json:"context"`
	CreatedAt     time.Time              `json:"createdAt"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	Evaluator     *model.EvaluatorRecord `json:"evaluator,omitempty"`
	ActiveContext *model.Context         `json:"activeContext,omitempty"`
	Task          *model.Task            `json:"task,omitempty"`
	Result        []byte                 `json:"result,omitempty"`
	// Allocated is the live evaluator; it does not survive queue mirroring
	Allocated *evaluator.Evaluator `json:"-"`
}

// Type returns the event type
func (e *Event) Type() Type {
	if e == nil || e.Context == nil {
		return ""
	}
	return e.Context.Type
}

// NewEvent creates an event for the supplied subject
func NewEvent(aContext *Context, evaluator *model.EvaluatorRecord) *Event {
	return &Event{
		Context:   aContext,
		CreatedAt: clock.Now(),
		Metadata:  make(map[string]interface{}),
		Evaluator: evaluator,
	}
}
