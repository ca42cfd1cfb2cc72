package journal

import (
	"context"
	"time"

	"github.com/viant/evalrt/model"
)

// Vendor selects the journal backend
type Vendor string

const (
	VendorMemory Vendor = "memory"
	VendorSQLite Vendor = "sqlite"
)

// Entry records one drained intent
type Entry struct {
	Seq         int64            `json:"seq"`
	IntentID    string           `json:"intentId"`
	Kind        model.IntentKind `json:"kind"`
	EvaluatorID string           `json:"evaluatorId"`
	ContextID   string           `json:"contextId,omitempty"`
	TaskID      string           `json:"taskId,omitempty"`
	DrainedAt   time.Time        `json:"drainedAt"`
	Error       string           `json:"error,omitempty"`
}

// NewEntry creates an entry describing intent; dispatchErr may be nil
func NewEntry(intent *model.Intent, drainedAt time.Time, dispatchErr error) *Entry {
	ret := &Entry{
		IntentID:    intent.ID,
		Kind:        intent.Kind,
		EvaluatorID: intent.EvaluatorID,
		ContextID:   intent.ContextID(),
		TaskID:      intent.TaskID(),
		DrainedAt:   drainedAt,
	}
	if dispatchErr != nil {
		ret.Error = dispatchErr.Error()
	}
	return ret
}

// Journal is an append only log of drained intents.  Append assigns Seq.
type Journal interface {
	Append(ctx context.Context, entry *Entry) error
	// List returns entries in append order; an empty evaluatorID lists all
	List(ctx context.Context, evaluatorID string) ([]*Entry, error)
	Close() error
}
