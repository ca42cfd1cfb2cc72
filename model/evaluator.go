package model

import "time"

// EvaluatorRecord is the driver's view of an allocated evaluator
type EvaluatorRecord struct {
	ID            string     `json:"id"`
	Descriptor    Descriptor `json:"descriptor"`
	State         State      `json:"state"`
	RootContextID string     `json:"rootContextId,omitempty"`
	TaskID        string     `json:"taskId,omitempty"`
	AllocatedAt   time.Time  `json:"allocatedAt"`
	ClosedAt      *time.Time `json:"closedAt,omitempty"`
}

// Clone returns a copy
func (r *EvaluatorRecord) Clone() *EvaluatorRecord {
	if r == nil {
		return nil
	}
	ret := *r
	if r.ClosedAt != nil {
		closedAt := *r.ClosedAt
		ret.ClosedAt = &closedAt
	}
	return &ret
}
