package model

// State represents an allocated evaluator lifecycle state
type State string

const (
	// StateAllocated evaluator has no root context yet
	StateAllocated State = "allocated"
	// StateBound evaluator has a root context, optionally with a task
	StateBound State = "bound"
	// StateClosed is terminal
	StateClosed State = "closed"
)

// IsTerminal returns true for closed state
func (s State) IsTerminal() bool {
	return s == StateClosed
}
