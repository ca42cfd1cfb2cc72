package evaluator

import (
	"fmt"

	"github.com/viant/evalrt/model"
)

// Operation is a state changing evaluator operation
type Operation string

const (
	// OperationSubmit covers every root context submission path
	OperationSubmit Operation = "submit"
	// OperationClose releases the evaluator
	OperationClose Operation = "close"
)

// Transition returns the state reached by applying op to from, or an error
// wrapping model.ErrIllegalState when op is not allowed in from.
func Transition(from model.State, op Operation) (model.State, error) {
	switch op {
	case OperationSubmit:
		switch from {
		case model.StateAllocated:
			return model.StateBound, nil
		case model.StateBound:
			return from, fmt.Errorf("%w: root context already created", model.ErrIllegalState)
		case model.StateClosed:
			return from, fmt.Errorf("%w: evaluator closed", model.ErrIllegalState)
		}
	case OperationClose:
		switch from {
		case model.StateAllocated, model.StateBound:
			return model.StateClosed, nil
		case model.StateClosed:
			return from, fmt.Errorf("%w: evaluator already closed", model.ErrIllegalState)
		}
	default:
		return from, fmt.Errorf("%w: unknown operation %q", model.ErrUnsupportedOperation, op)
	}
	return from, fmt.Errorf("%w: unknown state %q", model.ErrIllegalState, from)
}
