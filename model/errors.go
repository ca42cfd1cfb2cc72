package model

import "errors"

var (
	// ErrIllegalState is returned when an operation is not valid in the
	// current lifecycle state, e.g. a second root context submission or
	// closing an evaluator twice.
	ErrIllegalState = errors.New("illegal state")

	// ErrUnsupportedOperation is returned by operations that can never
	// succeed after allocation.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrInvalidArgument indicates malformed input such as a missing
	// identifier or a wrong launcher argument count.
	ErrInvalidArgument = errors.New("invalid argument")
)
