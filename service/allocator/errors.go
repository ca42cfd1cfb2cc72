package allocator

import "errors"

// ErrCapacityExceeded is returned when a request would exceed MaxEvaluators
var ErrCapacityExceeded = errors.New("allocator: capacity exceeded")
