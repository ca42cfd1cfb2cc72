package idgen

import "github.com/google/uuid"

// NewFunc generates a globally unique identifier. Override in tests.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new globally unique identifier
func New() string { return NewFunc() }

// Prefixed returns prefix followed by a new identifier
func Prefixed(prefix string) string {
	return prefix + NewFunc()
}
