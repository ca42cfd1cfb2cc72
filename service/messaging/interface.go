package messaging

import (
	"context"
	"errors"
)

// Vendor represents the name of a messaging vendor
type Vendor string

const (
	// VendorMemory is the in-process unbounded FIFO
	VendorMemory Vendor = "memory"
	// VendorFS is the afs backed durable queue
	VendorFS Vendor = "fs"
)

// ErrAlreadyProcessed is returned when a message is acknowledged twice
var ErrAlreadyProcessed = errors.New("message already processed")

// Queue represents an ordered message queue for any payload type
type Queue[T any] interface {
	// Publish appends a new message with payload to the queue
	Publish(ctx context.Context, t *T) error

	// Consume retrieves the oldest message from the queue. Implementations
	// that cannot block return a nil message when the queue is empty.
	Consume(ctx context.Context) (Message[T], error)
}

// Message represents a message retrieved from a queue
type Message[T any] interface {
	// T returns the payload of this message
	T() *T

	// Ack acknowledges successful processing of this message
	Ack() error

	// Nack indicates failure in processing this message
	Nack(err error) error
}
