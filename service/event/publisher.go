package event

import (
	"context"

	"github.com/viant/evalrt/service/messaging"
)

// Publisher mirrors events onto a queue for asynchronous observers
type Publisher struct {
	queue messaging.Queue[Event]
}

// NewPublisher creates a publisher backed by queue
func NewPublisher(queue messaging.Queue[Event]) *Publisher {
	return &Publisher{queue: queue}
}

// Publish enqueues event
func (p *Publisher) Publish(ctx context.Context, event *Event) error {
	return p.queue.Publish(ctx, event)
}

// Consume returns the next event, or nil when a non blocking queue is empty
func (p *Publisher) Consume(ctx context.Context) (*Event, error) {
	msg, err := p.queue.Consume(ctx)
	if err != nil || msg == nil {
		return nil, err
	}
	if err = msg.Ack(); err != nil {
		return nil, err
	}
	return msg.T(), nil
}
