package event

import (
	"context"
	"log/slog"
	"time"
)

// Listener drains a publisher on its own goroutine
type Listener struct {
	publisher    *Publisher
	handler      func(*Event)
	logger       *slog.Logger
	pollInterval time.Duration
	cancel       context.CancelFunc
	done         chan struct{}
}

// NewListener creates a listener calling handler for every mirrored event
func NewListener(publisher *Publisher, handler func(*Event), logger *slog.Logger, pollInterval time.Duration) *Listener {
	return &Listener{
		publisher:    publisher,
		handler:      handler,
		logger:       logger,
		pollInterval: pollInterval,
	}
}

// Start launches the consuming goroutine
func (l *Listener) Start(ctx context.Context) {
	ctx, l.cancel = context.WithCancel(ctx)
	l.done = make(chan struct{})
	go func() {
		defer close(l.done)
		for {
			event, err := l.publisher.Consume(ctx)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				l.logger.Error("failed to consume event", "error", err)
			}
			if event == nil {
				select {
				case <-ctx.Done():
					return
				case <-time.After(l.pollInterval):
				}
				continue
			}
			l.handler(event)
		}
	}()
}

// Stop cancels the goroutine and waits for it to exit
func (l *Listener) Stop() {
	if l.cancel == nil {
		return
	}
	l.cancel()
	<-l.done
}
