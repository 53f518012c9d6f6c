// Package messagequeue defines the message queue port (interface).
package messagequeue

import "context"

// Handler processes a message received from the queue.
type Handler func(ctx context.Context, subject string, data []byte) error

// Publisher sends messages. The planner only needs this half.
type Publisher interface {
	// Publish sends a message to the given subject.
	Publish(ctx context.Context, subject string, data []byte) error
}

// Subscriber consumes messages. Only messages published after Subscribe
// are delivered.
type Subscriber interface {
	// Subscribe registers a handler for messages on the given subject.
	// The returned function cancels the subscription.
	Subscribe(ctx context.Context, subject string, handler Handler) (cancel func(), err error)
}

// Queue is the port interface for publishing and subscribing to messages.
type Queue interface {
	Publisher
	Subscriber

	// Close shuts down the queue connection immediately.
	Close() error

	// IsConnected reports whether the queue is currently connected.
	IsConnected() bool
}

// Subject constants for NATS subjects used by VoyageMind.
const (
	SubjectPlanCompleted = "plans.completed"
	SubjectPlanFailed    = "plans.failed"
)
