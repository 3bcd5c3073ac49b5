package transport

import (
	"context"
	"errors"
)

// ErrClosed is returned by operations on a closed transport.
var ErrClosed = errors.New("transport closed")

// Delivery is one message awaiting acknowledgement.
type Delivery interface {
	// ID identifies the message in logs and status.
	ID() string

	// Body is the raw payload.
	Body() []byte

	// Redelivered reports whether the broker has delivered this message before.
	Redelivered() bool

	// Ack removes the message from the queue.
	Ack() error

	// Nack rejects the message; with requeue it becomes available again.
	Nack(requeue bool) error
}

// Transport delivers lifecycle event payloads.
type Transport interface {
	// Consume starts delivery. The returned channel is closed when ctx is
	// cancelled, the transport is closed or the connection is lost.
	Consume(ctx context.Context) (<-chan Delivery, error)

	// Close releases the channel and connection. Safe to call more than once.
	Close() error
}

// Publisher sends lifecycle event payloads.
type Publisher interface {
	Publish(ctx context.Context, body []byte) error
	Close() error
}
