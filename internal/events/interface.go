package events

import "context"

// EventPublisher defines the interface for sending and receiving events.
// This interface allows for loose coupling and easier testing by depending
// on behavior rather than concrete implementation.
type EventPublisher interface {
	// Connect establishes a connection to the transport
	Connect(ctx context.Context) error

	// SendEvent publishes an event, possibly asynchronously
	SendEvent(event Event) error

	// Listen starts listening for events from other publishers
	Listen(ctx context.Context) (<-chan Event, error)

	// Subscribe narrows Listen to one project; empty means all
	Subscribe(projectID string) error

	// Close releases the connection and stops all goroutines
	Close() error
}

// Compile-time verification that both transports implement EventPublisher
var (
	_ EventPublisher = (*Client)(nil)
	_ EventPublisher = (*RedisPublisher)(nil)
)
