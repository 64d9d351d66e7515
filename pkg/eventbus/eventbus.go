// Package eventbus defines the event publication contract used to feed
// monitoring consumers after a unit of work commits.
package eventbus

import "context"

// Event is anything that can be published on the bus.
type Event interface {
	EventType() string
}

// HandlerFunc handles one published event.
type HandlerFunc func(ctx context.Context, e Event) error

// EventBus publishes domain events to interested consumers. Publishing happens
// after the enclosing unit of work has committed; a publish failure never
// unwinds a committed transaction.
type EventBus interface {
	Publish(ctx context.Context, e Event) error
	Subscribe(eventType string, h HandlerFunc)
}
