package bus

import "time"

// EventBus is a synchronous in-process pub/sub bus.
//
// Handlers subscribe to an event type, optionally inside a topic; the
// default topic is "". Publishing calls the matching handlers in the
// publisher's goroutine, in subscription order, and returns their errors
// joined. Metrics are counted on every delivery; observers additionally
// get per-publish callbacks.
// All methods are safe for concurrent use, so one bus may be shared by
// several roots.
type EventBus interface {
	// Publish delivers the event to the subscribers of event.Type() in the default topic.
	Publish(event Event) error
	// PublishToTopic delivers the event within topic.
	PublishToTopic(topic string, event Event) error

	// Subscribe registers a handler for eventType in the default topic.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// SubscribeTopic registers a handler for eventType within topic.
	SubscribeTopic(topic, eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels sub. A nil sub is ignored.
	Unsubscribe(sub Subscription) error

	AddObserver(obs EventBusObserver)
	RemoveObserver(obs EventBusObserver)
	// GetMetrics returns a snapshot of the accumulated metrics.
	GetMetrics() EventBusMetrics
}

// Event is an immutable message.
type Event interface {
	Type() string
	Source() string
	Timestamp() time.Time
	Data() any
	Metadata() map[string]any
}

// EventHandler is invoked once per delivered event.
type EventHandler func(event Event) error

// Subscription is a handler bound to an event type and topic.
type Subscription interface {
	ID() string
	EventType() string
	Topic() string
	IsActive() bool
	// Cancel removes the handler from the bus. Repeated calls are no-ops.
	Cancel() error
}

// EventBusObserver is told about every publish, whether or not any handler
// matched. Observers must be comparable and should return quickly.
type EventBusObserver interface {
	OnPublish(topic, eventType string, event Event)
	OnDelivered(topic, eventType string, handlers int, err error, durationMicros int64)
}

type EventBusMetrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	SubscribersActive uint64
	Topics            uint64
}
