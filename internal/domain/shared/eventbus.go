package shared

import "context"

// EventHandler handles domain events
type EventHandler interface {
	// Handle processes a domain event
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes returns the event types this handler is interested in.
	// An empty slice means the handler receives all events.
	EventTypes() []string
}

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventSubscriber subscribes to domain events
type EventSubscriber interface {
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
}

// EventBus combines publisher and subscriber capabilities
type EventBus interface {
	EventPublisher
	EventSubscriber
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// EventRaiser is an aggregate that collects domain events until they are published
type EventRaiser interface {
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// PublishRaised publishes and clears the pending events of the aggregates.
// Events are cleared even when publishing fails; a nil publisher drops them.
func PublishRaised(ctx context.Context, publisher EventPublisher, raisers ...EventRaiser) error {
	var events []DomainEvent
	for _, r := range raisers {
		events = append(events, r.GetDomainEvents()...)
		r.ClearDomainEvents()
	}
	if publisher == nil || len(events) == 0 {
		return nil
	}
	return publisher.Publish(ctx, events...)
}
