package infrastructure

import (
	"clubbet/domain/interfaces"
	"clubbet/events"
)

// NoopPublisher drops all events. Used when no Kafka brokers are configured.
type NoopPublisher struct{}

// NewNoopPublisher creates a publisher that discards events
func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

func (p *NoopPublisher) Publish(event events.Event) error {
	return nil
}

var _ interfaces.EventPublisher = (*NoopPublisher)(nil)
