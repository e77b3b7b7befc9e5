package infrastructure

import (
	"context"
	"fmt"
	"sync"

	"clubbet/domain/interfaces"
	"clubbet/events"

	log "github.com/sirupsen/logrus"
)

// transactionalPublisher buffers events published during a database
// transaction. Flush forwards them to the downstream publisher after a
// successful commit; Discard drops them on rollback.
type transactionalPublisher struct {
	mu         sync.Mutex
	downstream interfaces.EventPublisher
	pending    []events.Event
}

// NewTransactionalPublisher wraps downstream with transaction-scoped
// buffering. A nil downstream publisher is allowed; events are then dropped
// on flush.
func NewTransactionalPublisher(downstream interfaces.EventPublisher) interfaces.TransactionalEventPublisher {
	return &transactionalPublisher{
		downstream: downstream,
	}
}

// Publish buffers an event until the enclosing transaction resolves
func (p *transactionalPublisher) Publish(event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pending = append(p.pending, event)
	return nil
}

// Flush forwards all buffered events downstream. Events that fail to
// publish are logged and skipped so one bad event does not block the rest.
func (p *transactionalPublisher) Flush(ctx context.Context) error {
	p.mu.Lock()
	pending := p.pending
	p.pending = nil
	p.mu.Unlock()

	if p.downstream == nil || len(pending) == 0 {
		return nil
	}

	var failed int
	for _, event := range pending {
		if err := p.downstream.Publish(event); err != nil {
			failed++
			log.WithFields(log.Fields{
				"eventType": event.Type(),
				"eventKey":  event.Key(),
				"error":     err,
			}).Warn("Failed to publish buffered event")
		}
	}

	if failed > 0 {
		return fmt.Errorf("failed to publish %d of %d buffered events", failed, len(pending))
	}
	return nil
}

// Discard drops all buffered events
func (p *transactionalPublisher) Discard() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.pending) > 0 {
		log.WithField("count", len(p.pending)).Debug("Discarding buffered events after rollback")
	}
	p.pending = nil
}
