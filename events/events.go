package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kafka topics for bet lifecycle events
const (
	TopicBetPlaced  = "bet_placed"
	TopicBetSettled = "bet_settled"
)

// Event is the base interface for all domain events
type Event interface {
	// Type returns the event type, which doubles as the topic name
	Type() string
	// Key returns the partition key for the event
	Key() string
}

// BetPlacedEvent is published after a bet and its wallet debit commit
type BetPlacedEvent struct {
	BetID           uuid.UUID       `json:"bet_id"`
	UserID          uuid.UUID       `json:"user_id"`
	Structure       string          `json:"structure"`
	Stake           decimal.Decimal `json:"stake"`
	Odds            decimal.Decimal `json:"odds"`
	PotentialReturn decimal.Decimal `json:"potential_return"`
	LegCount        int             `json:"leg_count"`
	PlacedAt        time.Time       `json:"placed_at"`
}

func (e BetPlacedEvent) Type() string {
	return TopicBetPlaced
}

func (e BetPlacedEvent) Key() string {
	return e.BetID.String()
}

// BetSettledEvent is published after a bet settlement commits
type BetSettledEvent struct {
	BetID     uuid.UUID       `json:"bet_id"`
	UserID    uuid.UUID       `json:"user_id"`
	Status    string          `json:"status"`
	Payout    decimal.Decimal `json:"payout"`
	SettledAt time.Time       `json:"settled_at"`
}

func (e BetSettledEvent) Type() string {
	return TopicBetSettled
}

func (e BetSettledEvent) Key() string {
	return e.BetID.String()
}
