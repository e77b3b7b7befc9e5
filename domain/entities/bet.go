package entities

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BetStatus represents the lifecycle state of a bet or a bet leg
type BetStatus string

const (
	BetStatusPending BetStatus = "PENDING"
	BetStatusWon     BetStatus = "WON"
	BetStatusLost    BetStatus = "LOST"
	BetStatusVoid    BetStatus = "VOID"
)

// IsTerminal returns true if the status is a final settlement state
func (s BetStatus) IsTerminal() bool {
	return s == BetStatusWon || s == BetStatusLost || s == BetStatusVoid
}

// String returns the string representation of the status
func (s BetStatus) String() string {
	return string(s)
}

// BetStructure represents how the legs of a bet combine
type BetStructure string

const (
	BetStructureSingle      BetStructure = "SINGLE"
	BetStructureAccumulator BetStructure = "ACCUMULATOR"
	BetStructureSystem      BetStructure = "SYSTEM"
)

// Sentinel errors for bet lifecycle preconditions
var (
	ErrBetNotFound         = errors.New("bet not found")
	ErrBetAlreadySettled   = errors.New("bet is already settled")
	ErrBetLegNotFound      = errors.New("bet leg not found")
	ErrBetLegSettled       = errors.New("bet leg is already settled")
	ErrInvalidBetStatus    = errors.New("invalid settlement status")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// Bet represents a wager placed by a user. A single bet has exactly one leg;
// an accumulator combines 2-20 legs whose odds multiply.
type Bet struct {
	ID              uuid.UUID       `db:"id"`
	UserID          uuid.UUID       `db:"user_id"`
	Structure       BetStructure    `db:"structure"`
	Stake           decimal.Decimal `db:"stake"`
	Odds            decimal.Decimal `db:"odds"`
	PotentialReturn decimal.Decimal `db:"potential_return"`
	Status          BetStatus       `db:"status"`
	PlacedAt        time.Time       `db:"placed_at"`
	SettledAt       *time.Time      `db:"settled_at"`
	Payout          decimal.Decimal `db:"payout"`
	SystemType      string          `db:"system_type"`
	Legs            []*BetLeg
}

// BetLeg is one selection within a bet. Legs are created with their bet and
// never reassigned. HomeTeam/AwayTeam/MatchDate are a denormalized display
// cache filled at placement time.
type BetLeg struct {
	ID                 uuid.UUID       `db:"id"`
	BetID              uuid.UUID       `db:"bet_id"`
	MatchID            uuid.UUID       `db:"match_id"`
	BetType            string          `db:"bet_type"`
	Selection          string          `db:"selection"`
	Odds               decimal.Decimal `db:"odds"`
	Parameter          string          `db:"parameter"`
	Status             BetStatus       `db:"status"`
	ResultDeterminedAt *time.Time      `db:"result_determined_at"`
	HomeTeam           string          `db:"home_team"`
	AwayTeam           string          `db:"away_team"`
	MatchDate          *time.Time      `db:"match_date"`
}

// IsSettled returns true once the bet has left the PENDING state
func (b *Bet) IsSettled() bool {
	return b.Status.IsTerminal()
}

// AllLegsSettled returns true when no leg remains PENDING
func (b *Bet) AllLegsSettled() bool {
	for _, leg := range b.Legs {
		if leg.Status == BetStatusPending {
			return false
		}
	}
	return true
}

// HasLegWithStatus returns true if any leg has the given status
func (b *Bet) HasLegWithStatus(status BetStatus) bool {
	for _, leg := range b.Legs {
		if leg.Status == status {
			return true
		}
	}
	return false
}

// NetProfit returns payout minus stake for a settled bet
func (b *Bet) NetProfit() decimal.Decimal {
	return b.Payout.Sub(b.Stake)
}

// CreateBetInput is the request to place a new bet
type CreateBetInput struct {
	UserID     uuid.UUID
	Structure  BetStructure
	Stake      decimal.Decimal
	SystemType string
	Legs       []CreateBetLegInput
}

// CreateBetLegInput is one selection within a bet placement request
type CreateBetLegInput struct {
	MatchID   uuid.UUID
	BetType   string
	Selection string
	Odds      decimal.Decimal
	Parameter string
}

// BetValidation is the accumulated result of validating a bet request.
// Warnings never block creation.
type BetValidation struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// BetFilters narrows a bet history query. Nil/empty fields are ignored.
type BetFilters struct {
	Statuses   []BetStatus
	Structures []BetStructure
	MinStake   *decimal.Decimal
	MaxStake   *decimal.Decimal
	DateFrom   *time.Time
	DateTo     *time.Time
}
