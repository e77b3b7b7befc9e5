package interfaces

import (
	"context"

	"clubbet/domain/entities"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BetRepository defines the interface for bet and bet-leg data access
type BetRepository interface {
	// Create inserts a bet and all of its legs
	Create(ctx context.Context, bet *entities.Bet) error

	// GetByID retrieves a bet with its legs, or nil if absent
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Bet, error)

	// GetByUser returns a user's bets with legs, newest first
	GetByUser(ctx context.Context, userID uuid.UUID, filters entities.BetFilters, limit, offset int) ([]*entities.Bet, error)

	// GetByMatch returns every bet that has a leg on the given match
	GetByMatch(ctx context.Context, matchID uuid.UUID) ([]*entities.Bet, error)

	// Update persists a bet's settlement fields (status, settled_at, payout)
	Update(ctx context.Context, bet *entities.Bet) error

	// GetLegByID retrieves a single leg, or nil if absent
	GetLegByID(ctx context.Context, id uuid.UUID) (*entities.BetLeg, error)

	// UpdateLeg persists a leg's settlement fields
	UpdateLeg(ctx context.Context, leg *entities.BetLeg) error

	// GetStats returns aggregate betting statistics for a user
	GetStats(ctx context.Context, userID uuid.UUID) (*entities.UserBetStats, error)
}

// WalletRepository defines the interface for wallet and ledger data access
type WalletRepository interface {
	// GetByUserID retrieves a user's wallet, or nil if absent
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error)

	// Create creates a new wallet
	Create(ctx context.Context, wallet *entities.Wallet) error

	// UpdateBalance updates a wallet's balance
	UpdateBalance(ctx context.Context, walletID uuid.UUID, newBalance decimal.Decimal) error

	// RecordTransaction appends a ledger entry
	RecordTransaction(ctx context.Context, tx *entities.Transaction) error

	// GetTransactionsByUser returns a user's ledger entries, newest first
	GetTransactionsByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Transaction, error)

	// GetTransactionsByType returns a user's ledger entries of one type
	GetTransactionsByType(ctx context.Context, userID uuid.UUID, txType entities.TransactionType, limit int) ([]*entities.Transaction, error)
}

// TeamNameResolver resolves display names for a match. Resolution is
// best-effort; callers fall back to placeholder names on failure.
type TeamNameResolver interface {
	// Resolve returns match display info, or nil if the match is unknown
	Resolve(ctx context.Context, matchID uuid.UUID) (*entities.MatchInfo, error)
}

// MatchRepository provides read access to the club match schedule
type MatchRepository interface {
	TeamNameResolver
}
