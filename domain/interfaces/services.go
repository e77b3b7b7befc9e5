package interfaces

import (
	"context"

	"clubbet/domain/entities"
	"clubbet/events"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BetService manages the bet lifecycle: validation, placement, retrieval,
// settlement and statistics.
type BetService interface {
	// ValidateBet checks a bet request against stake, structure and odds
	// rules. Errors accumulate; warnings never block creation.
	ValidateBet(input entities.CreateBetInput, userBalance decimal.Decimal) *entities.BetValidation

	// CreateBet places a bet: inserts the bet with its legs and debits the
	// stake from the user's wallet within the caller's transaction.
	CreateBet(ctx context.Context, input entities.CreateBetInput) (*entities.Bet, error)

	// GetBetByID retrieves a bet with its legs, or nil if absent
	GetBetByID(ctx context.Context, betID uuid.UUID) (*entities.Bet, error)

	// GetUserBets returns a user's bet history, filtered and paginated
	GetUserBets(ctx context.Context, userID uuid.UUID, filters entities.BetFilters, limit, offset int) ([]*entities.Bet, error)

	// GetActiveBets returns a user's PENDING bets
	GetActiveBets(ctx context.Context, userID uuid.UUID) ([]*entities.Bet, error)

	// GetBetsForMatch returns every bet with a leg on the given match
	GetBetsForMatch(ctx context.Context, matchID uuid.UUID) ([]*entities.Bet, error)

	// SettleBet resolves a PENDING bet, crediting winnings on WON and
	// refunding the stake on VOID
	SettleBet(ctx context.Context, betID uuid.UUID, status entities.BetStatus) (*entities.Bet, error)

	// SettleBetLeg resolves one leg independently of its parent bet
	SettleBetLeg(ctx context.Context, legID uuid.UUID, status entities.BetStatus) (*entities.BetLeg, error)

	// CheckAndSettleAccumulator resolves an accumulator once every leg has
	// settled. Returns (nil, nil) while any leg is still pending.
	CheckAndSettleAccumulator(ctx context.Context, betID uuid.UUID) (*entities.Bet, error)

	// CancelBet voids a PENDING bet and refunds the stake
	CancelBet(ctx context.Context, betID uuid.UUID) (*entities.Bet, error)

	// GetUserBetStats returns aggregate betting statistics for a user
	GetUserBetStats(ctx context.Context, userID uuid.UUID) (*entities.UserBetStats, error)
}

// WalletService manages wallet balances through the transaction ledger
type WalletService interface {
	// GetOrCreateWallet returns the user's wallet, creating it with the
	// configured starting balance on first use
	GetOrCreateWallet(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error)

	// Balance returns the user's current balance
	Balance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)

	// HasSufficientBalance reports whether the balance covers the amount
	HasSufficientBalance(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (bool, error)

	// DeductBetStake debits the stake, tagged with the bet id
	DeductBetStake(ctx context.Context, userID uuid.UUID, stake decimal.Decimal, betID uuid.UUID) (*entities.Transaction, error)

	// CreditBetWinnings credits a payout, tagged with the bet id
	CreditBetWinnings(ctx context.Context, userID uuid.UUID, payout decimal.Decimal, betID uuid.UUID) (*entities.Transaction, error)

	// RefundVoidBet refunds a stake, tagged with the bet id
	RefundVoidBet(ctx context.Context, userID uuid.UUID, stake decimal.Decimal, betID uuid.UUID) (*entities.Transaction, error)

	// AddFunds credits the wallet outside the bet lifecycle
	AddFunds(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description string) (*entities.Transaction, error)

	// WithdrawFunds debits the wallet outside the bet lifecycle
	WithdrawFunds(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description string) (*entities.Transaction, error)

	// TransactionHistory returns the user's ledger, newest first
	TransactionHistory(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Transaction, error)

	// TransactionsByType returns the user's ledger entries of one type,
	// newest first
	TransactionsByType(ctx context.Context, userID uuid.UUID, txType entities.TransactionType, limit int) ([]*entities.Transaction, error)

	// WalletSummary aggregates the user's wallet activity
	WalletSummary(ctx context.Context, userID uuid.UUID) (*entities.WalletSummary, error)
}

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher buffers events until the owning database
// transaction commits, then flushes them; rollback discards them.
type TransactionalEventPublisher interface {
	EventPublisher

	// Flush publishes all pending events; called after commit
	Flush(ctx context.Context) error

	// Discard drops all pending events; called on rollback
	Discard()
}
