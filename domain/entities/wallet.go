package entities

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the play-money currency used by the club betting system
const DefaultCurrency = "POINTS"

var (
	ErrWalletNotFound = errors.New("wallet not found")
)

// Wallet holds a user's betting balance. Every balance mutation is recorded
// as a Transaction in the same database transaction.
type Wallet struct {
	ID        uuid.UUID       `db:"id"`
	UserID    uuid.UUID       `db:"user_id"`
	Balance   decimal.Decimal `db:"balance"`
	Currency  string          `db:"currency"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

// Transaction is one ledger entry against a wallet. ReferenceID carries the
// bet id for bet-related entries so operations stay traceable.
type Transaction struct {
	ID           uuid.UUID       `db:"id"`
	UserID       uuid.UUID       `db:"user_id"`
	WalletID     uuid.UUID       `db:"wallet_id"`
	Type         TransactionType `db:"type"`
	Amount       decimal.Decimal `db:"amount"`
	BalanceAfter decimal.Decimal `db:"balance_after"`
	Description  string          `db:"description"`
	ReferenceID  *uuid.UUID      `db:"reference_id"`
	Status       string          `db:"status"`
	CreatedAt    time.Time       `db:"created_at"`
}

// IsCredit returns true if the entry increases the balance
func (t *Transaction) IsCredit() bool {
	return t.Amount.IsPositive()
}

// IsDebit returns true if the entry decreases the balance
func (t *Transaction) IsDebit() bool {
	return t.Amount.IsNegative()
}

// Validate checks ledger entry consistency
func (t *Transaction) Validate() error {
	if t.Amount.IsZero() {
		return errors.New("transaction amount cannot be zero")
	}
	return nil
}

// CreateTransactionInput describes a ledger entry to record
type CreateTransactionInput struct {
	UserID      uuid.UUID
	Type        TransactionType
	Amount      decimal.Decimal
	Description string
	ReferenceID *uuid.UUID
}

// WalletSummary aggregates a user's wallet activity
type WalletSummary struct {
	Balance        decimal.Decimal
	Currency       string
	TotalDeposited decimal.Decimal
	TotalWithdrawn decimal.Decimal
	TotalWagered   decimal.Decimal
	TotalWon       decimal.Decimal
	NetProfit      decimal.Decimal
}
