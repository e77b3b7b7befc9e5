package interfaces

import "context"

// UnitOfWork defines the interface for transactional repository operations.
// All repositories returned by a unit of work share one database transaction,
// so a bet insert and its wallet debit commit or roll back together.
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes pending events
	Commit() error

	// Rollback rolls back the transaction and discards pending events
	Rollback() error

	// Repository getters
	BetRepository() BetRepository
	WalletRepository() WalletRepository
	MatchRepository() MatchRepository

	// EventBus returns the transaction-scoped event publisher
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
