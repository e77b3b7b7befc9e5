package repository

import (
	"context"
	"fmt"

	"clubbet/database"
	"clubbet/domain/interfaces"
	"clubbet/infrastructure"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db         *database.DB
	tx         pgx.Tx
	ctx        context.Context
	publisher  interfaces.TransactionalEventPublisher
	betRepo    interfaces.BetRepository
	walletRepo interfaces.WalletRepository
	matchRepo  interfaces.MatchRepository
}

type unitOfWorkFactory struct {
	db        *database.DB
	publisher interfaces.EventPublisher
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory. Events published
// inside a unit of work are buffered and only forwarded to publisher after
// the transaction commits.
func NewUnitOfWorkFactory(db *database.DB, publisher interfaces.EventPublisher) interfaces.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:        db,
		publisher: publisher,
	}
}

func (f *unitOfWorkFactory) Create() interfaces.UnitOfWork {
	return &unitOfWork{
		db:        f.db,
		publisher: infrastructure.NewTransactionalPublisher(f.publisher),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Create repositories with the transaction
	u.betRepo = newBetRepositoryWithTx(tx)
	u.walletRepo = newWalletRepositoryWithTx(tx)
	u.matchRepo = newMatchRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction and flushes pending events
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	// Flush pending events after successful commit. Delivery failures do not
	// fail the already-committed operation.
	if u.publisher != nil {
		if err := u.publisher.Flush(u.ctx); err != nil {
			log.WithError(err).Warn("Failed to flush events after commit")
		}
	}

	return nil
}

// Rollback rolls back the transaction and discards pending events
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	if u.publisher != nil {
		u.publisher.Discard()
	}

	return nil
}

// BetRepository returns the bet repository for this unit of work
func (u *unitOfWork) BetRepository() interfaces.BetRepository {
	if u.betRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.betRepo
}

// WalletRepository returns the wallet repository for this unit of work
func (u *unitOfWork) WalletRepository() interfaces.WalletRepository {
	if u.walletRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.walletRepo
}

// MatchRepository returns the match repository for this unit of work
func (u *unitOfWork) MatchRepository() interfaces.MatchRepository {
	if u.matchRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.matchRepo
}

// EventBus returns the transaction-scoped event publisher
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	if u.publisher == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.publisher
}
