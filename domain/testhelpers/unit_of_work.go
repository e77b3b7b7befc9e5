package testhelpers

import (
	"context"

	"clubbet/domain/interfaces"
	"clubbet/events"
)

// FakeUnitOfWork is a unit of work whose repositories are supplied by the
// test. Begin, Commit and Rollback only record that they were called.
type FakeUnitOfWork struct {
	BetRepo    interfaces.BetRepository
	WalletRepo interfaces.WalletRepository
	MatchRepo  interfaces.MatchRepository
	Publisher  interfaces.EventPublisher

	Began      bool
	Committed  bool
	RolledBack bool
}

func (u *FakeUnitOfWork) Begin(ctx context.Context) error {
	u.Began = true
	return nil
}

func (u *FakeUnitOfWork) Commit() error {
	u.Committed = true
	return nil
}

func (u *FakeUnitOfWork) Rollback() error {
	if !u.Committed {
		u.RolledBack = true
	}
	return nil
}

func (u *FakeUnitOfWork) BetRepository() interfaces.BetRepository {
	return u.BetRepo
}

func (u *FakeUnitOfWork) WalletRepository() interfaces.WalletRepository {
	return u.WalletRepo
}

func (u *FakeUnitOfWork) MatchRepository() interfaces.MatchRepository {
	return u.MatchRepo
}

func (u *FakeUnitOfWork) EventBus() interfaces.EventPublisher {
	if u.Publisher != nil {
		return u.Publisher
	}
	return noopPublisher{}
}

// FakeUnitOfWorkFactory hands out the same fake unit of work on every Create
type FakeUnitOfWorkFactory struct {
	UoW *FakeUnitOfWork
}

func (f *FakeUnitOfWorkFactory) Create() interfaces.UnitOfWork {
	return f.UoW
}

type noopPublisher struct{}

func (noopPublisher) Publish(event events.Event) error { return nil }
