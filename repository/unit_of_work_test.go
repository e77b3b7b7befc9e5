package repository

import (
	"context"
	"testing"

	"clubbet/config"
	"clubbet/domain/entities"
	"clubbet/domain/services"
	"clubbet/domain/testhelpers"
	"clubbet/events"
	"clubbet/repository/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupUoWTest(t *testing.T) (*testutil.TestDatabase, *testhelpers.CapturingEventPublisher, func() *entities.Bet, uuid.UUID) {
	config.SetTestConfig(config.NewTestConfig())
	t.Cleanup(config.ResetConfig)

	testDB := testutil.SetupTestDatabase(t)
	publisher := new(testhelpers.CapturingEventPublisher)
	userID := uuid.New()

	factory := NewUnitOfWorkFactory(testDB.DB, publisher)

	// placeBet runs the full placement flow in one unit of work
	placeBet := func() *entities.Bet {
		ctx := context.Background()
		uow := factory.Create()
		require.NoError(t, uow.Begin(ctx))
		defer uow.Rollback()

		walletSvc := services.NewWalletService(uow.WalletRepository())
		betSvc := services.NewBetService(uow.BetRepository(), walletSvc, uow.MatchRepository(), uow.EventBus())

		// Seed the wallet inside the same transaction
		_, err := walletSvc.GetOrCreateWallet(ctx, userID)
		require.NoError(t, err)

		bet, err := betSvc.CreateBet(ctx, entities.CreateBetInput{
			UserID:    userID,
			Structure: entities.BetStructureSingle,
			Stake:     decimal.NewFromInt(100),
			Legs: []entities.CreateBetLegInput{
				{
					MatchID:   uuid.New(),
					BetType:   "MATCH_WINNER",
					Selection: "HOME",
					Odds:      decimal.NewFromFloat(2.5),
				},
			},
		})
		require.NoError(t, err)
		require.NoError(t, uow.Commit())
		return bet
	}

	return testDB, publisher, placeBet, userID
}

func TestUnitOfWork_PlaceBetDebitsWallet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB, publisher, placeBet, userID := setupUoWTest(t)
	ctx := context.Background()

	bet := placeBet()

	// Wallet started at 1000, the 100 stake is gone
	walletRepo := NewWalletRepository(testDB.DB)
	wallet, err := walletRepo.GetByUserID(ctx, userID)
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(decimal.NewFromInt(900)), "got %s", wallet.Balance)

	// The debit is on the ledger, tagged with the bet
	txs, err := walletRepo.GetTransactionsByType(ctx, userID, entities.TransactionTypeBetPlaced, 0)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.NotNil(t, txs[0].ReferenceID)
	assert.Equal(t, bet.ID, *txs[0].ReferenceID)

	// Placement event flushed after commit
	require.Len(t, publisher.Events, 1)
	assert.Equal(t, events.TopicBetPlaced, publisher.Events[0].Type())

	// Unknown matches fall back to placeholder team names
	betRepo := NewBetRepository(testDB.DB)
	loaded, err := betRepo.GetByID(ctx, bet.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.PlaceholderHomeTeam, loaded.Legs[0].HomeTeam)
}

func TestUnitOfWork_SettleWonBetCreditsWallet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB, publisher, placeBet, userID := setupUoWTest(t)
	ctx := context.Background()
	bet := placeBet()

	factory := NewUnitOfWorkFactory(testDB.DB, publisher)
	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()

	walletSvc := services.NewWalletService(uow.WalletRepository())
	betSvc := services.NewBetService(uow.BetRepository(), walletSvc, uow.MatchRepository(), uow.EventBus())

	settled, err := betSvc.SettleBet(ctx, bet.ID, entities.BetStatusWon)
	require.NoError(t, err)
	require.NoError(t, uow.Commit())
	assert.True(t, settled.Payout.Equal(decimal.NewFromInt(250)))

	// 1000 - 100 stake + 250 payout
	wallet, err := NewWalletRepository(testDB.DB).GetByUserID(ctx, userID)
	require.NoError(t, err)
	assert.True(t, wallet.Balance.Equal(decimal.NewFromInt(1150)), "got %s", wallet.Balance)

	require.Len(t, publisher.Events, 2)
	assert.Equal(t, events.TopicBetSettled, publisher.Events[1].Type())
}

func TestUnitOfWork_RollbackDiscardsEverything(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	config.SetTestConfig(config.NewTestConfig())
	t.Cleanup(config.ResetConfig)

	testDB := testutil.SetupTestDatabase(t)
	publisher := new(testhelpers.CapturingEventPublisher)
	factory := NewUnitOfWorkFactory(testDB.DB, publisher)
	ctx := context.Background()
	userID := uuid.New()

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	walletSvc := services.NewWalletService(uow.WalletRepository())
	betSvc := services.NewBetService(uow.BetRepository(), walletSvc, uow.MatchRepository(), uow.EventBus())

	_, err := walletSvc.GetOrCreateWallet(ctx, userID)
	require.NoError(t, err)

	_, err = betSvc.CreateBet(ctx, entities.CreateBetInput{
		UserID:    userID,
		Structure: entities.BetStructureSingle,
		Stake:     decimal.NewFromInt(100),
		Legs: []entities.CreateBetLegInput{
			{MatchID: uuid.New(), BetType: "MATCH_WINNER", Selection: "HOME", Odds: decimal.NewFromFloat(2.0)},
		},
	})
	require.NoError(t, err)

	require.NoError(t, uow.Rollback())

	// No wallet, no bets, no events
	wallet, err := NewWalletRepository(testDB.DB).GetByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, wallet)

	bets, err := NewBetRepository(testDB.DB).GetByUser(ctx, userID, entities.BetFilters{}, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, bets)

	assert.Empty(t, publisher.Events)
}

func TestUnitOfWork_DoubleBegin(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	factory := NewUnitOfWorkFactory(testDB.DB, nil)

	uow := factory.Create()
	require.NoError(t, uow.Begin(context.Background()))
	defer uow.Rollback()

	assert.Error(t, uow.Begin(context.Background()))
}
