package repository

import (
	"context"
	"testing"

	"clubbet/domain/entities"
	"clubbet/repository/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletRepository_CreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	repo := NewWalletRepository(testDB.DB)
	ctx := context.Background()

	userID := uuid.New()

	missing, err := repo.GetByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	wallet := testutil.NewTestWallet(userID)
	require.NoError(t, repo.Create(ctx, wallet))
	assert.NotEqual(t, uuid.Nil, wallet.ID)

	loaded, err := repo.GetByUserID(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.True(t, loaded.Balance.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, entities.DefaultCurrency, loaded.Currency)
}

func TestWalletRepository_UpdateBalance(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	repo := NewWalletRepository(testDB.DB)
	ctx := context.Background()

	wallet := testutil.NewTestWallet(uuid.New())
	require.NoError(t, repo.Create(ctx, wallet))

	require.NoError(t, repo.UpdateBalance(ctx, wallet.ID, decimal.NewFromInt(750)))

	loaded, err := repo.GetByUserID(ctx, wallet.UserID)
	require.NoError(t, err)
	assert.True(t, loaded.Balance.Equal(decimal.NewFromInt(750)))

	err = repo.UpdateBalance(ctx, uuid.New(), decimal.NewFromInt(1))
	assert.Error(t, err)
}

func TestWalletRepository_Transactions(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	repo := NewWalletRepository(testDB.DB)
	ctx := context.Background()

	wallet := testutil.NewTestWallet(uuid.New())
	require.NoError(t, repo.Create(ctx, wallet))

	betID := uuid.New()
	entries := []*entities.Transaction{
		{
			UserID: wallet.UserID, WalletID: wallet.ID,
			Type: entities.TransactionTypeDeposit, Amount: decimal.NewFromInt(1000),
			BalanceAfter: decimal.NewFromInt(2000), Status: "COMPLETED",
		},
		{
			UserID: wallet.UserID, WalletID: wallet.ID,
			Type: entities.TransactionTypeBetPlaced, Amount: decimal.NewFromInt(-100),
			BalanceAfter: decimal.NewFromInt(1900), ReferenceID: &betID, Status: "COMPLETED",
		},
	}
	for _, tx := range entries {
		require.NoError(t, repo.RecordTransaction(ctx, tx))
		assert.NotEqual(t, uuid.Nil, tx.ID)
	}

	t.Run("history is newest first", func(t *testing.T) {
		txs, err := repo.GetTransactionsByUser(ctx, wallet.UserID, 0, 0)
		require.NoError(t, err)
		require.Len(t, txs, 2)
		assert.Equal(t, entities.TransactionTypeBetPlaced, txs[0].Type)
		require.NotNil(t, txs[0].ReferenceID)
		assert.Equal(t, betID, *txs[0].ReferenceID)
	})

	t.Run("limit applies", func(t *testing.T) {
		txs, err := repo.GetTransactionsByUser(ctx, wallet.UserID, 1, 0)
		require.NoError(t, err)
		assert.Len(t, txs, 1)
	})

	t.Run("filter by type", func(t *testing.T) {
		txs, err := repo.GetTransactionsByType(ctx, wallet.UserID, entities.TransactionTypeDeposit, 0)
		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, entities.TransactionTypeDeposit, txs[0].Type)
	})
}

func TestMatchRepository_Resolve(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	testDB := testutil.SetupTestDatabase(t)
	repo := NewMatchRepository(testDB.DB)
	ctx := context.Background()

	matchID := testutil.InsertTestMatch(t, testDB, "Liverpool", "Everton")

	info, err := repo.Resolve(ctx, matchID)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "Liverpool", info.HomeTeam)
	assert.Equal(t, "Everton", info.AwayTeam)
	assert.False(t, info.Date.IsZero())

	unknown, err := repo.Resolve(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, unknown)
}
