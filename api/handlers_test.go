package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clubbet/config"
	"clubbet/domain/entities"
	"clubbet/domain/testhelpers"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type apiFixture struct {
	betRepo    *testhelpers.MockBetRepository
	walletRepo *testhelpers.MockWalletRepository
	matchRepo  *testhelpers.MockTeamNameResolver
	uow        *testhelpers.FakeUnitOfWork
	server     *Server
}

func newAPIFixture(t *testing.T) *apiFixture {
	config.SetTestConfig(config.NewTestConfig())
	t.Cleanup(config.ResetConfig)

	f := &apiFixture{
		betRepo:    new(testhelpers.MockBetRepository),
		walletRepo: new(testhelpers.MockWalletRepository),
		matchRepo:  new(testhelpers.MockTeamNameResolver),
	}
	f.uow = &testhelpers.FakeUnitOfWork{
		BetRepo:    f.betRepo,
		WalletRepo: f.walletRepo,
		MatchRepo:  f.matchRepo,
	}
	f.server = NewServer(":0", &testhelpers.FakeUnitOfWorkFactory{UoW: f.uow}, nil)
	return f
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	f.server.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) givenWallet(userID uuid.UUID, balance int64) *entities.Wallet {
	wallet := &entities.Wallet{
		ID:       uuid.New(),
		UserID:   userID,
		Balance:  decimal.NewFromInt(balance),
		Currency: entities.DefaultCurrency,
	}
	f.walletRepo.On("GetByUserID", mock.Anything, userID).Return(wallet, nil)
	return wallet
}

func validPlaceBetBody(userID uuid.UUID) placeBetRequest {
	return placeBetRequest{
		UserID:    userID,
		Structure: "SINGLE",
		Stake:     decimal.NewFromInt(100),
		Legs: []placeBetLegRequest{
			{
				MatchID:   uuid.New(),
				BetType:   "MATCH_WINNER",
				Selection: "HOME",
				Odds:      decimal.NewFromFloat(2.5),
			},
		},
	}
}

func TestHandlePlaceBet(t *testing.T) {
	userID := uuid.New()

	t.Run("creates the bet", func(t *testing.T) {
		f := newAPIFixture(t)
		wallet := f.givenWallet(userID, 1000)
		f.walletRepo.On("RecordTransaction", mock.Anything, mock.Anything).Return(nil)
		f.walletRepo.On("UpdateBalance", mock.Anything, wallet.ID, mock.Anything).Return(nil)
		f.matchRepo.On("Resolve", mock.Anything, mock.Anything).Return(nil, nil)

		betID := uuid.New()
		f.betRepo.On("Create", mock.Anything, mock.AnythingOfType("*entities.Bet")).
			Run(func(args mock.Arguments) {
				bet := args.Get(1).(*entities.Bet)
				bet.ID = betID
				bet.PlacedAt = time.Now()
			}).Return(nil)

		rec := f.do(t, http.MethodPost, "/bets", validPlaceBetBody(userID))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp placeBetResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, betID, resp.Bet.ID)
		assert.Equal(t, "PENDING", resp.Bet.Status)
		assert.True(t, resp.Bet.PotentialReturn.Equal(decimal.NewFromInt(250)))

		assert.True(t, f.uow.Committed)
	})

	t.Run("validation failure returns the error list", func(t *testing.T) {
		f := newAPIFixture(t)
		f.givenWallet(userID, 1000)

		body := validPlaceBetBody(userID)
		body.Stake = decimal.Zero
		body.Legs = nil

		rec := f.do(t, http.MethodPost, "/bets", body)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp validationErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Errors)
		assert.False(t, f.uow.Committed)
		f.betRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("stake beyond balance fails validation", func(t *testing.T) {
		f := newAPIFixture(t)
		f.givenWallet(userID, 50)

		rec := f.do(t, http.MethodPost, "/bets", validPlaceBetBody(userID))
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp validationErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp.Errors, "Insufficient balance")
	})

	t.Run("missing user id", func(t *testing.T) {
		f := newAPIFixture(t)
		body := validPlaceBetBody(uuid.Nil)

		rec := f.do(t, http.MethodPost, "/bets", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		f := newAPIFixture(t)
		req := httptest.NewRequest(http.MethodPost, "/bets", bytes.NewBufferString("{nope"))
		rec := httptest.NewRecorder()
		f.server.httpServer.Handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleGetBet(t *testing.T) {
	t.Run("returns the bet", func(t *testing.T) {
		f := newAPIFixture(t)
		bet := &entities.Bet{
			ID:     uuid.New(),
			UserID: uuid.New(),
			Status: entities.BetStatusPending,
			Stake:  decimal.NewFromInt(50),
		}
		f.betRepo.On("GetByID", mock.Anything, bet.ID).Return(bet, nil)

		rec := f.do(t, http.MethodGet, "/bets/"+bet.ID.String(), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp betResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, bet.ID, resp.ID)
	})

	t.Run("unknown bet returns 404", func(t *testing.T) {
		f := newAPIFixture(t)
		f.betRepo.On("GetByID", mock.Anything, mock.Anything).Return(nil, nil)

		rec := f.do(t, http.MethodGet, "/bets/"+uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid id returns 400", func(t *testing.T) {
		f := newAPIFixture(t)
		rec := f.do(t, http.MethodGet, "/bets/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleSettleBet(t *testing.T) {
	userID := uuid.New()

	pending := func() *entities.Bet {
		stake := decimal.NewFromInt(100)
		return &entities.Bet{
			ID:              uuid.New(),
			UserID:          userID,
			Structure:       entities.BetStructureSingle,
			Stake:           stake,
			Odds:            decimal.NewFromInt(3),
			PotentialReturn: decimal.NewFromInt(300),
			Status:          entities.BetStatusPending,
			Payout:          decimal.Zero,
		}
	}

	t.Run("settles as won", func(t *testing.T) {
		f := newAPIFixture(t)
		wallet := f.givenWallet(userID, 900)
		f.walletRepo.On("RecordTransaction", mock.Anything, mock.Anything).Return(nil)
		f.walletRepo.On("UpdateBalance", mock.Anything, wallet.ID, mock.Anything).Return(nil)

		bet := pending()
		f.betRepo.On("GetByID", mock.Anything, bet.ID).Return(bet, nil)
		f.betRepo.On("Update", mock.Anything, bet).Return(nil)

		rec := f.do(t, http.MethodPost, fmt.Sprintf("/bets/%s/settle", bet.ID), settleRequest{Status: "WON"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp betResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "WON", resp.Status)
		assert.True(t, resp.Payout.Equal(decimal.NewFromInt(300)))
		assert.True(t, f.uow.Committed)
	})

	t.Run("already settled returns conflict", func(t *testing.T) {
		f := newAPIFixture(t)
		bet := pending()
		bet.Status = entities.BetStatusLost
		f.betRepo.On("GetByID", mock.Anything, bet.ID).Return(bet, nil)

		rec := f.do(t, http.MethodPost, fmt.Sprintf("/bets/%s/settle", bet.ID), settleRequest{Status: "WON"})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.False(t, f.uow.Committed)
	})

	t.Run("pending is not a valid settlement status", func(t *testing.T) {
		f := newAPIFixture(t)
		rec := f.do(t, http.MethodPost, fmt.Sprintf("/bets/%s/settle", uuid.New()), settleRequest{Status: "PENDING"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown bet returns 404", func(t *testing.T) {
		f := newAPIFixture(t)
		f.betRepo.On("GetByID", mock.Anything, mock.Anything).Return(nil, nil)

		rec := f.do(t, http.MethodPost, fmt.Sprintf("/bets/%s/settle", uuid.New()), settleRequest{Status: "WON"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleSettleLeg(t *testing.T) {
	userID := uuid.New()

	t.Run("settling the last leg settles the accumulator", func(t *testing.T) {
		f := newAPIFixture(t)
		wallet := f.givenWallet(userID, 900)
		f.walletRepo.On("RecordTransaction", mock.Anything, mock.Anything).Return(nil)
		f.walletRepo.On("UpdateBalance", mock.Anything, wallet.ID, mock.Anything).Return(nil)

		bet := &entities.Bet{
			ID:              uuid.New(),
			UserID:          userID,
			Structure:       entities.BetStructureAccumulator,
			Stake:           decimal.NewFromInt(50),
			Odds:            decimal.NewFromInt(4),
			PotentialReturn: decimal.NewFromInt(200),
			Status:          entities.BetStatusPending,
			Payout:          decimal.Zero,
		}
		leg := &entities.BetLeg{ID: uuid.New(), BetID: bet.ID, Status: entities.BetStatusPending}
		bet.Legs = []*entities.BetLeg{
			{ID: uuid.New(), BetID: bet.ID, Status: entities.BetStatusWon},
			leg,
		}

		f.betRepo.On("GetLegByID", mock.Anything, leg.ID).Return(leg, nil)
		f.betRepo.On("UpdateLeg", mock.Anything, leg).Return(nil)
		f.betRepo.On("GetByID", mock.Anything, bet.ID).Return(bet, nil)
		f.betRepo.On("Update", mock.Anything, bet).Return(nil)

		rec := f.do(t, http.MethodPost, fmt.Sprintf("/legs/%s/settle", leg.ID), settleRequest{Status: "WON"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp betResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "WON", resp.Status)
		assert.True(t, resp.Payout.Equal(decimal.NewFromInt(200)))
	})

	t.Run("a leg with pending siblings returns just the leg", func(t *testing.T) {
		f := newAPIFixture(t)
		bet := &entities.Bet{
			ID:        uuid.New(),
			Structure: entities.BetStructureAccumulator,
			Status:    entities.BetStatusPending,
		}
		leg := &entities.BetLeg{ID: uuid.New(), BetID: bet.ID, Status: entities.BetStatusPending}
		bet.Legs = []*entities.BetLeg{
			leg,
			{ID: uuid.New(), BetID: bet.ID, Status: entities.BetStatusPending},
		}

		f.betRepo.On("GetLegByID", mock.Anything, leg.ID).Return(leg, nil)
		f.betRepo.On("UpdateLeg", mock.Anything, leg).Return(nil)
		f.betRepo.On("GetByID", mock.Anything, bet.ID).Return(bet, nil)

		rec := f.do(t, http.MethodPost, fmt.Sprintf("/legs/%s/settle", leg.ID), settleRequest{Status: "LOST"})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp legResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "LOST", resp.Status)
		f.betRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestHandleGetUserBets(t *testing.T) {
	userID := uuid.New()

	t.Run("parses filters", func(t *testing.T) {
		f := newAPIFixture(t)
		f.betRepo.On("GetByUser", mock.Anything, userID, mock.MatchedBy(func(filters entities.BetFilters) bool {
			return len(filters.Statuses) == 2 &&
				filters.Statuses[0] == entities.BetStatusWon &&
				filters.MinStake != nil && filters.MinStake.Equal(decimal.NewFromInt(10))
		}), 5, 10).Return([]*entities.Bet{}, nil)

		rec := f.do(t, http.MethodGet, fmt.Sprintf("/users/%s/bets?status=won,lost&min_stake=10&limit=5&offset=10", userID), nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		f.betRepo.AssertExpectations(t)
	})

	t.Run("active shortcut filters to pending", func(t *testing.T) {
		f := newAPIFixture(t)
		f.betRepo.On("GetByUser", mock.Anything, userID, mock.MatchedBy(func(filters entities.BetFilters) bool {
			return len(filters.Statuses) == 1 && filters.Statuses[0] == entities.BetStatusPending
		}), 0, 0).Return([]*entities.Bet{}, nil)

		rec := f.do(t, http.MethodGet, fmt.Sprintf("/users/%s/bets?active=true", userID), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		f.betRepo.AssertExpectations(t)
	})

	t.Run("bad limit", func(t *testing.T) {
		f := newAPIFixture(t)
		rec := f.do(t, http.MethodGet, fmt.Sprintf("/users/%s/bets?limit=nope", userID), nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleGetUserStats(t *testing.T) {
	f := newAPIFixture(t)
	userID := uuid.New()

	f.betRepo.On("GetStats", mock.Anything, userID).Return(&entities.UserBetStats{
		TotalBets:     4,
		WonBets:       1,
		LostBets:      1,
		PendingBets:   2,
		TotalStaked:   decimal.NewFromInt(400),
		TotalReturned: decimal.NewFromInt(250),
	}, nil)

	rec := f.do(t, http.MethodGet, fmt.Sprintf("/users/%s/bets/stats", userID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 4, resp.TotalBets)
	assert.InDelta(t, 50.0, resp.WinRate, 0.001)
	assert.True(t, resp.NetProfit.Equal(decimal.NewFromInt(-150)))
}

func TestHandleGetWallet(t *testing.T) {
	f := newAPIFixture(t)
	userID := uuid.New()
	f.givenWallet(userID, 750)
	f.walletRepo.On("GetTransactionsByUser", mock.Anything, userID, 0, 0).Return([]*entities.Transaction{}, nil)

	rec := f.do(t, http.MethodGet, fmt.Sprintf("/users/%s/wallet", userID), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp walletResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Balance.Equal(decimal.NewFromInt(750)))
	assert.Equal(t, entities.DefaultCurrency, resp.Currency)
}

func TestHandleGetTransactions(t *testing.T) {
	userID := uuid.New()

	t.Run("full history", func(t *testing.T) {
		f := newAPIFixture(t)
		f.walletRepo.On("GetTransactionsByUser", mock.Anything, userID, 0, 0).Return([]*entities.Transaction{
			{ID: uuid.New(), Type: entities.TransactionTypeBetPlaced, Amount: decimal.NewFromInt(-100)},
			{ID: uuid.New(), Type: entities.TransactionTypeDeposit, Amount: decimal.NewFromInt(1000)},
		}, nil)

		rec := f.do(t, http.MethodGet, fmt.Sprintf("/users/%s/transactions", userID), nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp []transactionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp, 2)
		assert.Equal(t, "BET_PLACED", resp[0].Type)
	})

	t.Run("type filter narrows the ledger", func(t *testing.T) {
		f := newAPIFixture(t)
		f.walletRepo.On("GetTransactionsByType", mock.Anything, userID, entities.TransactionTypeBetWon, 5).
			Return([]*entities.Transaction{
				{ID: uuid.New(), Type: entities.TransactionTypeBetWon, Amount: decimal.NewFromInt(300)},
			}, nil)

		rec := f.do(t, http.MethodGet, fmt.Sprintf("/users/%s/transactions?type=bet_won&limit=5", userID), nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp []transactionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp, 1)
		assert.Equal(t, "BET_WON", resp[0].Type)
		f.walletRepo.AssertNotCalled(t, "GetTransactionsByUser", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown type", func(t *testing.T) {
		f := newAPIFixture(t)
		rec := f.do(t, http.MethodGet, fmt.Sprintf("/users/%s/transactions?type=JACKPOT", userID), nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleDepositAndWithdraw(t *testing.T) {
	userID := uuid.New()

	t.Run("deposit credits the wallet", func(t *testing.T) {
		f := newAPIFixture(t)
		wallet := f.givenWallet(userID, 100)
		f.walletRepo.On("RecordTransaction", mock.Anything, mock.Anything).Return(nil)
		f.walletRepo.On("UpdateBalance", mock.Anything, wallet.ID, mock.Anything).Return(nil)

		rec := f.do(t, http.MethodPost, fmt.Sprintf("/users/%s/wallet/deposit", userID), fundsRequest{Amount: decimal.NewFromInt(200)})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp transactionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "DEPOSIT", resp.Type)
		assert.True(t, resp.BalanceAfter.Equal(decimal.NewFromInt(300)))
		assert.True(t, f.uow.Committed)
	})

	t.Run("withdrawal beyond balance conflicts", func(t *testing.T) {
		f := newAPIFixture(t)
		f.givenWallet(userID, 100)

		rec := f.do(t, http.MethodPost, fmt.Sprintf("/users/%s/wallet/withdraw", userID), fundsRequest{Amount: decimal.NewFromInt(200)})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		f := newAPIFixture(t)
		rec := f.do(t, http.MethodPost, fmt.Sprintf("/users/%s/wallet/deposit", userID), fundsRequest{Amount: decimal.Zero})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleGetMatchBets(t *testing.T) {
	f := newAPIFixture(t)
	matchID := uuid.New()
	f.betRepo.On("GetByMatch", mock.Anything, matchID).Return([]*entities.Bet{
		{ID: uuid.New(), Status: entities.BetStatusPending},
	}, nil)

	rec := f.do(t, http.MethodGet, fmt.Sprintf("/matches/%s/bets", matchID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []betResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp, 1)
}
