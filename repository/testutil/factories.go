package testutil

import (
	"context"
	"testing"
	"time"

	"clubbet/domain/entities"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// NewTestWallet creates a wallet entity with default values
func NewTestWallet(userID uuid.UUID) *entities.Wallet {
	return &entities.Wallet{
		UserID:   userID,
		Balance:  decimal.NewFromInt(1000),
		Currency: entities.DefaultCurrency,
	}
}

// NewTestSingleBet creates an unsaved single bet with one leg
func NewTestSingleBet(userID uuid.UUID) *entities.Bet {
	odds := decimal.NewFromFloat(2.5)
	stake := decimal.NewFromInt(100)
	return &entities.Bet{
		UserID:          userID,
		Structure:       entities.BetStructureSingle,
		Stake:           stake,
		Odds:            odds,
		PotentialReturn: stake.Mul(odds),
		Status:          entities.BetStatusPending,
		Payout:          decimal.Zero,
		Legs: []*entities.BetLeg{
			NewTestLeg(odds),
		},
	}
}

// NewTestAccumulatorBet creates an unsaved accumulator with the given leg odds
func NewTestAccumulatorBet(userID uuid.UUID, legOdds ...float64) *entities.Bet {
	stake := decimal.NewFromInt(50)
	totalOdds := decimal.NewFromInt(1)
	var legs []*entities.BetLeg
	for _, o := range legOdds {
		odds := decimal.NewFromFloat(o)
		totalOdds = totalOdds.Mul(odds)
		legs = append(legs, NewTestLeg(odds))
	}
	totalOdds = totalOdds.Round(2)
	return &entities.Bet{
		UserID:          userID,
		Structure:       entities.BetStructureAccumulator,
		Stake:           stake,
		Odds:            totalOdds,
		PotentialReturn: stake.Mul(totalOdds).Round(2),
		Status:          entities.BetStatusPending,
		Payout:          decimal.Zero,
		Legs:            legs,
	}
}

// NewTestLeg creates an unsaved pending leg on a fresh match id
func NewTestLeg(odds decimal.Decimal) *entities.BetLeg {
	return &entities.BetLeg{
		MatchID:   uuid.New(),
		BetType:   "MATCH_WINNER",
		Selection: "HOME",
		Odds:      odds,
		Status:    entities.BetStatusPending,
		HomeTeam:  "Arsenal",
		AwayTeam:  "Chelsea",
	}
}

// InsertTestMatch inserts a match row and returns its id
func InsertTestMatch(t *testing.T, td *TestDatabase, homeTeam, awayTeam string) uuid.UUID {
	var id uuid.UUID
	err := td.DB.QueryRow(context.Background(),
		`INSERT INTO matches (home_team, away_team, match_date) VALUES ($1, $2, $3) RETURNING id`,
		homeTeam, awayTeam, time.Now().Add(24*time.Hour),
	).Scan(&id)
	require.NoError(t, err)
	return id
}
