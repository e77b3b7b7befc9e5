package entities

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBetStatusIsTerminal(t *testing.T) {
	assert.False(t, BetStatusPending.IsTerminal())
	assert.True(t, BetStatusWon.IsTerminal())
	assert.True(t, BetStatusLost.IsTerminal())
	assert.True(t, BetStatusVoid.IsTerminal())
	assert.False(t, BetStatus("GARBAGE").IsTerminal())
}

func TestAllLegsSettled(t *testing.T) {
	bet := &Bet{
		Legs: []*BetLeg{
			{Status: BetStatusWon},
			{Status: BetStatusPending},
		},
	}
	assert.False(t, bet.AllLegsSettled())

	bet.Legs[1].Status = BetStatusLost
	assert.True(t, bet.AllLegsSettled())

	assert.True(t, (&Bet{}).AllLegsSettled(), "a bet without legs has nothing pending")
}

func TestHasLegWithStatus(t *testing.T) {
	bet := &Bet{
		Legs: []*BetLeg{
			{Status: BetStatusWon},
			{Status: BetStatusVoid},
		},
	}
	assert.True(t, bet.HasLegWithStatus(BetStatusVoid))
	assert.False(t, bet.HasLegWithStatus(BetStatusLost))
}

func TestNetProfit(t *testing.T) {
	bet := &Bet{
		Stake:  decimal.NewFromInt(100),
		Payout: decimal.NewFromInt(250),
	}
	assert.True(t, bet.NetProfit().Equal(decimal.NewFromInt(150)))

	lost := &Bet{
		Stake:  decimal.NewFromInt(100),
		Payout: decimal.Zero,
	}
	assert.True(t, lost.NetProfit().Equal(decimal.NewFromInt(-100)))
}

func TestTransactionDirection(t *testing.T) {
	credit := &Transaction{Amount: decimal.NewFromInt(50)}
	assert.True(t, credit.IsCredit())
	assert.False(t, credit.IsDebit())

	debit := &Transaction{Amount: decimal.NewFromInt(-50)}
	assert.True(t, debit.IsDebit())
	assert.False(t, debit.IsCredit())
}

func TestTransactionValidate(t *testing.T) {
	assert.Error(t, (&Transaction{Amount: decimal.Zero}).Validate())
	assert.NoError(t, (&Transaction{Amount: decimal.NewFromInt(1)}).Validate())
}

func TestTransactionTypeClassification(t *testing.T) {
	assert.True(t, TransactionTypeBetPlaced.IsBetRelated())
	assert.True(t, TransactionTypeBetRefund.IsBetRelated())
	assert.False(t, TransactionTypeDeposit.IsBetRelated())

	assert.True(t, TransactionTypeDeposit.IsCreditType())
	assert.True(t, TransactionTypeBetWon.IsCreditType())
	assert.False(t, TransactionTypeBetPlaced.IsCreditType())
	assert.False(t, TransactionTypeWithdrawal.IsCreditType())
}
