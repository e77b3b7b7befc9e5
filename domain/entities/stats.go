package entities

import "github.com/shopspring/decimal"

// UserBetStats aggregates a user's betting history. Derived fields degrade
// to zero when their denominator is zero.
type UserBetStats struct {
	TotalBets     int
	PendingBets   int
	WonBets       int
	LostBets      int
	VoidBets      int
	TotalStaked   decimal.Decimal
	TotalReturned decimal.Decimal
	NetProfit     decimal.Decimal
	WinRate       float64
	AverageOdds   decimal.Decimal
	ROI           float64
}
