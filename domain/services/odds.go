package services

import (
	"fmt"
	"math"

	"clubbet/domain/entities"

	"github.com/shopspring/decimal"
)

// Betting limits
const (
	MinStake           = 1
	MaxStake           = 10000
	MinOdds            = 1.01
	MaxOdds            = 1000
	MaxAccumulatorLegs = 20
)

var (
	minStake = decimal.NewFromInt(MinStake)
	maxStake = decimal.NewFromInt(MaxStake)
	minOdds  = decimal.NewFromFloat(MinOdds)
	maxOdds  = decimal.NewFromInt(MaxOdds)
)

// CalculateReturn computes the potential return of a bet (stake * odds),
// rounded to two decimal places. Non-positive inputs yield zero.
func CalculateReturn(stake, odds decimal.Decimal) decimal.Decimal {
	if !stake.IsPositive() || !odds.IsPositive() {
		return decimal.Zero
	}
	return stake.Mul(odds).Round(2)
}

// CalculateProfit computes the potential profit of a bet (return - stake)
func CalculateProfit(stake, odds decimal.Decimal) decimal.Decimal {
	if !stake.IsPositive() || !odds.IsPositive() {
		return decimal.Zero
	}
	return CalculateReturn(stake, odds).Sub(stake).Round(2)
}

// CalculateAccumulatorOdds multiplies the odds of all legs
func CalculateAccumulatorOdds(legs []entities.CreateBetLegInput) decimal.Decimal {
	if len(legs) == 0 {
		return decimal.Zero
	}
	combined := decimal.NewFromInt(1)
	for _, leg := range legs {
		combined = combined.Mul(leg.Odds)
	}
	return combined.Round(2)
}

// CalculateTotalOdds computes the combined odds for a bet based on its
// structure. System bets use average odds, a simplification of the real
// combination pricing.
func CalculateTotalOdds(structure entities.BetStructure, legs []entities.CreateBetLegInput) decimal.Decimal {
	if len(legs) == 0 {
		return decimal.Zero
	}

	switch structure {
	case entities.BetStructureSingle:
		return legs[0].Odds

	case entities.BetStructureAccumulator:
		return CalculateAccumulatorOdds(legs)

	case entities.BetStructureSystem:
		sum := decimal.Zero
		for _, leg := range legs {
			sum = sum.Add(leg.Odds)
		}
		return sum.Div(decimal.NewFromInt(int64(len(legs)))).Round(2)

	default:
		return decimal.Zero
	}
}

// CalculateImpliedProbability converts decimal odds to a probability
// percentage (0-100)
func CalculateImpliedProbability(odds decimal.Decimal) decimal.Decimal {
	if !odds.IsPositive() {
		return decimal.Zero
	}
	return decimal.NewFromInt(100).Div(odds).Round(2)
}

// CalculateBookmakerMargin computes the overround of a full market from its
// odds, as a percentage
func CalculateBookmakerMargin(oddsSet []decimal.Decimal) decimal.Decimal {
	if len(oddsSet) == 0 {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, odds := range oddsSet {
		if !odds.IsPositive() {
			continue
		}
		total = total.Add(decimal.NewFromInt(1).Div(odds))
	}
	return total.Sub(decimal.NewFromInt(1)).Mul(decimal.NewFromInt(100)).Round(2)
}

// ConvertToFractional renders decimal odds in fractional format, e.g. "3/2"
func ConvertToFractional(odds decimal.Decimal) string {
	if odds.LessThanOrEqual(decimal.NewFromInt(1)) {
		return "0/1"
	}

	profit, _ := odds.Sub(decimal.NewFromInt(1)).Float64()
	numerator := int64(math.Round(profit * 100))
	denominator := int64(100)

	d := gcd(numerator, denominator)
	return fmt.Sprintf("%d/%d", numerator/d, denominator/d)
}

// ConvertToAmerican renders decimal odds in American format, e.g. "+150"
func ConvertToAmerican(odds decimal.Decimal) string {
	f, _ := odds.Float64()
	if f <= 1 {
		return "+0"
	}
	if f >= 2 {
		return fmt.Sprintf("+%d", int64(math.Round((f-1)*100)))
	}
	return fmt.Sprintf("%d", int64(math.Round(-100/(f-1))))
}

// ValidateStake checks a stake against the allowed range and the user's
// balance, returning an error message suitable for display
func ValidateStake(stake, min, max, balance decimal.Decimal) (bool, string) {
	if !stake.IsPositive() {
		return false, "Stake must be greater than 0"
	}
	if stake.LessThan(min) {
		return false, fmt.Sprintf("Minimum stake is %s", min.String())
	}
	if stake.GreaterThan(max) {
		return false, fmt.Sprintf("Maximum stake is %s", max.String())
	}
	if stake.GreaterThan(balance) {
		return false, "Insufficient balance"
	}
	return true, ""
}

// IsValidOdds reports whether the odds fall within the accepted range
func IsValidOdds(odds decimal.Decimal) bool {
	return odds.GreaterThanOrEqual(minOdds) && odds.LessThanOrEqual(maxOdds)
}

// CalculateSystemBetReturns computes the potential return of each
// combination of a system bet. systemType is of the form "3/4" (pick 3 of
// 4); the stake is split evenly across combinations.
func CalculateSystemBetReturns(stake decimal.Decimal, legs []entities.CreateBetLegInput, systemType string) []decimal.Decimal {
	var selectCount, totalCount int
	if _, err := fmt.Sscanf(systemType, "%d/%d", &selectCount, &totalCount); err != nil {
		return nil
	}
	if selectCount <= 0 || totalCount <= 0 || len(legs) != totalCount {
		return nil
	}

	combos := legCombinations(legs, selectCount)
	if len(combos) == 0 {
		return nil
	}
	stakePerBet := stake.Div(decimal.NewFromInt(int64(len(combos))))

	returns := make([]decimal.Decimal, 0, len(combos))
	for _, combo := range combos {
		returns = append(returns, CalculateReturn(stakePerBet, CalculateAccumulatorOdds(combo)))
	}
	return returns
}

// legCombinations returns all combinations of k legs
func legCombinations(legs []entities.CreateBetLegInput, k int) [][]entities.CreateBetLegInput {
	if k == 0 {
		return [][]entities.CreateBetLegInput{{}}
	}
	if len(legs) < k {
		return nil
	}

	first, rest := legs[0], legs[1:]

	var result [][]entities.CreateBetLegInput
	for _, combo := range legCombinations(rest, k-1) {
		withFirst := append([]entities.CreateBetLegInput{first}, combo...)
		result = append(result, withFirst)
	}
	return append(result, legCombinations(rest, k)...)
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
