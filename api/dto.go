package api

import (
	"time"

	"clubbet/domain/entities"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request payloads

type placeBetLegRequest struct {
	MatchID   uuid.UUID       `json:"match_id"`
	BetType   string          `json:"bet_type"`
	Selection string          `json:"selection"`
	Odds      decimal.Decimal `json:"odds"`
	Parameter string          `json:"parameter,omitempty"`
}

type placeBetRequest struct {
	UserID     uuid.UUID            `json:"user_id"`
	Structure  string               `json:"structure"`
	Stake      decimal.Decimal      `json:"stake"`
	SystemType string               `json:"system_type,omitempty"`
	Legs       []placeBetLegRequest `json:"legs"`
}

type settleRequest struct {
	Status string `json:"status"`
}

type fundsRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

// Response payloads

type legResponse struct {
	ID                 uuid.UUID       `json:"id"`
	MatchID            uuid.UUID       `json:"match_id"`
	BetType            string          `json:"bet_type"`
	Selection          string          `json:"selection"`
	Odds               decimal.Decimal `json:"odds"`
	Parameter          string          `json:"parameter,omitempty"`
	Status             string          `json:"status"`
	ResultDeterminedAt *time.Time      `json:"result_determined_at,omitempty"`
	HomeTeam           string          `json:"home_team"`
	AwayTeam           string          `json:"away_team"`
	MatchDate          *time.Time      `json:"match_date,omitempty"`
}

type betResponse struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	Structure       string          `json:"structure"`
	Stake           decimal.Decimal `json:"stake"`
	Odds            decimal.Decimal `json:"odds"`
	PotentialReturn decimal.Decimal `json:"potential_return"`
	Status          string          `json:"status"`
	PlacedAt        time.Time       `json:"placed_at"`
	SettledAt       *time.Time      `json:"settled_at,omitempty"`
	Payout          decimal.Decimal `json:"payout"`
	SystemType      string          `json:"system_type,omitempty"`
	Legs            []legResponse   `json:"legs"`
}

type placeBetResponse struct {
	Bet      betResponse `json:"bet"`
	Warnings []string    `json:"warnings,omitempty"`
}

type walletResponse struct {
	UserID   uuid.UUID       `json:"user_id"`
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`

	TotalDeposited decimal.Decimal `json:"total_deposited"`
	TotalWithdrawn decimal.Decimal `json:"total_withdrawn"`
	TotalWagered   decimal.Decimal `json:"total_wagered"`
	TotalWon       decimal.Decimal `json:"total_won"`
	NetProfit      decimal.Decimal `json:"net_profit"`
}

type transactionResponse struct {
	ID           uuid.UUID       `json:"id"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	Description  string          `json:"description,omitempty"`
	ReferenceID  *uuid.UUID      `json:"reference_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

type statsResponse struct {
	TotalBets     int             `json:"total_bets"`
	PendingBets   int             `json:"pending_bets"`
	WonBets       int             `json:"won_bets"`
	LostBets      int             `json:"lost_bets"`
	VoidBets      int             `json:"void_bets"`
	TotalStaked   decimal.Decimal `json:"total_staked"`
	TotalReturned decimal.Decimal `json:"total_returned"`
	NetProfit     decimal.Decimal `json:"net_profit"`
	AverageOdds   decimal.Decimal `json:"average_odds"`
	WinRate       float64         `json:"win_rate"`
	ROI           float64         `json:"roi"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type validationErrorResponse struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings,omitempty"`
}

// Mapping helpers

func toBetResponse(bet *entities.Bet) betResponse {
	resp := betResponse{
		ID:              bet.ID,
		UserID:          bet.UserID,
		Structure:       string(bet.Structure),
		Stake:           bet.Stake,
		Odds:            bet.Odds,
		PotentialReturn: bet.PotentialReturn,
		Status:          string(bet.Status),
		PlacedAt:        bet.PlacedAt,
		SettledAt:       bet.SettledAt,
		Payout:          bet.Payout,
		SystemType:      bet.SystemType,
		Legs:            make([]legResponse, 0, len(bet.Legs)),
	}
	for _, leg := range bet.Legs {
		resp.Legs = append(resp.Legs, legResponse{
			ID:                 leg.ID,
			MatchID:            leg.MatchID,
			BetType:            leg.BetType,
			Selection:          leg.Selection,
			Odds:               leg.Odds,
			Parameter:          leg.Parameter,
			Status:             string(leg.Status),
			ResultDeterminedAt: leg.ResultDeterminedAt,
			HomeTeam:           leg.HomeTeam,
			AwayTeam:           leg.AwayTeam,
			MatchDate:          leg.MatchDate,
		})
	}
	return resp
}

func toBetResponses(bets []*entities.Bet) []betResponse {
	resps := make([]betResponse, 0, len(bets))
	for _, bet := range bets {
		resps = append(resps, toBetResponse(bet))
	}
	return resps
}

func toTransactionResponses(txs []*entities.Transaction) []transactionResponse {
	resps := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		resps = append(resps, transactionResponse{
			ID:           tx.ID,
			Type:         string(tx.Type),
			Amount:       tx.Amount,
			BalanceAfter: tx.BalanceAfter,
			Description:  tx.Description,
			ReferenceID:  tx.ReferenceID,
			CreatedAt:    tx.CreatedAt,
		})
	}
	return resps
}
