package services

import (
	"context"
	"fmt"
	"time"

	"clubbet/domain/entities"
	"clubbet/domain/interfaces"
	"clubbet/events"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// highOddsWarningThreshold triggers a non-blocking warning on long-shot bets
var highOddsWarningThreshold = decimal.NewFromInt(100)

type betService struct {
	betRepo        interfaces.BetRepository
	walletService  interfaces.WalletService
	resolver       interfaces.TeamNameResolver
	eventPublisher interfaces.EventPublisher
}

// NewBetService creates a new bet service. All dependencies are expected to
// be scoped to the caller's unit of work, so bet rows and wallet mutations
// commit in one database transaction.
func NewBetService(
	betRepo interfaces.BetRepository,
	walletService interfaces.WalletService,
	resolver interfaces.TeamNameResolver,
	eventPublisher interfaces.EventPublisher,
) interfaces.BetService {
	return &betService{
		betRepo:        betRepo,
		walletService:  walletService,
		resolver:       resolver,
		eventPublisher: eventPublisher,
	}
}

// ValidateBet checks a bet request against stake, structure and odds rules.
// All failures accumulate into the error list; warnings never block creation.
func (s *betService) ValidateBet(input entities.CreateBetInput, userBalance decimal.Decimal) *entities.BetValidation {
	var errs []string
	var warnings []string

	if ok, msg := ValidateStake(input.Stake, minStake, maxStake, userBalance); !ok {
		errs = append(errs, msg)
	}

	if len(input.Legs) == 0 {
		errs = append(errs, "At least one bet selection is required")
	}

	if input.Structure == entities.BetStructureSingle && len(input.Legs) > 1 {
		errs = append(errs, "Single bets can only have one selection")
	}
	if input.Structure == entities.BetStructureAccumulator && len(input.Legs) < 2 {
		errs = append(errs, "Accumulator bets require at least 2 selections")
	}
	if len(input.Legs) > MaxAccumulatorLegs {
		errs = append(errs, fmt.Sprintf("Maximum %d selections allowed", MaxAccumulatorLegs))
	}

	for i, leg := range input.Legs {
		if leg.Odds.LessThan(minOdds) {
			errs = append(errs, fmt.Sprintf("Selection %d: Odds must be at least %v", i+1, MinOdds))
		}
		if leg.Odds.GreaterThan(maxOdds) {
			errs = append(errs, fmt.Sprintf("Selection %d: Odds cannot exceed %d", i+1, MaxOdds))
		}
		if leg.MatchID == uuid.Nil {
			errs = append(errs, fmt.Sprintf("Selection %d: Match ID is required", i+1))
		}
	}

	// The schema enforces one leg per match within a bet, so duplicates are
	// rejected here for every multi-leg structure rather than surfacing as
	// an insert error.
	if input.Structure != entities.BetStructureSingle {
		seen := make(map[uuid.UUID]bool, len(input.Legs))
		duplicate := false
		for _, leg := range input.Legs {
			if seen[leg.MatchID] {
				duplicate = true
				break
			}
			seen[leg.MatchID] = true
		}
		if duplicate {
			if input.Structure == entities.BetStructureSystem {
				errs = append(errs, "Cannot bet on the same match multiple times in a system bet")
			} else {
				errs = append(errs, "Cannot bet on the same match multiple times in an accumulator")
			}
		}
	}

	if CalculateTotalOdds(input.Structure, input.Legs).GreaterThan(highOddsWarningThreshold) {
		warnings = append(warnings, "Very high odds - this bet is unlikely to win")
	}

	return &entities.BetValidation{
		Valid:    len(errs) == 0,
		Errors:   errs,
		Warnings: warnings,
	}
}

// CreateBet places a bet. The bet row, its legs and the stake debit are all
// written through transaction-scoped repositories, so a failure at any step
// rolls the whole placement back.
func (s *betService) CreateBet(ctx context.Context, input entities.CreateBetInput) (*entities.Bet, error) {
	hasBalance, err := s.walletService.HasSufficientBalance(ctx, input.UserID, input.Stake)
	if err != nil {
		return nil, fmt.Errorf("failed to check balance: %w", err)
	}
	if !hasBalance {
		return nil, entities.ErrInsufficientBalance
	}

	totalOdds := CalculateTotalOdds(input.Structure, input.Legs)
	potentialReturn := CalculateReturn(input.Stake, totalOdds)

	bet := &entities.Bet{
		UserID:          input.UserID,
		Structure:       input.Structure,
		Stake:           input.Stake,
		Odds:            totalOdds,
		PotentialReturn: potentialReturn,
		Status:          entities.BetStatusPending,
		Payout:          decimal.Zero,
		SystemType:      input.SystemType,
	}

	for _, legInput := range input.Legs {
		leg := &entities.BetLeg{
			MatchID:   legInput.MatchID,
			BetType:   legInput.BetType,
			Selection: legInput.Selection,
			Odds:      legInput.Odds,
			Parameter: legInput.Parameter,
			Status:    entities.BetStatusPending,
		}
		s.enrichLeg(ctx, leg)
		bet.Legs = append(bet.Legs, leg)
	}

	if err := s.betRepo.Create(ctx, bet); err != nil {
		return nil, fmt.Errorf("failed to create bet: %w", err)
	}

	if _, err := s.walletService.DeductBetStake(ctx, input.UserID, input.Stake, bet.ID); err != nil {
		return nil, fmt.Errorf("failed to deduct stake: %w", err)
	}

	if err := s.eventPublisher.Publish(events.BetPlacedEvent{
		BetID:           bet.ID,
		UserID:          bet.UserID,
		Structure:       string(bet.Structure),
		Stake:           bet.Stake,
		Odds:            bet.Odds,
		PotentialReturn: bet.PotentialReturn,
		LegCount:        len(bet.Legs),
		PlacedAt:        bet.PlacedAt,
	}); err != nil {
		log.WithError(err).Warn("Failed to publish bet placed event")
	}

	return bet, nil
}

// enrichLeg fills the denormalized team names and match date. Lookup failure
// degrades to placeholder names and never fails the placement.
func (s *betService) enrichLeg(ctx context.Context, leg *entities.BetLeg) {
	match, err := s.resolver.Resolve(ctx, leg.MatchID)
	if err != nil || match == nil {
		if err != nil {
			log.WithFields(log.Fields{
				"matchID": leg.MatchID,
				"error":   err,
			}).Warn("Failed to resolve match for bet leg")
		}
		leg.HomeTeam = entities.PlaceholderHomeTeam
		leg.AwayTeam = entities.PlaceholderAwayTeam
		return
	}

	leg.HomeTeam = match.HomeTeam
	leg.AwayTeam = match.AwayTeam
	matchDate := match.Date
	leg.MatchDate = &matchDate
}

// GetBetByID retrieves a bet with its legs, or nil if absent
func (s *betService) GetBetByID(ctx context.Context, betID uuid.UUID) (*entities.Bet, error) {
	bet, err := s.betRepo.GetByID(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	return bet, nil
}

// GetUserBets returns a user's bet history, filtered and paginated. Legs
// missing display names are backfilled best-effort, one lookup per leg.
func (s *betService) GetUserBets(ctx context.Context, userID uuid.UUID, filters entities.BetFilters, limit, offset int) ([]*entities.Bet, error) {
	bets, err := s.betRepo.GetByUser(ctx, userID, filters, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get user bets: %w", err)
	}

	for _, bet := range bets {
		for _, leg := range bet.Legs {
			if leg.HomeTeam == "" || leg.AwayTeam == "" {
				s.enrichLeg(ctx, leg)
			}
		}
	}

	return bets, nil
}

// GetActiveBets returns a user's PENDING bets
func (s *betService) GetActiveBets(ctx context.Context, userID uuid.UUID) ([]*entities.Bet, error) {
	return s.GetUserBets(ctx, userID, entities.BetFilters{
		Statuses: []entities.BetStatus{entities.BetStatusPending},
	}, 0, 0)
}

// GetBetsForMatch returns every bet with a leg on the given match
func (s *betService) GetBetsForMatch(ctx context.Context, matchID uuid.UUID) ([]*entities.Bet, error) {
	bets, err := s.betRepo.GetByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bets for match: %w", err)
	}
	return bets, nil
}

// SettleBet resolves a PENDING bet. WON credits the potential return, VOID
// refunds the stake, LOST leaves the payout at zero. A bet settles exactly
// once; settling again returns ErrBetAlreadySettled with no wallet mutation.
func (s *betService) SettleBet(ctx context.Context, betID uuid.UUID, status entities.BetStatus) (*entities.Bet, error) {
	if !status.IsTerminal() {
		return nil, entities.ErrInvalidBetStatus
	}

	bet, err := s.betRepo.GetByID(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	if bet == nil {
		return nil, entities.ErrBetNotFound
	}
	if bet.Status != entities.BetStatusPending {
		return nil, entities.ErrBetAlreadySettled
	}

	payout := decimal.Zero
	switch status {
	case entities.BetStatusWon:
		payout = bet.PotentialReturn
		if _, err := s.walletService.CreditBetWinnings(ctx, bet.UserID, payout, bet.ID); err != nil {
			return nil, fmt.Errorf("failed to credit winnings: %w", err)
		}
	case entities.BetStatusVoid:
		payout = bet.Stake
		if _, err := s.walletService.RefundVoidBet(ctx, bet.UserID, bet.Stake, bet.ID); err != nil {
			return nil, fmt.Errorf("failed to refund stake: %w", err)
		}
	}

	now := time.Now()
	bet.Status = status
	bet.SettledAt = &now
	bet.Payout = payout

	if err := s.betRepo.Update(ctx, bet); err != nil {
		return nil, fmt.Errorf("failed to update bet: %w", err)
	}

	log.WithFields(log.Fields{
		"betID":  bet.ID,
		"status": status,
		"payout": payout,
	}).Info("Settled bet")

	if err := s.eventPublisher.Publish(events.BetSettledEvent{
		BetID:     bet.ID,
		UserID:    bet.UserID,
		Status:    string(status),
		Payout:    payout,
		SettledAt: now,
	}); err != nil {
		log.WithError(err).Warn("Failed to publish bet settled event")
	}

	return bet, nil
}

// SettleBetLeg resolves one leg independently of its parent bet
func (s *betService) SettleBetLeg(ctx context.Context, legID uuid.UUID, status entities.BetStatus) (*entities.BetLeg, error) {
	if !status.IsTerminal() {
		return nil, entities.ErrInvalidBetStatus
	}

	leg, err := s.betRepo.GetLegByID(ctx, legID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet leg: %w", err)
	}
	if leg == nil {
		return nil, entities.ErrBetLegNotFound
	}
	if leg.Status != entities.BetStatusPending {
		return nil, entities.ErrBetLegSettled
	}

	now := time.Now()
	leg.Status = status
	leg.ResultDeterminedAt = &now

	if err := s.betRepo.UpdateLeg(ctx, leg); err != nil {
		return nil, fmt.Errorf("failed to update bet leg: %w", err)
	}

	return leg, nil
}

// CheckAndSettleAccumulator resolves an accumulator once every leg has
// settled. Any LOST leg loses the bet; otherwise any VOID leg voids the
// whole bet (a deliberate simplification of per-leg stake adjustment);
// otherwise all legs won. Returns (nil, nil) while the bet is not an
// accumulator, already settled, or has pending legs.
func (s *betService) CheckAndSettleAccumulator(ctx context.Context, betID uuid.UUID) (*entities.Bet, error) {
	bet, err := s.betRepo.GetByID(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	if bet == nil || bet.Structure != entities.BetStructureAccumulator || bet.Status != entities.BetStatusPending {
		return nil, nil
	}

	if !bet.AllLegsSettled() {
		return nil, nil
	}

	var finalStatus entities.BetStatus
	switch {
	case bet.HasLegWithStatus(entities.BetStatusLost):
		finalStatus = entities.BetStatusLost
	case bet.HasLegWithStatus(entities.BetStatusVoid):
		finalStatus = entities.BetStatusVoid
	default:
		finalStatus = entities.BetStatusWon
	}

	return s.SettleBet(ctx, betID, finalStatus)
}

// CancelBet voids a PENDING bet and refunds the stake, regardless of leg
// state. Administrative operation.
func (s *betService) CancelBet(ctx context.Context, betID uuid.UUID) (*entities.Bet, error) {
	bet, err := s.betRepo.GetByID(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	if bet == nil {
		return nil, entities.ErrBetNotFound
	}
	if bet.Status != entities.BetStatusPending {
		return nil, entities.ErrBetAlreadySettled
	}

	return s.SettleBet(ctx, betID, entities.BetStatusVoid)
}

// GetUserBetStats returns aggregate betting statistics for a user. Counts
// and sums come from a single SQL aggregate; derived rates degrade to zero
// when their denominator is zero.
func (s *betService) GetUserBetStats(ctx context.Context, userID uuid.UUID) (*entities.UserBetStats, error) {
	stats, err := s.betRepo.GetStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet stats: %w", err)
	}

	stats.NetProfit = stats.TotalReturned.Sub(stats.TotalStaked)

	if settled := stats.WonBets + stats.LostBets; settled > 0 {
		stats.WinRate = float64(stats.WonBets) / float64(settled) * 100
	}
	if stats.TotalStaked.IsPositive() {
		roi, _ := stats.NetProfit.Div(stats.TotalStaked).Mul(decimal.NewFromInt(100)).Float64()
		stats.ROI = roi
	}

	return stats, nil
}
