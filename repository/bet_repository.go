package repository

import (
	"context"
	"fmt"
	"strings"

	"clubbet/database"
	"clubbet/domain/entities"
	"clubbet/domain/interfaces"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type betRepository struct {
	q Queryable
}

// NewBetRepository creates a new bet repository
func NewBetRepository(db *database.DB) interfaces.BetRepository {
	return &betRepository{q: db.Pool}
}

// newBetRepositoryWithTx creates a new bet repository with a transaction
func newBetRepositoryWithTx(tx Queryable) interfaces.BetRepository {
	return &betRepository{q: tx}
}

const betColumns = `id, user_id, structure, stake, odds, potential_return, status, placed_at, settled_at, payout, system_type`

const legColumns = `id, bet_id, match_id, bet_type, selection, odds, parameter, status, result_determined_at, home_team, away_team, match_date`

// Create inserts a bet and all of its legs
func (r *betRepository) Create(ctx context.Context, bet *entities.Bet) error {
	query := `
		INSERT INTO betting_bets (user_id, structure, stake, odds, potential_return, status, payout, system_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, placed_at`

	err := r.q.QueryRow(ctx, query,
		bet.UserID,
		bet.Structure,
		bet.Stake,
		bet.Odds,
		bet.PotentialReturn,
		bet.Status,
		bet.Payout,
		bet.SystemType,
	).Scan(&bet.ID, &bet.PlacedAt)
	if err != nil {
		return fmt.Errorf("failed to create bet: %w", err)
	}

	legQuery := `
		INSERT INTO betting_bet_legs (bet_id, match_id, bet_type, selection, odds, parameter, status, home_team, away_team, match_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	for _, leg := range bet.Legs {
		leg.BetID = bet.ID
		err := r.q.QueryRow(ctx, legQuery,
			leg.BetID,
			leg.MatchID,
			leg.BetType,
			leg.Selection,
			leg.Odds,
			leg.Parameter,
			leg.Status,
			leg.HomeTeam,
			leg.AwayTeam,
			leg.MatchDate,
		).Scan(&leg.ID)
		if err != nil {
			return fmt.Errorf("failed to create bet leg: %w", err)
		}
	}

	return nil
}

// GetByID retrieves a bet with its legs
func (r *betRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Bet, error) {
	query := fmt.Sprintf(`SELECT %s FROM betting_bets WHERE id = $1`, betColumns)

	bet, err := r.scanBet(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}

	legs, err := r.getLegsForBets(ctx, []uuid.UUID{bet.ID})
	if err != nil {
		return nil, err
	}
	bet.Legs = legs[bet.ID]

	return bet, nil
}

// GetByUser returns a user's bets with legs, newest first
func (r *betRepository) GetByUser(ctx context.Context, userID uuid.UUID, filters entities.BetFilters, limit, offset int) ([]*entities.Bet, error) {
	var conditions []string
	args := []any{userID}
	conditions = append(conditions, "user_id = $1")

	addArg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(filters.Statuses) > 0 {
		statuses := make([]string, 0, len(filters.Statuses))
		for _, s := range filters.Statuses {
			statuses = append(statuses, string(s))
		}
		conditions = append(conditions, fmt.Sprintf("status = ANY(%s)", addArg(statuses)))
	}
	if len(filters.Structures) > 0 {
		structures := make([]string, 0, len(filters.Structures))
		for _, s := range filters.Structures {
			structures = append(structures, string(s))
		}
		conditions = append(conditions, fmt.Sprintf("structure = ANY(%s)", addArg(structures)))
	}
	if filters.MinStake != nil {
		conditions = append(conditions, fmt.Sprintf("stake >= %s", addArg(*filters.MinStake)))
	}
	if filters.MaxStake != nil {
		conditions = append(conditions, fmt.Sprintf("stake <= %s", addArg(*filters.MaxStake)))
	}
	if filters.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("placed_at >= %s", addArg(*filters.DateFrom)))
	}
	if filters.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("placed_at <= %s", addArg(*filters.DateTo)))
	}

	query := fmt.Sprintf(`
		SELECT %s FROM betting_bets
		WHERE %s
		ORDER BY placed_at DESC`, betColumns, strings.Join(conditions, " AND "))

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %s", addArg(limit))
		query += fmt.Sprintf(" OFFSET %s", addArg(offset))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bets: %w", err)
	}
	defer rows.Close()

	bets, err := r.scanBets(rows)
	if err != nil {
		return nil, err
	}

	return r.attachLegs(ctx, bets)
}

// GetByMatch returns every bet that has a leg on the given match
func (r *betRepository) GetByMatch(ctx context.Context, matchID uuid.UUID) ([]*entities.Bet, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM betting_bets
		WHERE id IN (SELECT DISTINCT bet_id FROM betting_bet_legs WHERE match_id = $1)
		ORDER BY placed_at DESC`, betColumns)

	rows, err := r.q.Query(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bets for match: %w", err)
	}
	defer rows.Close()

	bets, err := r.scanBets(rows)
	if err != nil {
		return nil, err
	}

	return r.attachLegs(ctx, bets)
}

// Update persists a bet's settlement fields
func (r *betRepository) Update(ctx context.Context, bet *entities.Bet) error {
	query := `
		UPDATE betting_bets
		SET status = $2, settled_at = $3, payout = $4
		WHERE id = $1`

	tag, err := r.q.Exec(ctx, query, bet.ID, bet.Status, bet.SettledAt, bet.Payout)
	if err != nil {
		return fmt.Errorf("failed to update bet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("bet %s not found", bet.ID)
	}

	return nil
}

// GetLegByID retrieves a single leg
func (r *betRepository) GetLegByID(ctx context.Context, id uuid.UUID) (*entities.BetLeg, error) {
	query := fmt.Sprintf(`SELECT %s FROM betting_bet_legs WHERE id = $1`, legColumns)

	leg, err := r.scanLeg(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet leg: %w", err)
	}

	return leg, nil
}

// UpdateLeg persists a leg's settlement fields
func (r *betRepository) UpdateLeg(ctx context.Context, leg *entities.BetLeg) error {
	query := `
		UPDATE betting_bet_legs
		SET status = $2, result_determined_at = $3
		WHERE id = $1`

	tag, err := r.q.Exec(ctx, query, leg.ID, leg.Status, leg.ResultDeterminedAt)
	if err != nil {
		return fmt.Errorf("failed to update bet leg: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("bet leg %s not found", leg.ID)
	}

	return nil
}

// GetStats returns aggregate betting statistics for a user. Rates derived
// from these sums are computed by the service layer.
func (r *betRepository) GetStats(ctx context.Context, userID uuid.UUID) (*entities.UserBetStats, error) {
	query := `
		SELECT
			COUNT(*) AS total_bets,
			COUNT(*) FILTER (WHERE status = 'PENDING') AS pending_bets,
			COUNT(*) FILTER (WHERE status = 'WON') AS won_bets,
			COUNT(*) FILTER (WHERE status = 'LOST') AS lost_bets,
			COUNT(*) FILTER (WHERE status = 'VOID') AS void_bets,
			COALESCE(SUM(stake), 0) AS total_staked,
			COALESCE(SUM(payout), 0) AS total_returned,
			COALESCE(AVG(odds), 0) AS average_odds
		FROM betting_bets
		WHERE user_id = $1`

	var stats entities.UserBetStats
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&stats.TotalBets,
		&stats.PendingBets,
		&stats.WonBets,
		&stats.LostBets,
		&stats.VoidBets,
		&stats.TotalStaked,
		&stats.TotalReturned,
		&stats.AverageOdds,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet stats: %w", err)
	}

	return &stats, nil
}

func (r *betRepository) scanBet(row pgx.Row) (*entities.Bet, error) {
	var bet entities.Bet
	err := row.Scan(
		&bet.ID,
		&bet.UserID,
		&bet.Structure,
		&bet.Stake,
		&bet.Odds,
		&bet.PotentialReturn,
		&bet.Status,
		&bet.PlacedAt,
		&bet.SettledAt,
		&bet.Payout,
		&bet.SystemType,
	)
	if err != nil {
		return nil, err
	}
	return &bet, nil
}

func (r *betRepository) scanBets(rows pgx.Rows) ([]*entities.Bet, error) {
	var bets []*entities.Bet
	for rows.Next() {
		bet, err := r.scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, bet)
	}
	return bets, nil
}

func (r *betRepository) scanLeg(row pgx.Row) (*entities.BetLeg, error) {
	var leg entities.BetLeg
	err := row.Scan(
		&leg.ID,
		&leg.BetID,
		&leg.MatchID,
		&leg.BetType,
		&leg.Selection,
		&leg.Odds,
		&leg.Parameter,
		&leg.Status,
		&leg.ResultDeterminedAt,
		&leg.HomeTeam,
		&leg.AwayTeam,
		&leg.MatchDate,
	)
	if err != nil {
		return nil, err
	}
	return &leg, nil
}

// attachLegs eagerly loads the legs of all bets in one query
func (r *betRepository) attachLegs(ctx context.Context, bets []*entities.Bet) ([]*entities.Bet, error) {
	if len(bets) == 0 {
		return bets, nil
	}

	ids := make([]uuid.UUID, 0, len(bets))
	for _, bet := range bets {
		ids = append(ids, bet.ID)
	}

	legsByBet, err := r.getLegsForBets(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, bet := range bets {
		bet.Legs = legsByBet[bet.ID]
	}
	return bets, nil
}

func (r *betRepository) getLegsForBets(ctx context.Context, betIDs []uuid.UUID) (map[uuid.UUID][]*entities.BetLeg, error) {
	query := fmt.Sprintf(`SELECT %s FROM betting_bet_legs WHERE bet_id = ANY($1) ORDER BY id`, legColumns)

	rows, err := r.q.Query(ctx, query, betIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query bet legs: %w", err)
	}
	defer rows.Close()

	legsByBet := make(map[uuid.UUID][]*entities.BetLeg)
	for rows.Next() {
		leg, err := r.scanLeg(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet leg: %w", err)
		}
		legsByBet[leg.BetID] = append(legsByBet[leg.BetID], leg)
	}

	return legsByBet, nil
}
