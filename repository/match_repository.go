package repository

import (
	"context"
	"fmt"

	"clubbet/database"
	"clubbet/domain/entities"
	"clubbet/domain/interfaces"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type matchRepository struct {
	q Queryable
}

// NewMatchRepository creates a new match repository
func NewMatchRepository(db *database.DB) interfaces.MatchRepository {
	return &matchRepository{q: db.Pool}
}

// newMatchRepositoryWithTx creates a new match repository with a transaction
func newMatchRepositoryWithTx(tx Queryable) interfaces.MatchRepository {
	return &matchRepository{q: tx}
}

// Resolve returns match display info, or nil if the match is unknown
func (r *matchRepository) Resolve(ctx context.Context, matchID uuid.UUID) (*entities.MatchInfo, error) {
	query := `SELECT id, home_team, away_team, match_date FROM matches WHERE id = $1`

	var info entities.MatchInfo
	err := r.q.QueryRow(ctx, query, matchID).Scan(
		&info.ID,
		&info.HomeTeam,
		&info.AwayTeam,
		&info.Date,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve match: %w", err)
	}

	return &info, nil
}
