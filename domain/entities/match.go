package entities

import (
	"time"

	"github.com/google/uuid"
)

// Placeholder team names used when display enrichment fails. Enrichment is
// best-effort and must never fail a bet operation.
const (
	PlaceholderHomeTeam = "Home"
	PlaceholderAwayTeam = "Away"
)

// MatchInfo is the display enrichment read from the club match schedule
type MatchInfo struct {
	ID       uuid.UUID
	HomeTeam string
	AwayTeam string
	Date     time.Time
}
