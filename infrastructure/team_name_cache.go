package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"clubbet/domain/entities"
	"clubbet/domain/interfaces"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	teamNameCachePrefix = "clubbet:match:"
	teamNameCacheTTL    = 10 * time.Minute
)

// CachedTeamNameResolver caches match display info in Redis in front of a
// slower resolver. Cache failures degrade to the underlying resolver.
type CachedTeamNameResolver struct {
	client   *redis.Client
	resolver interfaces.TeamNameResolver
}

// NewCachedTeamNameResolver wraps resolver with a Redis cache
func NewCachedTeamNameResolver(client *redis.Client, resolver interfaces.TeamNameResolver) *CachedTeamNameResolver {
	return &CachedTeamNameResolver{
		client:   client,
		resolver: resolver,
	}
}

// Resolve returns match display info, preferring the cache
func (r *CachedTeamNameResolver) Resolve(ctx context.Context, matchID uuid.UUID) (*entities.MatchInfo, error) {
	key := teamNameCachePrefix + matchID.String()

	cached, err := r.client.Get(ctx, key).Result()
	if err == nil {
		var info entities.MatchInfo
		if err := json.Unmarshal([]byte(cached), &info); err == nil {
			return &info, nil
		}
		// Corrupt entry, fall through and repopulate
	} else if err != redis.Nil {
		log.WithError(err).Warn("Team name cache read failed")
	}

	info, err := r.resolver.Resolve(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve match %s: %w", matchID, err)
	}
	if info == nil {
		return nil, nil
	}

	payload, err := json.Marshal(info)
	if err == nil {
		if err := r.client.Set(ctx, key, payload, teamNameCacheTTL).Err(); err != nil {
			log.WithError(err).Warn("Team name cache write failed")
		}
	}

	return info, nil
}

var _ interfaces.TeamNameResolver = (*CachedTeamNameResolver)(nil)
