package envdata

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/couchcryptid/storm-claims-analysis/internal/domain"
)

const redisKeyPrefix = "storm-claims:env:"

// redisStore is the subset of *redis.Client the shared cache uses.
type redisStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// SharedCache keeps snapshots in Redis so replicas share lookups. Redis
// failures degrade to calling the inner provider directly.
type SharedCache struct {
	inner  domain.EnvironmentProvider
	store  redisStore
	ttl    time.Duration
	logger *slog.Logger
}

// NewSharedCache wraps inner with a Redis-backed cache whose entries expire after ttl.
func NewSharedCache(inner domain.EnvironmentProvider, client *redis.Client, ttl time.Duration, logger *slog.Logger) *SharedCache {
	return &SharedCache{inner: inner, store: client, ttl: ttl, logger: logger}
}

// Snapshot reads through the shared cache.
func (s *SharedCache) Snapshot(ctx context.Context, lat, lon float64) (domain.EnvironmentSnapshot, error) {
	key := redisKeyPrefix + cacheKey(lat, lon)

	raw, err := s.store.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var snap domain.EnvironmentSnapshot
		if jerr := json.Unmarshal(raw, &snap); jerr == nil {
			return snap, nil
		}
		s.logger.WarnContext(ctx, "discarding unreadable cached snapshot", "key", key)
	case !errors.Is(err, redis.Nil):
		s.logger.WarnContext(ctx, "shared cache read failed", "key", key, "error", err)
	}

	snap, err := s.inner.Snapshot(ctx, lat, lon)
	if err != nil {
		return snap, err
	}

	if b, jerr := json.Marshal(snap); jerr == nil {
		if serr := s.store.Set(ctx, key, b, s.ttl).Err(); serr != nil {
			s.logger.WarnContext(ctx, "shared cache write failed", "key", key, "error", serr)
		}
	}
	return snap, nil
}

// CheckReadiness pings Redis.
func (s *SharedCache) CheckReadiness(ctx context.Context) error {
	return s.store.Ping(ctx).Err()
}
