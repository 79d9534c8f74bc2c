package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	cacheKey   = "dashboard:stats"
	defaultTTL = time.Minute
)

// StatsPort computes the statistics from the primary store.
type StatsPort interface {
	Collect(ctx context.Context) (Stats, error)
}

// Service serves dashboard statistics with a short-lived Redis cache in
// front of the aggregate queries. A cache failure falls through to the
// database rather than failing the request.
type Service struct {
	repo   StatsPort
	cache  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

func NewService(repo StatsPort, cache *redis.Client, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, ttl: defaultTTL, logger: logger}
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, cacheKey).Bytes()
		if err == nil {
			var cached Stats
			if json.Unmarshal(raw, &cached) == nil {
				return cached, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("dashboard cache read failed", slog.Any("error", err))
		}
	}
	return s.Refresh(ctx)
}

// Refresh recomputes the statistics and rewrites the cache entry. The
// warmup job calls this on a schedule so the first morning request does
// not pay for the aggregates. Concurrent refreshes collapse into one
// database round trip.
func (s *Service) Refresh(ctx context.Context) (Stats, error) {
	v, err, _ := s.group.Do(cacheKey, func() (any, error) {
		return s.repo.Collect(ctx)
	})
	if err != nil {
		return Stats{}, err
	}
	stats := v.(Stats)
	if s.cache != nil {
		raw, err := json.Marshal(stats)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, raw, s.ttl).Err(); err != nil {
				s.logger.Warn("dashboard cache write failed", slog.Any("error", err))
			}
		}
	}
	return stats, nil
}
