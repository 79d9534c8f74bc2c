// Package permcache implements the client permission cache: a persisted
// mirror of the last resolved permission set, used to paint UIs
// optimistically before the authoritative resolver answers, and the session
// state machine that keeps that mirror honest across sign-ins.
package permcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/labtrack/labtrack/internal/rbac"
)

// DefaultSlotKey is the single persisted slot a client session reads at
// start, mirroring the original browser-local key.
const DefaultSlotKey = "userAuth"

// Store persists permission snapshots outside the database so they survive
// a process restart before the resolver re-runs.
type Store interface {
	// Load returns the snapshot under key; ok is false when the slot is
	// empty.
	Load(ctx context.Context, key string) (rbac.Resolution, bool, error)
	Save(ctx context.Context, key string, res rbac.Resolution) error
	Clear(ctx context.Context, key string) error
}

// RedisStore is the Redis-backed Store used in production.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore builds a store writing keys under the given prefix. A zero
// TTL keeps snapshots until explicitly cleared.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "permcache"
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(key string) string {
	return fmt.Sprintf("%s:%s", s.prefix, key)
}

// Load reads a persisted snapshot.
func (s *RedisStore) Load(ctx context.Context, key string) (rbac.Resolution, bool, error) {
	payload, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return rbac.Resolution{}, false, nil
		}
		return rbac.Resolution{}, false, err
	}
	var res rbac.Resolution
	if err := json.Unmarshal(payload, &res); err != nil {
		// A corrupted slot behaves like an empty one; the authoritative
		// resolve will rewrite it.
		return rbac.Resolution{}, false, nil
	}
	if res.Permissions == nil {
		res.Permissions = []string{}
	}
	return res, true, nil
}

// Save overwrites the persisted snapshot.
func (s *RedisStore) Save(ctx context.Context, key string, res rbac.Resolution) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(key), payload, s.ttl).Err()
}

// Clear deletes the persisted snapshot.
func (s *RedisStore) Clear(ctx context.Context, key string) error {
	err := s.client.Del(ctx, s.key(key)).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}
