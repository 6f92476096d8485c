package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fitrelay/internal/cache"
)

const redisCacheKeyPrefix = "cache:"

// retentionGrace keeps logically stale entries readable for a while before
// Redis evicts them, matching the memory backend's "stale but present"
// contract closely enough for the relay, which treats stale as a miss anyway.
const retentionGrace = 24 * time.Hour

// RedisStore persists cache entries in Redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed cache store.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get loads the entry for the key, stale or not.
//
// Errors: returns ErrNotFound on missing key; wraps Redis or JSON decode errors.
func (s *RedisStore) Get(ctx context.Context, key cache.Key) (*cache.Entry, error) {
	data, err := s.client.Get(ctx, redisCacheKeyPrefix+key.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get cache entry: %w", err)
	}

	var entry cache.Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("decode cache entry: %w", err)
	}
	return &entry, nil
}

// Upsert writes the entry, replacing any existing one under the same key.
// The Redis TTL extends past the entry's logical expiry by a retention grace.
func (s *RedisStore) Upsert(ctx context.Context, entry *cache.Entry) error {
	if entry == nil {
		return fmt.Errorf("cache entry is required")
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	ttl := time.Until(entry.ExpiresAt) + retentionGrace
	if ttl <= 0 {
		ttl = retentionGrace
	}
	if err := s.client.Set(ctx, redisCacheKeyPrefix+entry.Key.String(), payload, ttl).Err(); err != nil {
		return fmt.Errorf("save cache entry: %w", err)
	}
	return nil
}

// Delete removes the entry for the key. Absent keys are not an error.
func (s *RedisStore) Delete(ctx context.Context, key cache.Key) error {
	if err := s.client.Del(ctx, redisCacheKeyPrefix+key.String()).Err(); err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}
