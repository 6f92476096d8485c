package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"fitrelay/internal/credential/models"
)

const redisCredentialKeyPrefix = "credential:user:"

// RedisStore persists credential records in Redis. Records carry no TTL: they
// live until the user disconnects the external account.
type RedisStore struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed credential store.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Find loads the credential record for a user.
//
// Errors: returns ErrNotFound when no record exists; wraps Redis or JSON
// decode errors.
func (s *RedisStore) Find(ctx context.Context, userID string) (*models.Record, error) {
	data, err := s.client.Get(ctx, credentialKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find credential: %w", err)
	}

	var record models.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode credential: %w", err)
	}
	return &record, nil
}

// Upsert writes the full record, replacing any existing one for the user.
func (s *RedisStore) Upsert(ctx context.Context, record *models.Record) error {
	if record == nil {
		return fmt.Errorf("credential record is required")
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}
	if err := s.client.Set(ctx, credentialKey(record.UserID), payload, 0).Err(); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

// Delete removes the record for a user, returning ErrNotFound if absent.
func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	deleted, err := s.client.Del(ctx, credentialKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}

func credentialKey(userID string) string {
	return redisCredentialKeyPrefix + userID
}
