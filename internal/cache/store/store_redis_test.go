package store

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"fitrelay/internal/cache"
)

type RedisStoreSuite struct {
	suite.Suite
	mini  *miniredis.Miniredis
	store *RedisStore
}

func (s *RedisStoreSuite) SetupTest() {
	mini, err := miniredis.Run()
	s.Require().NoError(err)
	s.mini = mini
	s.store = NewRedis(redis.NewClient(&redis.Options{Addr: mini.Addr()}))
}

func (s *RedisStoreSuite) TearDownTest() {
	s.mini.Close()
}

func TestRedisStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) TestRoundTrip() {
	key := cache.PerUserKey("u1", "/users/-/foods/log/date/2024-03-17.json")
	entry := &cache.Entry{
		Key:       key,
		Body:      json.RawMessage(`{"foods":[],"summary":{"calories":0}}`),
		Status:    http.StatusOK,
		Header:    http.Header{"Content-Type": {"application/json"}, "Etag": {`"v1"`}},
		ExpiresAt: time.Now().Add(24 * time.Hour).UTC(),
	}

	s.Require().NoError(s.store.Upsert(context.Background(), entry))

	found, err := s.store.Get(context.Background(), key)
	s.Require().NoError(err)
	s.Equal(entry.Body, found.Body)
	s.Equal(entry.Status, found.Status)
	s.Equal(`"v1"`, found.Header.Get("Etag"))
	s.Equal(key, found.Key)
}

func (s *RedisStoreSuite) TestGet_Miss() {
	_, err := s.store.Get(context.Background(), cache.GlobalKey("/foods/units.json"))
	s.Require().ErrorIs(err, ErrNotFound)
}

func (s *RedisStoreSuite) TestStaleEntryStillReadable() {
	key := cache.GlobalKey("/foods/units.json")
	entry := &cache.Entry{
		Key:       key,
		Body:      json.RawMessage(`[]`),
		Status:    http.StatusOK,
		ExpiresAt: time.Now().Add(time.Minute).UTC(),
	}
	s.Require().NoError(s.store.Upsert(context.Background(), entry))

	// Past logical expiry but within the retention grace.
	s.mini.FastForward(2 * time.Minute)

	found, err := s.store.Get(context.Background(), key)
	s.Require().NoError(err)
	s.False(found.Fresh(time.Now()))
}

func (s *RedisStoreSuite) TestDelete_Idempotent() {
	key := cache.GlobalKey("/foods/units.json")
	entry := &cache.Entry{Key: key, Body: json.RawMessage(`[]`), Status: http.StatusOK, ExpiresAt: time.Now().Add(time.Hour)}
	s.Require().NoError(s.store.Upsert(context.Background(), entry))

	s.Require().NoError(s.store.Delete(context.Background(), key))
	s.Require().NoError(s.store.Delete(context.Background(), key))

	_, err := s.store.Get(context.Background(), key)
	s.Require().ErrorIs(err, ErrNotFound)
}
