package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"fitrelay/internal/credential/models"
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

func (s *RedisStoreSuite) TestUpsertFindRoundTrip() {
	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	record := &models.Record{
		UserID:       "u1",
		AccessToken:  "acc_1",
		RefreshToken: "ref_1",
		ExpiresAt:    expires,
	}

	s.Require().NoError(s.store.Upsert(context.Background(), record))

	found, err := s.store.Find(context.Background(), "u1")
	s.Require().NoError(err)
	s.Equal("acc_1", found.AccessToken)
	s.Equal("ref_1", found.RefreshToken)
	s.True(found.ExpiresAt.Equal(expires))
}

func (s *RedisStoreSuite) TestFind_NotFound() {
	_, err := s.store.Find(context.Background(), "missing")
	s.Require().ErrorIs(err, ErrNotFound)
}

func (s *RedisStoreSuite) TestDelete() {
	record := &models.Record{UserID: "u1", AccessToken: "acc", RefreshToken: "ref", ExpiresAt: time.Now()}
	s.Require().NoError(s.store.Upsert(context.Background(), record))

	s.Require().NoError(s.store.Delete(context.Background(), "u1"))
	s.Require().ErrorIs(s.store.Delete(context.Background(), "u1"), ErrNotFound)
}

func (s *RedisStoreSuite) TestRecordsCarryNoTTL() {
	record := &models.Record{UserID: "u1", AccessToken: "acc", RefreshToken: "ref", ExpiresAt: time.Now()}
	s.Require().NoError(s.store.Upsert(context.Background(), record))

	// Credential rows must survive until explicit disconnect.
	s.mini.FastForward(365 * 24 * time.Hour)
	_, err := s.store.Find(context.Background(), "u1")
	s.Require().NoError(err)
}
