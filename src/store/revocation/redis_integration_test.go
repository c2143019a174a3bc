//go:build integration

package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

type RedisListSuite struct {
	suite.Suite
	container *tcredis.RedisContainer
	client    *redis.Client
	list      *RedisList
}

func TestRedisListSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisListSuite))
}

func (s *RedisListSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	s.Require().NoError(err)
	s.container = container

	uri, err := container.ConnectionString(ctx)
	s.Require().NoError(err)
	opts, err := redis.ParseURL(uri)
	s.Require().NoError(err)

	s.client = redis.NewClient(opts)
	s.Require().NoError(s.client.Ping(ctx).Err())
	s.list = NewRedisList(s.client)
}

func (s *RedisListSuite) TearDownSuite() {
	if s.client != nil {
		_ = s.client.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *RedisListSuite) SetupTest() {
	s.Require().NoError(s.client.FlushAll(context.Background()).Err())
}

func (s *RedisListSuite) TestRevokeAndCheck() {
	ctx := context.Background()

	revoked, err := s.list.IsRevoked(ctx, "jti-1")
	s.Require().NoError(err)
	s.False(revoked)

	s.Require().NoError(s.list.Revoke(ctx, "jti-1", time.Hour))

	revoked, err = s.list.IsRevoked(ctx, "jti-1")
	s.Require().NoError(err)
	s.True(revoked)

	ttl, err := s.client.TTL(ctx, revokedTokenKeyPrefix+"jti-1").Result()
	s.Require().NoError(err)
	s.Greater(ttl, 59*time.Minute)
}

func (s *RedisListSuite) TestEntryExpires() {
	ctx := context.Background()

	s.Require().NoError(s.list.Revoke(ctx, "jti-short", time.Second))
	s.Eventually(func() bool {
		revoked, err := s.list.IsRevoked(ctx, "jti-short")
		return err == nil && !revoked
	}, 5*time.Second, 100*time.Millisecond)
}

func (s *RedisListSuite) TestIgnoresEmptyID() {
	ctx := context.Background()

	s.Require().NoError(s.list.Revoke(ctx, "", time.Hour))
	revoked, err := s.list.IsRevoked(ctx, "")
	s.Require().NoError(err)
	s.False(revoked)
}
