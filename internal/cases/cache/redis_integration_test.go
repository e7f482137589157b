//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"kycdsl/internal/cases/cache"
	"kycdsl/pkg/testutil/containers"
)

type RedisPlanCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *cache.RedisPlanCache
}

func TestRedisPlanCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisPlanCacheSuite))
}

func (s *RedisPlanCacheSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.cache = cache.NewRedis(s.redis.Client, time.Second)
}

func (s *RedisPlanCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisPlanCacheSuite) TestMissThenHit() {
	ctx := context.Background()
	key := cache.Key("(kyc-case ACME)")

	_, found, err := s.cache.Get(ctx, key)
	s.Require().NoError(err)
	s.False(found)

	s.Require().NoError(s.cache.Set(ctx, key, `[{"name":"init","args":["ACME"]}]`))

	plan, found, err := s.cache.Get(ctx, key)
	s.Require().NoError(err)
	s.True(found)
	s.Equal(`[{"name":"init","args":["ACME"]}]`, plan)
}

func (s *RedisPlanCacheSuite) TestEntriesExpire() {
	ctx := context.Background()
	key := cache.Key("(kyc-case EXPIRING)")
	s.Require().NoError(s.cache.Set(ctx, key, "[]"))

	ttl, err := s.redis.Client.TTL(ctx, "kycdsl:plan:"+key).Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))

	s.Eventually(func() bool {
		_, found, err := s.cache.Get(ctx, key)
		return err == nil && !found
	}, 5*time.Second, 100*time.Millisecond)
}
