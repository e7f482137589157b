package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"kycdsl/pkg/platform/sentinel"
)

const planKeyPrefix = "kycdsl:plan:"

// RedisPlanCache shares compiled plans across server instances.
type RedisPlanCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *RedisPlanCache {
	return &RedisPlanCache{client: client, ttl: ttl}
}

// Get returns the cached plan. A missing or expired key is not an error.
func (c *RedisPlanCache) Get(ctx context.Context, key string) (string, bool, error) {
	plan, err := c.client.Get(ctx, planKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: redis get: %v", sentinel.ErrUnavailable, err)
	}
	return plan, true, nil
}

// Set stores plan with the configured TTL using SET EX.
func (c *RedisPlanCache) Set(ctx context.Context, key, plan string) error {
	if err := c.client.Set(ctx, planKeyPrefix+key, plan, c.ttl).Err(); err != nil {
		return fmt.Errorf("%w: redis set: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}
