package cache

import (
	"context"
	"log/slog"

	"kycdsl/pkg/platform/circuit"
)

// PlanCache is the contract shared by the Redis and in-memory caches.
type PlanCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, plan string) error
}

// GuardedPlanCache fronts a remote cache with a circuit breaker. While the
// breaker is open reads are served from the fallback and only writes retry
// the primary, so a Redis outage does not add a round trip to every compile.
type GuardedPlanCache struct {
	primary  PlanCache
	fallback PlanCache
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

func NewGuarded(primary, fallback PlanCache, breaker *circuit.Breaker, logger *slog.Logger) *GuardedPlanCache {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &GuardedPlanCache{
		primary:  primary,
		fallback: fallback,
		breaker:  breaker,
		logger:   logger,
	}
}

func (c *GuardedPlanCache) Get(ctx context.Context, key string) (string, bool, error) {
	if c.breaker.IsOpen() {
		return c.fallback.Get(ctx, key)
	}
	plan, ok, err := c.primary.Get(ctx, key)
	if err != nil {
		c.recordFailure(ctx, err)
		return c.fallback.Get(ctx, key)
	}
	c.recordSuccess(ctx)
	return plan, ok, nil
}

// Set always writes the fallback so a later outage still has warm entries.
func (c *GuardedPlanCache) Set(ctx context.Context, key, plan string) error {
	if err := c.fallback.Set(ctx, key, plan); err != nil {
		return err
	}
	if err := c.primary.Set(ctx, key, plan); err != nil {
		c.recordFailure(ctx, err)
		return nil
	}
	c.recordSuccess(ctx)
	return nil
}

func (c *GuardedPlanCache) recordFailure(ctx context.Context, err error) {
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.WarnContext(ctx, "plan cache circuit opened",
			"breaker", c.breaker.Name(),
			"error", err,
		)
	}
}

func (c *GuardedPlanCache) recordSuccess(ctx context.Context) {
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "plan cache circuit closed", "breaker", c.breaker.Name())
	}
}
