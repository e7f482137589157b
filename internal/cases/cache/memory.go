package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

// DefaultMaxEntries bounds the in-process cache when no size is configured.
const DefaultMaxEntries = 10_000

type entry struct {
	plan      string
	expiresAt time.Time
}

// InMemoryPlanCache is a process-local plan cache with per-entry expiry. It
// holds at most maxEntries plans and evicts the least recently used one when
// full.
type InMemoryPlanCache struct {
	entries *lru.Cache
	ttl     time.Duration
	now     func() time.Time
}

type Option func(*memoryOptions)

type memoryOptions struct {
	maxEntries int
}

// WithMaxEntries caps the number of cached plans. Non-positive values keep
// the default.
func WithMaxEntries(n int) Option {
	return func(o *memoryOptions) {
		if n > 0 {
			o.maxEntries = n
		}
	}
}

// NewInMemory creates a cache whose entries live for ttl. A zero ttl keeps
// entries until they are evicted.
func NewInMemory(ttl time.Duration, opts ...Option) *InMemoryPlanCache {
	o := memoryOptions{maxEntries: DefaultMaxEntries}
	for _, opt := range opts {
		opt(&o)
	}
	// lru.New only fails for a non-positive size, which the options rule out.
	entries, _ := lru.New(o.maxEntries)
	return &InMemoryPlanCache{
		entries: entries,
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *InMemoryPlanCache) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := c.entries.Get(key)
	if !ok {
		return "", false, nil
	}
	e := v.(entry)
	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		c.entries.Remove(key)
		return "", false, nil
	}
	return e.plan, true, nil
}

func (c *InMemoryPlanCache) Set(_ context.Context, key, plan string) error {
	e := entry{plan: plan}
	if c.ttl > 0 {
		e.expiresAt = c.now().Add(c.ttl)
	}
	c.entries.Add(key, e)
	return nil
}

// Len reports the number of cached plans, expired ones included until they
// are read or evicted.
func (c *InMemoryPlanCache) Len() int {
	return c.entries.Len()
}
