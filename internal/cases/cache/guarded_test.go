package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kycdsl/pkg/platform/circuit"
)

type flakyCache struct {
	err   error
	gets  int
	sets  int
	inner *InMemoryPlanCache
}

func (f *flakyCache) Get(ctx context.Context, key string) (string, bool, error) {
	f.gets++
	if f.err != nil {
		return "", false, f.err
	}
	return f.inner.Get(ctx, key)
}

func (f *flakyCache) Set(ctx context.Context, key, plan string) error {
	f.sets++
	if f.err != nil {
		return f.err
	}
	return f.inner.Set(ctx, key, plan)
}

func TestGuardedPlanCache(t *testing.T) {
	ctx := context.Background()

	t.Run("healthy primary serves reads", func(t *testing.T) {
		primary := &flakyCache{inner: NewInMemory(0)}
		c := NewGuarded(primary, NewInMemory(0), circuit.New("plan-cache"), nil)

		require.NoError(t, c.Set(ctx, "k", "[]"))
		plan, ok, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "[]", plan)
		assert.Equal(t, 1, primary.gets)
	})

	t.Run("failing primary falls back and opens", func(t *testing.T) {
		primary := &flakyCache{inner: NewInMemory(0), err: errors.New("connection refused")}
		breaker := circuit.New("plan-cache", circuit.WithFailureThreshold(2))
		c := NewGuarded(primary, NewInMemory(0), breaker, nil)

		require.NoError(t, c.Set(ctx, "k", "[]"))
		plan, ok, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "[]", plan)
		assert.True(t, breaker.IsOpen())

		_, _, _ = c.Get(ctx, "k")
		assert.Equal(t, 1, primary.gets, "open breaker skips the primary on reads")
	})

	t.Run("successful writes close the breaker", func(t *testing.T) {
		primary := &flakyCache{inner: NewInMemory(0), err: errors.New("timeout")}
		breaker := circuit.New("plan-cache", circuit.WithFailureThreshold(1), circuit.WithSuccessThreshold(2))
		c := NewGuarded(primary, NewInMemory(0), breaker, nil)

		require.NoError(t, c.Set(ctx, "a", "[]"))
		require.True(t, breaker.IsOpen())

		primary.err = nil
		require.NoError(t, c.Set(ctx, "b", "[]"))
		assert.True(t, breaker.IsOpen())
		require.NoError(t, c.Set(ctx, "c", "[]"))
		assert.False(t, breaker.IsOpen())
	})
}
