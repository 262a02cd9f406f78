package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRememberComputesOnce(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory()
	calls := 0
	compute := func(context.Context) (int, error) {
		calls++
		return 42, nil
	}

	for range 3 {
		v, err := cache.Remember(ctx, c, "stats:products", time.Minute, compute)
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	}
	assert.Equal(t, 1, calls)
}

func TestRememberDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory()

	_, err := cache.Remember(ctx, c, "k", time.Minute, func(context.Context) (int, error) {
		return 0, errors.New("store down")
	})
	require.Error(t, err)

	var v int
	assert.False(t, c.Get(ctx, "k", &v))
}

func TestMemoryDel(t *testing.T) {
	ctx := context.Background()
	c := cache.NewMemory()
	require.NoError(t, c.Set(ctx, "a", "x", 0))
	require.NoError(t, c.Del(ctx, "a"))

	var s string
	assert.False(t, c.Get(ctx, "a", &s))
}
