package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheGetSet(t *testing.T) {
	c := NewMemoryCache[string]()
	ctx := context.Background()

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache[int]()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", 42, -time.Second))

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheDelete(t *testing.T) {
	c := NewMemoryCache[string]()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	require.NoError(t, c.Delete(ctx, "k"))

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheGetWithFetch(t *testing.T) {
	c := NewMemoryCache[string]()
	ctx := context.Background()

	calls := 0
	fetch := func(ctx context.Context, key string) (string, error) {
		calls++
		return "fetched:" + key, nil
	}

	got, err := c.GetWithFetch(ctx, "k", time.Minute, fetch)
	require.NoError(t, err)
	assert.Equal(t, "fetched:k", got)
	assert.Equal(t, 1, calls)

	// Second call is served from cache.
	got, err = c.GetWithFetch(ctx, "k", time.Minute, fetch)
	require.NoError(t, err)
	assert.Equal(t, "fetched:k", got)
	assert.Equal(t, 1, calls)
}

func TestMemoryCacheGetWithFetchError(t *testing.T) {
	c := NewMemoryCache[string]()
	ctx := context.Background()

	fetchErr := errors.New("backend down")
	_, err := c.GetWithFetch(ctx, "k", time.Minute,
		func(ctx context.Context, key string) (string, error) {
			return "", fetchErr
		})
	assert.ErrorIs(t, err, fetchErr)

	// The failed fetch must not be cached.
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCacheConcurrentAccess(t *testing.T) {
	c := NewMemoryCache[int]()
	ctx := context.Background()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(n int) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				_ = c.Set(ctx, "shared", n, time.Minute)
				_, _ = c.Get(ctx, "shared")
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	require.NoError(t, c.Health(ctx))
}
