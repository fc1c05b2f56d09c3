package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	c := NewRedisCache(&CacheConfig{
		Engine:    EngineRedis,
		RedisURL:  "redis://" + server.Addr(),
		KeyPrefix: "fibtest",
	})
	require.NoError(t, c.Connect(context.Background()))
	t.Cleanup(func() { _ = c.Close(context.Background()) })
	return c, server
}

func TestRedisCacheLoadStore(t *testing.T) {
	ctx := context.Background()
	c, server := newRedisCache(t)

	_, ok, err := c.Load(ctx, 93)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Store(ctx, 93, 12200160415121876738))
	term, ok, err := c.Load(ctx, 93)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(12200160415121876738), term)

	stored, err := server.Get("fibtest:term:93")
	require.NoError(t, err)
	assert.Equal(t, "12200160415121876738", stored)
}

func TestRedisCacheFlushOnlyTouchesPrefix(t *testing.T) {
	ctx := context.Background()
	c, server := newRedisCache(t)
	require.NoError(t, server.Set("unrelated", "keep"))

	for n := 2; n < 10; n++ {
		require.NoError(t, c.Store(ctx, n, uint64(n)))
	}
	size, err := c.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, size)

	require.NoError(t, c.Flush(ctx))
	size, err = c.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, size)
	assert.True(t, server.Exists("unrelated"))
}

func TestRedisCacheTTL(t *testing.T) {
	ctx := context.Background()
	c, server := newRedisCache(t)
	c.config.DefaultTTL = time.Minute

	require.NoError(t, c.Store(ctx, 20, 6765))
	assert.Equal(t, time.Minute, server.TTL("fibtest:term:20"))

	server.FastForward(2 * time.Minute)
	_, ok, err := c.Load(ctx, 20)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCacheCorruptValue(t *testing.T) {
	ctx := context.Background()
	c, server := newRedisCache(t)
	require.NoError(t, server.Set("fibtest:term:7", "thirteen"))

	_, _, err := c.Load(ctx, 7)
	assert.ErrorIs(t, err, ErrCorruptTerm)
}

func TestRedisCacheNotConnected(t *testing.T) {
	ctx := context.Background()
	c := NewRedisCache(&CacheConfig{RedisURL: "redis://localhost:1"})

	_, _, err := c.Load(ctx, 3)
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.ErrorIs(t, c.Store(ctx, 3, 2), ErrNotConnected)
	assert.ErrorIs(t, c.Ping(ctx), ErrNotConnected)
	assert.NoError(t, c.Close(ctx))
}

func TestRedisCacheConnectFailures(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	bad := NewRedisCache(&CacheConfig{RedisURL: "http://nope"})
	assert.Error(t, bad.Connect(ctx))

	server := miniredis.RunT(t)
	addr := server.Addr()
	server.Close()
	down := NewRedisCache(&CacheConfig{RedisURL: "redis://" + addr})
	assert.Error(t, down.Connect(ctx))
}

func TestRedisCacheWithPassword(t *testing.T) {
	server := miniredis.RunT(t)
	server.RequireAuth("secret")

	c := NewRedisCache(&CacheConfig{RedisURL: "redis://" + server.Addr(), RedisPassword: "secret", KeyPrefix: "p"})
	require.NoError(t, c.Connect(context.Background()))
	require.NoError(t, c.Close(context.Background()))
}
