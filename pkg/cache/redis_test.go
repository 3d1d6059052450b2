package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T, opts ...RedisOption) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewRedisCacheFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), opts...)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestRedisCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t)

	_, hit, err := c.Get(ctx, "tree:a")
	require.NoError(t, err)
	require.False(t, hit)

	require.NoError(t, c.Set(ctx, "tree:a", []byte("payload"), 0))
	require.True(t, mr.Exists(DefaultRedisPrefix+"tree:a"))

	data, hit, err := c.Get(ctx, "tree:a")
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, "payload", string(data))

	require.NoError(t, c.Delete(ctx, "tree:a"))
	_, hit, err = c.Get(ctx, "tree:a")
	require.NoError(t, err)
	require.False(t, hit)
}

func TestRedisCache_TTL(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Second))
	mr.FastForward(2 * time.Second)

	_, hit, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, hit)
}

func TestRedisCache_ClearOnlyOwnPrefix(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t, WithRedisPrefix("test:"))

	for i := range 300 {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("k%d", i), []byte("x"), 0))
	}
	require.NoError(t, mr.Set("other:key", "keep"))

	require.NoError(t, c.Clear(ctx))
	require.Equal(t, []string{"other:key"}, mr.Keys())
}

func TestRedisCache_BackendDown(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t)
	mr.Close()

	_, _, err := c.Get(ctx, "k")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrBackend)
	require.True(t, IsRetryable(err))
}

func TestNewRedisCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	c, err := NewRedisCache(ctx, "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, SetJSON(ctx, c, "k", map[string]int{"n": 1}, time.Minute))

	var got map[string]int
	require.NoError(t, GetJSON(ctx, c, "k", &got))
	require.Equal(t, 1, got["n"])

	_, err = NewRedisCache(ctx, "not a url")
	require.Error(t, err)
}
