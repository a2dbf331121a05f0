package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0x6Ain/trip-flow-sub000/internal/domain"
)

func newRedisCache(t *testing.T, ttl time.Duration) (*RedisRouteCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisRouteCache(client, ttl), mr
}

func TestRedisRouteCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t, 0)
	key := testKey("37.500000,127.030000", "37.510000,127.040000", domain.Walking)

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	want := domain.TravelEstimate{DurationMin: 21, DistanceKm: 1.45}
	require.NoError(t, c.Put(ctx, key, want))
	assert.True(t, mr.Exists(key.String()))

	got, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestRedisRouteCache_TTLExpires(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t, time.Hour)
	key := testKey("a", "b", domain.Driving)

	require.NoError(t, c.Put(ctx, key, domain.TravelEstimate{DurationMin: 3}))
	mr.FastForward(2 * time.Hour)

	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisRouteCache_CorruptValue(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t, 0)
	key := testKey("a", "b", domain.Driving)
	require.NoError(t, mr.Set(key.String(), "not json"))

	_, ok, err := c.Get(ctx, key)
	require.Error(t, err)
	assert.False(t, ok)
}

func TestRedisRouteCache_ServerDown(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t, 0)
	mr.Close()

	_, ok, err := c.Get(ctx, testKey("a", "b", domain.Driving))
	require.Error(t, err)
	assert.False(t, ok)
}
