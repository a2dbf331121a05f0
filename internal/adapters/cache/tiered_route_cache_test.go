package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/0x6Ain/trip-flow-sub000/internal/domain"
)

type failingCache struct{ err error }

func (f failingCache) Get(context.Context, domain.RouteKey) (domain.TravelEstimate, bool, error) {
	return domain.TravelEstimate{}, false, f.err
}

func (f failingCache) Put(context.Context, domain.RouteKey, domain.TravelEstimate) error {
	return f.err
}

func TestTieredRouteCache_PromotesBackHits(t *testing.T) {
	ctx := context.Background()
	front, back := NewMemoryRouteCache(), NewMemoryRouteCache()
	c := NewTieredRouteCache(front, back)
	key := testKey("a", "b", domain.Driving)
	want := domain.TravelEstimate{DurationMin: 7, DistanceKm: 1}

	require.NoError(t, back.Put(ctx, key, want))

	got, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
	assert.Equal(t, 1, front.Len())

	_, _, err = c.Get(ctx, key)
	require.NoError(t, err)
	backHits, _ := back.Stats()
	assert.EqualValues(t, 1, backHits, "second read is served by the front tier")
}

func TestTieredRouteCache_PutWritesBoth(t *testing.T) {
	ctx := context.Background()
	front, back := NewMemoryRouteCache(), NewMemoryRouteCache()
	c := NewTieredRouteCache(front, back)

	require.NoError(t, c.Put(ctx, testKey("a", "b", domain.Driving), domain.TravelEstimate{DurationMin: 1}))
	assert.Equal(t, 1, front.Len())
	assert.Equal(t, 1, back.Len())
}

func TestTieredRouteCache_CombinesErrors(t *testing.T) {
	ctx := context.Background()
	errFront := errors.New("front down")
	errBack := errors.New("back down")
	c := NewTieredRouteCache(failingCache{errFront}, failingCache{errBack})

	_, ok, err := c.Get(ctx, testKey("a", "b", domain.Driving))
	assert.False(t, ok)
	require.Error(t, err)
	assert.ErrorIs(t, err, errFront)
	assert.ErrorIs(t, err, errBack)

	err = c.Put(ctx, testKey("a", "b", domain.Driving), domain.TravelEstimate{})
	assert.Len(t, multierr.Errors(err), 2)
}

func TestTieredRouteCache_FrontFailureFallsBack(t *testing.T) {
	ctx := context.Background()
	back := NewMemoryRouteCache()
	key := testKey("a", "b", domain.Driving)
	require.NoError(t, back.Put(ctx, key, domain.TravelEstimate{DurationMin: 4}))

	c := NewTieredRouteCache(failingCache{errors.New("front down")}, back)
	got, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4, got.DurationMin)
}
