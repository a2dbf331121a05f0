package cache

import (
	"context"
	"log/slog"

	"go.uber.org/multierr"

	"github.com/0x6Ain/trip-flow-sub000/internal/domain"
	"github.com/0x6Ain/trip-flow-sub000/internal/ports"
)

// TieredRouteCache fronts a durable cache with a fast session cache.
// Reads that hit the back tier are promoted to the front tier.
type TieredRouteCache struct {
	Front ports.RouteCache
	Back  ports.RouteCache
}

func NewTieredRouteCache(front, back ports.RouteCache) *TieredRouteCache {
	return &TieredRouteCache{Front: front, Back: back}
}

func (c *TieredRouteCache) Get(ctx context.Context, key domain.RouteKey) (domain.TravelEstimate, bool, error) {
	est, ok, err := c.Front.Get(ctx, key)
	if err == nil && ok {
		return est, true, nil
	}
	frontErr := err

	est, ok, err = c.Back.Get(ctx, key)
	if err != nil {
		return domain.TravelEstimate{}, false, multierr.Append(frontErr, err)
	}
	if !ok {
		return domain.TravelEstimate{}, false, frontErr
	}

	if err := c.Front.Put(ctx, key, est); err != nil {
		slog.WarnContext(ctx, "route cache promotion failed", "key", key.String(), "error", err)
	}
	return est, true, nil
}

// Put writes to both tiers; failures from either are combined.
func (c *TieredRouteCache) Put(ctx context.Context, key domain.RouteKey, est domain.TravelEstimate) error {
	return multierr.Combine(
		c.Front.Put(ctx, key, est),
		c.Back.Put(ctx, key, est),
	)
}
