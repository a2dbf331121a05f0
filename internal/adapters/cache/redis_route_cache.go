package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/0x6Ain/trip-flow-sub000/internal/domain"
	"github.com/0x6Ain/trip-flow-sub000/internal/platform/obs"
)

// RedisRouteCache stores route estimates as JSON under RouteKey.String().
// A zero TTL keeps entries until evicted by Redis itself.
type RedisRouteCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisRouteCache(client *redis.Client, ttl time.Duration) *RedisRouteCache {
	return &RedisRouteCache{Client: client, TTL: ttl}
}

func (r *RedisRouteCache) Get(ctx context.Context, key domain.RouteKey) (_ domain.TravelEstimate, _ bool, err error) {
	defer obs.Time(ctx, "route.cache.redis.Get")(&err)

	if r.Client == nil {
		return domain.TravelEstimate{}, false, errors.New("route cache: redis client is nil")
	}

	raw, err := r.Client.Get(ctx, key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.TravelEstimate{}, false, nil
	}
	if err != nil {
		return domain.TravelEstimate{}, false, fmt.Errorf("get route cache %s: %w", key, err)
	}

	var est domain.TravelEstimate
	if err := json.Unmarshal(raw, &est); err != nil {
		return domain.TravelEstimate{}, false, fmt.Errorf("get route cache %s: decode: %w", key, err)
	}
	return est, true, nil
}

func (r *RedisRouteCache) Put(ctx context.Context, key domain.RouteKey, est domain.TravelEstimate) error {
	if r.Client == nil {
		return errors.New("route cache: redis client is nil")
	}

	payload, err := json.Marshal(est)
	if err != nil {
		return fmt.Errorf("insert route cache %s: encode: %w", key, err)
	}

	if err := r.Client.Set(ctx, key.String(), payload, r.TTL).Err(); err != nil {
		return fmt.Errorf("insert route cache %s: %w", key, err)
	}
	return nil
}
