package services

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/0x6Ain/trip-flow-sub000/internal/domain"
	"github.com/0x6Ain/trip-flow-sub000/internal/platform/obs"
	"github.com/0x6Ain/trip-flow-sub000/internal/ports"
)

// RouteResolver prices legs through the route cache, falling back to the
// travel oracle on a miss and storing the answer for later lookups.
//
// Concurrent misses for the same key share one oracle call. Cache failures
// degrade to misses; they never fail a lookup.
type RouteResolver struct {
	oracle ports.TravelOracle
	cache  ports.RouteCache
	group  singleflight.Group
}

// NewRouteResolver returns a resolver. A nil cache disables caching.
func NewRouteResolver(oracle ports.TravelOracle, cache ports.RouteCache) *RouteResolver {
	return &RouteResolver{oracle: oracle, cache: cache}
}

// Resolve returns the estimate for one directional leg.
//
// The shared lookup runs detached from any single caller's cancellation;
// each caller stops waiting when its own ctx is done.
func (r *RouteResolver) Resolve(ctx context.Context, q ports.TravelQuery) (domain.TravelEstimate, error) {
	select {
	case <-ctx.Done():
		return domain.TravelEstimate{}, ctx.Err()
	default:
	}

	key := q.Key()
	shared := context.WithoutCancel(ctx)
	ch := r.group.DoChan(key.String(), func() (any, error) {
		return r.resolve(shared, q)
	})

	select {
	case <-ctx.Done():
		return domain.TravelEstimate{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.TravelEstimate{}, res.Err
		}
		return res.Val.(domain.TravelEstimate), nil
	}
}

func (r *RouteResolver) resolve(ctx context.Context, q ports.TravelQuery) (_ domain.TravelEstimate, err error) {
	defer obs.Time(ctx, "route.Resolve")(&err)

	key := q.Key()
	if r.cache != nil {
		est, ok, err := r.cache.Get(ctx, key)
		if err != nil {
			slog.WarnContext(ctx, "route cache read failed", "key", key.String(), "error", err)
		}
		if err == nil && ok {
			return est, nil
		}
	}

	est, err := r.oracle.Query(ctx, q)
	if err != nil {
		return domain.TravelEstimate{}, wrapOracleError(key, err)
	}

	if r.cache != nil {
		if err := r.cache.Put(ctx, key, est); err != nil {
			slog.WarnContext(ctx, "route cache write failed", "key", key.String(), "error", err)
		}
	}
	return est, nil
}

func wrapOracleError(key domain.RouteKey, err error) error {
	if isContextErr(err) {
		return err
	}
	var oe *domain.OracleError
	if errors.As(err, &oe) {
		return err
	}
	return &domain.OracleError{Kind: domain.Transient, Key: key, Err: err}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// legQuery builds the oracle query for travelling from one endpoint to another.
func legQuery(from, to endpoint, mode domain.TravelMode) ports.TravelQuery {
	return ports.TravelQuery{
		Origin:         from.loc,
		Destination:    to.loc,
		Mode:           mode,
		OriginKey:      from.key,
		DestinationKey: to.key,
	}
}

type endpoint struct {
	loc domain.GeoPoint
	key string
}

func stopEndpoint(s domain.Stop) endpoint {
	return endpoint{loc: s.Location, key: s.CacheKey()}
}

func pointEndpoint(p domain.GeoPoint) endpoint {
	return endpoint{loc: p, key: p.Key()}
}
