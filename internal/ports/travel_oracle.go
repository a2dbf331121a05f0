package ports

import (
	"context"

	"github.com/0x6Ain/trip-flow-sub000/internal/domain"
)

// One directional leg to be priced by the oracle. The keys identify the
// endpoints to the provider (external place ids or coordinate keys).
type TravelQuery struct {
	Origin         domain.GeoPoint
	Destination    domain.GeoPoint
	Mode           domain.TravelMode
	OriginKey      string
	DestinationKey string
}

// Key returns the route cache key for the query.
func (q TravelQuery) Key() domain.RouteKey {
	return domain.RouteKey{OriginKey: q.OriginKey, DestinationKey: q.DestinationKey, Mode: q.Mode}
}

// Contract for the host-supplied travel cost oracle.
// Implementations may be slow and may fail; failures should be reported as
// *domain.OracleError so callers can tell transient from permanent ones.
type TravelOracle interface {
	// Return travel duration (minutes) and distance (km) for one leg.
	Query(ctx context.Context, q TravelQuery) (domain.TravelEstimate, error)
}

// OracleFunc adapts a plain function to TravelOracle.
type OracleFunc func(ctx context.Context, q TravelQuery) (domain.TravelEstimate, error)

func (f OracleFunc) Query(ctx context.Context, q TravelQuery) (domain.TravelEstimate, error) {
	return f(ctx, q)
}
