package ports

import (
	"context"

	"github.com/0x6Ain/trip-flow-sub000/internal/domain"
)

// Memoization of oracle results keyed by directional (origin, destination, mode).
// A Put must be visible to a later Get of the same key.
type RouteCache interface {
	// Return the cached estimate and whether it was present.
	Get(ctx context.Context, key domain.RouteKey) (domain.TravelEstimate, bool, error)
	// Store an estimate, replacing any previous value for the key.
	Put(ctx context.Context, key domain.RouteKey, est domain.TravelEstimate) error
}
