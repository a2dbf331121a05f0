package services

import (
	"context"
	"slices"

	"github.com/0x6Ain/trip-flow-sub000/internal/domain"
)

// tourCost is the oracle-backed length of an open tour from start.
type tourCost struct {
	km  float64
	min int
}

func (o *DayOptimizer) cost(ctx context.Context, start domain.GeoPoint, tour []domain.Stop, mode domain.TravelMode) (tourCost, error) {
	var c tourCost
	from := pointEndpoint(start)
	for _, s := range tour {
		to := stopEndpoint(s)
		est, err := o.resolver.Resolve(ctx, legQuery(from, to, mode))
		if err != nil {
			return tourCost{}, err
		}
		c.km += est.DistanceKm
		c.min += est.DurationMin
		from = to
	}
	return c, nil
}

// twoOptPass tries every segment reversal once, keeping those that strictly
// shorten the tour. The path is the start followed by the tour, so reversing
// path[i+1..j] replaces edges (i, i+1) and (j, j+1); j == len(tour) drops the
// second edge because the tour is open.
//
// It returns the improved tour and whether any reversal was kept. The
// context is checked before each comparison.
func (o *DayOptimizer) twoOptPass(
	ctx context.Context,
	start domain.GeoPoint,
	tour []domain.Stop,
	best tourCost,
	mode domain.TravelMode,
) ([]domain.Stop, tourCost, bool, error) {
	n := len(tour)
	improved := false

	for i := 0; i <= n-2; i++ {
		for j := i + 2; j <= n; j++ {
			if err := ctx.Err(); err != nil {
				return tour, best, improved, err
			}

			candidate := slices.Clone(tour)
			// path index k maps to tour index k-1
			slices.Reverse(candidate[i:j])

			c, err := o.cost(ctx, start, candidate, mode)
			if err != nil {
				return tour, best, improved, err
			}

			if c.km < best.km-distanceEpsilon {
				tour, best, improved = candidate, c, true
			}
		}
	}

	return tour, best, improved, nil
}
