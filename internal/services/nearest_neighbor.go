package services

import (
	"math"

	"github.com/paulmach/orb/planar"

	"github.com/0x6Ain/trip-flow-sub000/internal/domain"
)

// NearestNeighborTour orders stops greedily from start, always moving to the
// closest unvisited stop by straight-line distance in lat/lng space.
//
// The planar distance is only a cheap proxy for building a starting tour; it
// issues no oracle calls. Ties go to the stop that comes first in the input.
func NearestNeighborTour(start domain.GeoPoint, stops []domain.Stop) []domain.Stop {
	tour := make([]domain.Stop, 0, len(stops))
	visited := make([]bool, len(stops))
	current := start.Point()

	for len(tour) < len(stops) {
		best := -1
		bestDist := math.Inf(1)

		for i, s := range stops {
			if visited[i] {
				continue
			}
			if d := planar.Distance(current, s.Location.Point()); d < bestDist {
				best, bestDist = i, d
			}
		}

		visited[best] = true
		tour = append(tour, stops[best])
		current = stops[best].Location.Point()
	}

	return tour
}
