package services

import (
	"context"
	"fmt"

	"github.com/0x6Ain/trip-flow-sub000/internal/domain"
)

// Segments returns the travel legs of the trip: trip start to the first stop
// of day 1, then each consecutive pair within every day. Legs are priced
// through the route cache.
func (p *TripPlanner) Segments(ctx context.Context) ([]domain.RouteSegment, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return buildSegments(ctx, p.resolver, p.trip)
}

// Summary totals the duration and distance of all segments.
func (p *TripPlanner) Summary(ctx context.Context) (domain.TripSummary, error) {
	segs, err := p.Segments(ctx)
	if err != nil {
		return domain.TripSummary{}, err
	}

	var sum domain.TripSummary
	for _, s := range segs {
		sum.TotalDurationMin += s.DurationMin
		sum.TotalDistanceKm += s.DistanceKm
	}
	return sum, nil
}

func buildSegments(ctx context.Context, resolver *RouteResolver, trip *domain.Trip) ([]domain.RouteSegment, error) {
	var segs []domain.RouteSegment

	for day := 1; day <= trip.TotalDays(); day++ {
		stops := trip.DayStops(day)
		if len(stops) == 0 {
			continue
		}

		if day == 1 {
			from, to := pointEndpoint(trip.Start), stopEndpoint(stops[0])
			est, err := resolver.Resolve(ctx, legQuery(from, to, trip.DefaultMode))
			if err != nil {
				return nil, fmt.Errorf("segments: start -> %q: %w", stops[0].ID, err)
			}
			segs = append(segs, domain.RouteSegment{
				Day:         day,
				ToStopID:    stops[0].ID,
				FromKey:     from.key,
				ToKey:       to.key,
				Mode:        trip.DefaultMode,
				DurationMin: est.DurationMin,
				DistanceKm:  est.DistanceKm,
			})
		}

		for i := 1; i < len(stops); i++ {
			prev, cur := stops[i-1], stops[i]
			from, to := stopEndpoint(prev), stopEndpoint(cur)
			mode := prev.LegMode(trip.DefaultMode)

			est, err := resolver.Resolve(ctx, legQuery(from, to, mode))
			if err != nil {
				return nil, fmt.Errorf("segments: %q -> %q: %w", prev.ID, cur.ID, err)
			}
			segs = append(segs, domain.RouteSegment{
				Day:         day,
				FromStopID:  prev.ID,
				ToStopID:    cur.ID,
				FromKey:     from.key,
				ToKey:       to.key,
				Mode:        mode,
				DurationMin: est.DurationMin,
				DistanceKm:  est.DistanceKm,
				DepartAt:    prev.DepartAt,
				Cost:        prev.Cost,
				Currency:    prev.Currency,
			})
		}
	}

	return segs, nil
}
