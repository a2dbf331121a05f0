package services

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/paulmach/orb/planar"
	"go.uber.org/atomic"

	"github.com/0x6Ain/trip-flow-sub000/internal/adapters/cache"
	"github.com/0x6Ain/trip-flow-sub000/internal/domain"
	"github.com/0x6Ain/trip-flow-sub000/internal/ports"
)

// kmPerDegree scales planar degrees to a plausible kilometre figure.
const kmPerDegree = 111.0

// euclidOracle prices legs proportionally to their straight-line length.
func euclidOracle(calls *atomic.Int64) ports.TravelOracle {
	return ports.OracleFunc(func(_ context.Context, q ports.TravelQuery) (domain.TravelEstimate, error) {
		calls.Inc()
		km := planar.Distance(q.Origin.Point(), q.Destination.Point()) * kmPerDegree
		return domain.TravelEstimate{DurationMin: int(math.Round(km * 3)), DistanceKm: km}, nil
	})
}

// tableOracle answers from "from|to" keyed costs; duration equals distance.
// It never inspects the context.
func tableOracle(costs map[string]float64) ports.TravelOracle {
	return ports.OracleFunc(func(_ context.Context, q ports.TravelQuery) (domain.TravelEstimate, error) {
		c, ok := costs[q.OriginKey+"|"+q.DestinationKey]
		if !ok {
			return domain.TravelEstimate{}, fmt.Errorf("no cost for %s -> %s", q.OriginKey, q.DestinationKey)
		}
		return domain.TravelEstimate{DurationMin: int(c), DistanceKm: c}, nil
	})
}

func newResolver(oracle ports.TravelOracle) *RouteResolver {
	return NewRouteResolver(oracle, cache.NewMemoryRouteCache())
}

func newTrip(t *testing.T, days int) *domain.Trip {
	t.Helper()
	trip, err := domain.NewTrip(domain.TripParams{
		Title:     "test trip",
		Start:     domain.GeoPoint{Lat: 37.50, Lng: 127.03},
		TotalDays: days,
	})
	if err != nil {
		t.Fatalf("new trip: %v", err)
	}
	return trip
}

func addStop(t *testing.T, trip *domain.Trip, day int, in domain.StopInput) domain.Stop {
	t.Helper()
	s, err := trip.InsertStop(day, domain.Append(), in)
	if err != nil {
		t.Fatalf("insert stop %q: %v", in.PlaceID, err)
	}
	return s
}

func visitMinutes(t *testing.T, trip *domain.Trip, id string) (int, bool) {
	t.Helper()
	s, err := trip.Stop(id)
	if err != nil {
		t.Fatalf("stop %q: %v", id, err)
	}
	return s.Visit.Minutes()
}

// countdownCtx reports cancellation once Err has been called more than limit times.
type countdownCtx struct {
	context.Context
	calls *atomic.Int64
	limit int64
}

func newCountdownCtx(limit int64) countdownCtx {
	return countdownCtx{Context: context.Background(), calls: atomic.NewInt64(0), limit: limit}
}

func (c countdownCtx) Err() error {
	if c.calls.Inc() > c.limit {
		return context.Canceled
	}
	return nil
}
