package services

import (
	"context"
	"fmt"

	"github.com/0x6Ain/trip-flow-sub000/internal/domain"
	"github.com/0x6Ain/trip-flow-sub000/internal/platform/obs"
)

// Overflow reports a stop whose computed arrival crossed midnight.
// The stop keeps its day; moving it is up to the host.
type Overflow struct {
	StopID      string
	DaysCrossed int
}

type PropagationResult struct {
	Day       int
	Updated   []string // ids of stops whose visit time changed
	Overflows []Overflow
}

// TimePropagator recomputes derived visit times along a day's stops.
type TimePropagator struct {
	resolver *RouteResolver
}

func NewTimePropagator(resolver *RouteResolver) *TimePropagator {
	return &TimePropagator{resolver: resolver}
}

// PropagateDay walks the day in visiting order and sets every unpinned stop
// after the first to its predecessor's departure plus the leg's travel time.
//
// A pinned stop is never overwritten and anchors the following stops. If a
// predecessor has no time, following unpinned stops become unset until the
// next pinned stop. An oracle failure stops the walk: stops already visited
// keep their new times, later ones are untouched, and the partial result is
// returned together with the error.
func (p *TimePropagator) PropagateDay(ctx context.Context, trip *domain.Trip, day int) (res PropagationResult, err error) {
	defer obs.Time(ctx, "propagate.Day")(&err)

	res = PropagationResult{Day: day}
	if day < 1 || day > trip.TotalDays() {
		return res, fmt.Errorf("propagate day: %w: day %d outside [1, %d]", domain.ErrInvalidDay, day, trip.TotalDays())
	}

	var (
		prev   domain.Stop
		depart *int // absolute minutes the previous stop is left at; nil when unknown
	)

	for i, s := range trip.DayStops(day) {
		if i == 0 || s.Visit.IsPinned() {
			arrive, ok := s.Visit.Minutes()
			depart = departure(s, arrive, ok)
			prev = s
			continue
		}

		if depart == nil {
			if s.Visit.IsSet() {
				if err := p.store(trip, s, domain.UnsetTime(), &res); err != nil {
					return res, err
				}
			}
			prev = s
			continue
		}

		q := legQuery(stopEndpoint(prev), stopEndpoint(s), prev.LegMode(trip.DefaultMode))
		est, err := p.resolver.Resolve(ctx, q)
		if err != nil {
			return res, fmt.Errorf("propagate day %d: leg %q -> %q: %w", day, prev.ID, s.ID, err)
		}

		arrive := *depart + est.DurationMin
		if arrive >= domain.MinutesPerDay {
			res.Overflows = append(res.Overflows, Overflow{StopID: s.ID, DaysCrossed: arrive / domain.MinutesPerDay})
		}

		if err := p.store(trip, s, domain.DerivedTime(arrive), &res); err != nil {
			return res, err
		}

		s.Visit = domain.DerivedTime(arrive)
		depart = departure(s, arrive, true)
		prev = s
	}

	return res, nil
}

func (p *TimePropagator) store(trip *domain.Trip, s domain.Stop, v domain.VisitTime, res *PropagationResult) error {
	if s.Visit == v {
		return nil
	}
	if err := trip.UpdateDerivedTime(s.ID, v); err != nil {
		return fmt.Errorf("propagate day %d: %w", res.Day, err)
	}
	res.Updated = append(res.Updated, s.ID)
	return nil
}

// departure returns the absolute minute the stop is left at, given its
// absolute arrival. An explicit departure or a pinned time is used as is and
// the dwell is ignored; otherwise the dwell is added to the arrival. An
// explicit departure never precedes the arrival.
func departure(s domain.Stop, arrive int, known bool) *int {
	var d int
	switch {
	case s.DepartAt != nil:
		d = *s.DepartAt
		if known {
			d = max(arrive, arrive-arrive%domain.MinutesPerDay+d)
		}
	case !known:
		return nil
	case s.Visit.IsPinned():
		d = arrive
	default:
		d = arrive + s.DurationMin
	}
	return &d
}
