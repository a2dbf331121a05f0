// Package domain holds the itinerary model: trips, stops, visit times and the
// ledger operations that keep a trip's day-partitioned stop list consistent.
package domain

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

const (
	// DefaultMaxStops is the stop ceiling used when TripParams leaves it unset.
	DefaultMaxStops = 10

	// Order keys start at OrderBaseline and grow by OrderStep.
	OrderBaseline = 10.0
	OrderStep     = 10.0

	// MinOrderGap is the smallest gap tolerated between adjacent order keys of
	// a day; a smaller gap triggers renormalization of that day.
	MinOrderGap = 1e-4
)

type TripParams struct {
	ID          string
	Title       string
	Start       GeoPoint
	TotalDays   int
	DefaultMode TravelMode
	MaxStops    int
}

// Trip aggregate: owns the ordered, day-partitioned stop collection.
//
// A Trip is not safe for concurrent use; hosts serialize commands per trip
// (see services.TripPlanner).
type Trip struct {
	ID          string
	Title       string
	Start       GeoPoint
	DefaultMode TravelMode

	totalDays int
	maxStops  int
	stops     []*Stop
}

func NewTrip(p TripParams) (*Trip, error) {
	if p.TotalDays == 0 {
		p.TotalDays = 1
	}
	if p.TotalDays < 0 {
		return nil, fmt.Errorf("new trip: total days must be positive, got %d", p.TotalDays)
	}

	if p.MaxStops == 0 {
		p.MaxStops = DefaultMaxStops
	}
	if p.MaxStops < 0 {
		return nil, fmt.Errorf("new trip: max stops must be positive, got %d", p.MaxStops)
	}

	if p.DefaultMode == "" {
		p.DefaultMode = Driving
	}
	if !p.DefaultMode.Valid() {
		return nil, fmt.Errorf("new trip: unsupported travel mode %q", p.DefaultMode)
	}

	id := p.ID
	if id == "" {
		id = uuid.NewString()
	}

	return &Trip{
		ID:          id,
		Title:       p.Title,
		Start:       p.Start,
		DefaultMode: p.DefaultMode,
		totalDays:   p.TotalDays,
		maxStops:    p.MaxStops,
	}, nil
}

func (t *Trip) TotalDays() int { return t.totalDays }
func (t *Trip) MaxStops() int  { return t.maxStops }
func (t *Trip) StopCount() int { return len(t.stops) }

// Stop returns a copy of the stop with the given id.
func (t *Trip) Stop(id string) (Stop, error) {
	s := t.find(id)
	if s == nil {
		return Stop{}, fmt.Errorf("%w: %q", ErrStopNotFound, id)
	}
	return copyStop(s), nil
}

// Stops returns copies of all stops ordered by (day, order).
func (t *Trip) Stops() []Stop {
	sorted := slices.Clone(t.stops)
	slices.SortStableFunc(sorted, func(a, b *Stop) int {
		if c := cmp.Compare(a.Day, b.Day); c != 0 {
			return c
		}
		return cmp.Compare(a.Order, b.Order)
	})

	out := make([]Stop, 0, len(sorted))
	for _, s := range sorted {
		out = append(out, copyStop(s))
	}
	return out
}

// DayStops returns copies of one day's stops in visiting order.
func (t *Trip) DayStops(day int) []Stop {
	ptrs := t.day(day)
	out := make([]Stop, 0, len(ptrs))
	for _, s := range ptrs {
		out = append(out, copyStop(s))
	}
	return out
}

// Clone returns a deep copy of the trip.
func (t *Trip) Clone() *Trip {
	c := *t
	c.stops = nil
	if t.stops != nil {
		c.stops = make([]*Stop, 0, len(t.stops))
	}
	for _, s := range t.stops {
		cp := copyStop(s)
		c.stops = append(c.stops, &cp)
	}
	return &c
}

// Validate checks the ledger invariants: unique ids, every day within
// [1, totalDays] and pairwise distinct order keys within a day.
func (t *Trip) Validate() error {
	ids := make(map[string]struct{}, len(t.stops))
	orders := make(map[int]map[float64]string)
	for _, s := range t.stops {
		if _, dup := ids[s.ID]; dup {
			return fmt.Errorf("validate trip: duplicate stop id %q", s.ID)
		}
		ids[s.ID] = struct{}{}

		if s.Day < 1 || s.Day > t.totalDays {
			return fmt.Errorf("validate trip: stop %q on day %d outside [1, %d]", s.ID, s.Day, t.totalDays)
		}

		if orders[s.Day] == nil {
			orders[s.Day] = make(map[float64]string)
		}
		if other, dup := orders[s.Day][s.Order]; dup {
			return fmt.Errorf("validate trip: stops %q and %q share order %v on day %d", other, s.ID, s.Order, s.Day)
		}
		orders[s.Day][s.Order] = s.ID
	}

	if len(t.stops) > t.maxStops {
		return fmt.Errorf("validate trip: %d stops exceed ceiling %d", len(t.stops), t.maxStops)
	}
	return nil
}

func (t *Trip) checkDay(day int) error {
	if day < 1 || day > t.totalDays {
		return fmt.Errorf("%w: day %d outside [1, %d]", ErrInvalidDay, day, t.totalDays)
	}
	return nil
}

func (t *Trip) find(id string) *Stop {
	for _, s := range t.stops {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// day returns the live stops of one day sorted by order.
func (t *Trip) day(day int) []*Stop {
	var out []*Stop
	for _, s := range t.stops {
		if s.Day == day {
			out = append(out, s)
		}
	}
	slices.SortStableFunc(out, func(a, b *Stop) int { return cmp.Compare(a.Order, b.Order) })
	return out
}

func copyStop(s *Stop) Stop {
	c := *s
	if s.DepartAt != nil {
		d := *s.DepartAt
		c.DepartAt = &d
	}
	return c
}
