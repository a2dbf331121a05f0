package domain

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// InsertStop adds a stop to the given day at pos and returns it.
//
// The new order key falls strictly between its neighbours, so siblings are
// never renumbered unless their keys have grown closer than MinOrderGap.
func (t *Trip) InsertStop(day int, pos Position, in StopInput) (Stop, error) {
	if err := t.checkDay(day); err != nil {
		return Stop{}, fmt.Errorf("insert stop: %w", err)
	}

	if len(t.stops) >= t.maxStops {
		return Stop{}, fmt.Errorf("insert stop: trip holds %d of %d stops: %w", len(t.stops), t.maxStops, ErrCapacityExceeded)
	}

	if err := in.validate(); err != nil {
		return Stop{}, fmt.Errorf("insert stop: %w", err)
	}

	order, err := t.orderAt(day, pos)
	if err != nil {
		return Stop{}, fmt.Errorf("insert stop: %w", err)
	}

	s := &Stop{
		ID:          uuid.NewString(),
		PlaceID:     strings.TrimSpace(in.PlaceID),
		Name:        in.Name,
		Location:    in.Location,
		Day:         day,
		Order:       order,
		Visit:       in.Visit,
		DurationMin: in.DurationMin,
		Memo:        in.Memo,
	}
	t.stops = append(t.stops, s)

	if crowded(t.day(day)) {
		t.renormalize(day)
	}

	return copyStop(s), nil
}

// orderAt computes the key for a stop inserted at pos. It may renormalize the
// day first when floating point can no longer split the requested gap; this
// preserves the visiting sequence.
func (t *Trip) orderAt(day int, pos Position) (float64, error) {
	stops := t.day(day)

	if pos.after != "" {
		idx := slices.IndexFunc(stops, func(s *Stop) bool { return s.ID == pos.after })
		if idx < 0 {
			if t.find(pos.after) != nil {
				return 0, fmt.Errorf("%w: %q is not on day %d", ErrStopNotFound, pos.after, day)
			}
			return 0, fmt.Errorf("%w: %q", ErrStopNotFound, pos.after)
		}
		if idx == len(stops)-1 {
			return stops[idx].Order + OrderStep, nil
		}

		lo, hi := stops[idx].Order, stops[idx+1].Order
		mid := lo + (hi-lo)/2
		if mid <= lo || mid >= hi {
			t.renormalize(day)
			lo, hi = stops[idx].Order, stops[idx+1].Order
			mid = lo + (hi-lo)/2
		}
		return mid, nil
	}

	if len(stops) == 0 {
		return OrderBaseline, nil
	}
	if pos.first {
		return stops[0].Order - OrderStep, nil
	}
	return stops[len(stops)-1].Order + OrderStep, nil
}

// RemoveStop deletes a stop. Sibling order keys are left untouched.
func (t *Trip) RemoveStop(id string) (Stop, error) {
	idx := slices.IndexFunc(t.stops, func(s *Stop) bool { return s.ID == id })
	if idx < 0 {
		return Stop{}, fmt.Errorf("remove stop: %w: %q", ErrStopNotFound, id)
	}

	removed := copyStop(t.stops[idx])
	t.stops = slices.Delete(t.stops, idx, idx+1)
	return removed, nil
}

// ReorderDay assigns evenly spaced order keys so the day's visiting sequence
// equals ids exactly. ids must be a permutation of the day's stops.
func (t *Trip) ReorderDay(day int, ids []string) error {
	if err := t.checkDay(day); err != nil {
		return fmt.Errorf("reorder day: %w", err)
	}

	stops := t.day(day)
	if len(ids) != len(stops) {
		return fmt.Errorf("reorder day %d: got %d ids for %d stops: %w", day, len(ids), len(stops), ErrSequenceMismatch)
	}

	byID := make(map[string]*Stop, len(stops))
	for _, s := range stops {
		byID[s.ID] = s
	}

	seq := make([]*Stop, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s, ok := byID[id]
		if !ok {
			if t.find(id) == nil {
				return fmt.Errorf("reorder day %d: %w: %q", day, ErrStopNotFound, id)
			}
			return fmt.Errorf("reorder day %d: stop %q belongs to another day: %w", day, id, ErrSequenceMismatch)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("reorder day %d: stop %q listed twice: %w", day, id, ErrSequenceMismatch)
		}
		seen[id] = struct{}{}
		seq = append(seq, s)
	}

	for i, s := range seq {
		s.Order = OrderBaseline + float64(i)*OrderStep
	}
	return nil
}

// MoveStopToDay reassigns a stop to newDay, appending it after that day's last stop.
func (t *Trip) MoveStopToDay(id string, newDay int) (Stop, error) {
	if err := t.checkDay(newDay); err != nil {
		return Stop{}, fmt.Errorf("move stop: %w", err)
	}

	s := t.find(id)
	if s == nil {
		return Stop{}, fmt.Errorf("move stop: %w: %q", ErrStopNotFound, id)
	}

	order := OrderBaseline
	for _, other := range t.day(newDay) {
		if other.ID != s.ID && other.Order+OrderStep > order {
			order = other.Order + OrderStep
		}
	}

	s.Day = newDay
	s.Order = order
	return copyStop(s), nil
}

// AddDay appends an empty day and returns the new day count.
func (t *Trip) AddDay() int {
	t.totalDays++
	return t.totalDays
}

// RemoveDay deletes a day together with all of its stops and shifts every
// later day down by one. The removed stops are returned.
func (t *Trip) RemoveDay(day int) ([]Stop, error) {
	if t.totalDays == 1 {
		return nil, fmt.Errorf("remove day %d: %w", day, ErrLastDayProtected)
	}
	if err := t.checkDay(day); err != nil {
		return nil, fmt.Errorf("remove day: %w", err)
	}

	var removed []Stop
	kept := make([]*Stop, 0, len(t.stops))
	for _, s := range t.stops {
		switch {
		case s.Day == day:
			removed = append(removed, copyStop(s))
			continue
		case s.Day > day:
			s.Day--
		}
		kept = append(kept, s)
	}

	t.stops = kept
	t.totalDays--
	return removed, nil
}

// PinVisitTime fixes a stop's visit time. Propagation will not overwrite it.
func (t *Trip) PinVisitTime(id string, min int) error {
	if min < 0 || min >= MinutesPerDay {
		return fmt.Errorf("pin visit time: %w: %d minutes outside a day", ErrInvalidStop, min)
	}
	return t.update("pin visit time", id, func(s *Stop) { s.Visit = PinnedTime(min) })
}

// UnpinVisitTime releases a pinned time; it keeps its value as a derived
// time until the next propagation recomputes it.
func (t *Trip) UnpinVisitTime(id string) error {
	return t.update("unpin visit time", id, func(s *Stop) {
		if m, ok := s.Visit.Minutes(); ok {
			s.Visit = DerivedTime(m)
		}
	})
}

// UpdateDerivedTime stores a propagated time. Pinned stops are refused.
func (t *Trip) UpdateDerivedTime(id string, v VisitTime) error {
	if v.IsPinned() {
		return fmt.Errorf("update derived time: %w: pinned value", ErrInvalidStop)
	}

	s := t.find(id)
	if s == nil {
		return fmt.Errorf("update derived time: %w: %q", ErrStopNotFound, id)
	}
	if s.Visit.IsPinned() {
		return fmt.Errorf("update derived time: %w: stop %q is pinned", ErrInvalidStop, id)
	}
	s.Visit = v
	return nil
}

func (t *Trip) SetDuration(id string, min int) error {
	if min < 0 {
		return fmt.Errorf("set duration: %w: negative duration %d", ErrInvalidStop, min)
	}
	return t.update("set duration", id, func(s *Stop) { s.DurationMin = min })
}

// SetLegMode overrides the travel mode of the leg leaving the stop.
// An empty mode restores the trip default.
func (t *Trip) SetLegMode(id string, mode TravelMode) error {
	if mode != "" && !mode.Valid() {
		return fmt.Errorf("set leg mode: %w: unsupported travel mode %q", ErrInvalidStop, mode)
	}
	return t.update("set leg mode", id, func(s *Stop) { s.NextMode = mode })
}

// SetDeparture sets or clears (nil) the explicit departure of the outgoing leg.
func (t *Trip) SetDeparture(id string, min *int) error {
	if min != nil && (*min < 0 || *min >= MinutesPerDay) {
		return fmt.Errorf("set departure: %w: %d minutes outside a day", ErrInvalidStop, *min)
	}
	return t.update("set departure", id, func(s *Stop) {
		if min == nil {
			s.DepartAt = nil
			return
		}
		d := *min
		s.DepartAt = &d
	})
}

func (t *Trip) SetCost(id string, amount float64, currency string) error {
	if amount < 0 {
		return fmt.Errorf("set cost: %w: negative amount", ErrInvalidStop)
	}
	return t.update("set cost", id, func(s *Stop) {
		s.Cost = amount
		s.Currency = strings.ToUpper(strings.TrimSpace(currency))
	})
}

func (t *Trip) SetMemo(id string, memo string) error {
	return t.update("set memo", id, func(s *Stop) { s.Memo = memo })
}

func (t *Trip) update(op string, id string, fn func(*Stop)) error {
	s := t.find(id)
	if s == nil {
		return fmt.Errorf("%s: %w: %q", op, ErrStopNotFound, id)
	}
	fn(s)
	return nil
}

// renormalize respaces a day's keys to OrderBaseline, +OrderStep, ...
// keeping the current sequence.
func (t *Trip) renormalize(day int) {
	for i, s := range t.day(day) {
		s.Order = OrderBaseline + float64(i)*OrderStep
	}
}

func crowded(stops []*Stop) bool {
	for i := 1; i < len(stops); i++ {
		if stops[i].Order-stops[i-1].Order < MinOrderGap {
			return true
		}
	}
	return false
}
