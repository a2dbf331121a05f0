package domain

import (
	"fmt"
	"strings"
)

// Stop is one planned visit within a specific day of a trip.
// Visiting sequence within a day is ascending Order.
type Stop struct {
	ID          string // engine-assigned, never reused within a trip
	PlaceID     string // external place identifier; may repeat across stops
	Name        string
	Location    GeoPoint
	Day         int
	Order       float64
	Visit       VisitTime
	DurationMin int  // expected dwell time; 0 when not set
	DepartAt    *int // explicit departure for the outgoing leg, minutes since midnight
	NextMode    TravelMode
	Cost        float64
	Currency    string
	Memo        string
}

// CacheKey is the identifier used for this stop in route cache keys and
// oracle queries: the external place id, or the coordinates when absent.
func (s Stop) CacheKey() string {
	if k := strings.TrimSpace(s.PlaceID); k != "" {
		return k
	}
	return s.Location.Key()
}

// LegMode returns the travel mode of the leg leaving this stop.
func (s Stop) LegMode(fallback TravelMode) TravelMode {
	if s.NextMode != "" {
		return s.NextMode
	}
	return fallback
}

// StopInput is the host payload for creating a stop.
type StopInput struct {
	PlaceID     string
	Name        string
	Location    GeoPoint
	DurationMin int
	Visit       VisitTime
	Memo        string

	// DurationSet keeps a zero DurationMin as given instead of letting the
	// host apply its default dwell.
	DurationSet bool
}

func (in StopInput) validate() error {
	if in.DurationMin < 0 {
		return fmt.Errorf("%w: duration must not be negative", ErrInvalidStop)
	}
	if in.Location.Lat < -90 || in.Location.Lat > 90 || in.Location.Lng < -180 || in.Location.Lng > 180 {
		return fmt.Errorf("%w: location %s out of range", ErrInvalidStop, in.Location.Key())
	}
	return nil
}

// Position selects where InsertStop places a new stop within its day.
type Position struct {
	after string
	first bool
}

// Append places the stop after the current last stop of the day.
func Append() Position { return Position{} }

// First places the stop before the current first stop of the day.
func First() Position { return Position{first: true} }

// After places the stop directly after the given stop, which must belong to the same day.
func After(stopID string) Position { return Position{after: stopID} }
