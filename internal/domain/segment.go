package domain

// RouteSegment describes the leg between two consecutive stops of a day
// (or from the trip start to the first stop of day 1). It is a derived view
// recomputed from the ledger and the route cache, never a source of truth.
type RouteSegment struct {
	Day         int
	FromStopID  string // empty when the leg starts at the trip start location
	ToStopID    string
	FromKey     string
	ToKey       string
	Mode        TravelMode
	DurationMin int
	DistanceKm  float64
	DepartAt    *int
	Cost        float64
	Currency    string
}

// Aggregate travel totals over all segments of a trip.
type TripSummary struct {
	TotalDurationMin int
	TotalDistanceKm  float64
}
