package domain

import (
	"strconv"

	"github.com/paulmach/orb"
)

// Immutable geographic coordinates (latitude, longitude).
// Equality is exact; callers stabilize precision before using points as keys.
type GeoPoint struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Point returns the coordinates as an orb point ([lng, lat]).
func (p GeoPoint) Point() orb.Point { return orb.Point{p.Lng, p.Lat} }

// Key renders "lat,lng" with fixed precision. It is the cache key used for
// locations that carry no external place identifier.
func (p GeoPoint) Key() string {
	return strconv.FormatFloat(p.Lat, 'f', 6, 64) + "," + strconv.FormatFloat(p.Lng, 'f', 6, 64)
}

// Return coordinates as [lng, lat] for external API compatibility.
func (p GeoPoint) CoordsToList() []float64 { return []float64{p.Lng, p.Lat} }
