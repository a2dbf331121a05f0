package domain

import (
	"fmt"
	"strings"
)

// TravelMode selects how a leg is travelled. It only affects oracle queries
// and cache keys; the engine attaches no cost model to a mode.
type TravelMode string

const (
	Driving   TravelMode = "DRIVING"
	Walking   TravelMode = "WALKING"
	Transit   TravelMode = "TRANSIT"
	Bicycling TravelMode = "BICYCLING"
)

// TravelModes lists every supported mode.
var TravelModes = []TravelMode{Driving, Walking, Transit, Bicycling}

func (m TravelMode) Valid() bool {
	switch m {
	case Driving, Walking, Transit, Bicycling:
		return true
	}
	return false
}

func (m TravelMode) String() string { return string(m) }

// ParseTravelMode accepts any casing of a supported mode name.
func ParseTravelMode(s string) (TravelMode, error) {
	m := TravelMode(strings.ToUpper(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("parse travel mode %q: unsupported mode", s)
	}
	return m, nil
}

// RouteKey identifies one directional leg in the route cache.
// (A->B) and (B->A) are distinct keys.
type RouteKey struct {
	OriginKey      string
	DestinationKey string
	Mode           TravelMode
}

func (k RouteKey) String() string {
	return "route:" + k.OriginKey + ":" + k.DestinationKey + ":" + string(k.Mode)
}

// Travel duration and distance for one leg, as reported by the oracle.
type TravelEstimate struct {
	DurationMin int     `json:"duration_min"`
	DistanceKm  float64 `json:"distance_km"`
}
