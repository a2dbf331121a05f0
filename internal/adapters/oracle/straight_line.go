package oracle

import (
	"context"
	"fmt"
	"math"

	"github.com/paulmach/orb/geo"

	"github.com/0x6Ain/trip-flow-sub000/internal/domain"
	"github.com/0x6Ain/trip-flow-sub000/internal/ports"
)

// Average speeds in km/h used by StraightLineOracle.
var DefaultSpeeds = map[domain.TravelMode]float64{
	domain.Driving:   40,
	domain.Walking:   4.5,
	domain.Transit:   25,
	domain.Bicycling: 15,
}

// StraightLineOracle estimates legs from great-circle distance and a fixed
// per-mode speed, scaled by Detour to approximate road networks. It never
// fails and needs no network, which makes it suitable for offline planning.
type StraightLineOracle struct {
	Speeds map[domain.TravelMode]float64
	Detour float64
}

func NewStraightLineOracle() *StraightLineOracle {
	return &StraightLineOracle{Speeds: DefaultSpeeds, Detour: 1.3}
}

func (s *StraightLineOracle) Query(ctx context.Context, q ports.TravelQuery) (domain.TravelEstimate, error) {
	if err := ctx.Err(); err != nil {
		return domain.TravelEstimate{}, err
	}

	speed, ok := s.Speeds[q.Mode]
	if !ok || speed <= 0 {
		return domain.TravelEstimate{}, &domain.OracleError{
			Kind: domain.Permanent,
			Key:  q.Key(),
			Err:  fmt.Errorf("no speed configured for travel mode %q", q.Mode),
		}
	}

	detour := s.Detour
	if detour < 1 {
		detour = 1
	}

	km := geo.DistanceHaversine(q.Origin.Point(), q.Destination.Point()) / 1000 * detour
	return domain.TravelEstimate{
		DurationMin: int(math.Ceil(km / speed * 60)),
		DistanceKm:  km,
	}, nil
}
