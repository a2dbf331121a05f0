package oracle

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/atomic"

	"github.com/0x6Ain/trip-flow-sub000/internal/domain"
	"github.com/0x6Ain/trip-flow-sub000/internal/ports"
)

// MockPair is one canned leg. From and To are endpoint keys.
type MockPair struct {
	From, To    string
	Mode        domain.TravelMode
	DurationMin int
	DistanceKm  float64
}

// MockOracle answers from a fixed table of legs and counts calls.
type MockOracle struct {
	mu   sync.RWMutex
	m    map[domain.RouteKey]domain.TravelEstimate
	fail map[domain.RouteKey]error

	calls atomic.Int64
}

func NewMockOracle(pairs []MockPair) *MockOracle {
	o := &MockOracle{
		m:    make(map[domain.RouteKey]domain.TravelEstimate, len(pairs)),
		fail: make(map[domain.RouteKey]error),
	}
	for _, p := range pairs {
		o.Set(p)
	}
	return o
}

// Set adds or replaces a canned leg.
func (o *MockOracle) Set(p MockPair) {
	mode := p.Mode
	if mode == "" {
		mode = domain.Driving
	}

	o.mu.Lock()
	o.m[domain.RouteKey{OriginKey: p.From, DestinationKey: p.To, Mode: mode}] = domain.TravelEstimate{
		DurationMin: p.DurationMin,
		DistanceKm:  p.DistanceKm,
	}
	o.mu.Unlock()
}

// FailOn makes queries for key return err.
func (o *MockOracle) FailOn(key domain.RouteKey, err error) {
	o.mu.Lock()
	o.fail[key] = err
	o.mu.Unlock()
}

func (o *MockOracle) Calls() int64 { return o.calls.Load() }

func (o *MockOracle) Query(ctx context.Context, q ports.TravelQuery) (domain.TravelEstimate, error) {
	o.calls.Inc()
	if err := ctx.Err(); err != nil {
		return domain.TravelEstimate{}, err
	}

	key := q.Key()
	o.mu.RLock()
	defer o.mu.RUnlock()

	if err, ok := o.fail[key]; ok {
		return domain.TravelEstimate{}, err
	}
	est, ok := o.m[key]
	if !ok {
		return domain.TravelEstimate{}, &domain.OracleError{
			Kind: domain.Permanent,
			Key:  key,
			Err:  fmt.Errorf("missing pair %q -> %q", q.OriginKey, q.DestinationKey),
		}
	}
	return est, nil
}
