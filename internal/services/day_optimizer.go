package services

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/0x6Ain/trip-flow-sub000/internal/domain"
	"github.com/0x6Ain/trip-flow-sub000/internal/platform/obs"
)

// DefaultPasses bounds the 2-opt search when neither the optimizer nor the
// request sets a pass count.
const DefaultPasses = 2

const distanceEpsilon = 1e-9

type Status string

const (
	StatusCompleted Status = "COMPLETED"
	// StatusCancelled marks a result cut short after at least one full pass.
	StatusCancelled Status = "CANCELLED"
)

type OptimizeRequest struct {
	Start  domain.GeoPoint
	Stops  []domain.Stop // current order is a hint only
	Mode   domain.TravelMode
	Passes int // 0 uses the optimizer default
}

type OptimizeResult struct {
	Stops              []domain.Stop
	OriginalDistanceKm float64
	DistanceKm         float64
	TotalDurationMin   int
	ImprovementPercent int
	Passes             int
	Status             Status
}

// IDs returns the stop ids in result order.
func (r OptimizeResult) IDs() []string {
	ids := make([]string, len(r.Stops))
	for i, s := range r.Stops {
		ids[i] = s.ID
	}
	return ids
}

// DayOptimizer reorders one day's stops to shorten the oracle-backed route
// from a start location. It never returns a tour longer than the input.
type DayOptimizer struct {
	resolver *RouteResolver
	passes   int
}

func NewDayOptimizer(resolver *RouteResolver, passes int) *DayOptimizer {
	if passes <= 0 {
		passes = DefaultPasses
	}
	return &DayOptimizer{resolver: resolver, passes: passes}
}

// Optimize builds a nearest-neighbour tour and improves it with bounded 2-opt.
//
// If the context is cancelled before a full pass completes, the input order
// is returned with ErrCancelled. After at least one pass, the best tour so
// far is returned with StatusCancelled and a nil error. An oracle failure
// aborts the run and no tour is returned.
func (o *DayOptimizer) Optimize(ctx context.Context, req OptimizeRequest) (res OptimizeResult, err error) {
	defer obs.Time(ctx, "optimize.Day")(&err)

	mode := req.Mode
	if mode == "" {
		mode = domain.Driving
	}
	passes := o.passes
	if req.Passes > 0 {
		passes = req.Passes
	}

	original := slices.Clone(req.Stops)
	cancelled := func(cause error) (OptimizeResult, error) {
		return OptimizeResult{Stops: original, Status: StatusCancelled},
			fmt.Errorf("optimize: %w: %w", domain.ErrCancelled, cause)
	}
	fail := func(err error) (OptimizeResult, error) {
		if isContextErr(err) {
			return cancelled(err)
		}
		return OptimizeResult{}, fmt.Errorf("optimize: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return cancelled(err)
	}
	if len(original) == 0 {
		return OptimizeResult{Stops: original, Status: StatusCompleted}, nil
	}

	base, err := o.cost(ctx, req.Start, original, mode)
	if err != nil {
		return fail(err)
	}

	tour := NearestNeighborTour(req.Start, original)
	best, err := o.cost(ctx, req.Start, tour, mode)
	if err != nil {
		return fail(err)
	}
	if best.km > base.km {
		tour, best = slices.Clone(original), base
	}

	done := 0
	status := StatusCompleted
	for done < passes {
		var improved bool
		tour, best, improved, err = o.twoOptPass(ctx, req.Start, tour, best, mode)
		if err != nil {
			if !isContextErr(err) || done == 0 {
				return fail(err)
			}
			status = StatusCancelled
			break
		}
		done++
		if !improved {
			break
		}
	}

	return OptimizeResult{
		Stops:              tour,
		OriginalDistanceKm: base.km,
		DistanceKm:         best.km,
		TotalDurationMin:   best.min,
		ImprovementPercent: improvementPercent(base.km, best.km),
		Passes:             done,
		Status:             status,
	}, nil
}

func improvementPercent(original, optimized float64) int {
	if original <= 0 || optimized >= original {
		return 0
	}
	p := int(math.Round(100 * (original - optimized) / original))
	return max(0, min(100, p))
}
