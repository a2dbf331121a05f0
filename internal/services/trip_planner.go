package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/0x6Ain/trip-flow-sub000/internal/domain"
)

// Policy holds host-level planning defaults.
type Policy struct {
	// DefaultDwellMin is applied to new stops created without a duration.
	DefaultDwellMin int
	// DefaultStartMin, when set, seeds the first stop of a day that has no
	// time at all before propagation runs.
	DefaultStartMin *int
	OptimizerPasses int
}

// Outcome lists the propagation runs a command triggered.
type Outcome struct {
	Propagated []PropagationResult
}

// Overflows returns every midnight crossing reported by the runs.
func (o Outcome) Overflows() []Overflow {
	var out []Overflow
	for _, r := range o.Propagated {
		out = append(out, r.Overflows...)
	}
	return out
}

// TripPlanner is the host-facing entry point for one trip. Every command runs
// under the planner's lock, so commands against the trip are linearizable.
// After a command that can change a day's timing it re-propagates the
// affected days.
//
// If a command succeeds but the follow-up propagation fails, the command
// stays applied and the propagation error is returned.
type TripPlanner struct {
	mu         sync.Mutex
	trip       *domain.Trip
	resolver   *RouteResolver
	propagator *TimePropagator
	optimizer  *DayOptimizer
	policy     Policy
}

func NewTripPlanner(trip *domain.Trip, resolver *RouteResolver, policy Policy) *TripPlanner {
	return &TripPlanner{
		trip:       trip,
		resolver:   resolver,
		propagator: NewTimePropagator(resolver),
		optimizer:  NewDayOptimizer(resolver, policy.OptimizerPasses),
		policy:     policy,
	}
}

// Trip returns a snapshot of the current trip state.
func (p *TripPlanner) Trip() *domain.Trip {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.trip.Clone()
}

func (p *TripPlanner) InsertStop(ctx context.Context, day int, pos domain.Position, in domain.StopInput) (domain.Stop, Outcome, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if in.DurationMin == 0 && !in.DurationSet {
		in.DurationMin = p.policy.DefaultDwellMin
	}

	s, err := p.trip.InsertStop(day, pos, in)
	if err != nil {
		return domain.Stop{}, Outcome{}, err
	}

	out, err := p.propagate(ctx, day)
	if err != nil {
		return s, out, err
	}

	// Propagation may have set its time.
	s, err = p.trip.Stop(s.ID)
	return s, out, err
}

func (p *TripPlanner) RemoveStop(ctx context.Context, id string) (Outcome, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, err := p.trip.RemoveStop(id)
	if err != nil {
		return Outcome{}, err
	}
	return p.propagate(ctx, s.Day)
}

func (p *TripPlanner) ReorderDay(ctx context.Context, day int, ids []string) (Outcome, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.trip.ReorderDay(day, ids); err != nil {
		return Outcome{}, err
	}
	return p.propagate(ctx, day)
}

func (p *TripPlanner) MoveStopToDay(ctx context.Context, id string, day int) (Outcome, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	before, err := p.trip.Stop(id)
	if err != nil {
		return Outcome{}, fmt.Errorf("move stop: %w", err)
	}
	if _, err := p.trip.MoveStopToDay(id, day); err != nil {
		return Outcome{}, err
	}

	if before.Day == day {
		return p.propagate(ctx, day)
	}
	return p.propagate(ctx, before.Day, day)
}

// AddDay appends an empty day and returns the new day count.
func (p *TripPlanner) AddDay() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.trip.AddDay()
}

// RemoveDay deletes a day and its stops. Surviving days keep their internal
// sequence, so no propagation is needed.
func (p *TripPlanner) RemoveDay(day int) ([]domain.Stop, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.trip.RemoveDay(day)
}

func (p *TripPlanner) PinVisitTime(ctx context.Context, id string, min int) (Outcome, error) {
	return p.updateStop(ctx, id, func(t *domain.Trip) error { return t.PinVisitTime(id, min) })
}

func (p *TripPlanner) UnpinVisitTime(ctx context.Context, id string) (Outcome, error) {
	return p.updateStop(ctx, id, func(t *domain.Trip) error { return t.UnpinVisitTime(id) })
}

func (p *TripPlanner) SetDuration(ctx context.Context, id string, min int) (Outcome, error) {
	return p.updateStop(ctx, id, func(t *domain.Trip) error { return t.SetDuration(id, min) })
}

func (p *TripPlanner) SetLegMode(ctx context.Context, id string, mode domain.TravelMode) (Outcome, error) {
	return p.updateStop(ctx, id, func(t *domain.Trip) error { return t.SetLegMode(id, mode) })
}

func (p *TripPlanner) SetDeparture(ctx context.Context, id string, min *int) (Outcome, error) {
	return p.updateStop(ctx, id, func(t *domain.Trip) error { return t.SetDeparture(id, min) })
}

// SetCost and SetMemo do not affect timing.
func (p *TripPlanner) SetCost(id string, amount float64, currency string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.trip.SetCost(id, amount, currency)
}

func (p *TripPlanner) SetMemo(id string, memo string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.trip.SetMemo(id, memo)
}

// Propagate recomputes one day's times on demand.
func (p *TripPlanner) Propagate(ctx context.Context, day int) (PropagationResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	out, err := p.propagate(ctx, day)
	if len(out.Propagated) == 0 {
		return PropagationResult{Day: day}, err
	}
	return out.Propagated[0], err
}

// OptimizeDay reorders one day with the DayOptimizer. The new order is applied
// only when the optimizer returns without error; the day is then re-propagated.
func (p *TripPlanner) OptimizeDay(ctx context.Context, day int) (OptimizeResult, Outcome, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if day < 1 || day > p.trip.TotalDays() {
		return OptimizeResult{}, Outcome{}, fmt.Errorf("optimize day: %w: day %d outside [1, %d]", domain.ErrInvalidDay, day, p.trip.TotalDays())
	}

	res, err := p.optimizer.Optimize(ctx, OptimizeRequest{
		Start: p.trip.Start,
		Stops: p.trip.DayStops(day),
		Mode:  p.trip.DefaultMode,
	})
	if err != nil {
		return res, Outcome{}, fmt.Errorf("optimize day %d: %w", day, err)
	}

	if err := p.trip.ReorderDay(day, res.IDs()); err != nil {
		return res, Outcome{}, fmt.Errorf("optimize day %d: %w", day, err)
	}

	// A cancelled run still applied its best tour; propagation needs a live context.
	out, err := p.propagate(context.WithoutCancel(ctx), day)
	return res, out, err
}

func (p *TripPlanner) updateStop(ctx context.Context, id string, fn func(*domain.Trip) error) (Outcome, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := fn(p.trip); err != nil {
		return Outcome{}, err
	}

	s, err := p.trip.Stop(id)
	if err != nil {
		return Outcome{}, err
	}
	return p.propagate(ctx, s.Day)
}

// propagate runs the propagator over days in turn, stopping at the first error.
// Callers hold p.mu.
func (p *TripPlanner) propagate(ctx context.Context, days ...int) (Outcome, error) {
	var out Outcome
	for _, day := range days {
		p.seedStart(day)

		res, err := p.propagator.PropagateDay(ctx, p.trip, day)
		out.Propagated = append(out.Propagated, res)
		if err != nil {
			return out, fmt.Errorf("propagate: %w", err)
		}
	}
	return out, nil
}

func (p *TripPlanner) seedStart(day int) {
	if p.policy.DefaultStartMin == nil {
		return
	}
	stops := p.trip.DayStops(day)
	if len(stops) == 0 || stops[0].Visit.IsSet() {
		return
	}
	// Unset and unpinned, so this cannot fail.
	_ = p.trip.UpdateDerivedTime(stops[0].ID, domain.DerivedTime(*p.policy.DefaultStartMin))
}
