package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/0x6Ain/trip-flow-sub000/internal/config"
	"github.com/0x6Ain/trip-flow-sub000/internal/domain"
	"github.com/0x6Ain/trip-flow-sub000/internal/services"
)

// Scenario is the YAML description of a trip to plan.
type Scenario struct {
	Trip  TripSpec   `yaml:"trip"`
	Stops []StopSpec `yaml:"stops"`
}

type TripSpec struct {
	Title string          `yaml:"title"`
	Start domain.GeoPoint `yaml:"start"`
	Days  int             `yaml:"days"`
	Mode  string          `yaml:"mode"`
}

type StopSpec struct {
	Name        string          `yaml:"name"`
	PlaceID     string          `yaml:"place_id"`
	Day         int             `yaml:"day"`
	Location    domain.GeoPoint `yaml:"location"`
	DurationMin *int            `yaml:"duration_min"`
	Visit       string          `yaml:"visit"`
	Pinned      bool            `yaml:"pinned"`
	Mode        string          `yaml:"mode"`
	Depart      string          `yaml:"depart"`
	Cost        float64         `yaml:"cost"`
	Currency    string          `yaml:"currency"`
	Memo        string          `yaml:"memo"`
}

func loadScenario(path string) (Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("load scenario: %w", err)
	}
	defer f.Close()
	return decodeScenario(f)
}

func decodeScenario(r io.Reader) (Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return Scenario{}, fmt.Errorf("decode scenario: %w", err)
	}
	return sc, nil
}

// build creates the trip and replays the scenario's stops through the planner,
// so the resulting times are exactly what the host would see. The scenario's
// mode wins over cfg.DefaultMode.
func (sc Scenario) build(ctx context.Context, resolver *services.RouteResolver, cfg config.Config) (*services.TripPlanner, error) {
	mode := cfg.DefaultMode
	if sc.Trip.Mode != "" {
		m, err := domain.ParseTravelMode(sc.Trip.Mode)
		if err != nil {
			return nil, err
		}
		mode = m
	}

	trip, err := domain.NewTrip(domain.TripParams{
		Title:       sc.Trip.Title,
		Start:       sc.Trip.Start,
		TotalDays:   sc.Trip.Days,
		DefaultMode: mode,
		MaxStops:    cfg.MaxStops,
	})
	if err != nil {
		return nil, err
	}

	policy := services.Policy{
		DefaultDwellMin: cfg.DefaultDwellMin,
		DefaultStartMin: cfg.DefaultStartMin,
		OptimizerPasses: cfg.OptimizerPasses,
	}
	planner := services.NewTripPlanner(trip, resolver, policy)
	for i, s := range sc.Stops {
		if err := addStop(ctx, planner, s); err != nil {
			return nil, fmt.Errorf("stop #%d (%s): %w", i+1, s.Name, err)
		}
	}
	return planner, nil
}

func addStop(ctx context.Context, planner *services.TripPlanner, s StopSpec) error {
	day := s.Day
	if day == 0 {
		day = 1
	}

	in := domain.StopInput{
		PlaceID:     s.PlaceID,
		Name:        s.Name,
		Location:    s.Location,
		Memo:        s.Memo,
	}
	if s.DurationMin != nil {
		in.DurationMin = *s.DurationMin
		in.DurationSet = true
	}

	var pin *int
	if s.Visit != "" {
		m, err := domain.ParseClock(s.Visit)
		if err != nil {
			return err
		}
		if s.Pinned {
			pin = &m
		} else {
			in.Visit = domain.DerivedTime(m)
		}
	}

	stop, _, err := planner.InsertStop(ctx, day, domain.Append(), in)
	if err != nil {
		return err
	}

	if pin != nil {
		if _, err := planner.PinVisitTime(ctx, stop.ID, *pin); err != nil {
			return err
		}
	}
	if s.Mode != "" {
		m, err := domain.ParseTravelMode(s.Mode)
		if err != nil {
			return err
		}
		if _, err := planner.SetLegMode(ctx, stop.ID, m); err != nil {
			return err
		}
	}
	if s.Depart != "" {
		m, err := domain.ParseClock(s.Depart)
		if err != nil {
			return err
		}
		if _, err := planner.SetDeparture(ctx, stop.ID, &m); err != nil {
			return err
		}
	}
	if s.Cost > 0 {
		if err := planner.SetCost(stop.ID, s.Cost, s.Currency); err != nil {
			return err
		}
	}
	return nil
}
