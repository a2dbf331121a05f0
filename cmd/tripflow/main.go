// Command tripflow plans a trip described by a YAML scenario: it replays the
// stops through the planner, optionally optimizes each day and prints the
// resulting itinerary.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/google/uuid"

	"github.com/0x6Ain/trip-flow-sub000/internal/config"
	"github.com/0x6Ain/trip-flow-sub000/internal/domain"
	"github.com/0x6Ain/trip-flow-sub000/internal/platform/obs"
	"github.com/0x6Ain/trip-flow-sub000/internal/services"
)

func main() {
	scenarioPath := flag.String("scenario", "scenarios/seoul.yaml", "path to a YAML trip scenario")
	optimize := flag.Bool("optimize", false, "reorder every day with the route optimizer")
	flag.Parse()

	if !config.LoadDotEnv() {
		slog.Debug("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = obs.WithRequestID(ctx, uuid.NewString())

	if err := run(ctx, cfg, *scenarioPath, *optimize, os.Stdout); err != nil {
		slog.Error("tripflow failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, scenarioPath string, optimize bool, w io.Writer) error {
	sc, err := loadScenario(scenarioPath)
	if err != nil {
		return err
	}

	routeCache, closeCache, err := openRouteCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	oracle, err := newOracle(cfg)
	if err != nil {
		return err
	}

	resolver := services.NewRouteResolver(oracle, routeCache)
	return plan(ctx, sc, resolver, cfg, optimize, w)
}

func plan(ctx context.Context, sc Scenario, resolver *services.RouteResolver, cfg config.Config, optimize bool, w io.Writer) error {
	planner, err := sc.build(ctx, resolver, cfg)
	if err != nil {
		return fmt.Errorf("build trip: %w", err)
	}

	if optimize {
		for day := 1; day <= planner.Trip().TotalDays(); day++ {
			res, out, err := planner.OptimizeDay(ctx, day)
			if err != nil {
				return err
			}
			slog.InfoContext(ctx, "day optimized",
				"day", day,
				"improvement_pct", res.ImprovementPercent,
				"passes", res.Passes,
				"status", string(res.Status))
			for _, o := range out.Overflows() {
				slog.WarnContext(ctx, "visit crosses midnight", "stop_id", o.StopID, "days", o.DaysCrossed)
			}
		}
	}

	segs, err := planner.Segments(ctx)
	if err != nil {
		return err
	}
	return report(w, planner.Trip(), segs)
}

func report(w io.Writer, trip *domain.Trip, segs []domain.RouteSegment) error {
	legs := make(map[string]domain.RouteSegment, len(segs))
	var total domain.TripSummary
	for _, s := range segs {
		legs[s.ToStopID] = s
		total.TotalDurationMin += s.DurationMin
		total.TotalDistanceKm += s.DistanceKm
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\n\n", trip.Title)
	fmt.Fprintln(tw, "DAY\t#\tSTOP\tVISIT\tSTAY\tLEG\tMODE")
	for day := 1; day <= trip.TotalDays(); day++ {
		for i, s := range trip.DayStops(day) {
			leg := "-"
			mode := ""
			if seg, ok := legs[s.ID]; ok {
				leg = fmt.Sprintf("%d min / %.1f km", seg.DurationMin, seg.DistanceKm)
				mode = string(seg.Mode)
			}
			fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%d min\t%s\t%s\n", day, i+1, s.Name, s.Visit, s.DurationMin, leg, mode)
		}
	}
	fmt.Fprintf(tw, "\ntotal travel\t%d min\t%.1f km\n", total.TotalDurationMin, total.TotalDistanceKm)
	return tw.Flush()
}
