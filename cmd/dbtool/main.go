// Command dbtool prepares the durable route cache selected by ROUTE_CACHE.
//
//	dbtool up      apply migrations (default)
//	dbtool down    roll back the latest Postgres migration
//	dbtool status  list Postgres migration state
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/0x6Ain/trip-flow-sub000/internal/adapters/cache"
	"github.com/0x6Ain/trip-flow-sub000/internal/config"
	"github.com/0x6Ain/trip-flow-sub000/internal/platform/db"
	"github.com/0x6Ain/trip-flow-sub000/migrations"
)

func main() {
	if !config.LoadDotEnv() {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := run(ctx, cfg, cmd); err != nil {
		slog.Error("dbtool failed", "cmd", cmd, "cache", cfg.RouteCache, "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, cmd string) error {
	switch cfg.RouteCache {
	case config.CachePostgres:
		return migratePostgres(ctx, cfg.DatabaseURL, cmd)
	case config.CacheSqlite:
		if cmd != "up" {
			return fmt.Errorf("sqlite route cache supports only \"up\", got %q", cmd)
		}
		return initSqlite(ctx, cfg.SqlitePath)
	}

	slog.Info("route cache needs no schema", "cache", cfg.RouteCache)
	return nil
}

func migratePostgres(ctx context.Context, databaseURL, cmd string) error {
	conn, err := db.Open(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, conn, migrations.FS)
	if err != nil {
		return fmt.Errorf("create goose provider: %w", err)
	}

	switch cmd {
	case "up":
		results, err := provider.Up(ctx)
		if err != nil {
			return fmt.Errorf("goose up: %w", err)
		}
		for _, r := range results {
			slog.Info("migration applied", "version", r.Source.Version, "path", r.Source.Path, "dur_ms", r.Duration.Milliseconds())
		}
		slog.Info("schema ready", "applied", len(results))

	case "down":
		r, err := provider.Down(ctx)
		if err != nil {
			return fmt.Errorf("goose down: %w", err)
		}
		slog.Info("migration rolled back", "version", r.Source.Version, "path", r.Source.Path)

	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			return fmt.Errorf("goose status: %w", err)
		}
		for _, s := range statuses {
			slog.Info("migration", "version", s.Source.Version, "path", s.Source.Path, "state", string(s.State))
		}

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func initSqlite(ctx context.Context, path string) error {
	conn, err := db.OpenSqlite(ctx, path)
	if err != nil {
		return err
	}
	defer conn.Close()

	slog.Info("initializing sqlite route cache schema", "path", path)
	if err := cache.InitSchema(conn); err != nil {
		return err
	}
	slog.Info("schema ready")
	return nil
}
