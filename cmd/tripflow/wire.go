package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/0x6Ain/trip-flow-sub000/internal/adapters/cache"
	"github.com/0x6Ain/trip-flow-sub000/internal/adapters/oracle"
	"github.com/0x6Ain/trip-flow-sub000/internal/config"
	"github.com/0x6Ain/trip-flow-sub000/internal/platform/db"
	"github.com/0x6Ain/trip-flow-sub000/internal/ports"
)

// openRouteCache builds the configured cache. Durable backends sit behind an
// in-memory front tier. The returned func releases backend connections.
func openRouteCache(ctx context.Context, cfg config.Config) (ports.RouteCache, func(), error) {
	front := cache.NewMemoryRouteCache()
	noop := func() {}

	switch cfg.RouteCache {
	case config.CacheRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, noop, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
		back := cache.NewRedisRouteCache(client, cfg.RouteCacheTTL)
		return cache.NewTieredRouteCache(front, back), func() { client.Close() }, nil

	case config.CacheSqlite:
		conn, err := db.OpenSqlite(ctx, cfg.SqlitePath)
		if err != nil {
			return nil, noop, err
		}
		if err := cache.InitSchema(conn); err != nil {
			conn.Close()
			return nil, noop, err
		}
		back := cache.NewSqliteRouteCache(conn)
		return cache.NewTieredRouteCache(front, back), func() { conn.Close() }, nil

	case config.CachePostgres:
		conn, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		back := cache.NewSQLRouteCache(conn)
		return cache.NewTieredRouteCache(front, back), func() { conn.Close() }, nil
	}

	return front, noop, nil
}

func newOracle(cfg config.Config) (ports.TravelOracle, error) {
	if cfg.ORSAPIKey == "" {
		slog.Info("ORS_API_KEY not set, using straight-line travel estimates")
		return oracle.NewStraightLineOracle(), nil
	}
	return oracle.NewORSOracle(cfg.ORSAPIKey)
}
