// Package config loads engine and host policy settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/0x6Ain/trip-flow-sub000/internal/domain"
)

// Supported ROUTE_CACHE backends.
const (
	CacheMemory   = "memory"
	CacheRedis    = "redis"
	CacheSqlite   = "sqlite"
	CachePostgres = "postgres"
)

// Config holds host policy constants and adapter settings.
type Config struct {
	// MaxStops is the per-trip stop ceiling. Defaults to 10.
	MaxStops int

	// DefaultDwellMin is applied to new stops that carry no duration. Defaults to 60.
	DefaultDwellMin int

	// DefaultStartMin, when set, seeds the first stop of a day that has no time.
	DefaultStartMin *int

	// OptimizerPasses bounds the number of 2-opt passes. Defaults to 2.
	OptimizerPasses int

	// DefaultMode is the trip travel mode. Defaults to DRIVING.
	DefaultMode domain.TravelMode

	// RouteCache selects the durable cache tier: memory, redis, sqlite or postgres.
	RouteCache    string
	RouteCacheTTL time.Duration
	RedisAddr     string
	SqlitePath    string
	DatabaseURL   string

	// ORSAPIKey enables the OpenRouteService oracle. When empty the
	// straight-line oracle is used.
	ORSAPIKey string

	LogLevel string
}

// LoadDotEnv loads a .env file when present. A missing file is not an error.
func LoadDotEnv(paths ...string) bool {
	return godotenv.Load(paths...) == nil
}

// Load reads configuration from environment variables and returns a Config.
// The returned error lists every variable that failed validation.
func Load() (Config, error) {
	cfg := Config{
		RouteCache: strings.ToLower(Get("ROUTE_CACHE", CacheMemory)),
		RedisAddr:  Get("REDIS_ADDR", "localhost:6379"),
		SqlitePath: Get("SQLITE_PATH", "data/route_cache.db"),
		ORSAPIKey:  strings.TrimSpace(os.Getenv("ORS_API_KEY")),
		LogLevel:   Get("LOG_LEVEL", "info"),
	}
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	var invalid []string

	var err error
	if cfg.MaxStops, err = getInt("MAX_STOPS", domain.DefaultMaxStops); err != nil || cfg.MaxStops < 1 {
		invalid = append(invalid, "MAX_STOPS")
	}
	if cfg.DefaultDwellMin, err = getInt("DEFAULT_DWELL_MIN", 60); err != nil || cfg.DefaultDwellMin < 0 {
		invalid = append(invalid, "DEFAULT_DWELL_MIN")
	}
	if cfg.OptimizerPasses, err = getInt("OPTIMIZER_PASSES", 2); err != nil || cfg.OptimizerPasses < 1 {
		invalid = append(invalid, "OPTIMIZER_PASSES")
	}

	if v := strings.TrimSpace(os.Getenv("DEFAULT_START_TIME")); v != "" {
		m, err := domain.ParseClock(v)
		if err != nil {
			invalid = append(invalid, "DEFAULT_START_TIME")
		} else {
			cfg.DefaultStartMin = &m
		}
	}

	if cfg.DefaultMode, err = domain.ParseTravelMode(Get("DEFAULT_TRAVEL_MODE", string(domain.Driving))); err != nil {
		invalid = append(invalid, "DEFAULT_TRAVEL_MODE")
	}

	if cfg.RouteCacheTTL, err = time.ParseDuration(Get("ROUTE_CACHE_TTL", "168h")); err != nil || cfg.RouteCacheTTL < 0 {
		invalid = append(invalid, "ROUTE_CACHE_TTL")
	}

	switch cfg.RouteCache {
	case CacheMemory, CacheRedis, CacheSqlite:
	case CachePostgres:
		if cfg.DatabaseURL == "" {
			invalid = append(invalid, "DATABASE_URL")
		}
	default:
		invalid = append(invalid, "ROUTE_CACHE")
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid or missing environment variables: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// Get returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}
