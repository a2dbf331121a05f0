package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/0x6Ain/trip-flow-sub000/internal/domain"
	"github.com/0x6Ain/trip-flow-sub000/internal/platform/obs"
)

// SQLRouteCache is a Postgres-backed route cache (pgx database/sql driver).
// The route_cache table is created by the goose migrations in migrations/.
type SQLRouteCache struct {
	DB *sql.DB
}

func NewSQLRouteCache(db *sql.DB) *SQLRouteCache {
	return &SQLRouteCache{DB: db}
}

func (s *SQLRouteCache) Get(ctx context.Context, key domain.RouteKey) (_ domain.TravelEstimate, _ bool, err error) {
	defer obs.Time(ctx, "route.cache.sql.Get")(&err)

	if err := checkKey(s.DB, key); err != nil {
		return domain.TravelEstimate{}, false, fmt.Errorf("get route cache: %w", err)
	}

	q := `
	SELECT duration_min, distance_km
    FROM route_cache
    WHERE origin_key = $1
        AND destination_key = $2
        AND travel_mode = $3;
	`

	var est domain.TravelEstimate
	err = s.DB.QueryRowContext(ctx, q, key.OriginKey, key.DestinationKey, string(key.Mode)).
		Scan(&est.DurationMin, &est.DistanceKm)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.TravelEstimate{}, false, nil
	}
	if err != nil {
		return domain.TravelEstimate{}, false, fmt.Errorf("get route cache: query route_cache table: %w", err)
	}

	return est, true, nil
}

func (s *SQLRouteCache) Put(ctx context.Context, key domain.RouteKey, est domain.TravelEstimate) error {
	if err := checkKey(s.DB, key); err != nil {
		return fmt.Errorf("insert route cache: %w", err)
	}

	q := `
	INSERT INTO route_cache (origin_key, destination_key, travel_mode, duration_min, distance_km)
    VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (origin_key, destination_key, travel_mode) DO UPDATE
	SET duration_min = EXCLUDED.duration_min,
		distance_km = EXCLUDED.distance_km,
		updated_at = now();
	`

	if _, err := s.DB.ExecContext(ctx, q, key.OriginKey, key.DestinationKey, string(key.Mode), est.DurationMin, est.DistanceKm); err != nil {
		return fmt.Errorf("insert route cache %s: %w", key, err)
	}

	return nil
}

func checkKey(db *sql.DB, key domain.RouteKey) error {
	if db == nil {
		return errors.New("route cache: db is nil")
	}
	if strings.TrimSpace(key.OriginKey) == "" || strings.TrimSpace(key.DestinationKey) == "" {
		return errors.New("origin and destination keys must not be empty")
	}
	if !key.Mode.Valid() {
		return fmt.Errorf("unsupported travel mode %q", key.Mode)
	}
	return nil
}
