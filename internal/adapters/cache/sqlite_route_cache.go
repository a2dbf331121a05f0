package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/0x6Ain/trip-flow-sub000/internal/domain"
)

// SQLite backed route cache. Keys are expected to be consistent
// (e.g., fixed-precision coordinates) by the caller.
type SqliteRouteCache struct {
	DB *sql.DB
}

func NewSqliteRouteCache(db *sql.DB) *SqliteRouteCache {
	return &SqliteRouteCache{DB: db}
}

func (s *SqliteRouteCache) Get(ctx context.Context, key domain.RouteKey) (domain.TravelEstimate, bool, error) {
	if err := checkKey(s.DB, key); err != nil {
		return domain.TravelEstimate{}, false, fmt.Errorf("get route cache: %w", err)
	}

	q := `
	SELECT
        duration_min,
        distance_km
    FROM route_cache
    WHERE origin_key = ?
        AND destination_key = ?
        AND travel_mode = ?;
	`

	var est domain.TravelEstimate
	err := s.DB.QueryRowContext(ctx, q, key.OriginKey, key.DestinationKey, string(key.Mode)).
		Scan(&est.DurationMin, &est.DistanceKm)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.TravelEstimate{}, false, nil
	}
	if err != nil {
		return domain.TravelEstimate{}, false, fmt.Errorf("get route cache: query route_cache table: %w", err)
	}

	return est, true, nil
}

func (s *SqliteRouteCache) Put(ctx context.Context, key domain.RouteKey, est domain.TravelEstimate) error {
	if err := checkKey(s.DB, key); err != nil {
		return fmt.Errorf("insert route cache: %w", err)
	}

	q := `
	INSERT OR REPLACE INTO route_cache (
        origin_key,
        destination_key,
        travel_mode,
        duration_min,
        distance_km
    )
    VALUES (?, ?, ?, ?, ?);
	`

	if _, err := s.DB.ExecContext(ctx, q, key.OriginKey, key.DestinationKey, string(key.Mode), est.DurationMin, est.DistanceKm); err != nil {
		return fmt.Errorf("insert route cache %s: %w", key, err)
	}

	return nil
}
