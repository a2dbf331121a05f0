// Package testutil provides shared helpers for integration tests.
// Helpers skip automatically when required environment variables are not
// set, so unit tests run without external services.
package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/pressly/goose/v3"

	"github.com/0x6Ain/trip-flow-sub000/internal/platform/db"
	"github.com/0x6Ain/trip-flow-sub000/migrations"
)

// NewMigratedPostgres opens the database named by TEST_DATABASE_URL and
// applies the route cache migrations. The test is skipped when the variable
// is not set. The connection is closed when the test finishes.
func NewMigratedPostgres(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping integration test")
	}

	ctx := context.Background()
	conn, err := db.Open(ctx, dsn)
	if err != nil {
		t.Fatalf("testutil.NewMigratedPostgres: open: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	provider, err := goose.NewProvider(goose.DialectPostgres, conn, migrations.FS)
	if err != nil {
		t.Fatalf("testutil.NewMigratedPostgres: goose provider: %v", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		t.Fatalf("testutil.NewMigratedPostgres: migrate: %v", err)
	}

	return conn
}

// NewSqlite opens a fresh SQLite database in the test's temp dir.
func NewSqlite(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.OpenSqlite(context.Background(), t.TempDir()+"/route_cache.db")
	if err != nil {
		t.Fatalf("testutil.NewSqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}
