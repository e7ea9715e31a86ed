// Package testutil holds shared test helpers: a Postgres pool for opt-in
// integration tests and in-memory implementations of the module stores.
package testutil

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"vtc/migrations"
)

const dsnEnv = "VTC_TEST_DSN"

var migrateOnce sync.Once

// NewPool connects to VTC_TEST_DSN and applies the migrations once per test
// binary. The test is skipped when the variable is unset.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv(dsnEnv)
	if dsn == "" {
		t.Skip(dsnEnv + " not set; skipping integration test")
	}

	var migrateErr error
	migrateOnce.Do(func() {
		_, migrateErr = migrations.Up(context.Background(), dsn)
	})
	if migrateErr != nil {
		t.Fatalf("testutil.NewPool: migrate: %v", migrateErr)
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("testutil.NewPool: open pool: %v", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		t.Fatalf("testutil.NewPool: ping: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}
