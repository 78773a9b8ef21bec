// Package dbtest opens a migrated Postgres database for contract tests.
package dbtest

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/deppfellow/gocrud/internal/database"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// EnvDSN names the variable holding the test database DSN.
const EnvDSN = "GOCRUD_TEST_DSN"

// Open connects to the database named by GOCRUD_TEST_DSN, resets the public
// schema and applies the embedded migrations. The test is skipped when the
// variable is unset.
//
// It is destructive.
func Open(t *testing.T) (*pgxpool.Pool, *gorm.DB) {
	t.Helper()

	dsn := os.Getenv(EnvDSN)
	if dsn == "" {
		t.Skip(EnvDSN + " not set; skipping Postgres contract tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect postgres: %v", err)
	}
	t.Cleanup(pool.Close)

	ac, err := pool.Acquire(ctx)
	if err != nil {
		t.Fatalf("acquire conn: %v", err)
	}
	defer ac.Release()

	if _, err := ac.Exec(ctx, `DROP SCHEMA IF EXISTS public CASCADE; CREATE SCHEMA public;`); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	logger := zerolog.Nop()
	if err := database.MigrateConn(ctx, &logger, ac.Conn()); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	orm, err := database.OpenORM(pool, database.NewGormLogger(&logger, 0))
	if err != nil {
		t.Fatalf("open gorm: %v", err)
	}
	return pool, orm
}
