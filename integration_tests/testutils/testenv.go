// Package testutils stands up the real dependencies (Postgres in a
// container, migrated schema) the integration tests run against.
package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	rundb "github.com/Paddock-Club/trackmaster/app/modules/run/infrastructure/repositories"
	runmigrations "github.com/Paddock-Club/trackmaster/app/modules/run/infrastructure/repositories/migrations"
)

// TestEnvironment holds the container-backed resources shared by a test run.
type TestEnvironment struct {
	Ctx         context.Context
	Cancel      context.CancelFunc
	PgContainer *postgres.PostgresContainer
	PgConnStr   string
	DB          *bun.DB
	RunDB       *rundb.RunDBImpl
}

// NewTestEnvironment starts Postgres, connects bun, and applies every
// migration (module schema plus River's job tables).
func NewTestEnvironment(t *testing.T) (*TestEnvironment, error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("trackmaster_test"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		cancel()
		return nil, fmt.Errorf("failed to get postgres connection string: %w", err)
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(connStr)))
	db := bun.NewDB(sqldb, pgdialect.New())
	db.RegisterModel(
		(*rundb.Run)(nil),
		(*rundb.RunScore)(nil),
		(*rundb.PeriodSequence)(nil),
		(*rundb.VocabularyEntry)(nil),
		(*rundb.RosterSetting)(nil),
	)

	if err := runMigrations(ctx, db, connStr); err != nil {
		_ = db.Close()
		_ = pgContainer.Terminate(ctx)
		cancel()
		return nil, err
	}

	return &TestEnvironment{
		Ctx:         ctx,
		Cancel:      cancel,
		PgContainer: pgContainer,
		PgConnStr:   connStr,
		DB:          db,
		RunDB: &rundb.RunDBImpl{
			DB:           db,
			ResetDay:     time.Monday,
			ResetHourUTC: 9,
		},
	}, nil
}

// Close tears down the environment.
func (env *TestEnvironment) Close() {
	if env.DB != nil {
		_ = env.DB.Close()
	}
	if env.PgContainer != nil {
		if err := env.PgContainer.Terminate(context.Background()); err != nil {
			log.Printf("failed to terminate postgres container: %v", err)
		}
	}
	env.Cancel()
}

// CleanTables truncates application tables between tests.
func (env *TestEnvironment) CleanTables(t *testing.T) {
	t.Helper()
	for _, table := range []string{"run_scores", "run_headers", "period_sequences", "roster_settings"} {
		if _, err := env.DB.ExecContext(env.Ctx, "TRUNCATE TABLE "+table+" CASCADE"); err != nil {
			t.Fatalf("failed to truncate %s: %v", table, err)
		}
	}
}

func runMigrations(ctx context.Context, db *bun.DB, connStr string) error {
	migrator := migrate.NewMigrator(db, runmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize migration tables: %w", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run run-module migrations: %w", err)
	}

	// River's own schema, needed by the queue service.
	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return fmt.Errorf("failed to parse DSN for River migrations: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool for River migrations: %w", err)
	}
	defer pool.Close()

	riverMigrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create River migrator: %w", err)
	}
	if _, err := riverMigrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{}); err != nil {
		return fmt.Errorf("failed to run River migrations: %w", err)
	}
	return nil
}
