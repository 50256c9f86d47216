// Package bundb owns the bun database handle and the repository instances
// built on it.
package bundb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	rundb "github.com/Paddock-Club/trackmaster/app/modules/run/infrastructure/repositories"
	"github.com/Paddock-Club/trackmaster/config"
)

// DBService bundles the database connection with the module repositories.
type DBService struct {
	RunDB *rundb.RunDBImpl
	db    *bun.DB
}

// GetDB returns the underlying database connection pool.
func (s *DBService) GetDB() *bun.DB {
	return s.db
}

// NewBunDBService connects to Postgres and builds the run repository with the
// configured period boundary.
func NewBunDBService(ctx context.Context, cfg *config.Config) (*DBService, error) {
	resetDay, err := cfg.Run.ResetWeekday()
	if err != nil {
		return nil, err
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.DSN)))
	if err := sqldb.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())
	db.RegisterModel(
		(*rundb.Run)(nil),
		(*rundb.RunScore)(nil),
		(*rundb.PeriodSequence)(nil),
		(*rundb.VocabularyEntry)(nil),
		(*rundb.RosterSetting)(nil),
	)

	return &DBService{
		RunDB: &rundb.RunDBImpl{
			DB:           db,
			ResetDay:     resetDay,
			ResetHourUTC: cfg.Run.ResetHourUTC,
		},
		db: db,
	}, nil
}
