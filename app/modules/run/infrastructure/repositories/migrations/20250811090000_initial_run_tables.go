package runmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	rundb "github.com/Paddock-Club/trackmaster/app/modules/run/infrastructure/repositories"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating run tables...")

		if _, err := db.NewCreateTable().
			Model((*rundb.Run)(nil)).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create run_headers: %w", err)
		}

		if _, err := db.NewCreateTable().
			Model((*rundb.RunScore)(nil)).
			IfNotExists().
			ForeignKey(`("run_id") REFERENCES "run_headers" ("id") ON DELETE CASCADE`).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create run_scores: %w", err)
		}

		if _, err := db.NewCreateTable().
			Model((*rundb.PeriodSequence)(nil)).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create period_sequences: %w", err)
		}

		if _, err := db.NewCreateTable().
			Model((*rundb.RosterSetting)(nil)).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create roster_settings: %w", err)
		}

		if _, err := db.ExecContext(ctx, `
			CREATE INDEX IF NOT EXISTS idx_run_headers_period_status ON run_headers(period_key, status);
			CREATE INDEX IF NOT EXISTS idx_run_headers_status_created ON run_headers(status, created_at);
			CREATE INDEX IF NOT EXISTS idx_run_scores_run_id ON run_scores(run_id);
		`); err != nil {
			return fmt.Errorf("failed to create run indices: %w", err)
		}

		fmt.Println("Run tables created successfully!")
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping run tables...")

		for _, model := range []interface{}{
			(*rundb.RunScore)(nil),
			(*rundb.Run)(nil),
			(*rundb.PeriodSequence)(nil),
			(*rundb.RosterSetting)(nil),
		} {
			if _, err := db.NewDropTable().Model(model).IfExists().Exec(ctx); err != nil {
				return err
			}
		}

		fmt.Println("Run tables dropped successfully!")
		return nil
	})
}
