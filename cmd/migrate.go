package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mavmaso/ficherors/internal/db"
	"github.com/mavmaso/ficherors/internal/logger"
	"github.com/mavmaso/ficherors/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations (dev: DROP & CREATE tables)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		sqlDB, err := db.NewMySQLConnection(cfg.MySQL)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer sqlDB.Close()

		if err := apply(ctx, sqlDB, migrations.MySQL); err != nil {
			return err
		}

		chDB, err := db.NewClickHouseConnection(cfg.ClickHouse)
		switch {
		case errors.Is(err, db.ErrNoDSN):
			logger.Log.Warn("clickhouse not configured, skipping job history schema")
		case err != nil:
			return fmt.Errorf("open clickhouse: %w", err)
		default:
			defer chDB.Close()
			if err := apply(ctx, chDB, migrations.ClickHouse); err != nil {
				return err
			}
		}

		fmt.Fprintln(cmd.OutOrStdout(), ">> Migration complete ✅")
		return nil
	},
}

func apply(ctx context.Context, dbx *sqlx.DB, dialect string) error {
	stmts, err := migrations.Statements(dialect)
	if err != nil {
		return err
	}
	for i, stmt := range stmts {
		if _, err := dbx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %s migration #%d: %w", dialect, i+1, err)
		}
	}
	logger.Log.Info("migrations applied", zap.String("dialect", dialect), zap.Int("statements", len(stmts)))
	return nil
}
