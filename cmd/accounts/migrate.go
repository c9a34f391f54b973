package main

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/99minutos/account-service/internal/infrastructure/config"
	"github.com/99minutos/account-service/internal/infrastructure/db/postgres"
)

// NewMigrateCmd creates the migrate subcommand. Without a subcommand it
// applies all pending migrations.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Run all pending migrations against the PostgreSQL store configured by
POSTGRES_DSN. The MongoDB store needs no migrations; its indexes are created
when the server starts.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPool(cmd, func(pool *pgxpool.Pool) error {
				cmd.Println("Running migrations...")
				if err := postgres.MigrateUp(cmd.Context(), pool); err != nil {
					return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
				}
				cmd.Println("Migrations completed successfully")
				return nil
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPool(cmd, func(pool *pgxpool.Pool) error {
				if err := postgres.MigrateDown(cmd.Context(), pool); err != nil {
					return oops.Code("MIGRATION_FAILED").With("operation", "roll back migration").Wrap(err)
				}
				cmd.Println("Rolled back one migration")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withPool(cmd, func(pool *pgxpool.Pool) error {
				v, err := postgres.MigrationVersion(cmd.Context(), pool)
				if err != nil {
					return err
				}
				cmd.Printf("Schema version: %d\n", v)
				return nil
			})
		},
	})

	return cmd
}

func withPool(cmd *cobra.Command, fn func(pool *pgxpool.Pool) error) error {
	cfg, err := config.LoadPostgres(cmd.Context())
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}

	cmd.Println("Connecting to database...")
	pool, err := postgres.Connect(cmd.Context(), cfg.DSN)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer pool.Close()

	return fn(pool)
}
