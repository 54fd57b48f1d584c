package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/homecontrol-core/internal/infrastructure/config"
	"github.com/nerrad567/homecontrol-core/internal/infrastructure/database"
	"github.com/nerrad567/homecontrol-core/internal/infrastructure/logging"
	"github.com/nerrad567/homecontrol-core/migrations"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  "Apply, roll back and inspect the embedded SQLite schema migrations.",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd.Context(), *configPath, func(ctx context.Context, db *database.DB) error {
				n, err := db.Migrate(ctx, migrations.FS)
				if err != nil {
					return fmt.Errorf("running migrations: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", n)
				return nil
			})
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd.Context(), *configPath, func(ctx context.Context, db *database.DB) error {
				if err := db.MigrateDown(ctx, migrations.FS); err != nil {
					return fmt.Errorf("rolling back migration: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "rolled back 1 migration")
				return nil
			})
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "List applied and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDatabase(cmd.Context(), *configPath, func(ctx context.Context, db *database.DB) error {
				applied, pending, err := db.MigrationStatus(ctx, migrations.FS)
				if err != nil {
					return fmt.Errorf("reading migration status: %w", err)
				}
				out := cmd.OutOrStdout()
				for _, m := range applied {
					fmt.Fprintf(out, "applied  %s  %s\n", m.Version, m.AppliedAt.Format(time.RFC3339))
				}
				for _, m := range pending {
					fmt.Fprintf(out, "pending  %s  %s\n", m.Version, m.Name)
				}
				if len(applied) == 0 && len(pending) == 0 {
					fmt.Fprintln(out, "no migrations found")
				}
				return nil
			})
		},
	}

	migrateCmd.AddCommand(upCmd, downCmd, statusCmd)
	return migrateCmd
}

// withDatabase loads the config at path, opens the database and runs fn
// against it. Logs go to stderr so command output stays clean.
func withDatabase(ctx context.Context, path string, fn func(context.Context, *database.DB) error) error {
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logCfg := cfg.Logging
	logCfg.Output = "stderr"

	db, err := openDatabase(ctx, cfg, logging.New(logCfg, version))
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(ctx, db)
}

