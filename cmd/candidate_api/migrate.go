package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/candidate-intake/internal/config"
	"github.com/jonathan/candidate-intake/internal/db"
	"github.com/jonathan/candidate-intake/internal/db/migrations"
	"github.com/jonathan/candidate-intake/internal/observability"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the PostgreSQL schema",
	Long:  `Apply or inspect schema migrations for the postgres and libpq providers. SQLite creates its schema on open.`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withMigrator(cmd.Context(), func(ctx context.Context, m migrator, _ *config.Config) error {
			if err := m.Migrate(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
			return nil
		})
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the applied schema version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withMigrator(cmd.Context(), func(ctx context.Context, m migrator, cfg *config.Config) error {
			current, dirty, err := m.MigrationVersion(ctx)
			if err != nil {
				return err
			}
			latest, err := migrations.LatestVersion()
			if err != nil {
				return err
			}
			observability.NewPrinter(cmd.OutOrStdout()).PrintMigrationStatus(observability.MigrationStatus{
				Provider: cfg.Database.Provider,
				Table:    migrations.MigrationsTable,
				Current:  current,
				Latest:   latest,
				Dirty:    dirty,
			})
			return nil
		})
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateVersionCmd)
	rootCmd.AddCommand(migrateCmd)
}

// migrator is implemented by the stores that own a migrated schema.
type migrator interface {
	Migrate(ctx context.Context) error
	MigrationVersion(ctx context.Context) (uint, bool, error)
	Close() error
}

func withMigrator(ctx context.Context, fn func(context.Context, migrator, *config.Config) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	m, err := openMigrator(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = m.Close()
	}()
	return fn(ctx, m, cfg)
}

func openMigrator(ctx context.Context, cfg *config.Config) (migrator, error) {
	switch cfg.Database.Provider {
	case db.ProviderPostgres:
		if cfg.Database.PostgresURL == "" {
			return nil, fmt.Errorf("database.postgres_url (or DATABASE_URL) is required")
		}
		pg, err := db.Connect(ctx, cfg.Database.PostgresURL)
		if err != nil {
			return nil, err
		}
		return pg, nil
	case db.ProviderLibPQ:
		if cfg.Database.LibPQURL == "" {
			return nil, fmt.Errorf("database.libpq_url is required")
		}
		store, err := db.OpenLibPQ(ctx, cfg.Database.LibPQURL)
		if err != nil {
			return nil, err
		}
		return store, nil
	case db.ProviderSQLite, db.ProviderMemory:
		return nil, fmt.Errorf("provider %s does not use migrations", cfg.Database.Provider)
	default:
		return nil, fmt.Errorf("%w: %q", db.ErrUnknownProvider, cfg.Database.Provider)
	}
}
