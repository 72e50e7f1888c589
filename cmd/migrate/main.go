package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/elskow/sphere-accounts/internal/migration"
	"github.com/elskow/sphere-accounts/internal/server"
)

func main() {
	if os.Getenv("APP_ENV") == "" {
		os.Setenv("APP_ENV", "development")
	}

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configDir string

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the accounts database schema",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&configDir, "config-dir", "./config/server", "directory containing config.toml")

	withMigrator := func(run func(*migration.Migrator, *zap.Logger) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			logger, err := server.NewLogger(os.Getenv("APP_ENV"))
			if err != nil {
				return err
			}
			defer logger.Sync()

			cfg, err := server.LoadConfigFrom(configDir)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			migrator, err := migration.NewMigrator(&cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to create migrator: %w", err)
			}
			defer migrator.Close()

			return run(migrator, logger)
		}
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: withMigrator(func(m *migration.Migrator, log *zap.Logger) error {
				if err := m.Up(); err != nil {
					return err
				}
				log.Info("Successfully ran migrations")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the latest migration",
			RunE: withMigrator(func(m *migration.Migrator, log *zap.Logger) error {
				if err := m.Down(); err != nil {
					return err
				}
				log.Info("Successfully rolled back migrations")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print migration status",
			RunE: withMigrator(func(m *migration.Migrator, _ *zap.Logger) error {
				return m.Status()
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: withMigrator(func(m *migration.Migrator, log *zap.Logger) error {
				version, err := m.Version()
				if err != nil {
					return err
				}
				log.Info("Current migration version", zap.Int64("version", version))
				return nil
			}),
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Roll back every migration and apply them again",
			RunE: withMigrator(func(m *migration.Migrator, log *zap.Logger) error {
				if err := m.Reset(); err != nil {
					return err
				}
				log.Info("Successfully reset migrations")
				return nil
			}),
		},
	)

	return root
}
