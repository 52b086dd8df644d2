package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/robalyx/modreport/internal/database"
	"github.com/robalyx/modreport/internal/setup"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

var ErrDatabaseDisabled = errors.New("postgresql is disabled in common.toml")

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage the audit log schema",
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Run pending migrations",
				Action: withMigrator(func(ctx context.Context, migrator *migrate.Migrator, logger *zap.Logger) error {
					group, err := migrator.Migrate(ctx)
					if err != nil {
						return err
					}

					if group.IsZero() {
						logger.Info("No new migrations to run (database is up to date)")
						return nil
					}

					logger.Info("Successfully migrated", zap.String("group", group.String()))

					return nil
				}),
			},
			{
				Name:  "rollback",
				Usage: "Rollback the last migration group",
				Action: withMigrator(func(ctx context.Context, migrator *migrate.Migrator, logger *zap.Logger) error {
					group, err := migrator.Rollback(ctx)
					if err != nil {
						return err
					}

					if group.IsZero() {
						logger.Info("No groups to roll back")
						return nil
					}

					logger.Info("Rolled back", zap.String("group", group.String()))

					return nil
				}),
			},
			{
				Name:  "status",
				Usage: "Print migration status",
				Action: withMigrator(func(ctx context.Context, migrator *migrate.Migrator, logger *zap.Logger) error {
					ms, err := migrator.MigrationsWithStatus(ctx)
					if err != nil {
						return err
					}

					logger.Info("Migration status",
						zap.String("applied", ms.Applied().String()),
						zap.String("unapplied", ms.Unapplied().String()),
						zap.String("last_group", ms.LastGroup().String()))

					return nil
				}),
			},
		},
	}
}

// withMigrator connects to the database, takes the migration lock and runs fn.
func withMigrator(fn func(context.Context, *migrate.Migrator, *zap.Logger) error) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		app, err := setup.InitializeApp(ctx, "migrate", c.String("log-dir"), false)
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		defer app.Cleanup(ctx)

		if app.DB == nil {
			return ErrDatabaseDisabled
		}

		migrator := database.NewMigrator(app.DB.DB())
		if err := migrator.Init(ctx); err != nil {
			return fmt.Errorf("failed to initialize migrations: %w", err)
		}

		if err := migrator.Lock(ctx); err != nil {
			return err
		}
		defer migrator.Unlock(ctx) //nolint:errcheck

		return fn(ctx, migrator, app.Logger)
	}
}
