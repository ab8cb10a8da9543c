package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/playsync/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the example configuration to the config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	if err := shared.CreateConfigFile(r.configPath); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", r.configPath)
	r.writePlain("✓ Wrote %s\n", r.configPath)
	return r.writePlain("Fill in your Spotify client credentials, then run `playsync auth spotify`.\n")
}

// SetupDatabase initializes the history database and runs migrations, or rolls back the latest one.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config := r.cfg()

	db := r.db
	if db == nil {
		r.logger.Info("initializing database", "path", config.Database.Path)

		var err error
		db, err = shared.NewDatabase(config.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to create database: %w", err)
		}
		defer db.Close()

		shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
	}

	if cmd.Bool("rollback") {
		if err := shared.RollbackMigration(db); err != nil {
			return err
		}
		return r.reportVersion(db, "rolled back")
	}

	r.logger.Info("running database migrations")
	applied, err := shared.RunMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return r.reportVersion(db, fmt.Sprintf("%d migration(s) applied", applied))
}

func (r *Runner) reportVersion(db *sql.DB, action string) error {
	version, ok, err := shared.CurrentVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if !ok {
		return r.writePlain("✓ Database %s, no migrations applied\n", action)
	}
	return r.writePlain("✓ Database %s, schema version %d\n", action, version)
}
