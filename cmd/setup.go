package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/rekordsync/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates the config file when missing and initializes the mapping database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err == nil {
		config, err := shared.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		r.config = config
		r.configPath = configPath
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}

		config, err := shared.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load created config: %w", err)
		}
		r.config = config
		r.configPath = configPath

		r.writePlain("✓ Config written to %s\n", configPath)
		r.writePlain("Edit it with your library path and Spotify credentials, then run 'rekordsync auth'.\n")
	}

	r.logger.Info("initializing mapping database", "path", r.config.Database.Path)

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.writePlainln("✓ Mapping database ready: %s", r.config.Database.Path)
	return nil
}
