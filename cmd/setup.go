package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/kiosk/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates the config file from the embedded template when missing, then migrates the database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := r.configPath
	if configPath == "" {
		configPath = "config.toml"
	}

	config := r.config
	if _, err := os.Stat(configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		if config, err = shared.LoadConfig(configPath); err != nil {
			return fmt.Errorf("failed to load created config: %w", err)
		}
		r.writePlain("✓ Created %s, fill in your Spotify and YouTube credentials\n", configPath)
	}

	if applyCredentialFlags(cmd, config) {
		if err := shared.SaveConfig(configPath, config); err != nil {
			return fmt.Errorf("failed to save credentials: %w", err)
		}
		r.config = config
		r.writePlain("✓ Saved credentials to %s\n", configPath)
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if cmd.Bool("rollback") {
		r.logger.Info("rolling back last migration")
		if err := shared.RollbackMigration(db); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
		return r.writePlain("✓ Rolled back last migration on %s\n", config.Database.Path)
	}

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.writePlain("✓ Database ready at %s\n", config.Database.Path)
	r.writePlain("\nNext steps:\n")
	r.writePlain("1. Set credentials.spotify.client_id and client_secret in %s\n", configPath)
	r.writePlain("2. Run 'kiosk auth login'\n")
	r.writePlain("3. Run 'kiosk tui'\n")
	return nil
}

// applyCredentialFlags copies any credential flags given to setup into config.
func applyCredentialFlags(cmd *cli.Command, config *shared.Config) bool {
	changed := false
	for flag, field := range map[string]*string{
		"client-id":     &config.Credentials.Spotify.ClientID,
		"client-secret": &config.Credentials.Spotify.ClientSecret,
		"youtube-key":   &config.Credentials.YouTube.APIKey,
		"channel-id":    &config.Credentials.YouTube.ChannelID,
	} {
		if v := cmd.String(flag); v != "" {
			*field = v
			changed = true
		}
	}
	return changed
}
