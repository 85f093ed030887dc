package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/recall/internal/repositories"
	"github.com/desertthunder/recall/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes the starter config when none exists, then opens the configured
// database and runs migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}

	r.logger.Info("initializing database", "url", config.Database.URL)

	store, err := repositories.Open(config.Database.URL, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	dialect := shared.DetectDialect(config.Database.URL)
	r.logger.Infof("setup complete for %v database: %v", dialect, config.Database.URL)

	r.writePlain("✓ Configuration: %s\n", configPath)
	r.writePlain("✓ Database ready (%s): %s\n", dialect, config.Database.URL)
	r.writePlainln("Next steps:")
	r.writePlain("1. Put your Pocket consumer key in %s\n", configPath)
	r.writePlain("2. Run 'recall users add you@example.com' to create an account\n")
	r.writePlain("3. Run 'recall auth pocket' to connect it to Pocket\n")

	return nil
}
