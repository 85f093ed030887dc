package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/recall/internal/services"
	"github.com/desertthunder/recall/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var pocketService *services.PocketService
	if config.Credentials.Pocket.ConsumerKey != "" {
		if svc, err := services.NewPocketService(
			config.Credentials.Pocket.ConsumerKey,
			config.Credentials.Pocket.RedirectURI,
			"",
		); err == nil {
			pocketService = svc
		}
	}

	var mailerService *services.SendGridService
	if config.Credentials.SendGrid.APIKey != "" {
		if svc, err := services.NewSendGridService(config.Credentials.SendGrid.APIKey, ""); err == nil {
			mailerService = svc
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: "config.toml",
		Pocket:     pocketService,
		Trends:     services.NewTrendsService(""),
		Mailer:     mailerService,
		HackerNews: services.NewHackerNewsService(""),
		Wayback:    services.NewWaybackService(""),
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "recall",
		Usage:    "Sync Pocket saves and resurface the ones worth reading today",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrRemoteAuth) {
			logger.Error("pocket authorization missing, run 'recall auth pocket' first")
			os.Exit(1)
		}
		logger.Fatalf("application error: %v", err)
	}
}
