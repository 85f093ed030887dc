package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/recall/internal/repositories"
	"github.com/desertthunder/recall/internal/shared"
	"github.com/desertthunder/recall/internal/tasks"
	"github.com/desertthunder/recall/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive reviewer for trend-relevant saved items.
//
// Storage access runs through a worker goroutine so the event loop never
// blocks on the database or the Pocket API.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.trends == nil {
		return fmt.Errorf("%w: trends service not initialized", shared.ErrMissingConfig)
	}

	userID := int64(cmd.Int("user"))

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/recall-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	return r.withStore(func(store *repositories.Store) error {
		workerCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		worker := tasks.NewWorker(r.newEngine(store), r.logger)
		worker.Start(workerCtx)

		model := ui.NewModel(ctx, r.trends, worker, userID, r.config.Trends.Geo, r.config.Trends.Days)
		p := tea.NewProgram(model)

		if _, err := p.Run(); err != nil {
			cancel()
			worker.Wait()
			return fmt.Errorf("error running TUI: %w", err)
		}

		cancel()
		worker.Wait()

		return nil
	})
}
