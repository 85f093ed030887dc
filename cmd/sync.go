package main

import (
	"context"

	"github.com/desertthunder/recall/internal/repositories"
	"github.com/desertthunder/recall/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Sync reconciles a user's local items with their Pocket collection. A delta
// sync resumes from the stored watermark; --full re-fetches everything.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	userID := int64(cmd.Int("user"))
	full := cmd.Bool("full")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	r.logger.Info("starting sync", "user_id", userID, "full", full)

	if !useJSON {
		if full {
			r.writePlain("Starting full sync...\n\n")
		} else {
			r.writePlain("Starting delta sync...\n\n")
		}
	}

	return r.withStore(func(store *repositories.Store) error {
		engine := r.newEngine(store)

		progressCh := make(chan tasks.ProgressUpdate, 50)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for update := range progressCh {
				if useJSON {
					continue
				}
				switch update.Phase {
				case tasks.FetchPage:
					r.writePlain("📥 %s\n", update.Message)
				case tasks.ApplyItems:
					r.writePlain("   %s\n", update.Message)
				case tasks.CommitWatermark:
					r.writePlain("💾 %s\n", update.Message)
				}
			}
		}()

		var result *tasks.SyncResult
		var err error
		if full {
			result, err = engine.SyncFull(ctx, progressCh, userID)
		} else {
			result, err = engine.Sync(ctx, progressCh, userID)
		}
		close(progressCh)
		<-done

		if err != nil {
			return err
		}

		if useJSON {
			return r.writeJSON(result, pretty)
		}

		r.writePlain("\n")
		r.writePlainHeader("Sync Complete!")
		r.writePlain("Run: %s\n", result.RunID)
		r.writePlain("Pages fetched: %d\n", result.Pages)
		r.writePlain("Items upserted: %d\n", result.Upserted)
		r.writePlain("Items removed: %d\n", result.Deleted)
		r.writePlain("Watermark: %d\n", result.Watermark)

		return nil
	})
}
