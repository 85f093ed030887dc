package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/recall/internal/models"
	"github.com/desertthunder/recall/internal/relevance"
	"github.com/desertthunder/recall/internal/repositories"
	"github.com/desertthunder/recall/internal/shared"
	"github.com/desertthunder/recall/internal/tasks"
	"github.com/urfave/cli/v3"
)

// ItemsList lists a user's synced saved items.
func (r *Runner) ItemsList(ctx context.Context, cmd *cli.Command) error {
	userID := int64(cmd.Int("user"))
	count := int(cmd.Int("count"))
	oldest := cmd.Bool("oldest")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	return r.withStore(func(store *repositories.Store) error {
		query := &models.SavedItemQuery{UserID: userID, Count: count}
		if oldest {
			query.SortBy = models.SavedItemSortTimeAdded
		}

		items, err := store.Items.Query(ctx, query)
		if err != nil {
			return err
		}

		if useJSON {
			return r.writeJSON(items, pretty)
		}

		r.writePlain("Found %d saved items:\n\n", len(items))
		for i := range items {
			r.printItem(i+1, &items[i])
		}

		return nil
	})
}

// ItemsSearch ranks a user's saved items against a keyword phrase.
func (r *Runner) ItemsSearch(ctx context.Context, cmd *cli.Command) error {
	phrase := stringArg(cmd, "query")
	if phrase == "" {
		return fmt.Errorf("%w: a search phrase is required", shared.ErrMissingArgument)
	}

	userID := int64(cmd.Int("user"))
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	r.logger.Info("searching saved items", "user_id", userID, "query", phrase)

	return r.withStore(func(store *repositories.Store) error {
		ranked, err := relevance.NewIndex(store.Items).Search(ctx, userID, phrase)
		if err != nil {
			return err
		}

		if useJSON {
			return r.writeJSON(ranked, pretty)
		}

		if len(ranked) == 0 {
			r.writePlain("Nothing relevant to %q in your saves.\n", phrase)
			return nil
		}

		r.writePlain("Found %d items relevant to %q:\n\n", len(ranked), phrase)
		for i := range ranked {
			r.printItem(i+1, &ranked[i].Item)
			r.writePlain("   Score: %.3f\n", ranked[i].Score)
		}

		return nil
	})
}

// ItemsRandom resurfaces one stored item at random.
func (r *Runner) ItemsRandom(ctx context.Context, cmd *cli.Command) error {
	userID := int64(cmd.Int("user"))

	return r.withStore(func(store *repositories.Store) error {
		item, err := store.Items.Random(ctx, userID)
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("%w: user %d has no synced items", shared.ErrNotFound, userID)
		}

		r.writePlain("🎲 %s\n", item.Title)
		if itemURL := item.URLText(); itemURL != "" {
			r.writePlain("   %s\n", itemURL)
		}
		r.writePlain("   Read: %s\n", item.ReadURL())

		return nil
	})
}

// ItemsArchive archives an item on Pocket and removes it locally.
func (r *Runner) ItemsArchive(ctx context.Context, cmd *cli.Command) error {
	return r.modifyItem(ctx, cmd, tasks.CommandArchive)
}

// ItemsDelete permanently deletes an item on Pocket and removes it locally.
func (r *Runner) ItemsDelete(ctx context.Context, cmd *cli.Command) error {
	return r.modifyItem(ctx, cmd, tasks.CommandDelete)
}

// ItemsFavorite favorites an item on Pocket. Favorites carry no local state.
func (r *Runner) ItemsFavorite(ctx context.Context, cmd *cli.Command) error {
	return r.modifyItem(ctx, cmd, tasks.CommandFavorite)
}

// modifyItem applies one remote mutation through the engine.
func (r *Runner) modifyItem(ctx context.Context, cmd *cli.Command, kind tasks.CommandKind) error {
	userID := int64(cmd.Int("user"))
	itemID := int64(cmd.Int("item"))

	r.logger.Info("applying item mutation", "kind", kind.String(), "user_id", userID, "item_id", itemID)

	return r.withStore(func(store *repositories.Store) error {
		engine := r.newEngine(store)

		var err error
		switch kind {
		case tasks.CommandArchive:
			err = engine.Archive(ctx, userID, itemID)
		case tasks.CommandDelete:
			err = engine.Delete(ctx, userID, itemID)
		case tasks.CommandFavorite:
			// Favorite skips the engine's ownership check, so do it here.
			item, getErr := store.Items.Get(ctx, itemID)
			if getErr != nil {
				err = getErr
				break
			}
			if item == nil || item.UserID != userID {
				err = fmt.Errorf("%w: item %d for user %d", shared.ErrNotFound, itemID, userID)
				break
			}
			err = engine.Favorite(ctx, itemID)
		default:
			err = fmt.Errorf("%w: unsupported mutation %q", shared.ErrInvalidArgument, kind.String())
		}
		if err != nil {
			return err
		}

		r.writePlain("✓ Item %d %sd\n", itemID, kind.String())

		return nil
	})
}

// ItemsExport writes saved items to files in the chosen format.
func (r *Runner) ItemsExport(ctx context.Context, cmd *cli.Command) error {
	userID := int64(cmd.Int("user"))
	format := cmd.String("format")
	outputDir := cmd.String("output")

	opts := tasks.BulkExportOpts{Format: format, OutputDir: outputDir}
	if userID > 0 {
		opts.UserIDs = []int64{userID}
	}

	return r.withStore(func(store *repositories.Store) error {
		engine := r.newEngine(store)

		progressCh := make(chan tasks.ProgressUpdate, 50)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for update := range progressCh {
				r.writePlain("📦 %s\n", update.Message)
			}
		}()

		result, err := engine.BulkExport(ctx, progressCh, opts)
		close(progressCh)
		<-done
		if err != nil {
			return err
		}

		r.writePlain("\n")
		r.writePlainHeader("Export Complete!")
		r.writePlain("Users exported: %d/%d\n", result.SuccessfulExports, result.TotalUsers)
		if result.FailedExports > 0 {
			r.writePlain("Failed: %d\n", result.FailedExports)
		}
		r.writePlain("Output: %s\n", result.OutputDirectory)
		r.writePlain("Manifest: %s\n", result.ManifestPath)

		return nil
	})
}

// printItem writes one saved item as a numbered listing entry.
func (r *Runner) printItem(n int, item *models.SavedItem) {
	r.writePlain("%d. %s\n", n, item.Title)
	if itemURL := item.URLText(); itemURL != "" {
		r.writePlain("   %s\n", itemURL)
	}
	if excerpt := item.ExcerptText(); excerpt != "" {
		r.writePlain("   %s\n", shared.Truncate(excerpt, 100))
	}
	r.writePlain("   Added: %s  (ID %d)\n", shared.FormatTime(item.TimeAdded), item.ID)
}
