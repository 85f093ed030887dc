package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/recall/internal/shared"
	"github.com/urfave/cli/v3"
)

// LookupHackerNews finds the best Hacker News discussion of a URL, scored by
// points with comment count as the tie-break.
func (r *Runner) LookupHackerNews(ctx context.Context, cmd *cli.Command) error {
	if r.hackernews == nil {
		return fmt.Errorf("%w: hacker news service not initialized", shared.ErrMissingConfig)
	}

	itemURL := stringArg(cmd, "url")
	if itemURL == "" {
		return fmt.Errorf("%w: a url is required", shared.ErrMissingArgument)
	}

	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	r.logger.Info("searching hacker news", "url", itemURL)

	discussion, err := r.hackernews.BestDiscussion(ctx, itemURL)
	if err != nil {
		return err
	}
	if discussion == nil {
		return fmt.Errorf("%w: no hacker news discussion of %s", shared.ErrNotFound, itemURL)
	}

	if useJSON {
		return r.writeJSON(discussion, pretty)
	}

	r.writePlain("Found discussion:\n\n")
	r.writePlain("Title: %s\n", discussion.Title)
	r.writePlain("Points: %d\n", discussion.Points)
	r.writePlain("Comments: %d\n", discussion.NumComments)
	r.writePlain("URL: %s\n", discussion.URL)

	return nil
}

// LookupWayback finds the closest archived snapshot of a URL.
func (r *Runner) LookupWayback(ctx context.Context, cmd *cli.Command) error {
	if r.wayback == nil {
		return fmt.Errorf("%w: wayback service not initialized", shared.ErrMissingConfig)
	}

	pageURL := stringArg(cmd, "url")
	if pageURL == "" {
		return fmt.Errorf("%w: a url is required", shared.ErrMissingArgument)
	}

	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	r.logger.Info("checking wayback availability", "url", pageURL)

	snapshot, err := r.wayback.ClosestSnapshot(ctx, pageURL)
	if err != nil {
		return err
	}
	if snapshot == nil {
		return fmt.Errorf("%w: no archived snapshot of %s", shared.ErrNotFound, pageURL)
	}

	if useJSON {
		return r.writeJSON(snapshot, pretty)
	}

	r.writePlain("Found snapshot:\n\n")
	r.writePlain("Archived: %s\n", snapshot.Timestamp)
	r.writePlain("URL: %s\n", snapshot.URL)

	return nil
}
