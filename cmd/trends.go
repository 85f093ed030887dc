package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/recall/internal/shared"
	"github.com/urfave/cli/v3"
)

// Trends lists today's trending searches for a region.
func (r *Runner) Trends(ctx context.Context, cmd *cli.Command) error {
	if r.trends == nil {
		return fmt.Errorf("%w: trends service not initialized", shared.ErrMissingConfig)
	}

	geo := cmd.String("geo")
	if geo == "" {
		geo = r.config.Trends.Geo
	}
	days := int(cmd.Int("days"))
	if days <= 0 {
		days = r.config.Trends.Days
	}
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	r.logger.Info("fetching daily trends", "geo", geo, "days", days)

	trends, err := r.trends.DailyTrends(ctx, geo, days)
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(trends, pretty)
	}

	r.writePlain("Found %d trending searches (%s):\n\n", len(trends), geo)
	for i, trend := range trends {
		r.writePlain("%d. %s\n", i+1, trend.Name)
		r.writePlain("   %s\n", trend.ExploreLink())
	}

	return nil
}
