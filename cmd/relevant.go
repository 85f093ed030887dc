package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/recall/internal/repositories"
	"github.com/desertthunder/recall/internal/shared"
	"github.com/desertthunder/recall/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Relevant builds the daily digest: fetch today's trends, freshen the user's
// items with a delta sync, rank each trend against the saves, and compose the
// mail. The digest prints to stdout unless --email sends it through SendGrid.
func (r *Runner) Relevant(ctx context.Context, cmd *cli.Command) error {
	userID := int64(cmd.Int("user"))
	sendMail := cmd.Bool("email")
	dryRun := cmd.Bool("dry-run")

	if r.trends == nil {
		return fmt.Errorf("%w: trends service not initialized", shared.ErrMissingConfig)
	}

	from := cmd.String("from")
	if from == "" {
		from = r.config.Credentials.SendGrid.FromEmail
	}
	if sendMail && !dryRun {
		if r.mailer == nil {
			return fmt.Errorf("%w: sendgrid api_key must be set in config.toml", shared.ErrMissingCredentials)
		}
		if from == "" {
			return fmt.Errorf("%w: --from or sendgrid from_email is required to send mail", shared.ErrMissingArgument)
		}
	}

	geo := cmd.String("geo")
	if geo == "" {
		geo = r.config.Trends.Geo
	}
	days := int(cmd.Int("days"))
	if days <= 0 {
		days = r.config.Trends.Days
	}

	r.logger.Info("building digest", "user_id", userID, "geo", geo, "days", days)

	r.writePlain("📡 Fetching trending searches (%s)...\n", geo)
	trends, err := r.trends.DailyTrends(ctx, geo, days)
	if err != nil {
		return err
	}
	r.writePlain("   %d trends\n", len(trends))

	return r.withStore(func(store *repositories.Store) error {
		engine := r.newEngine(store)

		progressCh := make(chan tasks.ProgressUpdate, 50)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for update := range progressCh {
				switch update.Phase {
				case tasks.FetchPage:
					r.writePlain("📥 %s\n", update.Message)
				case tasks.RankTrends:
					r.writePlain("🔍 %s\n", update.Message)
				case tasks.ComposeDigest:
					r.writePlain("📝 %s\n", update.Message)
				}
			}
		}()

		if _, err := engine.Sync(ctx, progressCh, userID); err != nil {
			close(progressCh)
			<-done
			return err
		}

		mail, err := engine.BuildDigestMail(ctx, progressCh, userID, trends, from)
		close(progressCh)
		<-done
		if err != nil {
			return err
		}

		if sendMail && !dryRun {
			if err := r.mailer.Send(ctx, mail); err != nil {
				return err
			}
			r.writePlain("\n✓ Digest sent to %s\n", mail.ToEmail)
			return nil
		}

		r.writePlain("\n")
		r.writePlainHeader("Digest Preview")
		r.writePlain("%s\n", mail.String())

		return nil
	})
}
