package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/recall/internal/models"
	"github.com/desertthunder/recall/internal/shared"
)

// SelectRelevant ranks the user's saved items against each trend and collects
// up to ItemsPerTrend matches per trend. Trend processing stops once the
// selection exceeds MaxMailItems, so trends are consumed in the order given
// and later trends may contribute nothing.
func (e *Engine) SelectRelevant(ctx context.Context, progress chan<- ProgressUpdate, userID int64, trends []models.Trend) ([]RelevantItem, error) {
	if e.ranker == nil {
		return nil, fmt.Errorf("%w: engine was built without a ranker", shared.ErrInvalidArgument)
	}

	var selected []RelevantItem
	for i, trend := range trends {
		e.sendProgress(progress, rankTrendUpdate(i+1, len(trends), trend))

		ranked, err := e.ranker.Search(ctx, userID, trend.Name)
		if err != nil {
			return nil, err
		}

		take := e.opts.ItemsPerTrend
		if len(ranked) < take {
			take = len(ranked)
		}
		for _, scored := range ranked[:take] {
			selected = append(selected, RelevantItem{Item: scored.Item, Trend: trend})
		}

		if len(selected) > e.opts.MaxMailItems {
			break
		}
	}

	return selected, nil
}

// RelevantForTrend returns the user's saved items matching a single trend,
// most relevant first, with no digest cap applied.
func (e *Engine) RelevantForTrend(ctx context.Context, userID int64, trend models.Trend) ([]RelevantItem, error) {
	if e.ranker == nil {
		return nil, fmt.Errorf("%w: engine was built without a ranker", shared.ErrInvalidArgument)
	}

	ranked, err := e.ranker.Search(ctx, userID, trend.Name)
	if err != nil {
		return nil, err
	}

	items := make([]RelevantItem, len(ranked))
	for i, scored := range ranked {
		items[i] = RelevantItem{Item: scored.Item, Trend: trend}
	}
	return items, nil
}

// BuildDigestMail composes the daily digest for the user. When no trend
// matched anything the body falls back to the user's oldest saved items so
// the mail is never empty.
func (e *Engine) BuildDigestMail(ctx context.Context, progress chan<- ProgressUpdate, userID int64, trends []models.Trend, fromEmail string) (*models.Mail, error) {
	user, err := e.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	selected, err := e.SelectRelevant(ctx, progress, userID, trends)
	if err != nil {
		return nil, err
	}

	body, err := e.composeBody(ctx, userID, selected)
	if err != nil {
		return nil, err
	}
	e.sendProgress(progress, composedDigestUpdate(selected))

	return &models.Mail{
		FromEmail:   fromEmail,
		ToEmail:     user.Email,
		Subject:     DigestSubject,
		HTMLContent: body,
	}, nil
}

// composeBody renders the digest HTML. Each entry links to the Pocket reader
// page with a search fallback for items the reader no longer resolves;
// trend-matched entries also link to the trend's explore page.
func (e *Engine) composeBody(ctx context.Context, userID int64, selected []RelevantItem) (string, error) {
	var b strings.Builder
	b.WriteString("<b>Timely items from your Pocket:</b>")

	if len(selected) == 0 {
		b.WriteString("Nothing relevant found in your Pocket, returning some items you may not have seen in a while\n")
		items, err := e.items.Query(ctx, &models.SavedItemQuery{
			UserID: userID,
			SortBy: models.SavedItemSortTimeAdded,
			Count:  fallbackItemCount,
		})
		if err != nil {
			return "", err
		}

		b.WriteString("<ol>\n")
		for i := range items {
			item := &items[i]
			fmt.Fprintf(&b, `<li><a href="%s">%s</a> (<a href="%s">Fallback</a>)</li>`,
				item.ReadURL(), item.Title, item.FallbackURL())
		}
		b.WriteString("</ol>")
		return b.String(), nil
	}

	b.WriteString("<ol>")
	for i := range selected {
		item := &selected[i].Item
		trend := selected[i].Trend
		fmt.Fprintf(&b, `<li><a href="%s">%s</a> (<a href="%s">Fallback</a>) (Why: <a href="%s">%s</a>)</li>`,
			item.ReadURL(), item.Title, item.FallbackURL(), trend.ExploreLink(), trend.Name)
	}
	b.WriteString("</ol>")
	return b.String(), nil
}
