package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/desertthunder/recall/internal/models"
	"github.com/desertthunder/recall/internal/relevance"
	"github.com/desertthunder/recall/internal/repositories"
	"github.com/desertthunder/recall/internal/shared"
)

func savedItem(id int64, pocketID, title string) models.SavedItem {
	return models.SavedItem{ID: id, UserID: 1, PocketID: pocketID, Title: title}
}

func scored(item models.SavedItem) relevance.Scored {
	return relevance.Scored{Item: item, Score: 1.0}
}

func newDigestEngine(users repositories.UserRepo, items repositories.SavedItemRepo, ranker Ranker) *Engine {
	factory := func(token string) (RemoteCollection, error) {
		return &fakeCollection{}, nil
	}
	return NewEngine(users, items, factory, ranker, EngineOpts{}, shared.NewLogger(io.Discard))
}

func TestSelectRelevant(t *testing.T) {
	ctx := context.Background()
	users := &fakeUserRepo{user: testUser("token", nil)}

	t.Run("Caps Items Per Trend", func(t *testing.T) {
		ranker := &fakeRanker{results: map[string][]relevance.Scored{
			"rust": {
				scored(savedItem(1, "p1", "rust language")),
				scored(savedItem(2, "p2", "rust compiler")),
				scored(savedItem(3, "p3", "rust async")),
			},
		}}
		engine := newDigestEngine(users, &fakeItemRepo{}, ranker)

		selected, err := engine.SelectRelevant(ctx, nil, 1, []models.Trend{{Name: "rust", Geo: "US"}})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(selected) != 2 {
			t.Fatalf("expected 2 items, got %d", len(selected))
		}
		if selected[0].Item.PocketID != "p1" || selected[1].Item.PocketID != "p2" {
			t.Errorf("expected top two ranked items, got %+v", selected)
		}
		if selected[0].Trend.Name != "rust" {
			t.Errorf("expected trend carried with item, got %+v", selected[0].Trend)
		}
	})

	t.Run("Stops Past Mail Cap", func(t *testing.T) {
		results := map[string][]relevance.Scored{}
		var trends []models.Trend
		for i := 0; i < 4; i++ {
			name := fmt.Sprintf("trend%d", i)
			trends = append(trends, models.Trend{Name: name, Geo: "US"})
			results[name] = []relevance.Scored{
				scored(savedItem(int64(i*2+1), fmt.Sprintf("p%da", i), name+" first")),
				scored(savedItem(int64(i*2+2), fmt.Sprintf("p%db", i), name+" second")),
			}
		}
		ranker := &fakeRanker{results: results}
		engine := newDigestEngine(users, &fakeItemRepo{}, ranker)

		selected, err := engine.SelectRelevant(ctx, nil, 1, trends)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		// two per trend: the cap of four is crossed after the third trend
		if len(selected) != 6 {
			t.Errorf("expected 6 items, got %d", len(selected))
		}
		if len(ranker.calls) != 3 {
			t.Errorf("expected 3 trends ranked, got %d (%v)", len(ranker.calls), ranker.calls)
		}
	})

	t.Run("Skips Unmatched Trends", func(t *testing.T) {
		ranker := &fakeRanker{results: map[string][]relevance.Scored{
			"quiet": nil,
			"rust":  {scored(savedItem(1, "p1", "rust language"))},
		}}
		engine := newDigestEngine(users, &fakeItemRepo{}, ranker)

		selected, err := engine.SelectRelevant(ctx, nil, 1, []models.Trend{
			{Name: "quiet", Geo: "US"},
			{Name: "rust", Geo: "US"},
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(selected) != 1 || selected[0].Trend.Name != "rust" {
			t.Errorf("expected single rust item, got %+v", selected)
		}
	})

	t.Run("Ranker Failure", func(t *testing.T) {
		ranker := &fakeRanker{err: shared.ErrStorage}
		engine := newDigestEngine(users, &fakeItemRepo{}, ranker)

		if _, err := engine.SelectRelevant(ctx, nil, 1, []models.Trend{{Name: "rust"}}); !errors.Is(err, shared.ErrStorage) {
			t.Errorf("expected storage error, got %v", err)
		}
	})

	t.Run("Missing Ranker", func(t *testing.T) {
		engine := newDigestEngine(users, &fakeItemRepo{}, nil)

		if _, err := engine.SelectRelevant(ctx, nil, 1, nil); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected invalid argument, got %v", err)
		}
	})
}

func TestRelevantForTrend(t *testing.T) {
	ctx := context.Background()
	users := &fakeUserRepo{user: testUser("token", nil)}

	t.Run("Returns All Matches", func(t *testing.T) {
		ranker := &fakeRanker{results: map[string][]relevance.Scored{
			"rust": {
				scored(savedItem(1, "p1", "rust language")),
				scored(savedItem(2, "p2", "rust compiler")),
				scored(savedItem(3, "p3", "rust async")),
			},
		}}
		engine := newDigestEngine(users, &fakeItemRepo{}, ranker)

		items, err := engine.RelevantForTrend(ctx, 1, models.Trend{Name: "rust", Geo: "US"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		// no digest cap here: all three ranked items come back
		if len(items) != 3 {
			t.Fatalf("expected 3 items, got %d", len(items))
		}
		if items[0].Item.PocketID != "p1" {
			t.Errorf("expected ranked order preserved, got %+v", items)
		}
		if items[2].Trend.Name != "rust" {
			t.Errorf("expected trend carried with item, got %+v", items[2].Trend)
		}
	})

	t.Run("Missing Ranker", func(t *testing.T) {
		engine := newDigestEngine(users, &fakeItemRepo{}, nil)

		if _, err := engine.RelevantForTrend(ctx, 1, models.Trend{Name: "rust"}); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected invalid argument, got %v", err)
		}
	})
}

func TestBuildDigestMail(t *testing.T) {
	ctx := context.Background()

	t.Run("Composes Trend Matches", func(t *testing.T) {
		users := &fakeUserRepo{user: testUser("token", nil)}
		items := &fakeItemRepo{}
		ranker := &fakeRanker{results: map[string][]relevance.Scored{
			"rust": {scored(savedItem(1, "p1", "rust language"))},
		}}
		engine := newDigestEngine(users, items, ranker)

		progress := make(chan ProgressUpdate, 16)
		mail, err := engine.BuildDigestMail(ctx, progress, 1, []models.Trend{{Name: "rust", Geo: "US"}}, "digest@example.com")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if mail.FromEmail != "digest@example.com" || mail.ToEmail != "reader@example.com" {
			t.Errorf("unexpected addressing %+v", mail)
		}
		if mail.Subject != "Recall Daily Digest" {
			t.Errorf("unexpected subject %q", mail.Subject)
		}

		want := `<b>Timely items from your Pocket:</b><ol>` +
			`<li><a href="https://app.getpocket.com/read/p1">rust language</a> ` +
			`(<a href="https://app.getpocket.com/search/rust%20language">Fallback</a>) ` +
			`(Why: <a href="https://trends.google.com/trends/explore?geo=US&q=rust">rust</a>)</li>` +
			`</ol>`
		if mail.HTMLContent != want {
			t.Errorf("unexpected body\n got: %s\nwant: %s", mail.HTMLContent, want)
		}

		close(progress)
		var ranked, composed int
		for update := range progress {
			switch update.Phase {
			case RankTrends:
				ranked++
			case ComposeDigest:
				composed++
			}
		}
		if ranked != 1 || composed != 1 {
			t.Errorf("expected 1 rank and 1 compose update, got %d and %d", ranked, composed)
		}
	})

	t.Run("Falls Back To Oldest Items", func(t *testing.T) {
		users := &fakeUserRepo{user: testUser("token", nil)}
		items := &fakeItemRepo{byUser: map[int64][]models.SavedItem{
			1: {
				savedItem(8, "p8", "old one"),
				savedItem(9, "p9", "old two"),
			},
		}}
		ranker := &fakeRanker{}
		engine := newDigestEngine(users, items, ranker)

		mail, err := engine.BuildDigestMail(ctx, nil, 1, []models.Trend{{Name: "rust", Geo: "US"}}, "digest@example.com")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(items.queried) != 1 {
			t.Fatalf("expected one fallback query, got %d", len(items.queried))
		}
		query := items.queried[0]
		if query.UserID != 1 || query.SortBy != models.SavedItemSortTimeAdded || query.Count != 3 {
			t.Errorf("unexpected fallback query %+v", query)
		}

		want := "<b>Timely items from your Pocket:</b>" +
			"Nothing relevant found in your Pocket, returning some items you may not have seen in a while\n" +
			"<ol>\n" +
			`<li><a href="https://app.getpocket.com/read/p8">old one</a> (<a href="https://app.getpocket.com/search/old%20one">Fallback</a>)</li>` +
			`<li><a href="https://app.getpocket.com/read/p9">old two</a> (<a href="https://app.getpocket.com/search/old%20two">Fallback</a>)</li>` +
			"</ol>"
		if mail.HTMLContent != want {
			t.Errorf("unexpected body\n got: %s\nwant: %s", mail.HTMLContent, want)
		}
		if strings.Contains(mail.HTMLContent, "Why:") {
			t.Error("fallback body should not carry trend links")
		}
	})

	t.Run("Unknown User", func(t *testing.T) {
		users := &fakeUserRepo{}
		engine := newDigestEngine(users, &fakeItemRepo{}, &fakeRanker{})

		if _, err := engine.BuildDigestMail(ctx, nil, 7, nil, "digest@example.com"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected not found, got %v", err)
		}
	})
}

type fakeRanker struct {
	results map[string][]relevance.Scored
	err     error
	calls   []string
}

func (f *fakeRanker) Search(ctx context.Context, userID int64, phrase string) ([]relevance.Scored, error) {
	f.calls = append(f.calls, phrase)
	if f.err != nil {
		return nil, f.err
	}
	return f.results[phrase], nil
}
