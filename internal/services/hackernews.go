// Hacker News discussion lookup via the Algolia search API
//
// https://hn.algolia.com/api
package services

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultHackerNewsBaseURL = "https://hn.algolia.com"
	hackerNewsItemURL        = "https://news.ycombinator.com/item?id="
)

type hackerNewsHit struct {
	ObjectID    string `json:"objectID"`
	Title       string `json:"title"`
	Points      int    `json:"points"`
	NumComments int    `json:"num_comments"`
}

type hackerNewsSearchResponse struct {
	Hits []hackerNewsHit `json:"hits"`
}

// Discussion is a Hacker News thread about a saved URL.
type Discussion struct {
	URL         string
	Title       string
	Points      int
	NumComments int
}

// HackerNewsService finds discussion threads through the Algolia search API.
type HackerNewsService struct {
	baseURL    string
	httpClient *http.Client
}

// NewHackerNewsService creates a lookup client. baseURL overrides the
// production endpoint and should be "" outside tests.
func NewHackerNewsService(baseURL string) *HackerNewsService {
	if baseURL == "" {
		baseURL = defaultHackerNewsBaseURL
	}
	return &HackerNewsService{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeoutSeconds * time.Second},
	}
}

// BestDiscussion returns the highest-scored thread discussing itemURL, or
// nil when the URL was never discussed.
func (h *HackerNewsService) BestDiscussion(ctx context.Context, itemURL string) (*Discussion, error) {
	params := url.Values{}
	params.Set("query", itemURL)
	params.Set("restrictSearchableAttributes", "url")
	params.Set("numericFilters", "num_comments>0")

	var decoded hackerNewsSearchResponse
	if err := getJSON(ctx, h.httpClient, h.baseURL+"/api/v1/search?"+params.Encode(), &decoded); err != nil {
		return nil, err
	}

	var best *hackerNewsHit
	for i := range decoded.Hits {
		if best == nil || decoded.Hits[i].Points > best.Points {
			best = &decoded.Hits[i]
		}
	}
	if best == nil {
		return nil, nil
	}

	return &Discussion{
		URL:         hackerNewsItemURL + best.ObjectID,
		Title:       best.Title,
		Points:      best.Points,
		NumComments: best.NumComments,
	}, nil
}
