// Google Trends daily trends client
//
// The dailytrends endpoint is unofficial; behavior based on the payloads the
// trends.google.com frontend consumes.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/recall/internal/models"
	"github.com/desertthunder/recall/internal/shared"
)

const (
	defaultTrendsBaseURL = "https://trends.google.com"

	// trendsJunkPrefix is the anti-hijacking byte sequence Google prepends
	// to the JSON payload. It must be stripped before decoding.
	trendsJunkPrefix = ")]}',"
)

type trendTitle struct {
	Query string `json:"query"`
}

type trendingSearch struct {
	Title trendTitle `json:"title"`
}

type trendingSearchDay struct {
	TrendingSearches []trendingSearch `json:"trendingSearches"`
}

type dailyTrendsResponse struct {
	Default struct {
		TrendingSearchesDays []trendingSearchDay `json:"trendingSearchesDays"`
	} `json:"default"`
}

// TrendsService fetches daily trending searches from Google Trends.
type TrendsService struct {
	baseURL    string
	httpClient *http.Client
}

// NewTrendsService creates a trends client. baseURL overrides the production
// endpoint and should be "" outside tests.
func NewTrendsService(baseURL string) *TrendsService {
	if baseURL == "" {
		baseURL = defaultTrendsBaseURL
	}
	return &TrendsService{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeoutSeconds * time.Second},
	}
}

// DailyTrends returns trending searches for a region, newest day first,
// flattened across up to days day buckets.
func (t *TrendsService) DailyTrends(ctx context.Context, geo string, days int) ([]models.Trend, error) {
	if days <= 0 {
		days = 1
	}

	params := url.Values{}
	params.Set("geo", geo)
	requestURL := t.baseURL + "/trends/api/dailytrends?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", shared.ErrAPIRequest, err)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}

	payload := bytes.TrimPrefix(body, []byte(trendsJunkPrefix))
	var decoded dailyTrendsResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v: body %q", shared.ErrDeserialization, err, shared.Truncate(string(body), 200))
	}

	var trends []models.Trend
	for i, day := range decoded.Default.TrendingSearchesDays {
		if i >= days {
			break
		}
		for _, search := range day.TrendingSearches {
			trends = append(trends, models.Trend{Name: search.Title.Query, Geo: geo})
		}
	}

	return trends, nil
}
