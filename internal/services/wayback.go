// Wayback Machine availability client
//
// https://archive.org/help/wayback_api.php
package services

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultWaybackBaseURL = "https://archive.org"

type waybackSnapshot struct {
	URL       string `json:"url"`
	Timestamp string `json:"timestamp"`
	Available bool   `json:"available"`
}

type waybackResponse struct {
	ArchivedSnapshots struct {
		Closest *waybackSnapshot `json:"closest"`
	} `json:"archived_snapshots"`
}

// Snapshot is an archived copy of a page.
type Snapshot struct {
	URL       string
	Timestamp string
}

// WaybackService resolves archived page copies through the Wayback Machine
// availability endpoint.
type WaybackService struct {
	baseURL    string
	httpClient *http.Client
}

// NewWaybackService creates an availability client. baseURL overrides the
// production endpoint and should be "" outside tests.
func NewWaybackService(baseURL string) *WaybackService {
	if baseURL == "" {
		baseURL = defaultWaybackBaseURL
	}
	return &WaybackService{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeoutSeconds * time.Second},
	}
}

// ClosestSnapshot returns the nearest archived copy of pageURL, or nil when
// the page was never archived.
func (w *WaybackService) ClosestSnapshot(ctx context.Context, pageURL string) (*Snapshot, error) {
	params := url.Values{}
	params.Set("url", pageURL)

	var decoded waybackResponse
	if err := getJSON(ctx, w.httpClient, w.baseURL+"/wayback/available?"+params.Encode(), &decoded); err != nil {
		return nil, err
	}

	closest := decoded.ArchivedSnapshots.Closest
	if closest == nil || !closest.Available || closest.URL == "" {
		return nil, nil
	}

	return &Snapshot{URL: closest.URL, Timestamp: closest.Timestamp}, nil
}
