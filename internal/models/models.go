// package models defines the data model for the recall saved-article service
package models

import (
	"fmt"
	"net/url"
	"time"
)

// User is an account row. LastPocketSyncTime is the watermark handed back by
// Pocket on the final page of the previous sync; a nil value means the user
// has never completed a sync and the next one fetches the full collection.
type User struct {
	ID                 int64
	Email              string
	PocketAccessToken  *string
	LastPocketSyncTime *int64
	CreatedAt          time.Time
}

// HasPocketToken reports whether the user finished Pocket authorization.
func (u *User) HasPocketToken() bool {
	return u.PocketAccessToken != nil && *u.PocketAccessToken != ""
}

// SavedItem is one synced Pocket article. (UserID, PocketID) is unique;
// re-syncing the same remote item updates the row in place.
type SavedItem struct {
	ID        int64
	UserID    int64
	PocketID  string
	Title     string
	Excerpt   *string
	URL       *string
	TimeAdded *time.Time
}

// ReadURL returns the Pocket reader link for the item.
func (s *SavedItem) ReadURL() string {
	return fmt.Sprintf("https://app.getpocket.com/read/%s", s.PocketID)
}

// FallbackURL returns a Pocket search link for the item's title, for when the
// reader link 404s on items Pocket no longer resolves.
func (s *SavedItem) FallbackURL() string {
	base := url.URL{Scheme: "https", Host: "app.getpocket.com", Path: "/search/"}
	return base.JoinPath(s.Title).String()
}

// ExcerptText returns the excerpt or "" when absent.
func (s *SavedItem) ExcerptText() string {
	if s.Excerpt == nil {
		return ""
	}
	return *s.Excerpt
}

// URLText returns the url or "" when absent.
func (s *SavedItem) URLText() string {
	if s.URL == nil {
		return ""
	}
	return *s.URL
}

// UpsertSavedItem carries the fields the sync engine applies when
// reconciling one active remote item into storage.
type UpsertSavedItem struct {
	UserID    int64
	PocketID  string
	Title     string
	Excerpt   *string
	URL       *string
	TimeAdded *time.Time
}

// SavedItemSort selects an ordering for item listings.
type SavedItemSort string

const (
	// SavedItemSortTimeAdded orders oldest first, surfacing items the user
	// has likely forgotten about.
	SavedItemSortTimeAdded SavedItemSort = "time_added"
)

// SavedItemQuery filters an item listing. A zero Count means no limit; an
// empty SortBy returns the most recently synced items first.
type SavedItemQuery struct {
	UserID int64
	SortBy SavedItemSort
	Count  int
}

// Trend is one trending search keyword.
type Trend struct {
	Name string
	Geo  string
}

// ExploreLink returns the Google Trends explore page for the trend.
func (t Trend) ExploreLink() string {
	v := url.Values{}
	v.Set("q", t.Name)
	v.Set("geo", t.Geo)
	return "https://trends.google.com/trends/explore?" + v.Encode()
}

// Mail is a rendered digest message.
type Mail struct {
	FromEmail   string
	ToEmail     string
	Subject     string
	HTMLContent string
}

// String renders the mail for dry runs, mirroring what would be sent.
func (m Mail) String() string {
	return fmt.Sprintf("From: %s\nTo: %s\nSubject: %s\n\n%s", m.FromEmail, m.ToEmail, m.Subject, m.HTMLContent)
}

// ItemExport bundles one user's saved items for file export. It carries the
// user's identity rather than the full account row so credentials never reach
// an export file.
type ItemExport struct {
	UserID     int64
	Email      string
	Items      []SavedItem
	ExportedAt time.Time
}
