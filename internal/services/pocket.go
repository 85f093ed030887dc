// Pocket API client
//
// Endpoint behavior based on https://getpocket.com/developer/docs/overview
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/recall/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultPocketBaseURL = "https://getpocket.com"

	// pocketRetryLimit bounds attempts for a single Pocket call when the
	// failure is a timeout or connection error.
	pocketRetryLimit = 3

	// Pocket rate limits per consumer key, so requests are paced instead of
	// burning the hourly budget at the start of a large sync.
	pocketRequestsPerSecond = 3
	pocketBurst             = 5
)

// ItemStatus is the remote lifecycle state of a Pocket item.
type ItemStatus int

const (
	ItemStatusUnread ItemStatus = iota
	ItemStatusArchived
	ItemStatusDeleted
)

func (s ItemStatus) String() string {
	switch s {
	case ItemStatusUnread:
		return "unread"
	case ItemStatusArchived:
		return "archived"
	case ItemStatusDeleted:
		return "deleted"
	}
	return fmt.Sprintf("ItemStatus(%d)", int(s))
}

func parseItemStatus(raw string) (ItemStatus, error) {
	switch raw {
	case "0":
		return ItemStatusUnread, nil
	case "1":
		return ItemStatusArchived, nil
	case "2":
		return ItemStatusDeleted, nil
	}
	return 0, fmt.Errorf("%w: unknown pocket item status %q", shared.ErrDeserialization, raw)
}

// Item is one normalized record from a retrieve call. The concrete types are
// [ActiveItem] for items still in the user's list and [RemovedItem] for items
// archived or deleted remotely.
type Item interface {
	ItemID() string
}

// ActiveItem is an item present in the user's Pocket list.
type ActiveItem struct {
	ID        string
	Title     string
	Excerpt   string
	URL       string
	TimeAdded time.Time
}

func (a ActiveItem) ItemID() string { return a.ID }

// RemovedItem is an item the user archived or deleted remotely.
type RemovedItem struct {
	ID     string
	Status ItemStatus
}

func (r RemovedItem) ItemID() string { return r.ID }

// ItemPage is one page of retrieve results plus the server timestamp a
// caller should persist as its next incremental sync watermark.
type ItemPage struct {
	Items []Item
	Since int64
}

// RetrieveState filters a retrieve call by remote item state.
type RetrieveState string

const (
	RetrieveStateUnread  RetrieveState = "unread"
	RetrieveStateArchive RetrieveState = "archive"
	RetrieveStateAll     RetrieveState = "all"
)

// RetrieveQuery selects which items a [UserPocket.Retrieve] call returns.
// Zero-valued fields are left out of the request.
type RetrieveQuery struct {
	State  RetrieveState
	Search string
	Since  *int64
	Count  int
	Offset int
}

// retrieveItem is the raw wire record before normalization.
type retrieveItem struct {
	ItemID        string `json:"item_id"`
	GivenURL      string `json:"given_url"`
	ResolvedURL   string `json:"resolved_url"`
	GivenTitle    string `json:"given_title"`
	ResolvedTitle string `json:"resolved_title"`
	Status        string `json:"status"`
	Excerpt       string `json:"excerpt"`
	TimeAdded     string `json:"time_added"`
}

// itemList accepts the two shapes Pocket uses for the "list" field: an
// object keyed by item id, or an empty JSON array when nothing matched.
type itemList map[string]retrieveItem

func (l *itemList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var entries []json.RawMessage
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return err
		}
		if len(entries) != 0 {
			return fmt.Errorf("pocket list is a non-empty array")
		}
		*l = itemList{}
		return nil
	}
	var items map[string]retrieveItem
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*l = items
	return nil
}

type retrieveResponse struct {
	List  itemList `json:"list"`
	Since int64    `json:"since"`
}

// PocketService holds the application credentials for the Pocket API and
// implements the authorization handshake. Per-user operations live on
// [UserPocket], obtained from [PocketService.ForUser].
type PocketService struct {
	consumerKey string
	redirectURI string
	baseURL     string
	httpClient  *http.Client
	limiter     *rate.Limiter
}

// NewPocketService creates a Pocket client for the given consumer key.
// baseURL overrides the production endpoint and should be "" outside tests.
func NewPocketService(consumerKey, redirectURI, baseURL string) (*PocketService, error) {
	if consumerKey == "" {
		return nil, fmt.Errorf("%w: pocket consumer key", shared.ErrMissingCredentials)
	}

	if baseURL == "" {
		baseURL = defaultPocketBaseURL
	}

	return &PocketService{
		consumerKey: consumerKey,
		redirectURI: redirectURI,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		httpClient:  &http.Client{Timeout: defaultTimeoutSeconds * time.Second},
		limiter:     rate.NewLimiter(pocketRequestsPerSecond, pocketBurst),
	}, nil
}

// RequestToken starts the authorization handshake and returns the request
// token the user must approve in a browser.
func (p *PocketService) RequestToken(ctx context.Context) (string, error) {
	params := url.Values{}
	params.Set("consumer_key", p.consumerKey)
	params.Set("redirect_uri", p.redirectURI)

	body, err := p.send(ctx, http.MethodPost, p.baseURL+"/v3/oauth/request?"+params.Encode())
	if err != nil {
		return "", err
	}

	// response body is form-encoded: code=<request token>
	return formValue(string(body))
}

// AuthorizeURL builds the browser URL where the user approves a request token.
func (p *PocketService) AuthorizeURL(requestToken string) string {
	params := url.Values{}
	params.Set("request_token", requestToken)
	params.Set("redirect_uri", p.redirectURI)
	return p.baseURL + "/auth/authorize?" + params.Encode()
}

// Authorize exchanges an approved request token for a durable access token.
func (p *PocketService) Authorize(ctx context.Context, requestToken string) (string, error) {
	params := url.Values{}
	params.Set("consumer_key", p.consumerKey)
	params.Set("code", requestToken)

	body, err := p.send(ctx, http.MethodPost, p.baseURL+"/v3/oauth/authorize?"+params.Encode())
	if err != nil {
		return "", err
	}

	// response body is form-encoded: access_token=<token>&username=<name>
	return formValue(string(body))
}

// ForUser binds a user's access token to the service. Returns
// [shared.ErrRemoteAuth] when the user has not completed authorization.
func (p *PocketService) ForUser(accessToken string) (*UserPocket, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("%w: user has not authorized pocket", shared.ErrRemoteAuth)
	}
	return &UserPocket{service: p, accessToken: accessToken}, nil
}

// send performs one Pocket call with the retry policy applied: timeouts and
// connection failures are retried up to pocketRetryLimit attempts, any other
// failure aborts immediately. Returns the raw response body.
func (p *PocketService) send(ctx context.Context, method, requestURL string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < pocketRetryLimit; attempt++ {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}

		req, err := http.NewRequestWithContext(ctx, method, requestURL, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: creating request: %v", shared.ErrAPIRequest, err)
		}

		resp, err := p.httpClient.Do(req)
		if err != nil {
			if isRetryable(err) {
				lastErr = err
				continue
			}
			return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}

		if err := checkStatus(resp); err != nil {
			resp.Body.Close()
			return nil, err
		}

		return readBody(resp)
	}

	return nil, fmt.Errorf("%w: failed to connect to or receive a response from Pocket after %d attempts: %v",
		shared.ErrTransportExhausted, pocketRetryLimit, lastErr)
}

// formValue extracts the value of the first key=value pair in a form-encoded
// response body.
func formValue(body string) (string, error) {
	first := strings.SplitN(body, "&", 2)[0]
	parts := strings.SplitN(first, "=", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", fmt.Errorf("%w: malformed pocket token response %q", shared.ErrDeserialization, body)
	}
	return parts[1], nil
}

// UserPocket performs Pocket operations on behalf of one authorized user.
type UserPocket struct {
	service     *PocketService
	accessToken string
}

// Retrieve fetches one page of the user's items and normalizes every record.
// A single malformed record fails the whole page.
func (u *UserPocket) Retrieve(ctx context.Context, query *RetrieveQuery) (*ItemPage, error) {
	if query == nil {
		query = &RetrieveQuery{}
	}

	params := url.Values{}
	params.Set("consumer_key", u.service.consumerKey)
	params.Set("access_token", u.accessToken)
	if query.State != "" {
		params.Set("state", string(query.State))
	}
	if query.Search != "" {
		params.Set("search", query.Search)
	}
	if query.Since != nil {
		params.Set("since", strconv.FormatInt(*query.Since, 10))
	}
	if query.Count > 0 {
		params.Set("count", strconv.Itoa(query.Count))
		params.Set("offset", strconv.Itoa(query.Offset))
	}

	body, err := u.service.send(ctx, http.MethodGet, u.service.baseURL+"/v3/get?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var resp retrieveResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v: body %q", shared.ErrDeserialization, err, string(body))
	}

	page := &ItemPage{Items: make([]Item, 0, len(resp.List)), Since: resp.Since}
	for _, record := range resp.List {
		item, err := normalizeItem(record)
		if err != nil {
			return nil, err
		}
		page.Items = append(page.Items, item)
	}

	return page, nil
}

// normalizeItem maps a wire record onto the [Item] union. Pocket leaves the
// resolved_* fields empty until its parser has visited the page, so the url
// and title fall back through the given_* fields.
func normalizeItem(record retrieveItem) (Item, error) {
	status, err := parseItemStatus(record.Status)
	if err != nil {
		return nil, err
	}

	if status != ItemStatusUnread {
		return RemovedItem{ID: record.ItemID, Status: status}, nil
	}

	bestURL := firstNonEmpty(record.ResolvedURL, record.GivenURL)
	title := firstNonEmpty(record.ResolvedTitle, record.GivenTitle, bestURL)

	if record.TimeAdded == "" {
		return nil, fmt.Errorf("%w: no time_added in pocket item %s", shared.ErrDeserialization, record.ItemID)
	}
	seconds, err := strconv.ParseInt(record.TimeAdded, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: time_added %q in pocket item %s", shared.ErrDeserialization, record.TimeAdded, record.ItemID)
	}

	return ActiveItem{
		ID:        record.ItemID,
		Title:     title,
		Excerpt:   record.Excerpt,
		URL:       bestURL,
		TimeAdded: time.Unix(seconds, 0).UTC(),
	}, nil
}

type modifyAction struct {
	Action string `json:"action"`
	ItemID string `json:"item_id"`
}

// modify submits mutation actions through the v3/send endpoint. Pocket takes
// the action list as a JSON-encoded query parameter.
func (u *UserPocket) modify(ctx context.Context, actions []modifyAction) error {
	encoded, err := json.Marshal(actions)
	if err != nil {
		return fmt.Errorf("%w: encoding actions: %v", shared.ErrAPIRequest, err)
	}

	params := url.Values{}
	params.Set("consumer_key", u.service.consumerKey)
	params.Set("access_token", u.accessToken)
	params.Set("actions", string(encoded))

	_, err = u.service.send(ctx, http.MethodPost, u.service.baseURL+"/v3/send?"+params.Encode())
	return err
}

// Archive moves an item out of the user's unread list without deleting it.
func (u *UserPocket) Archive(ctx context.Context, itemID string) error {
	return u.modify(ctx, []modifyAction{{Action: "archive", ItemID: itemID}})
}

// Delete permanently removes an item from the user's Pocket account.
func (u *UserPocket) Delete(ctx context.Context, itemID string) error {
	return u.modify(ctx, []modifyAction{{Action: "delete", ItemID: itemID}})
}

// Favorite marks an item as a favorite.
func (u *UserPocket) Favorite(ctx context.Context, itemID string) error {
	return u.modify(ctx, []modifyAction{{Action: "favorite", ItemID: itemID}})
}
