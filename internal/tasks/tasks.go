package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/recall/internal/models"
	"github.com/desertthunder/recall/internal/relevance"
	"github.com/desertthunder/recall/internal/repositories"
	"github.com/desertthunder/recall/internal/services"
	"github.com/desertthunder/recall/internal/shared"
)

const (
	// DefaultPageSize is the remote page size requested per fetch.
	DefaultPageSize = 100

	// defaultItemsPerTrend caps how many relevant items one trend may
	// contribute to a digest.
	defaultItemsPerTrend = 2

	// defaultMaxMailItems is the soft cap on digest size: trend processing
	// stops once the selection exceeds it.
	defaultMaxMailItems = 4

	// fallbackItemCount is how many of the oldest saved items pad a digest
	// when no trend matched anything.
	fallbackItemCount = 3

	// DigestSubject is the subject line for digest mail.
	DigestSubject = "Recall Daily Digest"
)

// SyncResult summarizes one reconciliation run.
type SyncResult struct {
	RunID     string // correlates log lines across one run
	UserID    int64
	Pages     int   // pages fetched
	Upserted  int   // active items applied
	Deleted   int   // removed items applied
	Watermark int64 // watermark committed at the end of the run
	Full      bool  // true when the run ignored the previous watermark
}

// RelevantItem pairs a stored item with the trend that surfaced it.
type RelevantItem struct {
	Item  models.SavedItem
	Trend models.Trend
}

// SyncEngine defines operations for reconciling local storage with a user's
// remote collection.
type SyncEngine interface {
	// Sync performs a delta sync seeded with the user's stored watermark.
	Sync(ctx context.Context, progress chan<- ProgressUpdate, userID int64) (*SyncResult, error)

	// SyncFull re-fetches the entire remote collection, ignoring the
	// stored watermark.
	SyncFull(ctx context.Context, progress chan<- ProgressUpdate, userID int64) (*SyncResult, error)

	// Archive archives the item remotely, then delta-syncs so local storage
	// reflects the removal.
	Archive(ctx context.Context, userID, itemID int64) error

	// Delete permanently deletes the item remotely, then delta-syncs.
	Delete(ctx context.Context, userID, itemID int64) error

	// Favorite favorites the item remotely. There is no local state to
	// reconcile, so no sync follows.
	Favorite(ctx context.Context, itemID int64) error
}

// RemoteCollection is the remote surface the engine drives, bound to one
// user's credentials. [services.UserPocket] implements it.
type RemoteCollection interface {
	Retrieve(ctx context.Context, query *services.RetrieveQuery) (*services.ItemPage, error)
	Archive(ctx context.Context, itemID string) error
	Delete(ctx context.Context, itemID string) error
	Favorite(ctx context.Context, itemID string) error
}

// CollectionFactory binds a user's access token to a remote collection
// client. An empty token must fail with [shared.ErrRemoteAuth] before any
// network traffic.
type CollectionFactory func(accessToken string) (RemoteCollection, error)

// Ranker scores a user's stored items against a keyword phrase.
// [relevance.Index] implements it; digest tests substitute deterministic
// rankings.
type Ranker interface {
	Search(ctx context.Context, userID int64, phrase string) ([]relevance.Scored, error)
}

// EngineOpts carries the tunable limits the engine is constructed with.
// Zero values select the defaults.
type EngineOpts struct {
	PageSize      int // remote items requested per page
	ItemsPerTrend int // digest items drawn per trend
	MaxMailItems  int // digest soft cap; trend processing stops past it
}

// Engine implements [SyncEngine] over the storage layer and a remote
// collection factory.
type Engine struct {
	users       repositories.UserRepo
	items       repositories.SavedItemRepo
	collections CollectionFactory
	ranker      Ranker
	opts        EngineOpts
	logger      *log.Logger
}

// NewEngine creates an engine. ranker may be nil when digest composition is
// not needed; logger nil defaults to stderr.
func NewEngine(users repositories.UserRepo, items repositories.SavedItemRepo, collections CollectionFactory, ranker Ranker, opts EngineOpts, logger *log.Logger) *Engine {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.ItemsPerTrend <= 0 {
		opts.ItemsPerTrend = defaultItemsPerTrend
	}
	if opts.MaxMailItems <= 0 {
		opts.MaxMailItems = defaultMaxMailItems
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Engine{
		users:       users,
		items:       items,
		collections: collections,
		ranker:      ranker,
		opts:        opts,
		logger:      logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default so progress reporting never stalls a sync.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Sync performs a delta sync for the user.
func (e *Engine) Sync(ctx context.Context, progress chan<- ProgressUpdate, userID int64) (*SyncResult, error) {
	return e.run(ctx, progress, userID, false)
}

// SyncFull re-fetches the user's entire remote collection.
func (e *Engine) SyncFull(ctx context.Context, progress chan<- ProgressUpdate, userID int64) (*SyncResult, error) {
	return e.run(ctx, progress, userID, true)
}

// run is the shared page loop behind Sync and SyncFull. The watermark is
// persisted exactly once, after the final page has been applied; any failure
// before that leaves the previous watermark in place so the next delta sync
// re-fetches from it. Callers must serialize runs per user.
func (e *Engine) run(ctx context.Context, progress chan<- ProgressUpdate, userID int64, full bool) (*SyncResult, error) {
	user, err := e.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	var token string
	if user.PocketAccessToken != nil {
		token = *user.PocketAccessToken
	}
	collection, err := e.collections(token)
	if err != nil {
		return nil, err
	}

	var since *int64
	if !full && user.LastPocketSyncTime != nil {
		value := *user.LastPocketSyncTime
		since = &value
	}

	result := &SyncResult{RunID: shared.GenerateID(), UserID: userID, Full: full}
	logger := e.logger.With("run_id", result.RunID, "user_id", userID)

	offset := 0
	var watermark int64
	for {
		e.sendProgress(progress, fetchPageUpdate(result.RunID, result.Pages+1, offset))

		page, err := collection.Retrieve(ctx, &services.RetrieveQuery{
			State:  services.RetrieveStateAll,
			Since:  since,
			Count:  e.opts.PageSize,
			Offset: offset,
		})
		if err != nil {
			return nil, err
		}
		result.Pages++

		for _, item := range page.Items {
			switch item := item.(type) {
			case services.ActiveItem:
				timeAdded := item.TimeAdded
				excerpt := item.Excerpt
				itemURL := item.URL
				upsert := &models.UpsertSavedItem{
					UserID:    userID,
					PocketID:  item.ID,
					Title:     item.Title,
					Excerpt:   &excerpt,
					URL:       &itemURL,
					TimeAdded: &timeAdded,
				}
				if err := e.items.Upsert(ctx, upsert); err != nil {
					return nil, err
				}
				result.Upserted++
			case services.RemovedItem:
				if err := e.items.Delete(ctx, userID, item.ID); err != nil {
					return nil, err
				}
				result.Deleted++
			default:
				return nil, fmt.Errorf("%w: unexpected item kind %T", shared.ErrDeserialization, item)
			}
		}

		// the final page's watermark is authoritative, it was fetched last
		watermark = page.Since
		logger.Debug("page applied", "page", result.Pages, "items", len(page.Items))
		e.sendProgress(progress, appliedPageUpdate(result.RunID, result.Pages, len(page.Items)))

		if len(page.Items) < e.opts.PageSize {
			break
		}
		offset += len(page.Items)
	}

	if err := e.users.UpdateSyncWatermark(ctx, userID, watermark); err != nil {
		return nil, err
	}
	result.Watermark = watermark

	logger.Info("sync complete",
		"pages", result.Pages,
		"upserted", result.Upserted,
		"deleted", result.Deleted,
		"watermark", watermark,
		"full", full,
	)
	e.sendProgress(progress, committedWatermarkUpdate(result.RunID, watermark))

	return result, nil
}

// Archive archives a saved item remotely, then reconciles local storage.
func (e *Engine) Archive(ctx context.Context, userID, itemID int64) error {
	return e.modifyItem(ctx, userID, itemID, RemoteCollection.Archive)
}

// Delete permanently deletes a saved item remotely, then reconciles local
// storage.
func (e *Engine) Delete(ctx context.Context, userID, itemID int64) error {
	return e.modifyItem(ctx, userID, itemID, RemoteCollection.Delete)
}

// Favorite favorites a saved item remotely. Favorites carry no local state,
// so no sync follows.
func (e *Engine) Favorite(ctx context.Context, itemID int64) error {
	item, err := e.lookupItem(ctx, itemID)
	if err != nil {
		return err
	}

	collection, err := e.collectionForUser(ctx, item.UserID)
	if err != nil {
		return err
	}

	return collection.Favorite(ctx, item.PocketID)
}

// modifyItem applies one remote mutation to a locally-known item and then
// delta-syncs so storage reflects it. The remote call failing leaves local
// storage untouched.
func (e *Engine) modifyItem(ctx context.Context, userID, itemID int64, action func(RemoteCollection, context.Context, string) error) error {
	item, err := e.lookupItem(ctx, itemID)
	if err != nil {
		return err
	}
	if item.UserID != userID {
		return fmt.Errorf("%w: item %d does not belong to user %d", shared.ErrNotFound, itemID, userID)
	}

	collection, err := e.collectionForUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := action(collection, ctx, item.PocketID); err != nil {
		return err
	}

	_, err = e.Sync(ctx, nil, userID)
	return err
}

func (e *Engine) lookupItem(ctx context.Context, itemID int64) (*models.SavedItem, error) {
	item, err := e.items.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: saved item %d", shared.ErrNotFound, itemID)
	}
	return item, nil
}

func (e *Engine) collectionForUser(ctx context.Context, userID int64) (RemoteCollection, error) {
	user, err := e.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	var token string
	if user.PocketAccessToken != nil {
		token = *user.PocketAccessToken
	}
	return e.collections(token)
}
