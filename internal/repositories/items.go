package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/recall/internal/models"
	"github.com/desertthunder/recall/internal/shared"
)

// SavedItemRepository implements [SavedItemRepo] against SQLite or PostgreSQL.
type SavedItemRepository struct {
	db      *sql.DB
	dialect shared.Dialect
}

// NewSavedItemRepository creates a new [SavedItemRepository] with the given database connection
func NewSavedItemRepository(db *sql.DB, dialect shared.Dialect) *SavedItemRepository {
	return &SavedItemRepository{db: db, dialect: dialect}
}

// Upsert inserts the item or, when (user_id, pocket_id) already exists,
// updates every supplied field in place. Calling it repeatedly with identical
// input leaves exactly one row with those values.
func (r *SavedItemRepository) Upsert(ctx context.Context, item *models.UpsertSavedItem) error {
	if item.PocketID == "" {
		return fmt.Errorf("%w: pocket id", shared.ErrMissingArgument)
	}

	query := bind(r.dialect, `
		INSERT INTO saved_items (user_id, pocket_id, title, excerpt, url, time_added)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, pocket_id) DO UPDATE SET
			title = excluded.title,
			excerpt = excluded.excerpt,
			url = excluded.url,
			time_added = excluded.time_added
	`)

	_, err := r.db.ExecContext(ctx, query, item.UserID, item.PocketID, item.Title, item.Excerpt, item.URL, item.TimeAdded)
	if err != nil {
		return fmt.Errorf("%w: upsert item: %v", shared.ErrStorage, err)
	}

	return nil
}

// Delete removes the item identified by (userID, pocketID). Deleting an item
// that was never stored is a successful no-op.
func (r *SavedItemRepository) Delete(ctx context.Context, userID int64, pocketID string) error {
	query := bind(r.dialect, "DELETE FROM saved_items WHERE user_id = ? AND pocket_id = ?")

	if _, err := r.db.ExecContext(ctx, query, userID, pocketID); err != nil {
		return fmt.Errorf("%w: delete item: %v", shared.ErrStorage, err)
	}

	return nil
}

// Get retrieves an item by its local ID, returning nil when it does not exist.
func (r *SavedItemRepository) Get(ctx context.Context, id int64) (*models.SavedItem, error) {
	query := bind(r.dialect, `
		SELECT id, user_id, pocket_id, title, excerpt, url, time_added
		FROM saved_items
		WHERE id = ?
	`)

	item, err := scanItem(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: query item: %v", shared.ErrStorage, err)
	}

	return item, nil
}

// GetByUser retrieves the user's full item set in insertion order. Relevance
// scoring reads the corpus through this method, so the ordering doubles as
// the stable tie-break for equal scores.
func (r *SavedItemRepository) GetByUser(ctx context.Context, userID int64) ([]models.SavedItem, error) {
	query := bind(r.dialect, `
		SELECT id, user_id, pocket_id, title, excerpt, url, time_added
		FROM saved_items
		WHERE user_id = ?
		ORDER BY id ASC
	`)

	return r.queryItems(ctx, query, userID)
}

// Query retrieves items matching the given filter.
func (r *SavedItemRepository) Query(ctx context.Context, q *models.SavedItemQuery) ([]models.SavedItem, error) {
	query := `
		SELECT id, user_id, pocket_id, title, excerpt, url, time_added
		FROM saved_items
		WHERE user_id = ?
	`
	args := []any{q.UserID}

	switch q.SortBy {
	case models.SavedItemSortTimeAdded:
		query += " ORDER BY time_added ASC"
	case "":
		// Latest rows first. Sorting on id sidesteps the dialects'
		// conflicting NULL placement for optional time_added values.
		query += " ORDER BY id DESC"
	default:
		return nil, fmt.Errorf("%w: sort %q", shared.ErrInvalidArgument, q.SortBy)
	}

	if q.Count > 0 {
		query += " LIMIT ?"
		args = append(args, q.Count)
	}

	return r.queryItems(ctx, bind(r.dialect, query), args...)
}

// Random retrieves one uniformly random item for the user, nil when the user
// has no items.
func (r *SavedItemRepository) Random(ctx context.Context, userID int64) (*models.SavedItem, error) {
	query := bind(r.dialect, `
		SELECT id, user_id, pocket_id, title, excerpt, url, time_added
		FROM saved_items
		WHERE user_id = ?
		ORDER BY RANDOM()
		LIMIT 1
	`)

	item, err := scanItem(r.db.QueryRowContext(ctx, query, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: query random item: %v", shared.ErrStorage, err)
	}

	return item, nil
}

// DeleteAll removes every item belonging to the user.
func (r *SavedItemRepository) DeleteAll(ctx context.Context, userID int64) error {
	query := bind(r.dialect, "DELETE FROM saved_items WHERE user_id = ?")

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("%w: delete items: %v", shared.ErrStorage, err)
	}

	return nil
}

func (r *SavedItemRepository) queryItems(ctx context.Context, query string, args ...any) ([]models.SavedItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query items: %v", shared.ErrStorage, err)
	}
	defer rows.Close()

	var items []models.SavedItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan item: %v", shared.ErrStorage, err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: row iteration: %v", shared.ErrStorage, err)
	}

	return items, nil
}

// scanItem reads one saved item row, converting nullable columns to pointers.
func scanItem(s interface{ Scan(...any) error }) (*models.SavedItem, error) {
	var item models.SavedItem
	var excerpt, itemURL sql.NullString
	var timeAdded sql.NullTime

	if err := s.Scan(&item.ID, &item.UserID, &item.PocketID, &item.Title, &excerpt, &itemURL, &timeAdded); err != nil {
		return nil, err
	}

	if excerpt.Valid {
		item.Excerpt = &excerpt.String
	}
	if itemURL.Valid {
		item.URL = &itemURL.String
	}
	if timeAdded.Valid {
		item.TimeAdded = &timeAdded.Time
	}

	return &item, nil
}
