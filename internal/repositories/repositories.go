package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/recall/internal/models"
	"github.com/desertthunder/recall/internal/shared"
)

// UserRepo is the storage contract for account rows.
type UserRepo interface {
	Create(ctx context.Context, email string, pocketAccessToken *string) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, id int64, email *string, pocketAccessToken *string) error
	UpdateSyncWatermark(ctx context.Context, id int64, watermark int64) error
	Delete(ctx context.Context, id int64) error
}

// SavedItemRepo is the storage contract for synced articles.
//
// Upsert must be idempotent on (user id, pocket id) and Delete must succeed
// when the row is already absent; the sync engine leans on both to make
// re-running an interrupted sync harmless.
type SavedItemRepo interface {
	Upsert(ctx context.Context, item *models.UpsertSavedItem) error
	Delete(ctx context.Context, userID int64, pocketID string) error
	Get(ctx context.Context, id int64) (*models.SavedItem, error)
	GetByUser(ctx context.Context, userID int64) ([]models.SavedItem, error)
	Query(ctx context.Context, query *models.SavedItemQuery) ([]models.SavedItem, error)
	Random(ctx context.Context, userID int64) (*models.SavedItem, error)
	DeleteAll(ctx context.Context, userID int64) error
}

// Store bundles both repositories over a single database handle.
type Store struct {
	db      *sql.DB
	dialect shared.Dialect

	Users *UserRepository
	Items *SavedItemRepository
}

// Open connects to the database named by url, applies pending migrations and
// returns a ready Store. The backend is selected from the URL (postgres://
// DSNs open PostgreSQL, everything else a SQLite file).
func Open(url string, maxOpenConns, maxIdleConns int) (*Store, error) {
	db, dialect, err := shared.NewDatabase(url)
	if err != nil {
		return nil, err
	}

	if dialect == shared.DialectSQLite {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	if maxOpenConns > 0 {
		shared.ConfigureDatabase(db, maxOpenConns, maxIdleConns)
	}

	if err := shared.RunMigrations(db, dialect); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:      db,
		dialect: dialect,
		Users:   NewUserRepository(db, dialect),
		Items:   NewSavedItemRepository(db, dialect),
	}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// bind rewrites ? placeholders as $1..$n for PostgreSQL. SQLite takes the
// query unchanged.
func bind(dialect shared.Dialect, query string) string {
	if dialect != shared.DialectPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$")
			b.WriteString(strconv.Itoa(n))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
