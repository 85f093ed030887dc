package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/recall/internal/models"
	"github.com/desertthunder/recall/internal/shared"
)

func TestUserRepositoryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("Create requires an email", func(t *testing.T) {
		store := setupTestStore(t)
		defer store.Close()

		if _, err := store.Users.Create(ctx, "", nil); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument for empty email, got %v", err)
		}
	})

	t.Run("Update requires at least one field", func(t *testing.T) {
		store := setupTestStore(t)
		defer store.Close()

		user, err := store.Users.Create(ctx, "test@example.com", nil)
		if err != nil {
			t.Fatalf("failed to create user: %v", err)
		}

		if err := store.Users.Update(ctx, user.ID, nil, nil); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for empty update, got %v", err)
		}
	})

	t.Run("Update rejects empty email", func(t *testing.T) {
		store := setupTestStore(t)
		defer store.Close()

		user, err := store.Users.Create(ctx, "test@example.com", nil)
		if err != nil {
			t.Fatalf("failed to create user: %v", err)
		}

		if err := store.Users.Update(ctx, user.ID, strPtr(""), nil); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for empty email, got %v", err)
		}
	})

	t.Run("Watermark update on missing user", func(t *testing.T) {
		store := setupTestStore(t)
		defer store.Close()

		if err := store.Users.UpdateSyncWatermark(ctx, 9999, 123); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Delete on missing user", func(t *testing.T) {
		store := setupTestStore(t)
		defer store.Close()

		if err := store.Users.Delete(ctx, 9999); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestSavedItemRepositoryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("Upsert requires a pocket id", func(t *testing.T) {
		store := setupTestStore(t)
		defer store.Close()

		err := store.Items.Upsert(ctx, &models.UpsertSavedItem{UserID: 1, Title: "Title"})
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument for missing pocket id, got %v", err)
		}
	})

	t.Run("Query rejects unknown sort", func(t *testing.T) {
		store := setupTestStore(t)
		defer store.Close()

		_, err := store.Items.Query(ctx, &models.SavedItemQuery{UserID: 1, SortBy: "points"})
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for unknown sort, got %v", err)
		}
	})

	t.Run("Upsert enforces the user foreign key", func(t *testing.T) {
		store := setupTestStore(t)
		defer store.Close()

		err := store.Items.Upsert(ctx, &models.UpsertSavedItem{UserID: 9999, PocketID: "p1", Title: "Title"})
		if !errors.Is(err, shared.ErrStorage) {
			t.Errorf("expected ErrStorage for unknown user, got %v", err)
		}
	})
}
