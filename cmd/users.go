package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/recall/internal/models"
	"github.com/desertthunder/recall/internal/repositories"
	"github.com/desertthunder/recall/internal/shared"
	"github.com/urfave/cli/v3"
)

// userRow is the display shape for account output. The access token stays out
// of it so --json output never leaks credentials.
type userRow struct {
	ID         int64
	Email      string
	Authorized bool
	Watermark  *int64
	CreatedAt  time.Time
}

func displayUser(user *models.User) userRow {
	return userRow{
		ID:         user.ID,
		Email:      user.Email,
		Authorized: user.HasPocketToken(),
		Watermark:  user.LastPocketSyncTime,
		CreatedAt:  user.CreatedAt,
	}
}

// UsersAdd creates a local account.
func (r *Runner) UsersAdd(ctx context.Context, cmd *cli.Command) error {
	email := stringArg(cmd, "email")
	if email == "" {
		return fmt.Errorf("%w: an email address is required", shared.ErrMissingArgument)
	}

	return r.withStore(func(store *repositories.Store) error {
		user, err := store.Users.Create(ctx, email, nil)
		if err != nil {
			return err
		}

		r.writePlain("✓ User created\n")
		r.writePlain("ID: %d\n", user.ID)
		r.writePlain("Email: %s\n\n", user.Email)
		r.writePlain("Next: recall auth pocket --user %d\n", user.ID)

		return nil
	})
}

// UsersList lists every local account.
func (r *Runner) UsersList(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	return r.withStore(func(store *repositories.Store) error {
		users, err := store.Users.List(ctx)
		if err != nil {
			return err
		}

		if useJSON {
			rows := make([]userRow, len(users))
			for i, user := range users {
				rows[i] = displayUser(user)
			}
			return r.writeJSON(rows, pretty)
		}

		r.writePlain("Found %d users:\n\n", len(users))
		for _, user := range users {
			r.printUser(user)
		}

		return nil
	})
}

// UsersGet shows one account.
func (r *Runner) UsersGet(ctx context.Context, cmd *cli.Command) error {
	userID := int64(cmd.Int("user"))
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	return r.withStore(func(store *repositories.Store) error {
		user, err := store.Users.Get(ctx, userID)
		if err != nil {
			return err
		}

		if useJSON {
			return r.writeJSON(displayUser(user), pretty)
		}

		r.printUser(user)

		return nil
	})
}

// UsersUpdate changes an account's email address.
func (r *Runner) UsersUpdate(ctx context.Context, cmd *cli.Command) error {
	userID := int64(cmd.Int("user"))
	email := cmd.String("email")

	return r.withStore(func(store *repositories.Store) error {
		if err := store.Users.Update(ctx, userID, &email, nil); err != nil {
			return err
		}

		r.writePlain("✓ User %d updated\n", userID)
		r.writePlain("Email: %s\n", email)

		return nil
	})
}

// UsersDelete removes an account and its synced items.
func (r *Runner) UsersDelete(ctx context.Context, cmd *cli.Command) error {
	userID := int64(cmd.Int("user"))

	return r.withStore(func(store *repositories.Store) error {
		// Items reference the user row, so they go first.
		if err := store.Items.DeleteAll(ctx, userID); err != nil {
			return err
		}
		if err := store.Users.Delete(ctx, userID); err != nil {
			return err
		}

		r.writePlain("✓ User %d deleted\n", userID)

		return nil
	})
}

// printUser writes one account as a listing entry.
func (r *Runner) printUser(user *models.User) {
	r.writePlain("%d. %s\n", user.ID, user.Email)
	if user.HasPocketToken() {
		r.writePlain("   Pocket: ✓ authorized\n")
	} else {
		r.writePlain("   Pocket: ✗ not authorized\n")
	}
	if user.LastPocketSyncTime != nil {
		r.writePlain("   Last sync watermark: %d\n", *user.LastPocketSyncTime)
	} else {
		r.writePlain("   Last sync watermark: (never)\n")
	}
	r.writePlain("   Created: %s\n\n", shared.FormatTime(&user.CreatedAt))
}
