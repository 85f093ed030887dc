package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/desertthunder/recall/internal/models"
	"github.com/desertthunder/recall/internal/shared"
)

// UserRepository implements [UserRepo] against SQLite or PostgreSQL.
type UserRepository struct {
	db      *sql.DB
	dialect shared.Dialect
}

// NewUserRepository creates a new [UserRepository] with the given database connection
func NewUserRepository(db *sql.DB, dialect shared.Dialect) *UserRepository {
	return &UserRepository{db: db, dialect: dialect}
}

// Create inserts a new user and returns the stored row.
func (r *UserRepository) Create(ctx context.Context, email string, pocketAccessToken *string) (*models.User, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email", shared.ErrMissingArgument)
	}

	var id int64
	if r.dialect == shared.DialectPostgres {
		query := "INSERT INTO users (email, pocket_access_token) VALUES ($1, $2) RETURNING id"
		if err := r.db.QueryRowContext(ctx, query, email, pocketAccessToken).Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: insert user: %v", shared.ErrStorage, err)
		}
	} else {
		query := "INSERT INTO users (email, pocket_access_token) VALUES (?, ?)"
		result, err := r.db.ExecContext(ctx, query, email, pocketAccessToken)
		if err != nil {
			return nil, fmt.Errorf("%w: insert user: %v", shared.ErrStorage, err)
		}
		id, err = result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("%w: insert user id: %v", shared.ErrStorage, err)
		}
	}

	return r.Get(ctx, id)
}

// Get retrieves a user by ID.
func (r *UserRepository) Get(ctx context.Context, id int64) (*models.User, error) {
	query := bind(r.dialect, `
		SELECT id, email, pocket_access_token, last_pocket_sync_time, created_at
		FROM users
		WHERE id = ?
	`)

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: user %d", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: query user: %v", shared.ErrStorage, err)
	}

	return user, nil
}

// List retrieves all users ordered by id.
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	query := `
		SELECT id, email, pocket_access_token, last_pocket_sync_time, created_at
		FROM users
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: query users: %v", shared.ErrStorage, err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan user: %v", shared.ErrStorage, err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: row iteration: %v", shared.ErrStorage, err)
	}

	return users, nil
}

// Update modifies the user's email and/or Pocket access token. Nil arguments
// leave their column untouched; at least one must be set.
func (r *UserRepository) Update(ctx context.Context, id int64, email *string, pocketAccessToken *string) error {
	var sets []string
	var args []any

	if email != nil {
		if *email == "" {
			return fmt.Errorf("%w: email", shared.ErrInvalidArgument)
		}
		sets = append(sets, "email = ?")
		args = append(args, *email)
	}
	if pocketAccessToken != nil {
		sets = append(sets, "pocket_access_token = ?")
		args = append(args, *pocketAccessToken)
	}
	if len(sets) == 0 {
		return fmt.Errorf("%w: nothing to update", shared.ErrInvalidArgument)
	}

	args = append(args, id)
	query := bind(r.dialect, fmt.Sprintf("UPDATE users SET %s WHERE id = ?", strings.Join(sets, ", ")))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: update user: %v", shared.ErrStorage, err)
	}

	return requireRow(result, fmt.Sprintf("user %d", id))
}

// UpdateSyncWatermark records the watermark Pocket returned on the final page
// of a completed sync. The sync engine calls this exactly once per successful
// sync, after every page has been applied.
func (r *UserRepository) UpdateSyncWatermark(ctx context.Context, id int64, watermark int64) error {
	query := bind(r.dialect, "UPDATE users SET last_pocket_sync_time = ? WHERE id = ?")

	result, err := r.db.ExecContext(ctx, query, watermark, id)
	if err != nil {
		return fmt.Errorf("%w: update watermark: %v", shared.ErrStorage, err)
	}

	return requireRow(result, fmt.Sprintf("user %d", id))
}

// Delete removes a user by ID.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	query := bind(r.dialect, "DELETE FROM users WHERE id = ?")

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%w: delete user: %v", shared.ErrStorage, err)
	}

	return requireRow(result, fmt.Sprintf("user %d", id))
}

// scanUser reads one user row from a row scanner, converting nullable
// columns to pointers.
func scanUser(s interface{ Scan(...any) error }) (*models.User, error) {
	var user models.User
	var token sql.NullString
	var watermark sql.NullInt64

	if err := s.Scan(&user.ID, &user.Email, &token, &watermark, &user.CreatedAt); err != nil {
		return nil, err
	}

	if token.Valid {
		user.PocketAccessToken = &token.String
	}
	if watermark.Valid {
		user.LastPocketSyncTime = &watermark.Int64
	}

	return &user, nil
}

// requireRow converts a zero-row update/delete into a not-found error.
func requireRow(result sql.Result, subject string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: affected rows: %v", shared.ErrStorage, err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrNotFound, subject)
	}
	return nil
}
