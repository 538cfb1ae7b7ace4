package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/reading-nook/internal/persistence"
)

// UserRepository implements persistence.UserRepository on SQLite.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a SQLite-backed user repository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = "id, email, display_name, password_hash, created_at, updated_at"

// CreateUser inserts a new account. Email uniqueness violations surface as
// persistence.ErrDuplicate.
func (r *UserRepository) CreateUser(ctx context.Context, user persistence.User) error {
	if user.ID == "" || strings.TrimSpace(user.Email) == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	err := withBusyRetry(ctx, func() error {
		_, execErr := r.db.db.ExecContext(ctx, `
			INSERT INTO users (id, email, display_name, password_hash, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
			user.ID,
			user.Email,
			user.DisplayName,
			user.PasswordHash,
			formatTime(now),
			formatTime(now),
		)
		return execErr
	})
	return mapError(err)
}

// GetUser retrieves an account by id.
func (r *UserRepository) GetUser(ctx context.Context, id string) (persistence.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE id = ?", userColumns)
	return r.scanOne(r.db.db.QueryRowContext(ctx, query, id))
}

// GetUserByEmail retrieves an account by its unique email.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE email = ?", userColumns)
	return r.scanOne(r.db.db.QueryRowContext(ctx, query, email))
}

// UpdateUser persists a modified account record.
func (r *UserRepository) UpdateUser(ctx context.Context, user persistence.User) error {
	var result sql.Result
	err := withBusyRetry(ctx, func() error {
		var execErr error
		result, execErr = r.db.db.ExecContext(ctx, `
			UPDATE users
			SET email = ?, display_name = ?, password_hash = ?, updated_at = ?
			WHERE id = ?
		`,
			user.Email,
			user.DisplayName,
			user.PasswordHash,
			formatTime(time.Now().UTC()),
			user.ID,
		)
		return execErr
	})
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

// DeleteUser removes an account. Dependent rows cascade.
func (r *UserRepository) DeleteUser(ctx context.Context, id string) error {
	var result sql.Result
	err := withBusyRetry(ctx, func() error {
		var execErr error
		result, execErr = r.db.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
		return execErr
	})
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

func (r *UserRepository) scanOne(row rowScanner) (persistence.User, error) {
	var user persistence.User
	var createdAt, updatedAt string

	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.PasswordHash,
		&createdAt,
		&updatedAt,
	); err != nil {
		return persistence.User{}, mapError(err)
	}

	var err error
	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.User{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if user.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.User{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return user, nil
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
