package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/reading-nook/internal/persistence"
)

// AuthSessionRepository implements persistence.AuthSessionRepository on SQLite.
type AuthSessionRepository struct {
	db *DB
}

// NewAuthSessionRepository creates a SQLite-backed auth session repository.
func NewAuthSessionRepository(db *DB) *AuthSessionRepository {
	return &AuthSessionRepository{db: db}
}

const authSessionColumns = "id, user_id, expires_at, created_at, updated_at, revoked_at"

// CreateAuthSession records a newly issued login session.
func (r *AuthSessionRepository) CreateAuthSession(ctx context.Context, session persistence.AuthSession) (persistence.AuthSession, error) {
	if session.ID == "" || session.UserID == "" {
		return persistence.AuthSession{}, persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	err := withBusyRetry(ctx, func() error {
		_, execErr := r.db.db.ExecContext(ctx, `
			INSERT INTO auth_sessions (id, user_id, expires_at, created_at, updated_at, revoked_at)
			VALUES (?, ?, ?, ?, ?, NULL)
		`,
			session.ID,
			session.UserID,
			formatTime(session.ExpiresAt),
			formatTime(now),
			formatTime(now),
		)
		return execErr
	})
	if err != nil {
		return persistence.AuthSession{}, mapError(err)
	}
	return r.GetAuthSession(ctx, session.ID)
}

// GetAuthSession retrieves a session by its token identifier.
func (r *AuthSessionRepository) GetAuthSession(ctx context.Context, id string) (persistence.AuthSession, error) {
	query := fmt.Sprintf("SELECT %s FROM auth_sessions WHERE id = ?", authSessionColumns)
	return r.scanOne(r.db.db.QueryRowContext(ctx, query, id))
}

// RevokeAuthSession marks a session unusable. Revoking an already revoked
// session keeps the original revocation timestamp.
func (r *AuthSessionRepository) RevokeAuthSession(ctx context.Context, id string, revokedAt time.Time) (persistence.AuthSession, error) {
	err := withBusyRetry(ctx, func() error {
		_, execErr := r.db.db.ExecContext(ctx, `
			UPDATE auth_sessions
			SET revoked_at = COALESCE(revoked_at, ?), updated_at = ?
			WHERE id = ?
		`,
			formatTime(revokedAt),
			formatTime(time.Now().UTC()),
			id,
		)
		return execErr
	})
	if err != nil {
		return persistence.AuthSession{}, mapError(err)
	}
	return r.GetAuthSession(ctx, id)
}

// DeleteExpiredAuthSessions removes sessions whose expiry is before the
// reference time. Used by the startup sweep.
func (r *AuthSessionRepository) DeleteExpiredAuthSessions(ctx context.Context, reference time.Time) error {
	err := withBusyRetry(ctx, func() error {
		_, execErr := r.db.db.ExecContext(ctx,
			"DELETE FROM auth_sessions WHERE expires_at < ?", formatTime(reference))
		return execErr
	})
	return mapError(err)
}

func (r *AuthSessionRepository) scanOne(row rowScanner) (persistence.AuthSession, error) {
	var session persistence.AuthSession
	var expiresAt, createdAt, updatedAt string
	var revokedAt sql.NullString

	if err := row.Scan(
		&session.ID,
		&session.UserID,
		&expiresAt,
		&createdAt,
		&updatedAt,
		&revokedAt,
	); err != nil {
		return persistence.AuthSession{}, mapError(err)
	}

	var err error
	if session.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return persistence.AuthSession{}, fmt.Errorf("failed to parse expires_at: %w", err)
	}
	if session.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.AuthSession{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if session.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.AuthSession{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	if session.RevokedAt, err = parseTimePtr(revokedAt); err != nil {
		return persistence.AuthSession{}, fmt.Errorf("failed to parse revoked_at: %w", err)
	}
	return session, nil
}
