package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/reading-nook/internal/persistence"
)

// ReadingSessionRepository implements persistence.ReadingSessionRepository.
//
// Both upsert primitives are single INSERT ... ON CONFLICT statements against
// the UNIQUE (user_id, date) index, so two concurrent logs for the same day
// serialize inside SQLite instead of racing in application code.
type ReadingSessionRepository struct {
	db *DB
}

// NewReadingSessionRepository creates a SQLite-backed reading session repository.
func NewReadingSessionRepository(db *DB) *ReadingSessionRepository {
	return &ReadingSessionRepository{db: db}
}

const readingSessionColumns = "id, user_id, date, minutes, created_at, updated_at"

// FindSessionByDate retrieves the session logged for one calendar day.
func (r *ReadingSessionRepository) FindSessionByDate(ctx context.Context, userID, date string) (persistence.ReadingSession, error) {
	query := fmt.Sprintf("SELECT %s FROM reading_sessions WHERE user_id = ? AND date = ?", readingSessionColumns)
	return r.scanOne(r.db.db.QueryRowContext(ctx, query, userID, date))
}

// ListSessions returns every session for the user, most recent date first.
func (r *ReadingSessionRepository) ListSessions(ctx context.Context, userID string) ([]persistence.ReadingSession, error) {
	query := fmt.Sprintf("SELECT %s FROM reading_sessions WHERE user_id = ? ORDER BY date DESC", readingSessionColumns)

	rows, err := r.db.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	sessions := make([]persistence.ReadingSession, 0)
	for rows.Next() {
		session, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return sessions, nil
}

// AddMinutes inserts the session or increments the minutes of the existing
// row for the same (user, date). The additive primitive backs the simple
// "log time" flow where multiple submissions accumulate a daily total.
func (r *ReadingSessionRepository) AddMinutes(ctx context.Context, session persistence.ReadingSession) (persistence.ReadingSession, error) {
	return r.upsert(ctx, session, "reading_sessions.minutes + excluded.minutes")
}

// SetMinutes inserts the session or replaces the minutes of the existing row
// for the same (user, date). The absolute primitive backs the calendar edit
// flow where the submitted value is the new daily total.
func (r *ReadingSessionRepository) SetMinutes(ctx context.Context, session persistence.ReadingSession) (persistence.ReadingSession, error) {
	return r.upsert(ctx, session, "excluded.minutes")
}

func (r *ReadingSessionRepository) upsert(ctx context.Context, session persistence.ReadingSession, minutesExpr string) (persistence.ReadingSession, error) {
	if session.ID == "" || session.UserID == "" || strings.TrimSpace(session.Date) == "" {
		return persistence.ReadingSession{}, persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	query := fmt.Sprintf(`
		INSERT INTO reading_sessions (id, user_id, date, minutes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, date) DO UPDATE SET
			minutes = %s,
			updated_at = excluded.updated_at
	`, minutesExpr)

	err := withBusyRetry(ctx, func() error {
		_, execErr := r.db.db.ExecContext(ctx, query,
			session.ID,
			session.UserID,
			session.Date,
			session.Minutes,
			formatTime(now),
			formatTime(now),
		)
		return execErr
	})
	if err != nil {
		return persistence.ReadingSession{}, mapError(err)
	}

	return r.FindSessionByDate(ctx, session.UserID, session.Date)
}

// DeleteSessionByDate removes the session logged for one calendar day.
func (r *ReadingSessionRepository) DeleteSessionByDate(ctx context.Context, userID, date string) error {
	var result sql.Result
	err := withBusyRetry(ctx, func() error {
		var execErr error
		result, execErr = r.db.db.ExecContext(ctx,
			"DELETE FROM reading_sessions WHERE user_id = ? AND date = ?", userID, date)
		return execErr
	})
	if err != nil {
		return mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *ReadingSessionRepository) scanOne(row rowScanner) (persistence.ReadingSession, error) {
	var session persistence.ReadingSession
	var createdAt, updatedAt string

	if err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.Date,
		&session.Minutes,
		&createdAt,
		&updatedAt,
	); err != nil {
		return persistence.ReadingSession{}, mapError(err)
	}

	var err error
	if session.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.ReadingSession{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if session.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.ReadingSession{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return session, nil
}
