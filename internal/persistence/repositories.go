package persistence

import (
	"context"
	"time"
)

// UserRepository exposes account storage operations.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	UpdateUser(ctx context.Context, user User) error
	DeleteUser(ctx context.Context, id string) error
}

// AuthSessionRepository stores login session state.
type AuthSessionRepository interface {
	CreateAuthSession(ctx context.Context, session AuthSession) (AuthSession, error)
	GetAuthSession(ctx context.Context, id string) (AuthSession, error)
	RevokeAuthSession(ctx context.Context, id string, revokedAt time.Time) (AuthSession, error)
	DeleteExpiredAuthSessions(ctx context.Context, reference time.Time) error
}

// BookRepository exposes CRUD operations for shelf entries.
type BookRepository interface {
	CreateBook(ctx context.Context, book Book) error
	GetBook(ctx context.Context, id string) (Book, error)
	UpdateBook(ctx context.Context, book Book) error
	DeleteBook(ctx context.Context, id string) error
	ListBooks(ctx context.Context, userID string) ([]Book, error)
}

// ReadingSessionRepository stores daily reading-time entries. AddMinutes and
// SetMinutes are single-statement upserts keyed on (user, date) so concurrent
// logs for the same day can never produce a duplicate row.
type ReadingSessionRepository interface {
	FindSessionByDate(ctx context.Context, userID, date string) (ReadingSession, error)
	ListSessions(ctx context.Context, userID string) ([]ReadingSession, error)
	AddMinutes(ctx context.Context, session ReadingSession) (ReadingSession, error)
	SetMinutes(ctx context.Context, session ReadingSession) (ReadingSession, error)
	DeleteSessionByDate(ctx context.Context, userID, date string) error
}

// SettingsRepository stores the one-per-user settings record.
type SettingsRepository interface {
	GetSettings(ctx context.Context, userID string) (UserSettings, error)
	SaveSettings(ctx context.Context, settings UserSettings) (UserSettings, error)
}
