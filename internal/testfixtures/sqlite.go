package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/reading-nook/internal/persistence"
	"github.com/example/reading-nook/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// database for integration-style persistence tests.
type SQLiteHarness struct {
	Users        persistence.UserRepository
	AuthSessions persistence.AuthSessionRepository
	Books        persistence.BookRepository
	Sessions     persistence.ReadingSessionRepository
	Settings     persistence.SettingsRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary file that is
// migrated automatically. Callers may optionally invoke Close, but the helper
// will also register a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	dir := tb.TempDir()
	path := filepath.Join(dir, "readingnook.db")

	db, err := sqlite.Open(path)
	if err != nil {
		tb.Fatalf("failed to open database: %v", err)
	}

	if err := db.Migrate(context.Background()); err != nil {
		_ = db.Close()
		tb.Fatalf("failed to migrate database: %v", err)
	}

	harness := &SQLiteHarness{
		Users:        sqlite.NewUserRepository(db),
		AuthSessions: sqlite.NewAuthSessionRepository(db),
		Books:        sqlite.NewBookRepository(db),
		Sessions:     sqlite.NewReadingSessionRepository(db),
		Settings:     sqlite.NewSettingsRepository(db),
		cleanup: func() {
			_ = db.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
