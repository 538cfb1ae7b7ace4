package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/example/reading-nook/internal/persistence"
)

func TestReadingSessionRepository_AddMinutes_CreatesRow(t *testing.T) {
	db := setupTestDB(t)
	createTestUser(t, db, "user1", "reader@example.com")
	repo := NewReadingSessionRepository(db)

	ctx := context.Background()
	session, err := repo.AddMinutes(ctx, persistence.ReadingSession{
		ID:      "session1",
		UserID:  "user1",
		Date:    "2026-08-20",
		Minutes: 30,
	})
	if err != nil {
		t.Fatalf("AddMinutes failed: %v", err)
	}

	if session.Minutes != 30 {
		t.Errorf("Expected 30 minutes, got %d", session.Minutes)
	}
	if session.Date != "2026-08-20" {
		t.Errorf("Expected date '2026-08-20', got '%s'", session.Date)
	}
}

func TestReadingSessionRepository_AddMinutes_AccumulatesSameDay(t *testing.T) {
	db := setupTestDB(t)
	createTestUser(t, db, "user1", "reader@example.com")
	repo := NewReadingSessionRepository(db)

	ctx := context.Background()
	first := persistence.ReadingSession{ID: "session1", UserID: "user1", Date: "2026-08-20", Minutes: 30}
	if _, err := repo.AddMinutes(ctx, first); err != nil {
		t.Fatalf("First AddMinutes failed: %v", err)
	}

	second := persistence.ReadingSession{ID: "session2", UserID: "user1", Date: "2026-08-20", Minutes: 15}
	merged, err := repo.AddMinutes(ctx, second)
	if err != nil {
		t.Fatalf("Second AddMinutes failed: %v", err)
	}

	if merged.Minutes != 45 {
		t.Errorf("Expected accumulated 45 minutes, got %d", merged.Minutes)
	}
	// The original row survives the merge; the second id is discarded.
	if merged.ID != "session1" {
		t.Errorf("Expected original id 'session1', got '%s'", merged.ID)
	}

	sessions, err := repo.ListSessions(ctx, "user1")
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 1 {
		t.Errorf("Expected a single row per day, got %d", len(sessions))
	}
}

func TestReadingSessionRepository_SetMinutes_ReplacesSameDay(t *testing.T) {
	db := setupTestDB(t)
	createTestUser(t, db, "user1", "reader@example.com")
	repo := NewReadingSessionRepository(db)

	ctx := context.Background()
	if _, err := repo.AddMinutes(ctx, persistence.ReadingSession{
		ID: "session1", UserID: "user1", Date: "2026-08-20", Minutes: 90,
	}); err != nil {
		t.Fatalf("AddMinutes failed: %v", err)
	}

	replaced, err := repo.SetMinutes(ctx, persistence.ReadingSession{
		ID: "session2", UserID: "user1", Date: "2026-08-20", Minutes: 25,
	})
	if err != nil {
		t.Fatalf("SetMinutes failed: %v", err)
	}

	if replaced.Minutes != 25 {
		t.Errorf("Expected replaced value 25, got %d", replaced.Minutes)
	}
}

func TestReadingSessionRepository_ListSessions_NewestFirst(t *testing.T) {
	db := setupTestDB(t)
	createTestUser(t, db, "user1", "reader@example.com")
	repo := NewReadingSessionRepository(db)

	ctx := context.Background()
	for i, date := range []string{"2026-08-18", "2026-08-20", "2026-08-19"} {
		if _, err := repo.AddMinutes(ctx, persistence.ReadingSession{
			ID: string(rune('a' + i)), UserID: "user1", Date: date, Minutes: 10,
		}); err != nil {
			t.Fatalf("AddMinutes failed for %s: %v", date, err)
		}
	}

	sessions, err := repo.ListSessions(ctx, "user1")
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}

	if len(sessions) != 3 {
		t.Fatalf("Expected 3 sessions, got %d", len(sessions))
	}
	want := []string{"2026-08-20", "2026-08-19", "2026-08-18"}
	for i, date := range want {
		if sessions[i].Date != date {
			t.Errorf("Position %d: expected date '%s', got '%s'", i, date, sessions[i].Date)
		}
	}
}

func TestReadingSessionRepository_ListSessions_ScopedToUser(t *testing.T) {
	db := setupTestDB(t)
	createTestUser(t, db, "user1", "reader1@example.com")
	createTestUser(t, db, "user2", "reader2@example.com")
	repo := NewReadingSessionRepository(db)

	ctx := context.Background()
	if _, err := repo.AddMinutes(ctx, persistence.ReadingSession{
		ID: "session1", UserID: "user1", Date: "2026-08-20", Minutes: 30,
	}); err != nil {
		t.Fatalf("AddMinutes failed: %v", err)
	}
	if _, err := repo.AddMinutes(ctx, persistence.ReadingSession{
		ID: "session2", UserID: "user2", Date: "2026-08-20", Minutes: 60,
	}); err != nil {
		t.Fatalf("AddMinutes failed: %v", err)
	}

	sessions, err := repo.ListSessions(ctx, "user1")
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 1 || sessions[0].Minutes != 30 {
		t.Errorf("Expected only user1's 30-minute session, got %+v", sessions)
	}
}

func TestReadingSessionRepository_DeleteSessionByDate(t *testing.T) {
	db := setupTestDB(t)
	createTestUser(t, db, "user1", "reader@example.com")
	repo := NewReadingSessionRepository(db)

	ctx := context.Background()
	if _, err := repo.AddMinutes(ctx, persistence.ReadingSession{
		ID: "session1", UserID: "user1", Date: "2026-08-20", Minutes: 30,
	}); err != nil {
		t.Fatalf("AddMinutes failed: %v", err)
	}

	if err := repo.DeleteSessionByDate(ctx, "user1", "2026-08-20"); err != nil {
		t.Fatalf("DeleteSessionByDate failed: %v", err)
	}

	_, err := repo.FindSessionByDate(ctx, "user1", "2026-08-20")
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}

	err = repo.DeleteSessionByDate(ctx, "user1", "2026-08-20")
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestReadingSessionRepository_RejectsInvalidRows(t *testing.T) {
	db := setupTestDB(t)
	createTestUser(t, db, "user1", "reader@example.com")
	repo := NewReadingSessionRepository(db)

	ctx := context.Background()

	// Zero minutes violates the minutes >= 1 check.
	_, err := repo.AddMinutes(ctx, persistence.ReadingSession{
		ID: "session1", UserID: "user1", Date: "2026-08-20", Minutes: 0,
	})
	if !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Errorf("Expected ErrConstraintViolation for zero minutes, got %v", err)
	}

	// A non-ISO date violates the date shape check.
	_, err = repo.AddMinutes(ctx, persistence.ReadingSession{
		ID: "session2", UserID: "user1", Date: "08/20/2026", Minutes: 30,
	})
	if !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Errorf("Expected ErrConstraintViolation for malformed date, got %v", err)
	}

	// An unknown user violates the foreign key.
	_, err = repo.AddMinutes(ctx, persistence.ReadingSession{
		ID: "session3", UserID: "ghost", Date: "2026-08-20", Minutes: 30,
	})
	if !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Errorf("Expected ErrForeignKeyViolation for unknown user, got %v", err)
	}
}
