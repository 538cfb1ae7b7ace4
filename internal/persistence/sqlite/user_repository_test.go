package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/reading-nook/internal/persistence"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	ctx := context.Background()
	err := repo.CreateUser(ctx, persistence.User{
		ID:           "user1",
		Email:        "reader@example.com",
		DisplayName:  "Avid Reader",
		PasswordHash: "hashed_password",
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	retrieved, err := repo.GetUser(ctx, "user1")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if retrieved.Email != "reader@example.com" {
		t.Errorf("Expected email 'reader@example.com', got '%s'", retrieved.Email)
	}
	if retrieved.DisplayName != "Avid Reader" {
		t.Errorf("Expected display name 'Avid Reader', got '%s'", retrieved.DisplayName)
	}
}

func TestUserRepository_CreateUser_DuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	ctx := context.Background()
	user := persistence.User{
		ID:           "user1",
		Email:        "reader@example.com",
		DisplayName:  "Avid Reader",
		PasswordHash: "hashed_password",
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("First CreateUser failed: %v", err)
	}

	user.ID = "user2"
	err := repo.CreateUser(ctx, user)
	if !errors.Is(err, persistence.ErrDuplicate) {
		t.Errorf("Expected ErrDuplicate for reused email, got %v", err)
	}
}

func TestUserRepository_GetUserByEmail(t *testing.T) {
	db := setupTestDB(t)
	createTestUser(t, db, "user1", "reader@example.com")
	repo := NewUserRepository(db)

	retrieved, err := repo.GetUserByEmail(context.Background(), "reader@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if retrieved.ID != "user1" {
		t.Errorf("Expected ID 'user1', got '%s'", retrieved.ID)
	}

	_, err = repo.GetUserByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown email, got %v", err)
	}
}

func TestUserRepository_DeleteUser_Cascades(t *testing.T) {
	db := setupTestDB(t)
	createTestUser(t, db, "user1", "reader@example.com")

	ctx := context.Background()
	sessions := NewReadingSessionRepository(db)
	if _, err := sessions.AddMinutes(ctx, persistence.ReadingSession{
		ID: "session1", UserID: "user1", Date: "2026-08-20", Minutes: 30,
	}); err != nil {
		t.Fatalf("AddMinutes failed: %v", err)
	}

	books := NewBookRepository(db)
	if err := books.CreateBook(ctx, persistence.Book{
		ID:        "book1",
		UserID:    "user1",
		Title:     "Orphaned",
		Author:    "Author",
		Genre:     "Fiction",
		Status:    persistence.StatusToRead,
		DateAdded: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}

	users := NewUserRepository(db)
	if err := users.DeleteUser(ctx, "user1"); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}

	remaining, err := sessions.ListSessions(ctx, "user1")
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("Expected sessions to cascade on delete, got %d rows", len(remaining))
	}

	if _, err := books.GetBook(ctx, "book1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Errorf("Expected books to cascade on delete, got %v", err)
	}
}
