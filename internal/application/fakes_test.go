package application

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/example/reading-nook/internal/persistence"
)

// In-memory repositories backing the service tests. The reading session fake
// mirrors the sqlite upsert semantics: one row per (user, date), additive or
// absolute merge on conflict.

// testClock is a mutable time source for these tests. The testfixtures clock
// cannot be used here: testfixtures imports this package, and an in-package
// test importing it back would form an import cycle.
type testClock struct {
	mu      sync.Mutex
	current time.Time
}

func newTestClock(start time.Time) *testClock {
	return &testClock{current: start.UTC()}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *testClock) NowFunc() func() time.Time {
	return c.Now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t.UTC()
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

// sequentialIDs yields "prefix-1", "prefix-2", ... for deterministic ids.
func sequentialIDs(prefix string) func() string {
	var (
		mu      sync.Mutex
		counter int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		counter++
		return fmt.Sprintf("%s-%d", prefix, counter)
	}
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]persistence.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]persistence.User)}
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user persistence.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return persistence.ErrDuplicate
		}
	}
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetUser(_ context.Context, id string) (persistence.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (persistence.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

func (r *fakeUserRepo) UpdateUser(_ context.Context, user persistence.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return persistence.ErrNotFound
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) DeleteUser(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type fakeAuthSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]persistence.AuthSession
}

func newFakeAuthSessionRepo() *fakeAuthSessionRepo {
	return &fakeAuthSessionRepo{sessions: make(map[string]persistence.AuthSession)}
}

func (r *fakeAuthSessionRepo) CreateAuthSession(_ context.Context, session persistence.AuthSession) (persistence.AuthSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[session.ID]; ok {
		return persistence.AuthSession{}, persistence.ErrDuplicate
	}
	session.CreatedAt = time.Now().UTC()
	session.UpdatedAt = session.CreatedAt
	r.sessions[session.ID] = session
	return session, nil
}

func (r *fakeAuthSessionRepo) GetAuthSession(_ context.Context, id string) (persistence.AuthSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return persistence.AuthSession{}, persistence.ErrNotFound
	}
	return session, nil
}

func (r *fakeAuthSessionRepo) RevokeAuthSession(_ context.Context, id string, revokedAt time.Time) (persistence.AuthSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return persistence.AuthSession{}, persistence.ErrNotFound
	}
	if session.RevokedAt == nil {
		session.RevokedAt = &revokedAt
	}
	r.sessions[id] = session
	return session, nil
}

func (r *fakeAuthSessionRepo) DeleteExpiredAuthSessions(_ context.Context, reference time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, session := range r.sessions {
		if session.ExpiresAt.Before(reference) {
			delete(r.sessions, id)
		}
	}
	return nil
}

type fakeBookRepo struct {
	mu    sync.Mutex
	books map[string]persistence.Book
}

func newFakeBookRepo() *fakeBookRepo {
	return &fakeBookRepo{books: make(map[string]persistence.Book)}
}

func (r *fakeBookRepo) CreateBook(_ context.Context, book persistence.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[book.ID]; ok {
		return persistence.ErrDuplicate
	}
	book.CreatedAt = time.Now().UTC()
	book.UpdatedAt = book.CreatedAt
	r.books[book.ID] = book
	return nil
}

func (r *fakeBookRepo) GetBook(_ context.Context, id string) (persistence.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	book, ok := r.books[id]
	if !ok {
		return persistence.Book{}, persistence.ErrNotFound
	}
	return book, nil
}

func (r *fakeBookRepo) UpdateBook(_ context.Context, book persistence.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[book.ID]; !ok {
		return persistence.ErrNotFound
	}
	r.books[book.ID] = book
	return nil
}

func (r *fakeBookRepo) DeleteBook(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(r.books, id)
	return nil
}

func (r *fakeBookRepo) ListBooks(_ context.Context, userID string) ([]persistence.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	books := make([]persistence.Book, 0)
	for _, book := range r.books {
		if book.UserID == userID {
			books = append(books, book)
		}
	}
	sort.Slice(books, func(i, j int) bool { return books[i].DateAdded.After(books[j].DateAdded) })
	return books, nil
}

type fakeReadingSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]persistence.ReadingSession // keyed userID + "|" + date
}

func newFakeReadingSessionRepo() *fakeReadingSessionRepo {
	return &fakeReadingSessionRepo{sessions: make(map[string]persistence.ReadingSession)}
}

func sessionKey(userID, date string) string {
	return userID + "|" + date
}

func (r *fakeReadingSessionRepo) FindSessionByDate(_ context.Context, userID, date string) (persistence.ReadingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionKey(userID, date)]
	if !ok {
		return persistence.ReadingSession{}, persistence.ErrNotFound
	}
	return session, nil
}

func (r *fakeReadingSessionRepo) ListSessions(_ context.Context, userID string) ([]persistence.ReadingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sessions := make([]persistence.ReadingSession, 0)
	for _, session := range r.sessions {
		if session.UserID == userID {
			sessions = append(sessions, session)
		}
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].Date > sessions[j].Date })
	return sessions, nil
}

func (r *fakeReadingSessionRepo) AddMinutes(_ context.Context, session persistence.ReadingSession) (persistence.ReadingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := sessionKey(session.UserID, session.Date)
	if existing, ok := r.sessions[key]; ok {
		existing.Minutes += session.Minutes
		r.sessions[key] = existing
		return existing, nil
	}
	r.sessions[key] = session
	return session, nil
}

func (r *fakeReadingSessionRepo) SetMinutes(_ context.Context, session persistence.ReadingSession) (persistence.ReadingSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := sessionKey(session.UserID, session.Date)
	if existing, ok := r.sessions[key]; ok {
		existing.Minutes = session.Minutes
		r.sessions[key] = existing
		return existing, nil
	}
	r.sessions[key] = session
	return session, nil
}

func (r *fakeReadingSessionRepo) DeleteSessionByDate(_ context.Context, userID, date string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := sessionKey(userID, date)
	if _, ok := r.sessions[key]; !ok {
		return persistence.ErrNotFound
	}
	delete(r.sessions, key)
	return nil
}

type fakeSettingsRepo struct {
	mu       sync.Mutex
	settings map[string]persistence.UserSettings // keyed by userID
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{settings: make(map[string]persistence.UserSettings)}
}

func (r *fakeSettingsRepo) GetSettings(_ context.Context, userID string) (persistence.UserSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	settings, ok := r.settings[userID]
	if !ok {
		return persistence.UserSettings{}, persistence.ErrNotFound
	}
	return settings, nil
}

func (r *fakeSettingsRepo) SaveSettings(_ context.Context, settings persistence.UserSettings) (persistence.UserSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.settings[settings.UserID]; ok {
		settings.ID = existing.ID
		settings.CreatedAt = existing.CreatedAt
	}
	r.settings[settings.UserID] = settings
	return settings, nil
}
