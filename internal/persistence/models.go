package persistence

import "time"

// User represents a reader account.
type User struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AuthSession represents an issued login session. Its ID doubles as the token
// identifier embedded in the bearer JWT.
type AuthSession struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}

// BookStatus enumerates the closed set of shelf states a book can be in.
type BookStatus string

const (
	StatusToRead       BookStatus = "To Read"
	StatusInProgress   BookStatus = "In Progress"
	StatusCompleted    BookStatus = "Completed"
	StatusDidNotFinish BookStatus = "Did Not Finish"
)

// Valid reports whether the status is one of the known variants.
func (s BookStatus) Valid() bool {
	switch s {
	case StatusToRead, StatusInProgress, StatusCompleted, StatusDidNotFinish:
		return true
	}
	return false
}

// Book represents one tracked title on a user's shelf.
type Book struct {
	ID         string
	UserID     string
	Title      string
	Author     string
	Genre      string
	Status     BookStatus
	StartDate  *string // YYYY-MM-DD
	FinishDate *string // YYYY-MM-DD
	Rating     *int    // 0..5
	Notes      *string
	DateAdded  time.Time
	CoverURL   *string
	Quotes     []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ReadingSession represents minutes read on one calendar day. At most one row
// exists per (UserID, Date); the sqlite layer enforces this with a unique
// index and atomic upserts.
type ReadingSession struct {
	ID        string
	UserID    string
	Date      string // YYYY-MM-DD
	Minutes   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Preferences holds per-user display options.
type Preferences struct {
	Theme         *string
	DefaultView   *string
	Notifications *bool
}

// UserSettings is the one-per-user settings record.
type UserSettings struct {
	ID          string
	UserID      string
	YearlyGoal  int
	Preferences Preferences
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
