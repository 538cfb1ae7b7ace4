package application

import (
	"time"

	"github.com/example/reading-nook/internal/ledger"
	"github.com/example/reading-nook/internal/persistence"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID string
}

// User represents a reader account exposed by the application services.
type User struct {
	ID          string
	Email       string
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RegisterParams captures the data required to create an account.
type RegisterParams struct {
	Email       string
	Password    string
	DisplayName string
}

// LoginParams captures the data required to authenticate a user.
type LoginParams struct {
	Email    string
	Password string
}

// AuthResult captures the outcome of registration or login: the account plus
// a signed bearer token for subsequent requests.
type AuthResult struct {
	User      User
	Token     string
	ExpiresAt time.Time
}

// BookInput captures caller provided book fields. Pointer fields distinguish
// "absent" from "explicitly cleared" on update.
type BookInput struct {
	Title      string
	Author     string
	Genre      string
	Status     string
	StartDate  *string
	FinishDate *string
	Rating     *int
	Notes      *string
	CoverURL   *string
	Quotes     []string
}

// CreateBookParams wraps the data required to create a book.
type CreateBookParams struct {
	Principal Principal
	Input     BookInput
}

// UpdateBookParams wraps the data required to update an existing book.
type UpdateBookParams struct {
	Principal Principal
	BookID    string
	Input     BookInput
}

// LogReadingParams wraps an additive reading-time submission: minutes are
// added to whatever is already recorded for the day.
type LogReadingParams struct {
	Principal Principal
	Date      string
	Minutes   int
}

// LogReadingResult reports the stored day total and whether the submission
// merged into an existing entry.
type LogReadingResult struct {
	Session persistence.ReadingSession
	Merged  bool
}

// SetReadingParams wraps an absolute reading-time submission: the given
// minutes become the day total, and zero removes the entry.
type SetReadingParams struct {
	Principal Principal
	Date      string
	Minutes   int
}

// SetReadingResult reports the outcome of an absolute submission. Session is
// zero-valued when the entry was deleted or the zero-on-absent no-op applied.
type SetReadingResult struct {
	Session persistence.ReadingSession
	Deleted bool
}

// SettingsInput captures a partial settings update. Nil fields are left
// untouched by the merge.
type SettingsInput struct {
	YearlyGoal    *int
	Theme         *string
	DefaultView   *string
	Notifications *bool
}

// UpdateSettingsParams wraps the data required to update user settings.
type UpdateSettingsParams struct {
	Principal Principal
	Input     SettingsInput
}

// GoalProgress reports completed books against the yearly goal.
type GoalProgress struct {
	Year      int
	Goal      int
	Completed int
}

// BookStreak reports completion streaks derived from finish dates.
type BookStreak struct {
	Current int
	Longest int
}

// DashboardStats is the single payload served to the dashboard.
type DashboardStats struct {
	Reading       ledger.Stats
	Heatmap       []ledger.HeatmapCell
	Goal          GoalProgress
	Genres        map[string]int
	BookStreak    BookStreak
	QuoteOfTheDay string
}

// ImportBook is one book row of a bulk import payload.
type ImportBook struct {
	Input BookInput
}

// ImportSession is one reading-session row of a bulk import payload.
type ImportSession struct {
	Date    string
	Minutes int
}

// ImportParams wraps a bulk import submission.
type ImportParams struct {
	Principal Principal
	Books     []ImportBook
	Sessions  []ImportSession
}

// ImportResult reports per-item accounting for a bulk import. Errors holds
// one message per failed item; failures never abort the batch.
type ImportResult struct {
	BooksCreated    int
	SessionsCreated int
	Errors          []string
}
