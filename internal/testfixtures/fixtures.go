package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/reading-nook/internal/application"
	"github.com/example/reading-nook/internal/persistence"
)

var (
	userCounter     uint64
	bookCounter     uint64
	sessionCounter  uint64
	settingsCounter uint64
)

var referenceTime = time.Date(2026, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- User fixtures -----------------------------

// UserFixture represents a deterministic user record that can be materialised
// for application or persistence tests.
type UserFixture struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserOption configures the generated user fixture.
type UserOption func(*UserFixture)

// NewUserFixture returns a deterministic user fixture with optional overrides.
func NewUserFixture(opts ...UserOption) UserFixture {
	idx := atomic.AddUint64(&userCounter, 1)
	id := fmt.Sprintf("user-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := UserFixture{
		ID:           id,
		Email:        fmt.Sprintf("%s@example.com", id),
		DisplayName:  fmt.Sprintf("Reader %03d", idx),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithUserID overrides the generated user ID.
func WithUserID(id string) UserOption {
	return func(f *UserFixture) {
		f.ID = id
	}
}

// WithUserEmail overrides the generated email address.
func WithUserEmail(email string) UserOption {
	return func(f *UserFixture) {
		f.Email = email
	}
}

// WithUserDisplayName overrides the generated display name.
func WithUserDisplayName(name string) UserOption {
	return func(f *UserFixture) {
		f.DisplayName = name
	}
}

// WithUserPasswordHash overrides the generated password hash.
func WithUserPasswordHash(hash string) UserOption {
	return func(f *UserFixture) {
		f.PasswordHash = hash
	}
}

// WithUserTimestamps sets both created and updated timestamps on the fixture.
func WithUserTimestamps(created, updated time.Time) UserOption {
	return func(f *UserFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.User value.
func (f UserFixture) Application() application.User {
	return application.User{
		ID:          f.ID,
		Email:       f.Email,
		DisplayName: f.DisplayName,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Principal returns an application.Principal derived from the fixture.
func (f UserFixture) Principal() application.Principal {
	return application.Principal{UserID: f.ID}
}

// Persistence returns the fixture as a persistence.User value.
func (f UserFixture) Persistence() persistence.User {
	return persistence.User{
		ID:           f.ID,
		Email:        f.Email,
		DisplayName:  f.DisplayName,
		PasswordHash: f.PasswordHash,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// ----------------------------- Book fixtures -----------------------------

// BookFixture represents a deterministic book record.
type BookFixture struct {
	ID         string
	UserID     string
	Title      string
	Author     string
	Genre      string
	Status     persistence.BookStatus
	StartDate  *string
	FinishDate *string
	Rating     *int
	Notes      *string
	CoverURL   *string
	Quotes     []string
	DateAdded  time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// BookOption configures the generated book fixture.
type BookOption func(*BookFixture)

// NewBookFixture returns a deterministic book fixture with optional overrides.
func NewBookFixture(opts ...BookOption) BookFixture {
	idx := atomic.AddUint64(&bookCounter, 1)
	id := fmt.Sprintf("book-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Hour)
	fixture := BookFixture{
		ID:        id,
		UserID:    fmt.Sprintf("user-%03d", idx),
		Title:     fmt.Sprintf("Book %03d", idx),
		Author:    fmt.Sprintf("Author %03d", idx),
		Genre:     "Fiction",
		Status:    persistence.StatusToRead,
		DateAdded: created,
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithBookID overrides the generated book ID.
func WithBookID(id string) BookOption {
	return func(f *BookFixture) {
		f.ID = id
	}
}

// WithBookUserID sets the owning user ID.
func WithBookUserID(id string) BookOption {
	return func(f *BookFixture) {
		f.UserID = id
	}
}

// WithBookTitle overrides the generated title.
func WithBookTitle(title string) BookOption {
	return func(f *BookFixture) {
		f.Title = title
	}
}

// WithBookAuthor overrides the generated author.
func WithBookAuthor(author string) BookOption {
	return func(f *BookFixture) {
		f.Author = author
	}
}

// WithBookGenre overrides the generated genre.
func WithBookGenre(genre string) BookOption {
	return func(f *BookFixture) {
		f.Genre = genre
	}
}

// WithBookStatus sets the shelf status.
func WithBookStatus(status persistence.BookStatus) BookOption {
	return func(f *BookFixture) {
		f.Status = status
	}
}

// WithBookDates sets the optional start and finish dates.
func WithBookDates(start, finish string) BookOption {
	return func(f *BookFixture) {
		if start != "" {
			s := start
			f.StartDate = &s
		}
		if finish != "" {
			fin := finish
			f.FinishDate = &fin
		}
	}
}

// WithBookFinished marks the book completed on the given date.
func WithBookFinished(finish string) BookOption {
	return func(f *BookFixture) {
		fin := finish
		f.Status = persistence.StatusCompleted
		f.FinishDate = &fin
	}
}

// WithBookRating sets the rating.
func WithBookRating(rating int) BookOption {
	return func(f *BookFixture) {
		r := rating
		f.Rating = &r
	}
}

// WithBookNotes sets the notes field.
func WithBookNotes(notes string) BookOption {
	return func(f *BookFixture) {
		n := notes
		f.Notes = &n
	}
}

// WithBookCoverURL sets the cover image URL.
func WithBookCoverURL(url string) BookOption {
	return func(f *BookFixture) {
		u := url
		f.CoverURL = &u
	}
}

// WithBookQuotes sets the saved quotes.
func WithBookQuotes(quotes ...string) BookOption {
	return func(f *BookFixture) {
		f.Quotes = append([]string(nil), quotes...)
	}
}

// WithBookDateAdded sets the shelf timestamp.
func WithBookDateAdded(t time.Time) BookOption {
	return func(f *BookFixture) {
		f.DateAdded = t
	}
}

// Persistence returns the fixture as a persistence.Book value.
func (f BookFixture) Persistence() persistence.Book {
	return persistence.Book{
		ID:         f.ID,
		UserID:     f.UserID,
		Title:      f.Title,
		Author:     f.Author,
		Genre:      f.Genre,
		Status:     f.Status,
		StartDate:  copyStringPtr(f.StartDate),
		FinishDate: copyStringPtr(f.FinishDate),
		Rating:     copyIntPtr(f.Rating),
		Notes:      copyStringPtr(f.Notes),
		DateAdded:  f.DateAdded,
		CoverURL:   copyStringPtr(f.CoverURL),
		Quotes:     append([]string(nil), f.Quotes...),
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}

// Input returns the fixture as an application.BookInput.
func (f BookFixture) Input() application.BookInput {
	return application.BookInput{
		Title:      f.Title,
		Author:     f.Author,
		Genre:      f.Genre,
		Status:     string(f.Status),
		StartDate:  copyStringPtr(f.StartDate),
		FinishDate: copyStringPtr(f.FinishDate),
		Rating:     copyIntPtr(f.Rating),
		Notes:      copyStringPtr(f.Notes),
		CoverURL:   copyStringPtr(f.CoverURL),
		Quotes:     append([]string(nil), f.Quotes...),
	}
}

// ------------------------ Reading session fixtures ------------------------

// ReadingSessionFixture represents one deterministic day of recorded reading.
type ReadingSessionFixture struct {
	ID        string
	UserID    string
	Date      string
	Minutes   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReadingSessionOption configures the generated session fixture.
type ReadingSessionOption func(*ReadingSessionFixture)

// NewReadingSessionFixture returns a deterministic reading session fixture.
// Successive calls advance the date one day at a time so multi-day ledgers
// come out contiguous by default.
func NewReadingSessionFixture(opts ...ReadingSessionOption) ReadingSessionFixture {
	idx := atomic.AddUint64(&sessionCounter, 1)
	day := referenceTime.AddDate(0, 0, int(idx))
	fixture := ReadingSessionFixture{
		ID:        fmt.Sprintf("session-%03d", idx),
		UserID:    fmt.Sprintf("user-%03d", idx),
		Date:      day.Format("2006-01-02"),
		Minutes:   30,
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionID overrides the session ID.
func WithSessionID(id string) ReadingSessionOption {
	return func(f *ReadingSessionFixture) {
		f.ID = id
	}
}

// WithSessionUserID sets the owning user ID.
func WithSessionUserID(id string) ReadingSessionOption {
	return func(f *ReadingSessionFixture) {
		f.UserID = id
	}
}

// WithSessionDate sets the calendar date (YYYY-MM-DD).
func WithSessionDate(date string) ReadingSessionOption {
	return func(f *ReadingSessionFixture) {
		f.Date = date
	}
}

// WithSessionMinutes sets the recorded minutes.
func WithSessionMinutes(minutes int) ReadingSessionOption {
	return func(f *ReadingSessionFixture) {
		f.Minutes = minutes
	}
}

// Persistence returns the fixture as a persistence.ReadingSession value.
func (f ReadingSessionFixture) Persistence() persistence.ReadingSession {
	return persistence.ReadingSession{
		ID:        f.ID,
		UserID:    f.UserID,
		Date:      f.Date,
		Minutes:   f.Minutes,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// --------------------------- Settings fixtures ---------------------------

// SettingsFixture represents a deterministic user settings record.
type SettingsFixture struct {
	ID            string
	UserID        string
	YearlyGoal    int
	Theme         *string
	DefaultView   *string
	Notifications *bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SettingsOption configures the generated settings fixture.
type SettingsOption func(*SettingsFixture)

// NewSettingsFixture returns a deterministic settings fixture.
func NewSettingsFixture(opts ...SettingsOption) SettingsFixture {
	idx := atomic.AddUint64(&settingsCounter, 1)
	notifications := true
	fixture := SettingsFixture{
		ID:            fmt.Sprintf("settings-%03d", idx),
		UserID:        fmt.Sprintf("user-%03d", idx),
		YearlyGoal:    24,
		Notifications: &notifications,
		CreatedAt:     referenceTime,
		UpdatedAt:     referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSettingsUserID sets the owning user ID.
func WithSettingsUserID(id string) SettingsOption {
	return func(f *SettingsFixture) {
		f.UserID = id
	}
}

// WithSettingsGoal sets the yearly goal.
func WithSettingsGoal(goal int) SettingsOption {
	return func(f *SettingsFixture) {
		f.YearlyGoal = goal
	}
}

// WithSettingsTheme sets the theme preference.
func WithSettingsTheme(theme string) SettingsOption {
	return func(f *SettingsFixture) {
		t := theme
		f.Theme = &t
	}
}

// WithSettingsDefaultView sets the default dashboard view.
func WithSettingsDefaultView(view string) SettingsOption {
	return func(f *SettingsFixture) {
		v := view
		f.DefaultView = &v
	}
}

// WithSettingsNotifications sets the notifications flag.
func WithSettingsNotifications(enabled bool) SettingsOption {
	return func(f *SettingsFixture) {
		e := enabled
		f.Notifications = &e
	}
}

// Persistence returns the fixture as a persistence.UserSettings value.
func (f SettingsFixture) Persistence() persistence.UserSettings {
	return persistence.UserSettings{
		ID:         f.ID,
		UserID:     f.UserID,
		YearlyGoal: f.YearlyGoal,
		Preferences: persistence.Preferences{
			Theme:         copyStringPtr(f.Theme),
			DefaultView:   copyStringPtr(f.DefaultView),
			Notifications: copyBoolPtr(f.Notifications),
		},
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// helper to deep copy optional strings.
func copyStringPtr(src *string) *string {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}

func copyIntPtr(src *int) *int {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}

func copyBoolPtr(src *bool) *bool {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}
