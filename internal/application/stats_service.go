package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/example/reading-nook/internal/ledger"
	"github.com/example/reading-nook/internal/persistence"
)

const (
	// A completion streak stays "current" while the latest finish is at most
	// this many days old.
	bookStreakAnchorDays = 7
	// Consecutive finishes at most this many days apart belong to one run.
	bookStreakGapDays = 14
)

// StatsService assembles the dashboard payload: the reading-time aggregate,
// yearly goal progress, genre distribution, the book-completion streak and
// the quote of the day. Everything is recomputed on read.
type StatsService struct {
	sessions persistence.ReadingSessionRepository
	books    persistence.BookRepository
	settings *SettingsService
	now      func() time.Time
	logger   *slog.Logger
}

// NewStatsService constructs a StatsService with the provided dependencies.
func NewStatsService(sessions persistence.ReadingSessionRepository, books persistence.BookRepository, settings *SettingsService, now func() time.Time, logger *slog.Logger) *StatsService {
	if now == nil {
		now = time.Now
	}
	return &StatsService{
		sessions: sessions,
		books:    books,
		settings: settings,
		now:      now,
		logger:   defaultLogger(logger),
	}
}

func (s *StatsService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "StatsService", operation, attrs...)
}

// GetStats computes the full dashboard payload for the principal.
func (s *StatsService) GetStats(ctx context.Context, principal Principal) (stats DashboardStats, err error) {
	if s == nil || s.sessions == nil || s.books == nil || s.settings == nil {
		err = fmt.Errorf("stats service not configured")
		return
	}

	logger := s.loggerWith(ctx, "GetStats", "user_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to compute stats", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if principal.UserID == "" {
		err = ErrUnauthorized
		return
	}

	records, err := s.sessions.ListSessions(ctx, principal.UserID)
	if err != nil {
		return
	}
	entries := make([]ledger.Session, 0, len(records))
	for _, record := range records {
		entries = append(entries, ledger.Session{Date: record.Date, Minutes: record.Minutes})
	}

	books, err := s.books.ListBooks(ctx, principal.UserID)
	if err != nil {
		return
	}

	settings, err := s.settings.GetSettings(ctx, principal)
	if err != nil {
		return
	}

	today := s.now().UTC()
	stats = DashboardStats{
		Reading:       ledger.Aggregate(entries, today),
		Heatmap:       ledger.Heatmap(entries, today, 0),
		Goal:          goalProgress(books, settings.YearlyGoal, today),
		Genres:        genreDistribution(books),
		BookStreak:    bookCompletionStreak(books, today),
		QuoteOfTheDay: quoteOfTheDay(books, today),
	}
	return
}

func goalProgress(books []persistence.Book, goal int, today time.Time) GoalProgress {
	year := today.Year()
	completed := 0
	for _, book := range books {
		finish, ok := finishDate(book)
		if ok && finish.Year() == year {
			completed++
		}
	}
	return GoalProgress{Year: year, Goal: goal, Completed: completed}
}

func genreDistribution(books []persistence.Book) map[string]int {
	genres := make(map[string]int)
	for _, book := range books {
		if book.Genre != "" {
			genres[book.Genre]++
		}
	}
	return genres
}

// bookCompletionStreak walks finish dates newest first. A run extends while
// consecutive finishes are at most bookStreakGapDays apart; the newest run
// counts as current only while its head is at most bookStreakAnchorDays old.
func bookCompletionStreak(books []persistence.Book, today time.Time) BookStreak {
	finishes := make([]int64, 0, len(books))
	for _, book := range books {
		if finish, ok := finishDate(book); ok {
			finishes = append(finishes, finish.Unix()/86400)
		}
	}
	if len(finishes) == 0 {
		return BookStreak{}
	}

	sort.Slice(finishes, func(i, j int) bool { return finishes[i] > finishes[j] })

	anchor := today.Truncate(24*time.Hour).Unix() / 86400
	longest, run := 1, 1
	for i := 1; i < len(finishes); i++ {
		if finishes[i-1]-finishes[i] <= bookStreakGapDays {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	current := 0
	if anchor-finishes[0] <= bookStreakAnchorDays {
		current = 1
		for i := 1; i < len(finishes); i++ {
			if finishes[i-1]-finishes[i] <= bookStreakGapDays {
				current++
			} else {
				break
			}
		}
	}

	return BookStreak{Current: current, Longest: longest}
}

// quoteOfTheDay picks deterministically from the quotes of completed books,
// keyed on the day number so the pick rotates daily but stays stable within
// a day.
func quoteOfTheDay(books []persistence.Book, today time.Time) string {
	quotes := make([]string, 0)
	for _, book := range books {
		if book.Status != persistence.StatusCompleted {
			continue
		}
		for _, quote := range book.Quotes {
			if quote != "" {
				quotes = append(quotes, quote)
			}
		}
	}
	if len(quotes) == 0 {
		return ""
	}

	dayNumber := today.Truncate(24*time.Hour).Unix() / 86400
	return quotes[int(dayNumber%int64(len(quotes)))]
}

func finishDate(book persistence.Book) (time.Time, bool) {
	if book.Status != persistence.StatusCompleted || book.FinishDate == nil {
		return time.Time{}, false
	}
	finish, err := time.Parse(ledger.DateLayout, *book.FinishDate)
	if err != nil {
		return time.Time{}, false
	}
	return finish, true
}
