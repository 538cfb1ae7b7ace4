package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/reading-nook/internal/ledger"
	"github.com/example/reading-nook/internal/persistence"
)

// maxDailyMinutes caps a day's total at 24 hours.
const maxDailyMinutes = 1440

// ReadingService manages the daily reading-time ledger. It exposes two write
// policies, one per endpoint: LogReading adds to the day's total, SetReading
// replaces it. Both sit on atomic store upserts, so the (user, date)
// uniqueness invariant holds even under concurrent submissions.
type ReadingService struct {
	sessions    persistence.ReadingSessionRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewReadingService constructs a ReadingService with the provided dependencies.
func NewReadingService(sessions persistence.ReadingSessionRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ReadingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ReadingService{
		sessions:    sessions,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *ReadingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ReadingService", operation, attrs...)
}

// LogReading records additional minutes for a day. An existing entry for the
// same day absorbs the submission; otherwise a new entry is created.
func (s *ReadingService) LogReading(ctx context.Context, params LogReadingParams) (result LogReadingResult, err error) {
	if s == nil || s.sessions == nil {
		err = fmt.Errorf("session repository not configured")
		return
	}

	date := strings.TrimSpace(params.Date)
	logger := s.loggerWith(ctx, "LogReading",
		"user_id", params.Principal.UserID,
		"date", date,
		"minutes", params.Minutes,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to log reading time", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("merged", result.Merged, "day_total", result.Session.Minutes).
			InfoContext(ctx, "reading time logged")
	}()

	if params.Principal.UserID == "" {
		err = ErrUnauthorized
		return
	}
	if vErr := s.validateEntry(date, params.Minutes, 1); vErr.HasErrors() {
		err = vErr
		return
	}

	// The pre-read only decides the created-vs-merged response message; the
	// write below is a single atomic upsert either way.
	_, findErr := s.sessions.FindSessionByDate(ctx, params.Principal.UserID, date)
	merged := findErr == nil
	if findErr != nil && !errors.Is(findErr, persistence.ErrNotFound) {
		err = findErr
		return
	}

	session, err := s.sessions.AddMinutes(ctx, persistence.ReadingSession{
		ID:      s.idGenerator(),
		UserID:  params.Principal.UserID,
		Date:    date,
		Minutes: params.Minutes,
	})
	if err != nil {
		return
	}

	result = LogReadingResult{Session: session, Merged: merged}
	return
}

// SetReading replaces a day's total outright. Zero minutes deletes the entry;
// zero against a day with no entry is a clean no-op.
func (s *ReadingService) SetReading(ctx context.Context, params SetReadingParams) (result SetReadingResult, err error) {
	if s == nil || s.sessions == nil {
		err = fmt.Errorf("session repository not configured")
		return
	}

	date := strings.TrimSpace(params.Date)
	logger := s.loggerWith(ctx, "SetReading",
		"user_id", params.Principal.UserID,
		"date", date,
		"minutes", params.Minutes,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to set reading time", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("deleted", result.Deleted).InfoContext(ctx, "reading time set")
	}()

	if params.Principal.UserID == "" {
		err = ErrUnauthorized
		return
	}
	if vErr := s.validateEntry(date, params.Minutes, 0); vErr.HasErrors() {
		err = vErr
		return
	}

	if params.Minutes == 0 {
		deleteErr := s.sessions.DeleteSessionByDate(ctx, params.Principal.UserID, date)
		if deleteErr != nil {
			if errors.Is(deleteErr, persistence.ErrNotFound) {
				logger.WarnContext(ctx, "zero minutes for a day with no entry")
				result = SetReadingResult{}
				return
			}
			err = deleteErr
			return
		}
		result = SetReadingResult{Deleted: true}
		return
	}

	session, err := s.sessions.SetMinutes(ctx, persistence.ReadingSession{
		ID:      s.idGenerator(),
		UserID:  params.Principal.UserID,
		Date:    date,
		Minutes: params.Minutes,
	})
	if err != nil {
		return
	}

	result = SetReadingResult{Session: session}
	return
}

// ListSessions returns the user's ledger entries, most recent date first.
func (s *ReadingService) ListSessions(ctx context.Context, principal Principal) ([]persistence.ReadingSession, error) {
	if s == nil || s.sessions == nil {
		return nil, fmt.Errorf("session repository not configured")
	}
	if principal.UserID == "" {
		return nil, ErrUnauthorized
	}
	return s.sessions.ListSessions(ctx, principal.UserID)
}

// validateEntry checks the date shape, the future-date rule and the minutes
// bounds. minMinutes is 1 on the additive path and 0 on the absolute path.
func (s *ReadingService) validateEntry(date string, minutes, minMinutes int) *ValidationError {
	vErr := &ValidationError{}

	if date == "" {
		vErr.add("date", "date is required")
	} else if parsed, parseErr := time.Parse(ledger.DateLayout, date); parseErr != nil {
		vErr.add("date", "date must be formatted YYYY-MM-DD")
	} else {
		today := s.now().UTC().Truncate(24 * time.Hour)
		if parsed.After(today) {
			vErr.add("date", "date cannot be in the future")
		}
	}

	if minutes < minMinutes {
		vErr.add("minutes", fmt.Sprintf("minutes must be at least %d", minMinutes))
	} else if minutes > maxDailyMinutes {
		vErr.add("minutes", fmt.Sprintf("minutes cannot exceed %d", maxDailyMinutes))
	}

	return vErr
}
