package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
)

// ImportService ingests bulk payloads exported from other trackers. Items
// are validated and written one at a time; a failed item is recorded and the
// batch continues.
type ImportService struct {
	books   *BookService
	reading *ReadingService
	logger  *slog.Logger
}

// NewImportService constructs an ImportService over the write services.
func NewImportService(books *BookService, reading *ReadingService, logger *slog.Logger) *ImportService {
	return &ImportService{
		books:   books,
		reading: reading,
		logger:  defaultLogger(logger),
	}
}

func (s *ImportService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ImportService", operation, attrs...)
}

// Import writes every importable item and reports per-item accounting.
// Reading sessions merge additively, so re-running an import adds to
// existing day totals rather than failing.
func (s *ImportService) Import(ctx context.Context, params ImportParams) (result ImportResult, err error) {
	if s == nil || s.books == nil || s.reading == nil {
		err = fmt.Errorf("import service not configured")
		return
	}

	logger := s.loggerWith(ctx, "Import",
		"user_id", params.Principal.UserID,
		"books", len(params.Books),
		"sessions", len(params.Sessions),
	)

	if params.Principal.UserID == "" {
		err = ErrUnauthorized
		logger.ErrorContext(ctx, "import rejected", "error", err, "error_kind", ErrorKind(err))
		return
	}

	result.Errors = make([]string, 0)

	for i, item := range params.Books {
		_, createErr := s.books.CreateBook(ctx, CreateBookParams{
			Principal: params.Principal,
			Input:     item.Input,
		})
		if createErr != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("book %d (%s): %s", i, item.Input.Title, importErrorMessage(createErr)))
			continue
		}
		result.BooksCreated++
	}

	for i, item := range params.Sessions {
		_, logErr := s.reading.LogReading(ctx, LogReadingParams{
			Principal: params.Principal,
			Date:      item.Date,
			Minutes:   item.Minutes,
		})
		if logErr != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("session %d (%s): %s", i, item.Date, importErrorMessage(logErr)))
			continue
		}
		result.SessionsCreated++
	}

	logger.With(
		"books_created", result.BooksCreated,
		"sessions_created", result.SessionsCreated,
		"failed", len(result.Errors),
	).InfoContext(ctx, "import finished")
	return
}

// importErrorMessage condenses a failure into one line. Validation errors
// report the lexically first field so the message is stable across runs.
func importErrorMessage(err error) string {
	var vErr *ValidationError
	if errors.As(err, &vErr) && vErr.HasErrors() {
		fields := make([]string, 0, len(vErr.FieldErrors))
		for field := range vErr.FieldErrors {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		return fmt.Sprintf("%s: %s", fields[0], vErr.FieldErrors[fields[0]])
	}
	return err.Error()
}
