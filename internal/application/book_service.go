package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/example/reading-nook/internal/ledger"
	"github.com/example/reading-nook/internal/persistence"
)

const (
	maxTitleLength  = 500
	maxAuthorLength = 200
	maxNotesLength  = 5000
)

// BookService manages the user's shelf.
type BookService struct {
	books       persistence.BookRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewBookService constructs a BookService with the provided dependencies.
func NewBookService(books persistence.BookRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *BookService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &BookService{
		books:       books,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *BookService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookService", operation, attrs...)
}

// ListBooks returns the principal's shelf, most recently added first.
func (s *BookService) ListBooks(ctx context.Context, principal Principal) ([]persistence.Book, error) {
	if s == nil || s.books == nil {
		return nil, fmt.Errorf("book repository not configured")
	}
	if principal.UserID == "" {
		return nil, ErrUnauthorized
	}
	return s.books.ListBooks(ctx, principal.UserID)
}

// CreateBook validates and stores a new shelf entry. DateAdded is stamped
// server-side.
func (s *BookService) CreateBook(ctx context.Context, params CreateBookParams) (book persistence.Book, err error) {
	if s == nil || s.books == nil {
		err = fmt.Errorf("book repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateBook", "user_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create book", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("book_id", book.ID).InfoContext(ctx, "book created")
	}()

	if params.Principal.UserID == "" {
		err = ErrUnauthorized
		return
	}
	if vErr := validateBookInput(params.Input); vErr.HasErrors() {
		err = vErr
		return
	}

	record := bookFromInput(params.Input)
	record.ID = s.idGenerator()
	record.UserID = params.Principal.UserID
	record.DateAdded = s.now().UTC()

	if err = s.books.CreateBook(ctx, record); err != nil {
		return
	}
	return s.books.GetBook(ctx, record.ID)
}

// UpdateBook validates and stores changes to an existing entry. Only the
// owner may update; an entry owned by another user yields ErrForbidden.
func (s *BookService) UpdateBook(ctx context.Context, params UpdateBookParams) (book persistence.Book, err error) {
	if s == nil || s.books == nil {
		err = fmt.Errorf("book repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateBook",
		"user_id", params.Principal.UserID,
		"book_id", params.BookID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update book", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "book updated")
	}()

	existing, err := s.requireOwned(ctx, params.Principal, params.BookID)
	if err != nil {
		return
	}
	if vErr := validateBookInput(params.Input); vErr.HasErrors() {
		err = vErr
		return
	}

	record := bookFromInput(params.Input)
	record.ID = existing.ID
	record.UserID = existing.UserID
	record.DateAdded = existing.DateAdded

	if err = s.books.UpdateBook(ctx, record); err != nil {
		return
	}
	return s.books.GetBook(ctx, record.ID)
}

// DeleteBook removes an entry after an ownership check.
func (s *BookService) DeleteBook(ctx context.Context, principal Principal, bookID string) error {
	if s == nil || s.books == nil {
		return fmt.Errorf("book repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteBook", "user_id", principal.UserID, "book_id", bookID)

	if _, err := s.requireOwned(ctx, principal, bookID); err != nil {
		logger.ErrorContext(ctx, "failed to delete book", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	if err := s.books.DeleteBook(ctx, bookID); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = ErrNotFound
		}
		logger.ErrorContext(ctx, "failed to delete book", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "book deleted")
	return nil
}

func (s *BookService) requireOwned(ctx context.Context, principal Principal, bookID string) (persistence.Book, error) {
	if principal.UserID == "" {
		return persistence.Book{}, ErrUnauthorized
	}
	if strings.TrimSpace(bookID) == "" {
		return persistence.Book{}, ErrNotFound
	}

	book, err := s.books.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Book{}, ErrNotFound
		}
		return persistence.Book{}, err
	}
	if book.UserID != principal.UserID {
		return persistence.Book{}, ErrForbidden
	}
	return book, nil
}

func bookFromInput(input BookInput) persistence.Book {
	quotes := input.Quotes
	if quotes == nil {
		quotes = []string{}
	}
	return persistence.Book{
		Title:      strings.TrimSpace(input.Title),
		Author:     strings.TrimSpace(input.Author),
		Genre:      strings.TrimSpace(input.Genre),
		Status:     persistence.BookStatus(input.Status),
		StartDate:  input.StartDate,
		FinishDate: input.FinishDate,
		Rating:     input.Rating,
		Notes:      input.Notes,
		CoverURL:   input.CoverURL,
		Quotes:     quotes,
	}
}

func validateBookInput(input BookInput) *ValidationError {
	vErr := &ValidationError{}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		vErr.add("title", "title is required")
	} else if len(title) > maxTitleLength {
		vErr.add("title", fmt.Sprintf("title cannot exceed %d characters", maxTitleLength))
	}

	author := strings.TrimSpace(input.Author)
	if author == "" {
		vErr.add("author", "author is required")
	} else if len(author) > maxAuthorLength {
		vErr.add("author", fmt.Sprintf("author cannot exceed %d characters", maxAuthorLength))
	}

	if strings.TrimSpace(input.Genre) == "" {
		vErr.add("genre", "genre is required")
	}

	if !persistence.BookStatus(input.Status).Valid() {
		vErr.add("status", "status must be one of: To Read, In Progress, Completed, Did Not Finish")
	}

	if input.Rating != nil && (*input.Rating < 0 || *input.Rating > 5) {
		vErr.add("rating", "rating must be between 0 and 5")
	}
	if input.Notes != nil && len(*input.Notes) > maxNotesLength {
		vErr.add("notes", fmt.Sprintf("notes cannot exceed %d characters", maxNotesLength))
	}

	vErr.merge(validateOptionalDate("startDate", input.StartDate))
	vErr.merge(validateOptionalDate("finishDate", input.FinishDate))

	if input.CoverURL != nil && strings.TrimSpace(*input.CoverURL) != "" {
		if _, err := url.ParseRequestURI(*input.CoverURL); err != nil {
			vErr.add("coverUrl", "cover URL must be a valid URL")
		}
	}

	return vErr
}

func validateOptionalDate(field string, value *string) *ValidationError {
	vErr := &ValidationError{}
	if value == nil || strings.TrimSpace(*value) == "" {
		return vErr
	}
	if _, err := time.Parse(ledger.DateLayout, *value); err != nil {
		vErr.add(field, "date must be formatted YYYY-MM-DD")
	}
	return vErr
}
