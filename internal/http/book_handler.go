package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/reading-nook/internal/application"
	"github.com/example/reading-nook/internal/persistence"
)

type bookService interface {
	ListBooks(ctx context.Context, principal application.Principal) ([]persistence.Book, error)
	CreateBook(ctx context.Context, params application.CreateBookParams) (persistence.Book, error)
	UpdateBook(ctx context.Context, params application.UpdateBookParams) (persistence.Book, error)
	DeleteBook(ctx context.Context, principal application.Principal, bookID string) error
}

// BookHandler serves the shelf CRUD endpoints.
type BookHandler struct {
	service   bookService
	responder responder
	logger    *slog.Logger
}

func NewBookHandler(service bookService, logger *slog.Logger) *BookHandler {
	base := defaultLogger(logger)
	return &BookHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *BookHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "BookHandler", operation, attrs...)
}

// List returns the principal's books, most recently added first.
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	books, err := h.service.ListBooks(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	payload := make([]bookDTO, 0, len(books))
	for _, book := range books {
		payload = append(payload, newBookDTO(book))
	}
	h.responder.writeData(r.Context(), w, http.StatusOK, payload, "")
}

// Create validates and stores a new book.
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode book request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	book, err := h.service.CreateBook(r.Context(), application.CreateBookParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "Create").With("book_id", book.ID).InfoContext(r.Context(), "book created")
	h.responder.writeData(r.Context(), w, http.StatusCreated, newBookDTO(book), "Book added successfully")
}

// Update validates and stores changes to an owned book.
func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}
	bookID, ok := BookIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusNotFound, nil)
		return
	}

	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode book request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	book, err := h.service.UpdateBook(r.Context(), application.UpdateBookParams{
		Principal: principal,
		BookID:    bookID,
		Input:     req.toInput(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "Update").With("book_id", book.ID).InfoContext(r.Context(), "book updated")
	h.responder.writeData(r.Context(), w, http.StatusOK, newBookDTO(book), "Book updated successfully")
}

// Delete removes an owned book.
func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}
	bookID, ok := BookIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusNotFound, nil)
		return
	}

	if err := h.service.DeleteBook(r.Context(), principal, bookID); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "Delete").With("book_id", bookID).InfoContext(r.Context(), "book deleted")
	h.responder.writeData(r.Context(), w, http.StatusOK, nil, "Book deleted successfully")
}

type bookRequest struct {
	Title      string   `json:"title"`
	Author     string   `json:"author"`
	Genre      string   `json:"genre"`
	Status     string   `json:"status"`
	StartDate  *string  `json:"startDate"`
	FinishDate *string  `json:"finishDate"`
	Rating     *int     `json:"rating"`
	Notes      *string  `json:"notes"`
	CoverURL   *string  `json:"coverUrl"`
	Quotes     []string `json:"quotes"`
}

func (r bookRequest) toInput() application.BookInput {
	return application.BookInput{
		Title:      r.Title,
		Author:     r.Author,
		Genre:      r.Genre,
		Status:     r.Status,
		StartDate:  r.StartDate,
		FinishDate: r.FinishDate,
		Rating:     r.Rating,
		Notes:      r.Notes,
		CoverURL:   r.CoverURL,
		Quotes:     r.Quotes,
	}
}

type bookDTO struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Author     string   `json:"author"`
	Genre      string   `json:"genre"`
	Status     string   `json:"status"`
	StartDate  *string  `json:"startDate,omitempty"`
	FinishDate *string  `json:"finishDate,omitempty"`
	Rating     *int     `json:"rating,omitempty"`
	Notes      *string  `json:"notes,omitempty"`
	DateAdded  string   `json:"dateAdded"`
	CoverURL   *string  `json:"coverUrl,omitempty"`
	Quotes     []string `json:"quotes"`
}

func newBookDTO(book persistence.Book) bookDTO {
	quotes := book.Quotes
	if quotes == nil {
		quotes = []string{}
	}
	return bookDTO{
		ID:         book.ID,
		Title:      book.Title,
		Author:     book.Author,
		Genre:      book.Genre,
		Status:     string(book.Status),
		StartDate:  book.StartDate,
		FinishDate: book.FinishDate,
		Rating:     book.Rating,
		Notes:      book.Notes,
		DateAdded:  book.DateAdded.UTC().Format(time.RFC3339Nano),
		CoverURL:   book.CoverURL,
		Quotes:     quotes,
	}
}
