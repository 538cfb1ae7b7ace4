package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/example/reading-nook/internal/application"
)

type importService interface {
	Import(ctx context.Context, params application.ImportParams) (application.ImportResult, error)
}

// ImportHandler serves the bulk import endpoint.
type ImportHandler struct {
	service   importService
	responder responder
	logger    *slog.Logger
}

func NewImportHandler(service importService, logger *slog.Logger) *ImportHandler {
	base := defaultLogger(logger)
	return &ImportHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ImportHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ImportHandler", operation, attrs...)
}

// Import ingests a bulk payload, succeeding item by item.
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Import", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode import request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	books := make([]application.ImportBook, 0, len(req.Books))
	for _, book := range req.Books {
		books = append(books, application.ImportBook{Input: book.toInput()})
	}
	sessions := make([]application.ImportSession, 0, len(req.ReadingSessions))
	for _, session := range req.ReadingSessions {
		sessions = append(sessions, application.ImportSession{Date: session.Date, Minutes: session.Minutes})
	}

	result, err := h.service.Import(r.Context(), application.ImportParams{
		Principal: principal,
		Books:     books,
		Sessions:  sessions,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "Import").With(
		"books_created", result.BooksCreated,
		"sessions_created", result.SessionsCreated,
		"failed", len(result.Errors),
	).InfoContext(r.Context(), "import finished")

	h.responder.writeData(r.Context(), w, http.StatusOK, importResultDTO{
		BooksCreated:    result.BooksCreated,
		SessionsCreated: result.SessionsCreated,
		Errors:          result.Errors,
	}, "Import completed")
}

type importRequest struct {
	Books           []bookRequest    `json:"books"`
	ReadingSessions []sessionRequest `json:"readingSessions"`
}

type importResultDTO struct {
	BooksCreated    int      `json:"booksCreated"`
	SessionsCreated int      `json:"sessionsCreated"`
	Errors          []string `json:"errors"`
}
