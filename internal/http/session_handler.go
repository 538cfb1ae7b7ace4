package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/example/reading-nook/internal/application"
	"github.com/example/reading-nook/internal/persistence"
)

type readingService interface {
	ListSessions(ctx context.Context, principal application.Principal) ([]persistence.ReadingSession, error)
	LogReading(ctx context.Context, params application.LogReadingParams) (application.LogReadingResult, error)
	SetReading(ctx context.Context, params application.SetReadingParams) (application.SetReadingResult, error)
}

// SessionHandler serves the reading-time ledger endpoints. POST adds minutes
// to the day, PUT sets the day total outright (zero removes it).
type SessionHandler struct {
	service   readingService
	responder responder
	logger    *slog.Logger
}

func NewSessionHandler(service readingService, logger *slog.Logger) *SessionHandler {
	base := defaultLogger(logger)
	return &SessionHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *SessionHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "SessionHandler", operation, attrs...)
}

// List returns the ledger, most recent date first.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	sessions, err := h.service.ListSessions(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	payload := make([]sessionDTO, 0, len(sessions))
	for _, session := range sessions {
		payload = append(payload, newSessionDTO(session))
	}
	h.responder.writeData(r.Context(), w, http.StatusOK, payload, "")
}

// Log handles the additive submission: 201 for a new day, 200 when the
// submission merged into an existing one.
func (h *SessionHandler) Log(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Log", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode session request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	result, err := h.service.LogReading(r.Context(), application.LogReadingParams{
		Principal: principal,
		Date:      req.Date,
		Minutes:   req.Minutes,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	status := http.StatusCreated
	message := "Reading session created successfully"
	if result.Merged {
		status = http.StatusOK
		message = "Reading session updated successfully"
	}

	h.log(r.Context(), "Log").With("date", req.Date, "merged", result.Merged).InfoContext(r.Context(), "reading time logged")
	h.responder.writeData(r.Context(), w, status, newSessionDTO(result.Session), message)
}

// Set handles the absolute submission.
func (h *SessionHandler) Set(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Set", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode session request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	result, err := h.service.SetReading(r.Context(), application.SetReadingParams{
		Principal: principal,
		Date:      req.Date,
		Minutes:   req.Minutes,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "Set").With("date", req.Date, "deleted", result.Deleted).InfoContext(r.Context(), "reading time set")

	if result.Deleted || result.Session.ID == "" {
		h.responder.writeData(r.Context(), w, http.StatusOK, nil, "Reading session removed")
		return
	}
	h.responder.writeData(r.Context(), w, http.StatusOK, newSessionDTO(result.Session), "Reading session updated successfully")
}

type sessionRequest struct {
	Date    string `json:"date"`
	Minutes int    `json:"minutes"`
}

type sessionDTO struct {
	ID      string `json:"id"`
	Date    string `json:"date"`
	Minutes int    `json:"minutes"`
}

func newSessionDTO(session persistence.ReadingSession) sessionDTO {
	return sessionDTO{
		ID:      session.ID,
		Date:    session.Date,
		Minutes: session.Minutes,
	}
}
