package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/example/reading-nook/internal/application"
	"github.com/example/reading-nook/internal/persistence"
)

type settingsService interface {
	GetSettings(ctx context.Context, principal application.Principal) (persistence.UserSettings, error)
	UpdateSettings(ctx context.Context, params application.UpdateSettingsParams) (persistence.UserSettings, error)
}

// SettingsHandler serves the user settings endpoints.
type SettingsHandler struct {
	service   settingsService
	responder responder
	logger    *slog.Logger
}

func NewSettingsHandler(service settingsService, logger *slog.Logger) *SettingsHandler {
	base := defaultLogger(logger)
	return &SettingsHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *SettingsHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "SettingsHandler", operation, attrs...)
}

// Get returns the settings, creating defaults on first read.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	settings, err := h.service.GetSettings(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeData(r.Context(), w, http.StatusOK, newSettingsDTO(settings), "")
}

// Update applies a partial settings update.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode settings request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input := application.SettingsInput{YearlyGoal: req.YearlyGoal}
	if req.Preferences != nil {
		input.Theme = req.Preferences.Theme
		input.DefaultView = req.Preferences.DefaultView
		input.Notifications = req.Preferences.Notifications
	}

	settings, err := h.service.UpdateSettings(r.Context(), application.UpdateSettingsParams{
		Principal: principal,
		Input:     input,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.log(r.Context(), "Update").With("yearly_goal", settings.YearlyGoal).InfoContext(r.Context(), "settings updated")
	h.responder.writeData(r.Context(), w, http.StatusOK, newSettingsDTO(settings), "Settings updated successfully")
}

type settingsRequest struct {
	YearlyGoal  *int                `json:"yearlyGoal"`
	Preferences *preferencesRequest `json:"preferences"`
}

type preferencesRequest struct {
	Theme         *string `json:"theme"`
	DefaultView   *string `json:"defaultView"`
	Notifications *bool   `json:"notifications"`
}

type settingsDTO struct {
	YearlyGoal  int            `json:"yearlyGoal"`
	Preferences preferencesDTO `json:"preferences"`
}

type preferencesDTO struct {
	Theme         *string `json:"theme,omitempty"`
	DefaultView   *string `json:"defaultView,omitempty"`
	Notifications *bool   `json:"notifications,omitempty"`
}

func newSettingsDTO(settings persistence.UserSettings) settingsDTO {
	return settingsDTO{
		YearlyGoal: settings.YearlyGoal,
		Preferences: preferencesDTO{
			Theme:         settings.Preferences.Theme,
			DefaultView:   settings.Preferences.DefaultView,
			Notifications: settings.Preferences.Notifications,
		},
	}
}
