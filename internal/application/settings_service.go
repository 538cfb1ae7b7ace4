package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/reading-nook/internal/persistence"
)

const (
	defaultYearlyGoal = 24
	maxYearlyGoal     = 1000
)

// SettingsService manages the one-per-user settings record. Reads create the
// record with defaults on first touch; writes merge only the submitted
// fields.
type SettingsService struct {
	settings    persistence.SettingsRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewSettingsService constructs a SettingsService with the provided dependencies.
func NewSettingsService(settings persistence.SettingsRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *SettingsService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &SettingsService{
		settings:    settings,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *SettingsService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SettingsService", operation, attrs...)
}

// GetSettings returns the user's settings, creating the default record when
// none exists yet.
func (s *SettingsService) GetSettings(ctx context.Context, principal Principal) (settings persistence.UserSettings, err error) {
	if s == nil || s.settings == nil {
		err = fmt.Errorf("settings repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "GetSettings", "user_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to load settings", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if principal.UserID == "" {
		err = ErrUnauthorized
		return
	}

	settings, err = s.settings.GetSettings(ctx, principal.UserID)
	if err == nil {
		return
	}
	if !errors.Is(err, persistence.ErrNotFound) {
		return
	}

	settings, err = s.settings.SaveSettings(ctx, s.defaultSettings(principal.UserID))
	if err == nil {
		logger.InfoContext(ctx, "default settings created")
	}
	return
}

// UpdateSettings applies a partial update: nil input fields keep their stored
// values, preference fields merge key-wise.
func (s *SettingsService) UpdateSettings(ctx context.Context, params UpdateSettingsParams) (settings persistence.UserSettings, err error) {
	if s == nil || s.settings == nil {
		err = fmt.Errorf("settings repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateSettings", "user_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update settings", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("yearly_goal", settings.YearlyGoal).InfoContext(ctx, "settings updated")
	}()

	if params.Principal.UserID == "" {
		err = ErrUnauthorized
		return
	}
	if vErr := validateSettingsInput(params.Input); vErr.HasErrors() {
		err = vErr
		return
	}

	current, err := s.settings.GetSettings(ctx, params.Principal.UserID)
	if err != nil {
		if !errors.Is(err, persistence.ErrNotFound) {
			return
		}
		current = s.defaultSettings(params.Principal.UserID)
	}

	if params.Input.YearlyGoal != nil {
		current.YearlyGoal = *params.Input.YearlyGoal
	}
	if params.Input.Theme != nil {
		current.Preferences.Theme = params.Input.Theme
	}
	if params.Input.DefaultView != nil {
		current.Preferences.DefaultView = params.Input.DefaultView
	}
	if params.Input.Notifications != nil {
		current.Preferences.Notifications = params.Input.Notifications
	}

	return s.settings.SaveSettings(ctx, current)
}

func (s *SettingsService) defaultSettings(userID string) persistence.UserSettings {
	notifications := true
	return persistence.UserSettings{
		ID:         s.idGenerator(),
		UserID:     userID,
		YearlyGoal: defaultYearlyGoal,
		Preferences: persistence.Preferences{
			Notifications: &notifications,
		},
	}
}

func validateSettingsInput(input SettingsInput) *ValidationError {
	vErr := &ValidationError{}
	if input.YearlyGoal != nil && (*input.YearlyGoal < 1 || *input.YearlyGoal > maxYearlyGoal) {
		vErr.add("yearlyGoal", fmt.Sprintf("yearly goal must be between 1 and %d", maxYearlyGoal))
	}
	return vErr
}
