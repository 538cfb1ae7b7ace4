package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/reading-nook/internal/persistence"
)

// SettingsRepository implements persistence.SettingsRepository on SQLite.
type SettingsRepository struct {
	db *DB
}

// NewSettingsRepository creates a SQLite-backed settings repository.
func NewSettingsRepository(db *DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

const settingsColumns = "id, user_id, yearly_goal, theme, default_view, notifications, created_at, updated_at"

// GetSettings retrieves the settings record for a user.
func (r *SettingsRepository) GetSettings(ctx context.Context, userID string) (persistence.UserSettings, error) {
	query := fmt.Sprintf("SELECT %s FROM user_settings WHERE user_id = ?", settingsColumns)
	return r.scanOne(r.db.db.QueryRowContext(ctx, query, userID))
}

// SaveSettings inserts or replaces the one-per-user settings record. The
// upsert is a single statement against the UNIQUE user_id index, so a first
// GET and a concurrent PUT cannot create two records.
func (r *SettingsRepository) SaveSettings(ctx context.Context, settings persistence.UserSettings) (persistence.UserSettings, error) {
	if settings.ID == "" || settings.UserID == "" {
		return persistence.UserSettings{}, persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	err := withBusyRetry(ctx, func() error {
		_, execErr := r.db.db.ExecContext(ctx, `
			INSERT INTO user_settings (id, user_id, yearly_goal, theme, default_view, notifications, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (user_id) DO UPDATE SET
				yearly_goal = excluded.yearly_goal,
				theme = excluded.theme,
				default_view = excluded.default_view,
				notifications = excluded.notifications,
				updated_at = excluded.updated_at
		`,
			settings.ID,
			settings.UserID,
			settings.YearlyGoal,
			nullString(settings.Preferences.Theme),
			nullString(settings.Preferences.DefaultView),
			nullBool(settings.Preferences.Notifications),
			formatTime(now),
			formatTime(now),
		)
		return execErr
	})
	if err != nil {
		return persistence.UserSettings{}, mapError(err)
	}
	return r.GetSettings(ctx, settings.UserID)
}

func (r *SettingsRepository) scanOne(row rowScanner) (persistence.UserSettings, error) {
	var settings persistence.UserSettings
	var createdAt, updatedAt string
	var theme, defaultView sql.NullString
	var notifications sql.NullBool

	if err := row.Scan(
		&settings.ID,
		&settings.UserID,
		&settings.YearlyGoal,
		&theme,
		&defaultView,
		&notifications,
		&createdAt,
		&updatedAt,
	); err != nil {
		return persistence.UserSettings{}, mapError(err)
	}

	settings.Preferences = persistence.Preferences{
		Theme:         stringPtr(theme),
		DefaultView:   stringPtr(defaultView),
		Notifications: boolPtr(notifications),
	}

	var err error
	if settings.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.UserSettings{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if settings.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.UserSettings{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return settings, nil
}
