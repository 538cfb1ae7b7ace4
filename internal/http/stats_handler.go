package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/reading-nook/internal/application"
	"github.com/example/reading-nook/internal/ledger"
)

type statsService interface {
	GetStats(ctx context.Context, principal application.Principal) (application.DashboardStats, error)
}

// StatsHandler serves the dashboard statistics endpoint.
type StatsHandler struct {
	service   statsService
	responder responder
	logger    *slog.Logger
}

func NewStatsHandler(service statsService, logger *slog.Logger) *StatsHandler {
	base := defaultLogger(logger)
	return &StatsHandler{service: service, responder: newResponder(base), logger: base}
}

// Get computes and returns the full dashboard payload.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	stats, err := h.service.GetStats(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeData(r.Context(), w, http.StatusOK, newStatsDTO(stats), "")
}

type statsDTO struct {
	TotalMinutes  int              `json:"totalMinutes"`
	TotalHours    int              `json:"totalHours"`
	ActiveDays    int              `json:"activeDays"`
	DailyAverage  int              `json:"dailyAverage"`
	CurrentStreak int              `json:"currentStreak"`
	LongestStreak int              `json:"longestStreak"`
	Heatmap       []heatmapCellDTO `json:"heatmap"`
	Goal          goalDTO          `json:"goal"`
	Genres        map[string]int   `json:"genres"`
	BookStreak    bookStreakDTO    `json:"bookStreak"`
	QuoteOfTheDay string           `json:"quoteOfTheDay,omitempty"`
}

type heatmapCellDTO struct {
	Date    string `json:"date"`
	Minutes int    `json:"minutes"`
	Level   int    `json:"level"`
}

type goalDTO struct {
	Year      int `json:"year"`
	Goal      int `json:"goal"`
	Completed int `json:"completed"`
}

type bookStreakDTO struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

func newStatsDTO(stats application.DashboardStats) statsDTO {
	return statsDTO{
		TotalMinutes:  stats.Reading.TotalMinutes,
		TotalHours:    stats.Reading.TotalHours,
		ActiveDays:    stats.Reading.ActiveDays,
		DailyAverage:  stats.Reading.DailyAverage,
		CurrentStreak: stats.Reading.CurrentStreak,
		LongestStreak: stats.Reading.LongestStreak,
		Heatmap:       newHeatmapDTO(stats.Heatmap),
		Goal:          goalDTO{Year: stats.Goal.Year, Goal: stats.Goal.Goal, Completed: stats.Goal.Completed},
		Genres:        stats.Genres,
		BookStreak:    bookStreakDTO{Current: stats.BookStreak.Current, Longest: stats.BookStreak.Longest},
		QuoteOfTheDay: stats.QuoteOfTheDay,
	}
}

func newHeatmapDTO(cells []ledger.HeatmapCell) []heatmapCellDTO {
	payload := make([]heatmapCellDTO, 0, len(cells))
	for _, cell := range cells {
		payload = append(payload, heatmapCellDTO{
			Date:    cell.Date,
			Minutes: cell.Minutes,
			Level:   int(cell.Level),
		})
	}
	return payload
}
