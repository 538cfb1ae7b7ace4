package ledger

import (
	"math"
	"sort"
	"time"
)

// DateLayout is the calendar-day format used throughout the reading ledger.
const DateLayout = "2006-01-02"

// Session represents one logged reading day in the ledger domain.
type Session struct {
	Date    string // YYYY-MM-DD
	Minutes int
}

// Intensity describes the discretized heat level for a logged day.
type Intensity int

const (
	// IntensityNone indicates no session or fewer than 15 minutes.
	IntensityNone Intensity = iota
	// IntensityLight covers 15 to 29 minutes.
	IntensityLight
	// IntensityModerate covers 30 to 59 minutes.
	IntensityModerate
	// IntensityFocused covers 60 to 119 minutes.
	IntensityFocused
	// IntensityDeep covers 120 minutes and above.
	IntensityDeep
)

// IntensityFor maps minutes read to a heat level. Buckets are half-open;
// boundary values belong to the higher bucket.
func IntensityFor(minutes int) Intensity {
	switch {
	case minutes >= 120:
		return IntensityDeep
	case minutes >= 60:
		return IntensityFocused
	case minutes >= 30:
		return IntensityModerate
	case minutes >= 15:
		return IntensityLight
	default:
		return IntensityNone
	}
}

// Stats aggregates a user's full session list into dashboard figures.
type Stats struct {
	TotalMinutes  int
	TotalHours    int
	ActiveDays    int
	DailyAverage  int
	CurrentStreak int
	LongestStreak int
}

// HeatmapCell describes a single day within the trailing activity grid.
type HeatmapCell struct {
	Date    string
	Minutes int
	Level   Intensity
}

// Aggregate recomputes totals and streaks from the full session list. It is
// pure and idempotent: the same input always yields the same output, and it
// never fails. Negative minutes are clamped to zero and unparseable dates are
// ignored for streak purposes so that statistics rendering stays resilient.
func Aggregate(sessions []Session, today time.Time) Stats {
	stats := Stats{ActiveDays: len(sessions)}

	for _, session := range sessions {
		stats.TotalMinutes += clampMinutes(session.Minutes)
	}
	stats.TotalHours = stats.TotalMinutes / 60

	if stats.ActiveDays > 0 {
		stats.DailyAverage = int(math.Round(float64(stats.TotalMinutes) / float64(stats.ActiveDays)))
	}

	stats.CurrentStreak, stats.LongestStreak = streaks(sessions, today)
	return stats
}

// Heatmap renders the trailing days ending at today, oldest first. Days
// without a session carry IntensityNone.
func Heatmap(sessions []Session, today time.Time, days int) []HeatmapCell {
	if days <= 0 {
		days = 365
	}

	minutesByDate := make(map[string]int, len(sessions))
	for _, session := range sessions {
		minutesByDate[session.Date] = clampMinutes(session.Minutes)
	}

	anchor := truncateToDay(today)
	cells := make([]HeatmapCell, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := anchor.AddDate(0, 0, -i).Format(DateLayout)
		minutes := minutesByDate[date]
		cells = append(cells, HeatmapCell{
			Date:    date,
			Minutes: minutes,
			Level:   IntensityFor(minutes),
		})
	}
	return cells
}

// streaks walks the session dates from most recent backwards. A run extends
// while consecutive dates are exactly one day apart. The current streak is
// anchored at today: it is zero unless the most recent session falls on today
// or yesterday.
func streaks(sessions []Session, today time.Time) (current, longest int) {
	days := sessionDays(sessions)
	if len(days) == 0 {
		return 0, 0
	}

	run := 1
	longest = 1
	for i := 1; i < len(days); i++ {
		if days[i-1]-days[i] == 1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	anchor := dayNumber(truncateToDay(today))
	if gap := anchor - days[0]; gap == 0 || gap == 1 {
		current = 1
		for i := 1; i < len(days); i++ {
			if days[i-1]-days[i] != 1 {
				break
			}
			current++
		}
	}
	return current, longest
}

// sessionDays returns the distinct session dates as day numbers, most recent
// first. Dates that do not parse are dropped.
func sessionDays(sessions []Session) []int {
	seen := make(map[int]struct{}, len(sessions))
	days := make([]int, 0, len(sessions))
	for _, session := range sessions {
		parsed, err := time.Parse(DateLayout, session.Date)
		if err != nil {
			continue
		}
		day := dayNumber(parsed)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(days)))
	return days
}

func clampMinutes(minutes int) int {
	if minutes < 0 {
		return 0
	}
	return minutes
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dayNumber(t time.Time) int {
	return int(t.Unix() / 86400)
}
