// Package status classifies a day's habit completions into a tri-state. The
// classification is always re-derived from day records plus current habit
// archival state and is never persisted.
package status

import (
	"time"

	"github.com/ritmo-app/ritmo-sync-engine/internal/core/dateutil"
	"github.com/ritmo-app/ritmo-sync-engine/internal/core/domain"
)

type DayStatus string

const (
	// Undated means no statement can be made: the date is in the future or
	// there are no active habits to aggregate.
	Undated  DayStatus = "undated"
	None     DayStatus = "none"
	Partial  DayStatus = "partial"
	Complete DayStatus = "complete"
)

// ForDay aggregates a day's completions across the active (non-archived,
// non-deleted) habit set. The record may be nil for days never written.
func ForDay(date time.Time, habits []*domain.Habit, record *domain.DayRecord, today time.Time) DayStatus {
	if dateutil.Midnight(date).After(dateutil.Midnight(today)) {
		return Undated
	}

	active := 0
	completed := 0
	for _, h := range habits {
		if h.ArchivedAt != nil || h.DeletedAt != nil {
			continue
		}
		active++
		if record.Completed(h.ID) {
			completed++
		}
	}

	switch {
	case active == 0:
		return Undated
	case completed == 0:
		return None
	case completed == active:
		return Complete
	default:
		return Partial
	}
}

// ForRange classifies every day from from to to inclusive, keyed by date.
func ForRange(from, to time.Time, habits []*domain.Habit, days map[string]*domain.DayRecord, today time.Time) map[string]DayStatus {
	out := make(map[string]DayStatus)
	for cur := dateutil.Midnight(from); !cur.After(dateutil.Midnight(to)); cur = dateutil.AddDays(cur, 1) {
		out[dateutil.FormatDay(cur)] = ForDay(cur, habits, days[dateutil.FormatDay(cur)], today)
	}
	return out
}
