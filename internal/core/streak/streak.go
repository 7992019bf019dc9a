// Package streak walks a habit's daily completion record. All functions are
// pure over a day-record map; missing days and missing completion flags both
// read as "not completed", never as an error.
package streak

import (
	"time"

	"github.com/ritmo-app/ritmo-sync-engine/internal/core/dateutil"
	"github.com/ritmo-app/ritmo-sync-engine/internal/core/domain"
)

// Run is one unbroken sequence of completed days.
type Run struct {
	Count int    `json:"count"`
	Start string `json:"start_date"`
	End   string `json:"end_date"`
}

func completedOn(habitID string, days map[string]*domain.DayRecord, day time.Time) bool {
	return days[dateutil.FormatDay(day)].Completed(habitID)
}

// Current counts consecutive completed days walking backward from today.
// The walk stops, without counting, at the first day lacking a true flag, so
// an incomplete today always yields 0 regardless of prior history.
func Current(habitID string, days map[string]*domain.DayRecord, today time.Time) int {
	count := 0
	for cur := dateutil.Midnight(today); completedOn(habitID, days, cur); cur = dateutil.AddDays(cur, -1) {
		count++
	}
	return count
}

// All scans forward from the habit's creation day through today inclusive and
// returns every closed run plus the potentially-open trailing run, in
// chronological order.
func All(habitID string, days map[string]*domain.DayRecord, createdAt, today time.Time) []Run {
	start := dateutil.Midnight(createdAt)
	end := dateutil.Midnight(today)

	var runs []Run
	var open *Run

	for cur := start; !cur.After(end); cur = dateutil.AddDays(cur, 1) {
		if completedOn(habitID, days, cur) {
			key := dateutil.FormatDay(cur)
			if open == nil {
				open = &Run{Count: 1, Start: key, End: key}
			} else {
				open.Count++
				open.End = key
			}
			continue
		}
		if open != nil {
			runs = append(runs, *open)
			open = nil
		}
	}
	if open != nil {
		runs = append(runs, *open)
	}
	return runs
}

// Longest returns the maximum run between the habit's creation day and today.
// Ties break toward the first-occurring run; a trailing run still in progress
// counts. The zero Run means no completed day exists in the span.
func Longest(habitID string, days map[string]*domain.DayRecord, createdAt, today time.Time) Run {
	var best Run
	for _, r := range All(habitID, days, createdAt, today) {
		if r.Count > best.Count {
			best = r
		}
	}
	return best
}
