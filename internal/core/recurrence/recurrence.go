// Package recurrence decides whether a calendar event occurs on a given
// date. It is a pure function layer over event snapshots: malformed rules,
// dates before the anchor, and impossible month patterns (a fifth Monday in a
// four-Monday month) all resolve to "does not occur", never to an error.
package recurrence

import (
	"time"

	"github.com/ritmo-app/ritmo-sync-engine/internal/core/dateutil"
	"github.com/ritmo-app/ritmo-sync-engine/internal/core/domain"
)

// OccursOn reports whether the event is active on the given calendar day.
// The candidate is normalized to midnight before any comparison.
func OccursOn(e *domain.Event, candidate time.Time) bool {
	if e == nil {
		return false
	}

	anchor, err := dateutil.ParseDay(e.Date)
	if err != nil {
		return false
	}
	day := dateutil.Midnight(candidate)

	// Events never occur before their anchor.
	if day.Before(anchor) {
		return false
	}

	rec := e.Recurrence
	if rec == nil {
		return day.Equal(anchor)
	}
	if rec.Validate() != nil {
		return false
	}

	if rec.EndDate != nil {
		end, err := dateutil.ParseDay(*rec.EndDate)
		if err != nil {
			return false
		}
		if day.After(end) {
			return false
		}
	}

	switch rec.Type {
	case domain.RecurrenceDaily, domain.RecurrenceCustom:
		return occursDaily(rec, anchor, day)
	case domain.RecurrenceWeekly:
		return occursWeekly(rec, anchor, day)
	case domain.RecurrenceMonthly:
		return occursMonthly(rec, anchor, day)
	case domain.RecurrenceYearly:
		return occursYearly(rec, anchor, day)
	default:
		return false
	}
}

func occursDaily(rec *domain.Recurrence, anchor, day time.Time) bool {
	d := dateutil.DaysBetween(anchor, day)
	if d%rec.Interval != 0 {
		return false
	}
	if rec.Occurrences > 0 && d/rec.Interval >= rec.Occurrences {
		return false
	}
	return true
}

func occursWeekly(rec *domain.Recurrence, anchor, day time.Time) bool {
	if !weekdayInSet(day, rec.DaysOfWeek) {
		return false
	}
	if dateutil.WeeksBetween(anchor, day)%rec.Interval != 0 {
		return false
	}
	if rec.Occurrences > 0 {
		// Several weekdays can occur inside one in-scope week, so the
		// occurrence index cannot be derived in closed form: count the
		// qualifying days from the anchor up to the candidate.
		count := 0
		for cur := anchor; !cur.After(day); cur = dateutil.AddDays(cur, 1) {
			if weekdayInSet(cur, rec.DaysOfWeek) && dateutil.WeeksBetween(anchor, cur)%rec.Interval == 0 {
				count++
			}
		}
		if count > rec.Occurrences {
			return false
		}
	}
	return true
}

func occursMonthly(rec *domain.Recurrence, anchor, day time.Time) bool {
	m := dateutil.MonthsBetween(anchor, day)
	if m%rec.Interval != 0 {
		return false
	}

	if rec.DayOfMonth > 0 {
		if day.Day() != rec.DayOfMonth {
			return false
		}
	} else {
		target := nthWeekdayOfMonth(day, time.Weekday(*rec.WeekdayOfMonth), rec.WeekOfMonth)
		if target == 0 || day.Day() != target {
			return false
		}
	}

	if rec.Occurrences > 0 && m/rec.Interval >= rec.Occurrences {
		return false
	}
	return true
}

func occursYearly(rec *domain.Recurrence, anchor, day time.Time) bool {
	y := day.Year() - anchor.Year()
	if y%rec.Interval != 0 {
		return false
	}
	if day.Month() != anchor.Month() || day.Day() != anchor.Day() {
		return false
	}
	if rec.Occurrences > 0 && y/rec.Interval >= rec.Occurrences {
		return false
	}
	return true
}

func weekdayInSet(day time.Time, set []int) bool {
	wd := int(day.Weekday())
	for _, d := range set {
		if d == wd {
			return true
		}
	}
	return false
}

// nthWeekdayOfMonth resolves the day-of-month of the week-th occurrence of
// weekday in the month containing t; week == domain.LastWeekOfMonth walks
// backward from month end. Returns 0 when the nominal occurrence falls
// outside the month.
func nthWeekdayOfMonth(t time.Time, weekday time.Weekday, week int) int {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := dateutil.DaysInMonth(t)

	if week == domain.LastWeekOfMonth {
		for d := last; d >= 1; d-- {
			if first.AddDate(0, 0, d-1).Weekday() == weekday {
				return d
			}
		}
		return 0
	}

	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	day := 1 + offset + (week-1)*7
	if day > last {
		return 0
	}
	return day
}

// OccurrencesInRange expands the event's concrete dates with
// from <= date <= to, in chronological order. One-off events contribute at
// most their anchor date.
func OccurrencesInRange(e *domain.Event, from, to time.Time) []time.Time {
	from = dateutil.Midnight(from)
	to = dateutil.Midnight(to)

	var dates []time.Time
	for cur := from; !cur.After(to); cur = dateutil.AddDays(cur, 1) {
		if OccursOn(e, cur) {
			dates = append(dates, cur)
		}
	}
	return dates
}
