// Package dateutil holds the calendar arithmetic shared by the pure cores.
// All comparisons operate on UTC midnights; the storage boundary exchanges
// dates as YYYY-MM-DD strings.
package dateutil

import (
	"errors"
	"time"
)

const DayFormat = "2006-01-02"

var ErrInvalidDay = errors.New("invalid day format (expected YYYY-MM-DD)")

// Midnight truncates t to its UTC calendar day.
func Midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD key into a UTC midnight.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DayFormat, s)
	if err != nil {
		return time.Time{}, ErrInvalidDay
	}
	return t, nil
}

// FormatDay renders t's UTC calendar day as a YYYY-MM-DD key.
func FormatDay(t time.Time) string {
	return Midnight(t).Format(DayFormat)
}

// AddDays returns the midnight n calendar days after t.
func AddDays(t time.Time, n int) time.Time {
	return Midnight(t).AddDate(0, 0, n)
}

// DaysBetween returns the number of whole days from a to b (negative when b
// precedes a). Both are normalized to midnight first, so the result is exact
// day arithmetic regardless of the time-of-day carried in.
func DaysBetween(a, b time.Time) int {
	return int(Midnight(b).Sub(Midnight(a)).Hours() / 24)
}

// WeekStart returns the midnight of the Sunday beginning t's week.
func WeekStart(t time.Time) time.Time {
	m := Midnight(t)
	return m.AddDate(0, 0, -int(m.Weekday()))
}

// WeeksBetween returns the number of whole weeks between the weeks containing
// a and b.
func WeeksBetween(a, b time.Time) int {
	return DaysBetween(WeekStart(a), WeekStart(b)) / 7
}

// MonthsBetween returns the number of calendar-month boundaries crossed from
// a to b, ignoring the day component.
func MonthsBetween(a, b time.Time) int {
	a, b = Midnight(a), Midnight(b)
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

// DaysInMonth returns the length of the month containing t.
func DaysInMonth(t time.Time) int {
	m := Midnight(t)
	first := time.Date(m.Year(), m.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 1, -1).Day()
}

// SameDay reports whether a and b fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	return Midnight(a).Equal(Midnight(b))
}
