package dateutil_test

import (
	"testing"
	"time"

	"github.com/ritmo-app/ritmo-sync-engine/internal/core/dateutil"
	"github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
	t, err := dateutil.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestParseAndFormatDay(t *testing.T) {
	d, err := dateutil.ParseDay("2024-02-29")
	assert.NoError(t, err)
	assert.Equal(t, "2024-02-29", dateutil.FormatDay(d))

	_, err = dateutil.ParseDay("29/02/2024")
	assert.ErrorIs(t, err, dateutil.ErrInvalidDay)

	_, err = dateutil.ParseDay("2024-02-30")
	assert.ErrorIs(t, err, dateutil.ErrInvalidDay)
}

func TestMidnightDropsTimeOfDay(t *testing.T) {
	noon := time.Date(2024, 3, 15, 12, 45, 9, 0, time.UTC)
	assert.Equal(t, day("2024-03-15"), dateutil.Midnight(noon))
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 0, dateutil.DaysBetween(day("2024-01-01"), day("2024-01-01")))
	assert.Equal(t, 31, dateutil.DaysBetween(day("2024-01-01"), day("2024-02-01")))
	assert.Equal(t, -1, dateutil.DaysBetween(day("2024-01-02"), day("2024-01-01")))
	// Leap day is plain arithmetic.
	assert.Equal(t, 366, dateutil.DaysBetween(day("2024-01-01"), day("2025-01-01")))
}

func TestWeekStartIsSunday(t *testing.T) {
	// 2024-03-15 is a Friday; its week starts Sunday 2024-03-10.
	assert.Equal(t, day("2024-03-10"), dateutil.WeekStart(day("2024-03-15")))
	// A Sunday is its own week start.
	assert.Equal(t, day("2024-03-10"), dateutil.WeekStart(day("2024-03-10")))
}

func TestWeeksBetween(t *testing.T) {
	assert.Equal(t, 0, dateutil.WeeksBetween(day("2024-03-10"), day("2024-03-16")))
	assert.Equal(t, 1, dateutil.WeeksBetween(day("2024-03-16"), day("2024-03-17")))
	assert.Equal(t, 4, dateutil.WeeksBetween(day("2024-03-01"), day("2024-03-29")))
}

func TestMonthsBetween(t *testing.T) {
	assert.Equal(t, 0, dateutil.MonthsBetween(day("2024-01-31"), day("2024-01-01")))
	assert.Equal(t, 1, dateutil.MonthsBetween(day("2024-01-31"), day("2024-02-01")))
	assert.Equal(t, 12, dateutil.MonthsBetween(day("2024-03-15"), day("2025-03-15")))
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 29, dateutil.DaysInMonth(day("2024-02-10")))
	assert.Equal(t, 28, dateutil.DaysInMonth(day("2023-02-10")))
	assert.Equal(t, 31, dateutil.DaysInMonth(day("2024-12-01")))
	assert.Equal(t, 30, dateutil.DaysInMonth(day("2024-04-30")))
}

func TestSameDay(t *testing.T) {
	assert.True(t, dateutil.SameDay(day("2024-01-01").Add(5*time.Hour), day("2024-01-01")))
	assert.False(t, dateutil.SameDay(day("2024-01-01"), day("2024-01-02")))
}
