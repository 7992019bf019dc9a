package domain_test

import (
	"testing"

	"github.com/ritmo-app/ritmo-sync-engine/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func TestRecurrence_Validate(t *testing.T) {
	tests := []struct {
		name    string
		rec     domain.Recurrence
		wantErr error
	}{
		{
			"daily every day",
			domain.Recurrence{Type: domain.RecurrenceDaily, Interval: 1},
			nil,
		},
		{
			"custom every 3 days",
			domain.Recurrence{Type: domain.RecurrenceCustom, Interval: 3},
			nil,
		},
		{
			"weekly with weekday set",
			domain.Recurrence{Type: domain.RecurrenceWeekly, Interval: 1, DaysOfWeek: []int{1, 3, 5}},
			nil,
		},
		{
			"monthly fixed day",
			domain.Recurrence{Type: domain.RecurrenceMonthly, Interval: 1, DayOfMonth: 15},
			nil,
		},
		{
			"monthly last friday",
			domain.Recurrence{Type: domain.RecurrenceMonthly, Interval: 1, WeekOfMonth: domain.LastWeekOfMonth, WeekdayOfMonth: intPtr(5)},
			nil,
		},
		{
			"unknown type",
			domain.Recurrence{Type: "fortnightly", Interval: 1},
			domain.ErrRecurrenceType,
		},
		{
			"zero interval",
			domain.Recurrence{Type: domain.RecurrenceDaily, Interval: 0},
			domain.ErrRecurrenceInterval,
		},
		{
			"weekly without weekdays",
			domain.Recurrence{Type: domain.RecurrenceWeekly, Interval: 1},
			domain.ErrRecurrenceWeekdays,
		},
		{
			"weekly with out-of-range weekday",
			domain.Recurrence{Type: domain.RecurrenceWeekly, Interval: 1, DaysOfWeek: []int{7}},
			domain.ErrRecurrenceWeekdays,
		},
		{
			"monthly with neither day nor pattern",
			domain.Recurrence{Type: domain.RecurrenceMonthly, Interval: 1},
			domain.ErrRecurrenceMonthlyTarget,
		},
		{
			"monthly with fifth week pattern",
			domain.Recurrence{Type: domain.RecurrenceMonthly, Interval: 1, WeekOfMonth: 5, WeekdayOfMonth: intPtr(1)},
			domain.ErrRecurrenceMonthlyTarget,
		},
		{
			"both end conditions set",
			domain.Recurrence{Type: domain.RecurrenceDaily, Interval: 1, EndDate: strPtr("2024-12-31"), Occurrences: 10},
			domain.ErrRecurrenceEndConditions,
		},
		{
			"malformed end date",
			domain.Recurrence{Type: domain.RecurrenceDaily, Interval: 1, EndDate: strPtr("31/12/2024")},
			domain.ErrEventInvalidDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, tt.wantErr, err)
			}
		})
	}
}

func TestNewEvent(t *testing.T) {
	t.Run("Success: one-off event", func(t *testing.T) {
		e, err := domain.NewEvent("u1", "Dentist", "checkup", "2024-06-10", "09:30", 45, nil)

		assert.NoError(t, err)
		assert.Equal(t, "Dentist", e.Title)
		assert.Equal(t, "2024-06-10", e.Date)
		assert.Nil(t, e.Recurrence)
		assert.Nil(t, e.ParentEventID)
		assert.Equal(t, 1, e.Version)
	})

	t.Run("Error: bad start time", func(t *testing.T) {
		_, err := domain.NewEvent("u1", "Dentist", "", "2024-06-10", "25:00", 45, nil)
		assert.Equal(t, domain.ErrEventInvalidStartTime, err)
	})

	t.Run("Error: non-positive duration", func(t *testing.T) {
		_, err := domain.NewEvent("u1", "Dentist", "", "2024-06-10", "09:00", 0, nil)
		assert.Equal(t, domain.ErrEventInvalidDuration, err)
	})

	t.Run("Error: invalid recurrence rejected at creation", func(t *testing.T) {
		rec := &domain.Recurrence{Type: domain.RecurrenceWeekly, Interval: 1}
		_, err := domain.NewEvent("u1", "Gym", "", "2024-06-10", "18:00", 60, rec)
		assert.Equal(t, domain.ErrRecurrenceWeekdays, err)
	})
}

func TestEvent_Detach(t *testing.T) {
	rec := &domain.Recurrence{Type: domain.RecurrenceDaily, Interval: 1}
	series, _ := domain.NewEvent("u1", "Standup", "", "2024-06-03", "10:00", 15, rec)

	t.Run("Success: carves a linked single occurrence", func(t *testing.T) {
		child, err := series.Detach("2024-06-07")

		assert.NoError(t, err)
		assert.NotEqual(t, series.ID, child.ID)
		assert.Equal(t, series.ID, *child.ParentEventID)
		assert.Equal(t, "2024-06-07", child.Date)
		assert.Nil(t, child.Recurrence)
		assert.Equal(t, series.Title, child.Title)
		assert.Equal(t, series.DurationMinutes, child.DurationMinutes)
	})

	t.Run("Error: cannot detach from a one-off event", func(t *testing.T) {
		oneOff, _ := domain.NewEvent("u1", "Dentist", "", "2024-06-10", "09:00", 30, nil)
		_, err := oneOff.Detach("2024-06-10")
		assert.Equal(t, domain.ErrEventNotRecurring, err)
	})
}

func TestNewTemplate(t *testing.T) {
	tpl, err := domain.NewTemplate("u1", "Deep work", "no meetings", 90)
	assert.NoError(t, err)
	assert.Equal(t, 90, tpl.DurationMinutes)

	_, err = domain.NewTemplate("u1", " ", "", 90)
	assert.Equal(t, domain.ErrTemplateNameEmpty, err)

	_, err = domain.NewTemplate("u1", "Break", "", 0)
	assert.Equal(t, domain.ErrEventInvalidDuration, err)
}
