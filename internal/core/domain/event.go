package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ritmo-app/ritmo-sync-engine/internal/core/dateutil"
)

var (
	ErrEventTitleEmpty       = errors.New("event title cannot be empty")
	ErrEventInvalidDate      = errors.New("invalid event date (expected YYYY-MM-DD)")
	ErrEventInvalidStartTime = errors.New("invalid event start time (must be HH:MM 24h)")
	ErrEventInvalidDuration  = errors.New("event duration must be positive")
	ErrEventNotRecurring     = errors.New("event has no recurrence")
	ErrTemplateNameEmpty     = errors.New("template name cannot be empty")

	ErrRecurrenceInterval      = errors.New("recurrence interval must be at least 1")
	ErrRecurrenceType          = errors.New("unknown recurrence type")
	ErrRecurrenceWeekdays      = errors.New("weekly recurrence requires weekdays in 0-6")
	ErrRecurrenceMonthlyTarget = errors.New("monthly recurrence requires a day-of-month or a week pattern")
	ErrRecurrenceEndConditions = errors.New("recurrence cannot set both an end date and an occurrence count")
	ErrRecurrenceOccurrences   = errors.New("recurrence occurrence count must be positive")
)

var startTimeRegex = regexp.MustCompile(`^([0-1][0-9]|2[0-3]):[0-5][0-9]$`)

type RecurrenceType string

const (
	RecurrenceDaily   RecurrenceType = "daily"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
	RecurrenceYearly  RecurrenceType = "yearly"
	RecurrenceCustom  RecurrenceType = "custom"
)

// LastWeekOfMonth selects the last occurrence of a weekday in monthly
// week-pattern recurrences.
const LastWeekOfMonth = -1

// Recurrence describes how an event repeats from its anchor date.
//
// Interval is in units of the type (days, weeks, months, years; custom is an
// every-N-days rule). Weekly rules carry the qualifying weekday set
// (0=Sunday). Monthly rules are either fixed-day (DayOfMonth > 0) or
// week-pattern (WeekOfMonth 1-4 or LastWeekOfMonth plus WeekdayOfMonth).
// At most one of EndDate and Occurrences may be set.
type Recurrence struct {
	Type     RecurrenceType `json:"type"`
	Interval int            `json:"interval"`

	DaysOfWeek []int `json:"days_of_week,omitempty"`

	DayOfMonth     int  `json:"day_of_month,omitempty"`
	WeekOfMonth    int  `json:"week_of_month,omitempty"`
	WeekdayOfMonth *int `json:"weekday_of_month,omitempty"`

	EndDate     *string `json:"end_date,omitempty"`
	Occurrences int     `json:"occurrences,omitempty"`
}

func (r *Recurrence) Validate() error {
	switch r.Type {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly, RecurrenceCustom:
	default:
		return ErrRecurrenceType
	}

	if r.Interval < 1 {
		return ErrRecurrenceInterval
	}

	if r.Type == RecurrenceWeekly {
		if len(r.DaysOfWeek) == 0 {
			return ErrRecurrenceWeekdays
		}
		for _, d := range r.DaysOfWeek {
			if d < 0 || d > 6 {
				return ErrRecurrenceWeekdays
			}
		}
	}

	if r.Type == RecurrenceMonthly {
		fixed := r.DayOfMonth >= 1 && r.DayOfMonth <= 31
		pattern := r.WeekdayOfMonth != nil &&
			*r.WeekdayOfMonth >= 0 && *r.WeekdayOfMonth <= 6 &&
			(r.WeekOfMonth == LastWeekOfMonth || (r.WeekOfMonth >= 1 && r.WeekOfMonth <= 4))
		if !fixed && !pattern {
			return ErrRecurrenceMonthlyTarget
		}
	}

	if r.EndDate != nil && r.Occurrences > 0 {
		return ErrRecurrenceEndConditions
	}
	if r.Occurrences < 0 {
		return ErrRecurrenceOccurrences
	}
	if r.EndDate != nil {
		if _, err := dateutil.ParseDay(*r.EndDate); err != nil {
			return ErrEventInvalidDate
		}
	}

	return nil
}

// Event is a calendar entry anchored at Date. With a Recurrence it describes
// a whole series; ParentEventID marks a detached single occurrence carved out
// of another event's series (its date is skipped when the parent expands).
type Event struct {
	ID          string `json:"id" db:"id"`
	UserID      string `json:"user_id" db:"user_id"`
	Title       string `json:"title" db:"title"`
	Description string `json:"description,omitempty" db:"description"`

	Date            string `json:"date" db:"date"`
	StartTime       string `json:"start_time" db:"start_time"`
	DurationMinutes int    `json:"duration_minutes" db:"duration_minutes"`

	Recurrence    *Recurrence `json:"recurrence,omitempty" db:"-"`
	ParentEventID *string     `json:"parent_event_id,omitempty" db:"parent_event_id"`

	Version   int        `json:"version" db:"version"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

func NewEvent(userID, title, description, date, startTime string, durationMinutes int, rec *Recurrence) (*Event, error) {
	if userID == "" {
		return nil, ErrHabitInvalidUserID
	}

	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return nil, ErrEventTitleEmpty
	}
	if _, err := dateutil.ParseDay(date); err != nil {
		return nil, ErrEventInvalidDate
	}
	if startTime != "" && !startTimeRegex.MatchString(startTime) {
		return nil, ErrEventInvalidStartTime
	}
	if durationMinutes <= 0 {
		return nil, ErrEventInvalidDuration
	}
	if rec != nil {
		if err := rec.Validate(); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	return &Event{
		ID:              uuid.NewString(),
		UserID:          userID,
		Title:           trimmed,
		Description:     strings.TrimSpace(description),
		Date:            date,
		StartTime:       startTime,
		DurationMinutes: durationMinutes,
		Recurrence:      rec,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

func (e *Event) Update(title, description, date, startTime string, durationMinutes int, rec *Recurrence) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return ErrEventTitleEmpty
	}
	if _, err := dateutil.ParseDay(date); err != nil {
		return ErrEventInvalidDate
	}
	if startTime != "" && !startTimeRegex.MatchString(startTime) {
		return ErrEventInvalidStartTime
	}
	if durationMinutes <= 0 {
		return ErrEventInvalidDuration
	}
	if rec != nil {
		if err := rec.Validate(); err != nil {
			return err
		}
	}

	e.Title = trimmed
	e.Description = strings.TrimSpace(description)
	e.Date = date
	e.StartTime = startTime
	e.DurationMinutes = durationMinutes
	e.Recurrence = rec
	e.Version++
	e.UpdatedAt = time.Now().UTC()
	return nil
}

// Detach creates a standalone single-occurrence copy of e on the given date,
// linked back through ParentEventID.
func (e *Event) Detach(date string) (*Event, error) {
	if e.Recurrence == nil {
		return nil, ErrEventNotRecurring
	}
	if _, err := dateutil.ParseDay(date); err != nil {
		return nil, ErrEventInvalidDate
	}

	parentID := e.ID
	now := time.Now().UTC()
	return &Event{
		ID:              uuid.NewString(),
		UserID:          e.UserID,
		Title:           e.Title,
		Description:     e.Description,
		Date:            date,
		StartTime:       e.StartTime,
		DurationMinutes: e.DurationMinutes,
		ParentEventID:   &parentID,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// Template is a reusable event preset; it never carries a recurrence.
type Template struct {
	ID              string `json:"id" db:"id"`
	UserID          string `json:"user_id" db:"user_id"`
	Name            string `json:"name" db:"name"`
	Description     string `json:"description,omitempty" db:"description"`
	DurationMinutes int    `json:"duration_minutes" db:"duration_minutes"`

	Version   int        `json:"version" db:"version"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

func NewTemplate(userID, name, description string, durationMinutes int) (*Template, error) {
	if userID == "" {
		return nil, ErrHabitInvalidUserID
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, ErrTemplateNameEmpty
	}
	if durationMinutes <= 0 {
		return nil, ErrEventInvalidDuration
	}

	now := time.Now().UTC()
	return &Template{
		ID:              uuid.NewString(),
		UserID:          userID,
		Name:            trimmed,
		Description:     strings.TrimSpace(description),
		DurationMinutes: durationMinutes,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}
