package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrHabitNameEmpty     = errors.New("habit name cannot be empty")
	ErrHabitNameTooLong   = errors.New("habit name is too long (max 100 chars)")
	ErrHabitDescTooLong   = errors.New("habit description is too long (max 500 chars)")
	ErrHabitInvalidUserID = errors.New("invalid user id")
	ErrInvalidColor       = errors.New("invalid color format (must be #RRGGBB)")
	ErrHabitArchived      = errors.New("cannot update an archived habit")
	ErrHabitNotBuildUp    = errors.New("habit has no build-up configuration")

	ErrBuildUpStartValue        = errors.New("build-up start value must be positive")
	ErrBuildUpGoalValue         = errors.New("build-up goal value must be positive")
	ErrBuildUpIncrementValue    = errors.New("build-up increment value must be positive")
	ErrBuildUpDaysForIncrement  = errors.New("build-up days-for-increment must be positive")
	ErrBuildUpGoalNotAboveStart = errors.New("build-up goal value must be greater than start value")
)

var colorRegex = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

const (
	MaxHabitNameLen = 100
	MaxHabitDescLen = 500
)

// Habit is a daily habit definition. Archiving keeps the definition and all
// historical day records but removes the habit from status and stat
// aggregation. Deleting is a soft delete of the definition only; completion
// flags in day records are never touched.
type Habit struct {
	ID          string `json:"id" db:"id"`
	UserID      string `json:"user_id" db:"user_id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description,omitempty" db:"description"`
	Color       string `json:"color" db:"color"`
	SortOrder   int    `json:"sort_order" db:"sort_order"`

	ArchivedAt *time.Time `json:"archived_at,omitempty" db:"archived_at"`

	IsBuildUp bool           `json:"is_build_up" db:"is_build_up"`
	BuildUp   *BuildUpConfig `json:"build_up,omitempty" db:"-"`

	// Denormalized by the streak worker; day records stay the source of truth.
	CurrentStreak int `json:"current_streak" db:"current_streak"`
	LongestStreak int `json:"longest_streak" db:"longest_streak"`
	LastMilestone int `json:"last_milestone" db:"last_milestone"`

	Version   int        `json:"version" db:"version"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// BuildUpConfig is the goal-ramp state for a build-up habit. CurrentValue is
// monotonically non-decreasing and bounded by [StartValue, GoalValue].
type BuildUpConfig struct {
	StartValue       int    `json:"start_value"`
	GoalValue        int    `json:"goal_value"`
	IncrementValue   int    `json:"increment_value"`
	DaysForIncrement int    `json:"days_for_increment"`
	Unit             string `json:"unit,omitempty"`
	CurrentValue     int    `json:"current_value"`
	CurrentStreak    int    `json:"current_streak"`
}

func (c BuildUpConfig) Validate() error {
	if c.StartValue <= 0 {
		return ErrBuildUpStartValue
	}
	if c.GoalValue <= 0 {
		return ErrBuildUpGoalValue
	}
	if c.IncrementValue <= 0 {
		return ErrBuildUpIncrementValue
	}
	if c.DaysForIncrement <= 0 {
		return ErrBuildUpDaysForIncrement
	}
	if c.GoalValue <= c.StartValue {
		return ErrBuildUpGoalNotAboveStart
	}
	return nil
}

func validateHabitFields(name, desc, color string) (string, string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", "", ErrHabitNameEmpty
	}
	if len(trimmed) > MaxHabitNameLen {
		return "", "", ErrHabitNameTooLong
	}

	cleanDesc := strings.TrimSpace(desc)
	if len(cleanDesc) > MaxHabitDescLen {
		return "", "", ErrHabitDescTooLong
	}

	if color != "" && !colorRegex.MatchString(color) {
		return "", "", ErrInvalidColor
	}

	return trimmed, cleanDesc, nil
}

func NewHabit(userID, name, description, color string, buildUp *BuildUpConfig) (*Habit, error) {
	if userID == "" {
		return nil, ErrHabitInvalidUserID
	}

	cleanName, cleanDesc, err := validateHabitFields(name, description, color)
	if err != nil {
		return nil, err
	}

	h := &Habit{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        cleanName,
		Description: cleanDesc,
		Color:       color,
		Version:     1,
	}

	if buildUp != nil {
		cfg := *buildUp
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		cfg.CurrentValue = cfg.StartValue
		cfg.CurrentStreak = 0
		h.IsBuildUp = true
		h.BuildUp = &cfg
	}

	now := time.Now().UTC()
	h.CreatedAt = now
	h.UpdatedAt = now

	return h, nil
}

func (h *Habit) Update(name, description, color string) error {
	if h.ArchivedAt != nil {
		return ErrHabitArchived
	}

	cleanName, cleanDesc, err := validateHabitFields(name, description, color)
	if err != nil {
		return err
	}

	h.Name = cleanName
	h.Description = cleanDesc
	h.Color = color
	h.UpdatedAt = time.Now().UTC()

	return nil
}

func (h *Habit) ChangePosition(newOrder int) error {
	if h.ArchivedAt != nil {
		return ErrHabitArchived
	}

	h.SortOrder = newOrder
	h.UpdatedAt = time.Now().UTC()
	return nil
}

func (h *Habit) Archive() {
	if h.ArchivedAt != nil {
		return
	}

	now := time.Now().UTC()
	h.ArchivedAt = &now
	h.UpdatedAt = now
}

func (h *Habit) Restore() {
	if h.ArchivedAt == nil {
		return
	}
	h.ArchivedAt = nil
	h.UpdatedAt = time.Now().UTC()
}

func (h *Habit) IsArchived() bool {
	return h.ArchivedAt != nil
}

// SetBuildUp replaces the build-up state. The incoming config is validated
// and its CurrentValue clamped into [StartValue, GoalValue] so a habit can
// never hold an out-of-range ramp.
func (h *Habit) SetBuildUp(cfg BuildUpConfig) error {
	if h.ArchivedAt != nil {
		return ErrHabitArchived
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.CurrentValue < cfg.StartValue {
		cfg.CurrentValue = cfg.StartValue
	}
	if cfg.CurrentValue > cfg.GoalValue {
		cfg.CurrentValue = cfg.GoalValue
	}
	if cfg.CurrentStreak < 0 {
		cfg.CurrentStreak = 0
	}

	h.IsBuildUp = true
	h.BuildUp = &cfg
	h.UpdatedAt = time.Now().UTC()
	return nil
}

func (h *Habit) UpdateStreak(current, longest int) {
	h.CurrentStreak = current
	h.LongestStreak = longest
	h.UpdatedAt = time.Now().UTC()
}
