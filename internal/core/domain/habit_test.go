package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/ritmo-app/ritmo-sync-engine/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestNewHabit(t *testing.T) {
	t.Run("Success: Creates valid habit with defaults and sync fields", func(t *testing.T) {
		h, err := domain.NewHabit("u1", "Drink Water", "", "", nil)

		assert.Nil(t, err)
		assert.NotNil(t, h)
		assert.Equal(t, "Drink Water", h.Name)
		assert.Equal(t, "u1", h.UserID)
		assert.NotEmpty(t, h.ID)

		assert.False(t, h.IsBuildUp)
		assert.Nil(t, h.BuildUp)
		assert.Nil(t, h.ArchivedAt)

		assert.Equal(t, 0, h.CurrentStreak)
		assert.Equal(t, 0, h.LongestStreak)

		assert.Equal(t, 1, h.Version, "New habits MUST start at Version 1 for Optimistic Locking")
		assert.Nil(t, h.DeletedAt, "New habits MUST NOT be marked as deleted")

		assert.WithinDuration(t, time.Now().UTC(), h.CreatedAt, 2*time.Second)
	})

	t.Run("Error: Empty Name", func(t *testing.T) {
		_, err := domain.NewHabit("u1", "  ", "", "", nil)
		assert.Equal(t, domain.ErrHabitNameEmpty, err)
	})

	t.Run("Error: Invalid UserID", func(t *testing.T) {
		_, err := domain.NewHabit("", "Name", "", "", nil)
		assert.Equal(t, domain.ErrHabitInvalidUserID, err)
	})

	t.Run("Error: Name too long", func(t *testing.T) {
		_, err := domain.NewHabit("u1", strings.Repeat("x", 101), "", "", nil)
		assert.Equal(t, domain.ErrHabitNameTooLong, err)
	})

	t.Run("Error: Invalid color", func(t *testing.T) {
		_, err := domain.NewHabit("u1", "Read", "", "blue", nil)
		assert.Equal(t, domain.ErrInvalidColor, err)
	})

	t.Run("Success: Build-up habit starts its ramp at StartValue", func(t *testing.T) {
		cfg := &domain.BuildUpConfig{
			StartValue:       10,
			GoalValue:        50,
			IncrementValue:   5,
			DaysForIncrement: 3,
			Unit:             "pushups",
			CurrentValue:     999, // caller garbage must be ignored
			CurrentStreak:    7,
		}

		h, err := domain.NewHabit("u1", "Pushups", "", "#FF8800", cfg)

		assert.Nil(t, err)
		assert.True(t, h.IsBuildUp)
		assert.Equal(t, 10, h.BuildUp.CurrentValue)
		assert.Equal(t, 0, h.BuildUp.CurrentStreak)
	})
}

func TestBuildUpConfig_Validate(t *testing.T) {
	valid := domain.BuildUpConfig{
		StartValue:       5,
		GoalValue:        20,
		IncrementValue:   5,
		DaysForIncrement: 7,
	}

	tests := []struct {
		name    string
		mutate  func(*domain.BuildUpConfig)
		wantErr error
	}{
		{"valid config", func(c *domain.BuildUpConfig) {}, nil},
		{"zero start", func(c *domain.BuildUpConfig) { c.StartValue = 0 }, domain.ErrBuildUpStartValue},
		{"negative goal", func(c *domain.BuildUpConfig) { c.GoalValue = -1 }, domain.ErrBuildUpGoalValue},
		{"zero increment", func(c *domain.BuildUpConfig) { c.IncrementValue = 0 }, domain.ErrBuildUpIncrementValue},
		{"zero days", func(c *domain.BuildUpConfig) { c.DaysForIncrement = 0 }, domain.ErrBuildUpDaysForIncrement},
		{"goal equals start", func(c *domain.BuildUpConfig) { c.GoalValue = c.StartValue }, domain.ErrBuildUpGoalNotAboveStart},
		{"goal below start", func(c *domain.BuildUpConfig) { c.GoalValue = 2 }, domain.ErrBuildUpGoalNotAboveStart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, tt.wantErr, err)
			}
		})
	}
}

func TestHabit_ArchiveLifecycle(t *testing.T) {
	h, _ := domain.NewHabit("u1", "Meditate", "", "", nil)

	h.Archive()
	assert.NotNil(t, h.ArchivedAt)
	assert.True(t, h.IsArchived())

	firstArchive := *h.ArchivedAt
	h.Archive() // idempotent
	assert.Equal(t, firstArchive, *h.ArchivedAt)

	err := h.Update("New name", "", "")
	assert.Equal(t, domain.ErrHabitArchived, err)

	err = h.ChangePosition(3)
	assert.Equal(t, domain.ErrHabitArchived, err)

	h.Restore()
	assert.Nil(t, h.ArchivedAt)
	assert.NoError(t, h.Update("New name", "", ""))
}

func TestHabit_SetBuildUp(t *testing.T) {
	t.Run("Clamps current value into range", func(t *testing.T) {
		h, _ := domain.NewHabit("u1", "Run", "", "", nil)

		err := h.SetBuildUp(domain.BuildUpConfig{
			StartValue:       10,
			GoalValue:        30,
			IncrementValue:   5,
			DaysForIncrement: 3,
			CurrentValue:     100,
			CurrentStreak:    -4,
		})

		assert.NoError(t, err)
		assert.Equal(t, 30, h.BuildUp.CurrentValue)
		assert.Equal(t, 0, h.BuildUp.CurrentStreak)
	})

	t.Run("Rejects invalid config without partial state", func(t *testing.T) {
		h, _ := domain.NewHabit("u1", "Run", "", "", nil)

		err := h.SetBuildUp(domain.BuildUpConfig{StartValue: 10, GoalValue: 5, IncrementValue: 1, DaysForIncrement: 1})

		assert.Equal(t, domain.ErrBuildUpGoalNotAboveStart, err)
		assert.False(t, h.IsBuildUp)
		assert.Nil(t, h.BuildUp)
	})
}
