package domain

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrFieldNameEmpty   = errors.New("tracking field name cannot be empty")
	ErrInvalidFieldType = errors.New("invalid tracking field type")
	ErrInvalidTimeValue = errors.New("invalid time value (must be HH:MM 24h)")
	ErrInvalidNumber    = errors.New("invalid numeric value")
	ErrInvalidBoolean   = errors.New("invalid boolean value (must be true or false)")
	ErrScaleOutOfRange  = errors.New("scale value out of range")
)

var timeValueRegex = regexp.MustCompile(`^([0-1][0-9]|2[0-3]):[0-5][0-9]$`)

// FieldType enumerates the value kinds a tracking field can record.
type FieldType string

const (
	FieldTypeNumber  FieldType = "number"
	FieldTypeText    FieldType = "text"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeTime    FieldType = "time"
	FieldTypeScale5  FieldType = "scale5"
	FieldTypeScale10 FieldType = "scale10"
)

func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeNumber, FieldTypeText, FieldTypeBoolean, FieldTypeTime, FieldTypeScale5, FieldTypeScale10:
		return true
	}
	return false
}

// TrackingField is an auxiliary metric logged per day alongside habit
// completions (e.g. weight, mood on a 1-10 scale, wake-up time).
type TrackingField struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	Name        string    `json:"name" db:"name"`
	Type        FieldType `json:"type" db:"type"`
	Unit        string    `json:"unit,omitempty" db:"unit"`
	Description string    `json:"description,omitempty" db:"description"`

	Version   int        `json:"version" db:"version"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

func NewTrackingField(userID, name string, fieldType FieldType, unit, description string) (*TrackingField, error) {
	if userID == "" {
		return nil, ErrHabitInvalidUserID
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, ErrFieldNameEmpty
	}

	if !fieldType.Valid() {
		return nil, ErrInvalidFieldType
	}

	now := time.Now().UTC()
	return &TrackingField{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        trimmed,
		Type:        fieldType,
		Unit:        unit,
		Description: strings.TrimSpace(description),
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ValidateValue checks a raw recorded value against the field's type. Values
// travel and persist as strings; this is the single gate that keeps them
// well-formed.
func (f *TrackingField) ValidateValue(raw string) error {
	switch f.Type {
	case FieldTypeText:
		return nil
	case FieldTypeNumber:
		if _, err := strconv.ParseFloat(raw, 64); err != nil {
			return ErrInvalidNumber
		}
		return nil
	case FieldTypeBoolean:
		if raw != "true" && raw != "false" {
			return ErrInvalidBoolean
		}
		return nil
	case FieldTypeTime:
		if !timeValueRegex.MatchString(raw) {
			return ErrInvalidTimeValue
		}
		return nil
	case FieldTypeScale5:
		return validateScale(raw, 5)
	case FieldTypeScale10:
		return validateScale(raw, 10)
	default:
		return ErrInvalidFieldType
	}
}

func validateScale(raw string, max int) error {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return ErrInvalidNumber
	}
	if n < 1 || n > max {
		return ErrScaleOutOfRange
	}
	return nil
}
