package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrHabitNotFound    = errors.New("habit not found")
	ErrHabitConflict    = errors.New("habit version conflict")
	ErrDayNotFound      = errors.New("day record not found")
	ErrDayConflict      = errors.New("day record version conflict")
	ErrEventNotFound    = errors.New("event not found")
	ErrEventConflict    = errors.New("event version conflict")
	ErrFieldNotFound    = errors.New("tracking field not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrUnauthorized     = errors.New("resource does not belong to user")
)

type HabitRepository interface {
	// Create persists a new habit definition.
	Create(ctx context.Context, habit *Habit) error

	// GetByID retrieves an active (non-deleted) habit by id.
	GetByID(ctx context.Context, id string) (*Habit, error)

	// ListByUserID retrieves all active habits for a user, archived included.
	ListByUserID(ctx context.Context, userID string) ([]*Habit, error)

	// Update persists the habit's current state.
	Update(ctx context.Context, habit *Habit) error

	// Delete soft-deletes the habit definition. Day records referencing the
	// habit are deliberately left untouched.
	Delete(ctx context.Context, id string) error

	// GetChanges [SYNC] returns deltas (soft-deletes included) after `since`.
	GetChanges(ctx context.Context, userID string, since time.Time) ([]*Habit, error)

	// UpdateStreaks writes the denormalized streak columns only.
	UpdateStreaks(ctx context.Context, id string, current, longest, lastMilestone int) error
}

type DayRecordRepository interface {
	// Upsert creates the record for (user, date) or replaces the stored
	// completion/value maps. Implementations must handle optimistic locking
	// via the Version field.
	Upsert(ctx context.Context, record *DayRecord) error

	// GetByDate retrieves the record for a single day, ErrDayNotFound when
	// the day was never written.
	GetByDate(ctx context.Context, userID, date string) (*DayRecord, error)

	// ListByRange retrieves records with from <= date <= to, ordered by date.
	ListByRange(ctx context.Context, userID, from, to string) ([]*DayRecord, error)

	// GetChanges [SYNC] returns deltas after `since`.
	GetChanges(ctx context.Context, userID string, since time.Time) ([]*DayRecord, error)
}

type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	ListByUserID(ctx context.Context, userID string) ([]*Event, error)

	// ListChildren retrieves the detached occurrences carved out of a series.
	ListChildren(ctx context.Context, parentEventID string) ([]*Event, error)

	Update(ctx context.Context, event *Event) error
	Delete(ctx context.Context, id string) error
	GetChanges(ctx context.Context, userID string, since time.Time) ([]*Event, error)
}

type TrackingFieldRepository interface {
	Create(ctx context.Context, field *TrackingField) error
	GetByID(ctx context.Context, id string) (*TrackingField, error)
	ListByUserID(ctx context.Context, userID string) ([]*TrackingField, error)
	Update(ctx context.Context, field *TrackingField) error
	Delete(ctx context.Context, id string) error
	GetChanges(ctx context.Context, userID string, since time.Time) ([]*TrackingField, error)
}

type TemplateRepository interface {
	Create(ctx context.Context, template *Template) error
	GetByID(ctx context.Context, id string) (*Template, error)
	ListByUserID(ctx context.Context, userID string) ([]*Template, error)
	Update(ctx context.Context, template *Template) error
	Delete(ctx context.Context, id string) error
	GetChanges(ctx context.Context, userID string, since time.Time) ([]*Template, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
