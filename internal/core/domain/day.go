package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ritmo-app/ritmo-sync-engine/internal/core/dateutil"
)

var (
	ErrInvalidDayRecord = errors.New("invalid day record data")
	ErrDayInFuture      = errors.New("cannot record data for a future date")
)

// DayRecord is the per-date bag of habit-completion flags and tracking-field
// values, keyed by (user, YYYY-MM-DD). Records are created lazily on first
// write; a missing record or a missing habit id inside one simply means "not
// completed". Unknown habit ids (e.g. after a sync race) are tolerated and
// treated the same way.
type DayRecord struct {
	ID     string `json:"id" db:"id"`
	UserID string `json:"user_id" db:"user_id"`
	Date   string `json:"date" db:"date"`

	Completions map[string]bool   `json:"completions" db:"-"`
	Values      map[string]string `json:"values" db:"-"`

	Version   int        `json:"version" db:"version"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

func NewDayRecord(userID, date string) (*DayRecord, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrHabitInvalidUserID
	}
	if _, err := dateutil.ParseDay(date); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &DayRecord{
		ID:          uuid.NewString(),
		UserID:      userID,
		Date:        date,
		Completions: make(map[string]bool),
		Values:      make(map[string]string),
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (r *DayRecord) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return ErrInvalidDayRecord
	}
	if _, err := dateutil.ParseDay(r.Date); err != nil {
		return ErrInvalidDayRecord
	}
	return nil
}

// Completed reports whether habitID has a true completion flag. Missing maps
// and missing keys both read as false.
func (r *DayRecord) Completed(habitID string) bool {
	if r == nil || r.Completions == nil {
		return false
	}
	return r.Completions[habitID]
}

func (r *DayRecord) SetCompletion(habitID string, done bool) {
	if r.Completions == nil {
		r.Completions = make(map[string]bool)
	}
	r.Completions[habitID] = done
	r.touch()
}

func (r *DayRecord) SetValue(fieldID, raw string) {
	if r.Values == nil {
		r.Values = make(map[string]string)
	}
	r.Values[fieldID] = raw
	r.touch()
}

func (r *DayRecord) ClearValue(fieldID string) {
	if r.Values == nil {
		return
	}
	delete(r.Values, fieldID)
	r.touch()
}

func (r *DayRecord) touch() {
	r.Version++
	r.UpdatedAt = time.Now().UTC()
}

// DayMap indexes records by their date key for the pure calculators.
func DayMap(records []*DayRecord) map[string]*DayRecord {
	m := make(map[string]*DayRecord, len(records))
	for _, r := range records {
		if r.DeletedAt == nil {
			m[r.Date] = r
		}
	}
	return m
}
