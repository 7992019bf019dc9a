package services

import (
	"context"
	"errors"
	"time"

	"github.com/ritmo-app/ritmo-sync-engine/internal/core/buildup"
	"github.com/ritmo-app/ritmo-sync-engine/internal/core/dateutil"
	"github.com/ritmo-app/ritmo-sync-engine/internal/core/domain"
	"github.com/ritmo-app/ritmo-sync-engine/internal/core/streak"
	"github.com/ritmo-app/ritmo-sync-engine/internal/core/workers"
)

type DayService struct {
	dayRepo   domain.DayRecordRepository
	habitRepo domain.HabitRepository
	fieldRepo domain.TrackingFieldRepository
	worker    *workers.StreakWorker

	now func() time.Time
}

func NewDayService(dayRepo domain.DayRecordRepository, habitRepo domain.HabitRepository, fieldRepo domain.TrackingFieldRepository, worker *workers.StreakWorker) *DayService {
	return &DayService{
		dayRepo:   dayRepo,
		habitRepo: habitRepo,
		fieldRepo: fieldRepo,
		worker:    worker,
		now:       time.Now,
	}
}

// ToggleResult is the derived view returned to the client after a completion
// change: the stored record, the habit's next build-up state when it has one,
// and the milestone newly crossed by the current streak (0 when none).
type ToggleResult struct {
	Record        *domain.DayRecord     `json:"record"`
	BuildUp       *domain.BuildUpConfig `json:"build_up,omitempty"`
	Milestone     int                   `json:"milestone,omitempty"`
	NextMilestone int                   `json:"next_milestone"`
}

func (s *DayService) today() time.Time {
	return dateutil.Midnight(s.now().UTC())
}

func (s *DayService) loadOrCreate(ctx context.Context, userID, date string) (*domain.DayRecord, error) {
	record, err := s.dayRepo.GetByDate(ctx, userID, date)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, domain.ErrDayNotFound) {
		return nil, err
	}
	// Day records are created lazily on first write, never pre-populated.
	return domain.NewDayRecord(userID, date)
}

// ToggleCompletion sets the completion flag for (date, habit). Future dates
// are rejected; no assumptions are made about days that have not happened.
func (s *DayService) ToggleCompletion(ctx context.Context, userID, date, habitID string, done bool) (*ToggleResult, error) {
	day, err := dateutil.ParseDay(date)
	if err != nil {
		return nil, err
	}

	today := s.today()
	if day.After(today) {
		return nil, domain.ErrDayInFuture
	}

	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	if habit.IsArchived() {
		return nil, domain.ErrHabitArchived
	}

	record, err := s.loadOrCreate(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	wasDone := record.Completed(habitID)

	// Streak before the change, so a milestone crossing can be detected from
	// this single toggle.
	history, err := s.dayRepo.ListByRange(ctx, userID, dateutil.FormatDay(habit.CreatedAt), dateutil.FormatDay(today))
	if err != nil {
		return nil, err
	}
	days := domain.DayMap(history)
	prevStreak := streak.Current(habitID, days, today)

	record.SetCompletion(habitID, done)
	if err := s.dayRepo.Upsert(ctx, record); err != nil {
		return nil, err
	}

	days[record.Date] = record
	newStreak := streak.Current(habitID, days, today)

	result := &ToggleResult{
		Record:        record,
		Milestone:     streak.CheckMilestone(prevStreak, newStreak),
		NextMilestone: streak.NextMilestone(newStreak),
	}

	if habit.IsBuildUp && habit.BuildUp != nil && done != wasDone {
		var next domain.BuildUpConfig
		if done {
			next = buildup.Complete(*habit.BuildUp)
		} else {
			next = buildup.Uncomplete(*habit.BuildUp)
		}
		habit.BuildUp = &next
		habit.Version++
		if err := s.habitRepo.Update(ctx, habit); err != nil {
			return nil, err
		}
		result.BuildUp = &next
	}

	if s.worker != nil {
		s.worker.Enqueue(habitID)
	}

	return result, nil
}

// SetValue records a tracking-field value for a date; an empty raw value
// clears it.
func (s *DayService) SetValue(ctx context.Context, userID, date, fieldID, raw string) (*domain.DayRecord, error) {
	day, err := dateutil.ParseDay(date)
	if err != nil {
		return nil, err
	}
	if day.After(s.today()) {
		return nil, domain.ErrDayInFuture
	}

	field, err := s.fieldRepo.GetByID(ctx, fieldID)
	if err != nil {
		return nil, err
	}
	if field.UserID != userID {
		return nil, domain.ErrUnauthorized
	}

	record, err := s.loadOrCreate(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	if raw == "" {
		record.ClearValue(fieldID)
	} else {
		if err := field.ValidateValue(raw); err != nil {
			return nil, err
		}
		record.SetValue(fieldID, raw)
	}

	if err := s.dayRepo.Upsert(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *DayService) GetByDate(ctx context.Context, userID, date string) (*domain.DayRecord, error) {
	if _, err := dateutil.ParseDay(date); err != nil {
		return nil, err
	}
	return s.dayRepo.GetByDate(ctx, userID, date)
}

func (s *DayService) ListByRange(ctx context.Context, userID, from, to string) ([]*domain.DayRecord, error) {
	if _, err := dateutil.ParseDay(from); err != nil {
		return nil, err
	}
	if _, err := dateutil.ParseDay(to); err != nil {
		return nil, err
	}
	return s.dayRepo.ListByRange(ctx, userID, from, to)
}

func (s *DayService) GetDelta(ctx context.Context, userID string, since time.Time) ([]*domain.DayRecord, error) {
	return s.dayRepo.GetChanges(ctx, userID, since)
}
