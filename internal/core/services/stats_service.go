package services

import (
	"context"
	"time"

	"github.com/ritmo-app/ritmo-sync-engine/internal/core/dateutil"
	"github.com/ritmo-app/ritmo-sync-engine/internal/core/domain"
	"github.com/ritmo-app/ritmo-sync-engine/internal/core/status"
	"github.com/ritmo-app/ritmo-sync-engine/internal/core/streak"
)

type StatsService struct {
	habitRepo domain.HabitRepository
	dayRepo   domain.DayRecordRepository

	now func() time.Time
}

func NewStatsService(habitRepo domain.HabitRepository, dayRepo domain.DayRecordRepository) *StatsService {
	return &StatsService{
		habitRepo: habitRepo,
		dayRepo:   dayRepo,
		now:       time.Now,
	}
}

// CalendarStats is the per-day tri-state over a date range, as rendered by a
// month view.
type CalendarStats struct {
	StartDate string                      `json:"start_date"`
	EndDate   string                      `json:"end_date"`
	Days      map[string]status.DayStatus `json:"days"`
}

type RangeStats struct {
	StartDate   string      `json:"start_date"`
	EndDate     string      `json:"end_date"`
	TotalHabits int         `json:"total_habits"`
	OverallRate float64     `json:"overall_completion_rate"`
	HabitStats  []HabitStat `json:"habits"`
}

type HabitStat struct {
	HabitID        string  `json:"habit_id"`
	HabitName      string  `json:"habit_name"`
	Color          string  `json:"color"`
	DaysCompleted  int     `json:"days_completed"`
	CompletionRate float64 `json:"completion_rate"`
	DailyProgress  []bool  `json:"daily_progress"`
}

// StreakStats is the derived streak view for one habit.
type StreakStats struct {
	HabitID       string       `json:"habit_id"`
	CurrentStreak int          `json:"current_streak"`
	LongestStreak streak.Run   `json:"longest_streak"`
	AllStreaks    []streak.Run `json:"all_streaks"`
	NextMilestone int          `json:"next_milestone"`
}

func (s *StatsService) loadDays(ctx context.Context, userID string, from, to time.Time) (map[string]*domain.DayRecord, error) {
	records, err := s.dayRepo.ListByRange(ctx, userID, dateutil.FormatDay(from), dateutil.FormatDay(to))
	if err != nil {
		return nil, err
	}
	return domain.DayMap(records), nil
}

// GetCalendar classifies every day in [from, to] against the user's current
// habit set. The classification is derived on demand, never read from
// storage.
func (s *StatsService) GetCalendar(ctx context.Context, userID string, from, to time.Time) (*CalendarStats, error) {
	from = dateutil.Midnight(from)
	to = dateutil.Midnight(to)

	habits, err := s.habitRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	days, err := s.loadDays(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	today := dateutil.Midnight(s.now().UTC())
	return &CalendarStats{
		StartDate: dateutil.FormatDay(from),
		EndDate:   dateutil.FormatDay(to),
		Days:      status.ForRange(from, to, habits, days, today),
	}, nil
}

// GetRangeStats computes per-habit completion rates over a date range,
// archived habits excluded.
func (s *StatsService) GetRangeStats(ctx context.Context, userID string, from, to time.Time) (*RangeStats, error) {
	from = dateutil.Midnight(from)
	to = dateutil.Midnight(to)

	habits, err := s.habitRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	days, err := s.loadDays(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	stats := &RangeStats{
		StartDate:  dateutil.FormatDay(from),
		EndDate:    dateutil.FormatDay(to),
		HabitStats: make([]HabitStat, 0, len(habits)),
	}

	totalPossible := 0
	totalCompleted := 0

	for _, h := range habits {
		if h.IsArchived() {
			continue
		}
		stats.TotalHabits++

		hStat := HabitStat{
			HabitID:   h.ID,
			HabitName: h.Name,
			Color:     h.Color,
		}

		daysInPeriod := 0
		for cur := from; !cur.After(to); cur = dateutil.AddDays(cur, 1) {
			done := days[dateutil.FormatDay(cur)].Completed(h.ID)
			hStat.DailyProgress = append(hStat.DailyProgress, done)
			if done {
				hStat.DaysCompleted++
				totalCompleted++
			}
			daysInPeriod++
			totalPossible++
		}

		if daysInPeriod > 0 {
			hStat.CompletionRate = float64(hStat.DaysCompleted) / float64(daysInPeriod) * 100
		}

		stats.HabitStats = append(stats.HabitStats, hStat)
	}

	if totalPossible > 0 {
		stats.OverallRate = float64(totalCompleted) / float64(totalPossible) * 100
	}

	return stats, nil
}

// GetStreaks derives the full streak view for one habit from its day
// records.
func (s *StatsService) GetStreaks(ctx context.Context, habitID, userID string) (*StreakStats, error) {
	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}

	today := dateutil.Midnight(s.now().UTC())
	days, err := s.loadDays(ctx, userID, dateutil.Midnight(habit.CreatedAt), today)
	if err != nil {
		return nil, err
	}

	current := streak.Current(habitID, days, today)
	return &StreakStats{
		HabitID:       habitID,
		CurrentStreak: current,
		LongestStreak: streak.Longest(habitID, days, habit.CreatedAt, today),
		AllStreaks:    streak.All(habitID, days, habit.CreatedAt, today),
		NextMilestone: streak.NextMilestone(current),
	}, nil
}
