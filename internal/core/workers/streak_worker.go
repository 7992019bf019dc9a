package workers

import (
	"context"
	"log"
	"time"

	"github.com/ritmo-app/ritmo-sync-engine/internal/core/dateutil"
	"github.com/ritmo-app/ritmo-sync-engine/internal/core/domain"
	"github.com/ritmo-app/ritmo-sync-engine/internal/core/streak"
)

type HabitRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Habit, error)
	UpdateStreaks(ctx context.Context, id string, current, longest, lastMilestone int) error
}

type DayRepository interface {
	ListByRange(ctx context.Context, userID, from, to string) ([]*domain.DayRecord, error)
}

type StreakJob struct {
	HabitID string
}

type StreakWorker struct {
	habitRepo HabitRepository
	dayRepo   DayRepository
	jobs      chan StreakJob

	now func() time.Time
}

func NewStreakWorker(hRepo HabitRepository, dRepo DayRepository) *StreakWorker {
	return &StreakWorker{
		habitRepo: hRepo,
		dayRepo:   dRepo,
		jobs:      make(chan StreakJob, 100),
		now:       time.Now,
	}
}

func (w *StreakWorker) Start(ctx context.Context) {
	go func() {
		log.Println("Streak Worker started in background...")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				log.Println("Streak Worker shutting down...")
				return
			}
		}
	}()
}

func (w *StreakWorker) Enqueue(habitID string) {
	select {
	case w.jobs <- StreakJob{HabitID: habitID}:
	default:
		log.Printf("Streak Worker queue full! Dropping job for habit %s", habitID)
	}
}

func (w *StreakWorker) processJob(ctx context.Context, job StreakJob) {
	habit, err := w.habitRepo.GetByID(ctx, job.HabitID)
	if err != nil {
		log.Printf("Worker Error fetching habit %s: %v", job.HabitID, err)
		return
	}

	today := dateutil.Midnight(w.now().UTC())
	createdAt := dateutil.Midnight(habit.CreatedAt.UTC())

	records, err := w.dayRepo.ListByRange(ctx, habit.UserID, dateutil.FormatDay(createdAt), dateutil.FormatDay(today))
	if err != nil {
		log.Printf("Worker Error fetching day records for %s: %v", job.HabitID, err)
		return
	}
	days := domain.DayMap(records)

	current := streak.Current(habit.ID, days, today)
	longest := streak.Longest(habit.ID, days, createdAt, today).Count

	milestone := habit.LastMilestone
	if crossed := streak.CheckMilestone(habit.LastMilestone, current); crossed > 0 {
		milestone = crossed
		log.Printf("Milestone reached for %s: %d days", habit.Name, crossed)
	}

	if habit.CurrentStreak != current || habit.LongestStreak != longest || habit.LastMilestone != milestone {
		if err := w.habitRepo.UpdateStreaks(ctx, habit.ID, current, longest, milestone); err != nil {
			log.Printf("Worker Failed to update streak for %s: %v", job.HabitID, err)
		} else {
			log.Printf("Streak updated for %s: Current=%d, Longest=%d", habit.Name, current, longest)
		}
	}
}
