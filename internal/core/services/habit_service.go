package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ritmo-app/ritmo-sync-engine/internal/core/domain"
)

type HabitService struct {
	repo domain.HabitRepository
}

func NewHabitService(repo domain.HabitRepository) *HabitService {
	return &HabitService{
		repo: repo,
	}
}

type CreateHabitInput struct {
	UserID      string
	Name        string
	Description string
	Color       string
	BuildUp     *domain.BuildUpConfig
}

type UpdateHabitInput struct {
	ID          string
	UserID      string
	Name        string
	Description string
	Color       string
	SortOrder   *int
	BuildUp     *domain.BuildUpConfig
	Version     int
}

func mergeString(newVal, oldVal string) string {
	if newVal == "" {
		return oldVal
	}
	return newVal
}

func (s *HabitService) Create(ctx context.Context, input CreateHabitInput) (*domain.Habit, error) {
	habit, err := domain.NewHabit(input.UserID, input.Name, input.Description, input.Color, input.BuildUp)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, habit); err != nil {
		return nil, err
	}

	return habit, nil
}

func (s *HabitService) GetByID(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}
	return habit, nil
}

func (s *HabitService) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	return s.repo.ListByUserID(ctx, userID)
}

func (s *HabitService) GetDelta(ctx context.Context, userID string, lastSync time.Time) ([]*domain.Habit, error) {
	return s.repo.GetChanges(ctx, userID, lastSync)
}

func (s *HabitService) Update(ctx context.Context, input UpdateHabitInput) (*domain.Habit, error) {
	habit, err := s.GetByID(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Version > 0 && habit.Version != input.Version {
		return nil, fmt.Errorf("%w: client v%d vs server v%d", domain.ErrHabitConflict, input.Version, habit.Version)
	}

	name := mergeString(input.Name, habit.Name)
	desc := mergeString(input.Description, habit.Description)
	color := mergeString(input.Color, habit.Color)

	if err := habit.Update(name, desc, color); err != nil {
		return nil, err
	}

	if input.SortOrder != nil {
		if err := habit.ChangePosition(*input.SortOrder); err != nil {
			return nil, err
		}
	}

	if input.BuildUp != nil {
		if err := habit.SetBuildUp(*input.BuildUp); err != nil {
			return nil, err
		}
	}

	habit.Version++

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

func (s *HabitService) Archive(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	habit.Archive()
	habit.Version++

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

func (s *HabitService) Restore(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	habit.Restore()
	habit.Version++

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

// Delete soft-deletes the habit definition only. Completion history in day
// records is preserved for audit; nothing cascades.
func (s *HabitService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.GetByID(ctx, id, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
