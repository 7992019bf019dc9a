package services

import (
	"context"
	"time"

	"github.com/ritmo-app/ritmo-sync-engine/internal/core/domain"
)

type TemplateService struct {
	repo domain.TemplateRepository
}

func NewTemplateService(repo domain.TemplateRepository) *TemplateService {
	return &TemplateService{
		repo: repo,
	}
}

func (s *TemplateService) Create(ctx context.Context, userID, name, description string, durationMinutes int) (*domain.Template, error) {
	template, err := domain.NewTemplate(userID, name, description, durationMinutes)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, template); err != nil {
		return nil, err
	}
	return template, nil
}

func (s *TemplateService) GetByID(ctx context.Context, id, userID string) (*domain.Template, error) {
	template, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if template.UserID != userID {
		return nil, domain.ErrTemplateNotFound
	}
	return template, nil
}

func (s *TemplateService) ListByUserID(ctx context.Context, userID string) ([]*domain.Template, error) {
	return s.repo.ListByUserID(ctx, userID)
}

func (s *TemplateService) Update(ctx context.Context, id, userID, name, description string, durationMinutes int) (*domain.Template, error) {
	template, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	template.Name = mergeString(name, template.Name)
	template.Description = mergeString(description, template.Description)
	if durationMinutes > 0 {
		template.DurationMinutes = durationMinutes
	}
	template.Version++
	template.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, template); err != nil {
		return nil, err
	}
	return template, nil
}

func (s *TemplateService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.GetByID(ctx, id, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *TemplateService) GetDelta(ctx context.Context, userID string, since time.Time) ([]*domain.Template, error) {
	return s.repo.GetChanges(ctx, userID, since)
}
