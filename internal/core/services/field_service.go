package services

import (
	"context"
	"time"

	"github.com/ritmo-app/ritmo-sync-engine/internal/core/domain"
)

type FieldService struct {
	repo domain.TrackingFieldRepository
}

func NewFieldService(repo domain.TrackingFieldRepository) *FieldService {
	return &FieldService{
		repo: repo,
	}
}

type CreateFieldInput struct {
	UserID      string
	Name        string
	Type        domain.FieldType
	Unit        string
	Description string
}

func (s *FieldService) Create(ctx context.Context, input CreateFieldInput) (*domain.TrackingField, error) {
	field, err := domain.NewTrackingField(input.UserID, input.Name, input.Type, input.Unit, input.Description)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, field); err != nil {
		return nil, err
	}
	return field, nil
}

func (s *FieldService) GetByID(ctx context.Context, id, userID string) (*domain.TrackingField, error) {
	field, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if field.UserID != userID {
		return nil, domain.ErrFieldNotFound
	}
	return field, nil
}

func (s *FieldService) ListByUserID(ctx context.Context, userID string) ([]*domain.TrackingField, error) {
	return s.repo.ListByUserID(ctx, userID)
}

func (s *FieldService) Update(ctx context.Context, id, userID, name, unit, description string) (*domain.TrackingField, error) {
	field, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	field.Name = mergeString(name, field.Name)
	field.Unit = mergeString(unit, field.Unit)
	field.Description = mergeString(description, field.Description)
	field.Version++
	field.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, field); err != nil {
		return nil, err
	}
	return field, nil
}

// Delete soft-deletes the field definition. Recorded values in day records
// stay put, same as habit history.
func (s *FieldService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.GetByID(ctx, id, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *FieldService) GetDelta(ctx context.Context, userID string, since time.Time) ([]*domain.TrackingField, error) {
	return s.repo.GetChanges(ctx, userID, since)
}
