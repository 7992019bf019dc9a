package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritmo-app/ritmo-sync-engine/internal/core/domain"
	"github.com/ritmo-app/ritmo-sync-engine/internal/core/services"
)

func TestTemplateService_CRUD(t *testing.T) {
	ctx := context.Background()

	t.Run("Create rejects empty names and zero durations", func(t *testing.T) {
		repo := NewMockTemplateRepo()
		svc := services.NewTemplateService(repo)

		_, err := svc.Create(ctx, "user-1", "  ", "", 30)
		assert.ErrorIs(t, err, domain.ErrTemplateNameEmpty)

		_, err = svc.Create(ctx, "user-1", "Workout", "", 0)
		assert.ErrorIs(t, err, domain.ErrEventInvalidDuration)

		tpl, err := svc.Create(ctx, "user-1", "Workout", "Gym session", 60)
		assert.NoError(t, err)
		assert.Equal(t, "Workout", tpl.Name)
		assert.Equal(t, 60, tpl.DurationMinutes)
	})

	t.Run("Update merges fields and keeps duration when zero", func(t *testing.T) {
		repo := NewMockTemplateRepo()
		svc := services.NewTemplateService(repo)

		tpl, err := svc.Create(ctx, "user-1", "Workout", "Gym session", 60)
		require.NoError(t, err)

		updated, err := svc.Update(ctx, tpl.ID, "user-1", "Long Workout", "", 0)
		assert.NoError(t, err)
		assert.Equal(t, "Long Workout", updated.Name)
		assert.Equal(t, "Gym session", updated.Description)
		assert.Equal(t, 60, updated.DurationMinutes)
		assert.Equal(t, 2, updated.Version)
	})

	t.Run("Ownership is enforced", func(t *testing.T) {
		repo := NewMockTemplateRepo()
		svc := services.NewTemplateService(repo)

		tpl, err := svc.Create(ctx, "user-1", "Workout", "", 60)
		require.NoError(t, err)

		_, err = svc.GetByID(ctx, tpl.ID, "user-2")
		assert.ErrorIs(t, err, domain.ErrTemplateNotFound)

		err = svc.Delete(ctx, tpl.ID, "user-2")
		assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
	})

	t.Run("Delete soft-deletes", func(t *testing.T) {
		repo := NewMockTemplateRepo()
		svc := services.NewTemplateService(repo)

		tpl, err := svc.Create(ctx, "user-1", "Workout", "", 60)
		require.NoError(t, err)

		assert.NoError(t, svc.Delete(ctx, tpl.ID, "user-1"))

		_, err = svc.GetByID(ctx, tpl.ID, "user-1")
		assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
		assert.NotNil(t, repo.store[tpl.ID].DeletedAt)
	})
}
