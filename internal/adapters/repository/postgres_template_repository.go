package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ritmo-app/ritmo-sync-engine/internal/core/domain"
)

type PostgresTemplateRepository struct {
	db *sqlx.DB
}

func NewPostgresTemplateRepository(db *sqlx.DB) *PostgresTemplateRepository {
	return &PostgresTemplateRepository{db: db}
}

func (r *PostgresTemplateRepository) Create(ctx context.Context, tpl *domain.Template) error {
	query := `
        INSERT INTO event_templates (
            id, user_id, name, description, duration_minutes,
            version, created_at, updated_at, deleted_at
        ) VALUES (
            :id, :user_id, :name, :description, :duration_minutes,
            :version, :created_at, :updated_at, :deleted_at
        )`

	_, err := r.db.NamedExecContext(ctx, query, tpl)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return errors.New("referenced user does not exist")
		}
		return fmt.Errorf("failed to insert template: %w", err)
	}
	return nil
}

func (r *PostgresTemplateRepository) GetByID(ctx context.Context, id string) (*domain.Template, error) {
	var tpl domain.Template
	query := `SELECT * FROM event_templates WHERE id = $1 AND deleted_at IS NULL`

	err := r.db.GetContext(ctx, &tpl, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTemplateNotFound
		}
		return nil, err
	}
	return &tpl, nil
}

func (r *PostgresTemplateRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Template, error) {
	templates := []*domain.Template{}

	query := `
        SELECT * FROM event_templates
        WHERE user_id = $1 AND deleted_at IS NULL
        ORDER BY name ASC`

	if err := r.db.SelectContext(ctx, &templates, query, userID); err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *PostgresTemplateRepository) Update(ctx context.Context, tpl *domain.Template) error {
	query := `
        UPDATE event_templates
        SET name = :name, description = :description, duration_minutes = :duration_minutes,
            version = :version, updated_at = :updated_at
        WHERE id = :id AND version < :version AND deleted_at IS NULL`

	result, err := r.db.NamedExecContext(ctx, query, tpl)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrTemplateNotFound
	}
	return nil
}

func (r *PostgresTemplateRepository) Delete(ctx context.Context, id string) error {
	query := `
        UPDATE event_templates
        SET deleted_at = NOW(), updated_at = NOW(), version = version + 1
        WHERE id = $1 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrTemplateNotFound
	}
	return nil
}

func (r *PostgresTemplateRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Template, error) {
	templates := []*domain.Template{}

	query := `
        SELECT * FROM event_templates
        WHERE user_id = $1 AND updated_at > $2
        ORDER BY updated_at ASC`

	if err := r.db.SelectContext(ctx, &templates, query, userID, since); err != nil {
		return nil, fmt.Errorf("sync query error: %w", err)
	}
	return templates, nil
}
