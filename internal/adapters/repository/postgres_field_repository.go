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

type PostgresFieldRepository struct {
	db *sqlx.DB
}

func NewPostgresFieldRepository(db *sqlx.DB) *PostgresFieldRepository {
	return &PostgresFieldRepository{db: db}
}

func (r *PostgresFieldRepository) Create(ctx context.Context, f *domain.TrackingField) error {
	query := `
        INSERT INTO tracking_fields (
            id, user_id, name, type, unit, description,
            version, created_at, updated_at, deleted_at
        ) VALUES (
            :id, :user_id, :name, :type, :unit, :description,
            :version, :created_at, :updated_at, :deleted_at
        )`

	_, err := r.db.NamedExecContext(ctx, query, f)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23503" {
				return errors.New("referenced user does not exist")
			}
			if pqErr.Code == "23505" {
				return errors.New("tracking field already exists")
			}
		}
		return fmt.Errorf("failed to insert tracking field: %w", err)
	}
	return nil
}

func (r *PostgresFieldRepository) GetByID(ctx context.Context, id string) (*domain.TrackingField, error) {
	var f domain.TrackingField
	query := `SELECT * FROM tracking_fields WHERE id = $1 AND deleted_at IS NULL`

	err := r.db.GetContext(ctx, &f, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrFieldNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *PostgresFieldRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.TrackingField, error) {
	fields := []*domain.TrackingField{}

	query := `
        SELECT * FROM tracking_fields
        WHERE user_id = $1 AND deleted_at IS NULL
        ORDER BY created_at ASC`

	if err := r.db.SelectContext(ctx, &fields, query, userID); err != nil {
		return nil, err
	}
	return fields, nil
}

func (r *PostgresFieldRepository) Update(ctx context.Context, f *domain.TrackingField) error {
	query := `
        UPDATE tracking_fields
        SET name = :name, unit = :unit, description = :description,
            version = :version, updated_at = :updated_at
        WHERE id = :id AND version < :version AND deleted_at IS NULL`

	result, err := r.db.NamedExecContext(ctx, query, f)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrFieldNotFound
	}
	return nil
}

func (r *PostgresFieldRepository) Delete(ctx context.Context, id string) error {
	query := `
        UPDATE tracking_fields
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
		return domain.ErrFieldNotFound
	}
	return nil
}

func (r *PostgresFieldRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.TrackingField, error) {
	fields := []*domain.TrackingField{}

	query := `
        SELECT * FROM tracking_fields
        WHERE user_id = $1 AND updated_at > $2
        ORDER BY updated_at ASC`

	if err := r.db.SelectContext(ctx, &fields, query, userID, since); err != nil {
		return nil, fmt.Errorf("sync query error: %w", err)
	}
	return fields, nil
}
