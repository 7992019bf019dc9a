package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ritmo-app/ritmo-sync-engine/internal/core/domain"
)

type PostgresDayRepository struct {
	db *sqlx.DB
}

func NewPostgresDayRepository(db *sqlx.DB) *PostgresDayRepository {
	return &PostgresDayRepository{db: db}
}

const dayColumns = `
    id, user_id, date, completions, field_values,
    version, created_at, updated_at, deleted_at`

func (r *PostgresDayRepository) scanRow(row scannable) (*domain.DayRecord, error) {
	var rec domain.DayRecord
	var completionsJSON, valuesJSON []byte

	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.Date, &completionsJSON, &valuesJSON,
		&rec.Version, &rec.CreatedAt, &rec.UpdatedAt, &rec.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(completionsJSON) > 0 {
		if err := json.Unmarshal(completionsJSON, &rec.Completions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal completions: %w", err)
		}
	}
	if len(valuesJSON) > 0 {
		if err := json.Unmarshal(valuesJSON, &rec.Values); err != nil {
			return nil, fmt.Errorf("failed to unmarshal values: %w", err)
		}
	}

	return &rec, nil
}

// Upsert writes the full completion and value maps for (user, date). The
// stored maps are replaced, not merged; callers always hold the whole day.
func (r *PostgresDayRepository) Upsert(ctx context.Context, rec *domain.DayRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	completionsJSON, err := json.Marshal(rec.Completions)
	if err != nil {
		return fmt.Errorf("failed to marshal completions: %w", err)
	}
	valuesJSON, err := json.Marshal(rec.Values)
	if err != nil {
		return fmt.Errorf("failed to marshal values: %w", err)
	}

	query := `
        INSERT INTO day_records (
            id, user_id, date, completions, field_values,
            version, created_at, updated_at, deleted_at
        ) VALUES (
            $1, $2, $3, $4, $5,
            $6, $7, $8, NULL
        )
        ON CONFLICT (user_id, date) DO UPDATE SET
            completions = EXCLUDED.completions,
            field_values = EXCLUDED.field_values,
            version = day_records.version + 1,
            updated_at = NOW(),
            deleted_at = NULL
        RETURNING id, version, updated_at`

	row := r.db.QueryRowContext(ctx, query,
		rec.ID, rec.UserID, rec.Date, completionsJSON, valuesJSON,
		rec.Version, rec.CreatedAt, rec.UpdatedAt,
	)

	if err := row.Scan(&rec.ID, &rec.Version, &rec.UpdatedAt); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return errors.New("referenced user does not exist")
		}
		return fmt.Errorf("day upsert failed: %w", err)
	}

	return nil
}

func (r *PostgresDayRepository) GetByDate(ctx context.Context, userID, date string) (*domain.DayRecord, error) {
	query := `SELECT ` + dayColumns + ` FROM day_records
        WHERE user_id = $1 AND date = $2 AND deleted_at IS NULL`

	row := r.db.QueryRowContext(ctx, query, userID, date)

	rec, err := r.scanRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDayNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return rec, nil
}

func (r *PostgresDayRepository) ListByRange(ctx context.Context, userID, from, to string) ([]*domain.DayRecord, error) {
	query := `
        SELECT ` + dayColumns + ` FROM day_records
        WHERE user_id = $1 AND date >= $2 AND date <= $3 AND deleted_at IS NULL
        ORDER BY date ASC`

	rows, err := r.db.QueryContext(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var records []*domain.DayRecord

	for rows.Next() {
		rec, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("row scan error: %w", err)
		}
		records = append(records, rec)
	}

	return records, nil
}

func (r *PostgresDayRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.DayRecord, error) {
	query := `
        SELECT ` + dayColumns + ` FROM day_records
        WHERE user_id = $1 AND updated_at > $2
        ORDER BY updated_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("sync query error: %w", err)
	}
	defer rows.Close()

	var records []*domain.DayRecord

	for rows.Next() {
		rec, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("sync row scan error: %w", err)
		}
		records = append(records, rec)
	}

	return records, nil
}
