package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ritmo-app/ritmo-sync-engine/internal/core/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresHabitRepository struct {
	db *sqlx.DB
}

func NewPostgresHabitRepository(db *sqlx.DB) *PostgresHabitRepository {
	return &PostgresHabitRepository{db: db}
}

type scannable interface {
	Scan(dest ...interface{}) error
}

const habitColumns = `
    id, user_id, name, description, color, sort_order,
    archived_at, is_build_up, build_up,
    current_streak, longest_streak, last_milestone,
    version, deleted_at, created_at, updated_at`

func (r *PostgresHabitRepository) scanRow(row scannable) (*domain.Habit, error) {
	var h domain.Habit
	var buildUpJSON []byte

	err := row.Scan(
		&h.ID, &h.UserID, &h.Name, &h.Description, &h.Color, &h.SortOrder,
		&h.ArchivedAt, &h.IsBuildUp, &buildUpJSON,
		&h.CurrentStreak, &h.LongestStreak, &h.LastMilestone,
		&h.Version, &h.DeletedAt, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(buildUpJSON) > 0 {
		var cfg domain.BuildUpConfig
		if err := json.Unmarshal(buildUpJSON, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal build-up config: %w", err)
		}
		h.BuildUp = &cfg
	}

	return &h, nil
}

func marshalBuildUp(h *domain.Habit) ([]byte, error) {
	if h.BuildUp == nil {
		return nil, nil
	}
	return json.Marshal(h.BuildUp)
}

func (r *PostgresHabitRepository) Create(ctx context.Context, h *domain.Habit) error {
	buildUpJSON, err := marshalBuildUp(h)
	if err != nil {
		return fmt.Errorf("failed to marshal build-up config: %w", err)
	}

	query := `
        INSERT INTO habits (
            id, user_id, name, description, color, sort_order,
            archived_at, is_build_up, build_up,
            current_streak, longest_streak, last_milestone,
            version, deleted_at, created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6,
            $7, $8, $9,
            0, 0, 0,
            1, NULL, $10, $11
        )`

	_, err = r.db.ExecContext(ctx, query,
		h.ID, h.UserID, h.Name, h.Description, h.Color, h.SortOrder,
		h.ArchivedAt, h.IsBuildUp, buildUpJSON,
		h.CreatedAt, h.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert habit: %w", err)
	}

	h.Version = 1
	return nil
}

func (r *PostgresHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE id = $1 AND deleted_at IS NULL`

	row := r.db.QueryRowContext(ctx, query, id)

	h, err := r.scanRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHabitNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return h, nil
}

func (r *PostgresHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	query := `
        SELECT ` + habitColumns + ` FROM habits
        WHERE user_id = $1 AND deleted_at IS NULL
        ORDER BY sort_order ASC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var habits []*domain.Habit

	for rows.Next() {
		h, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("row scan error: %w", err)
		}
		habits = append(habits, h)
	}

	return habits, nil
}

func (r *PostgresHabitRepository) Update(ctx context.Context, h *domain.Habit) error {
	buildUpJSON, err := marshalBuildUp(h)
	if err != nil {
		return err
	}

	query := `
        UPDATE habits SET
            name=$1, description=$2, color=$3, sort_order=$4,
            archived_at=$5, is_build_up=$6, build_up=$7,
            updated_at=NOW(), version = $8
        WHERE id=$9 AND version < $8 AND deleted_at IS NULL
        RETURNING version, updated_at`

	row := r.db.QueryRowContext(ctx, query,
		h.Name, h.Description, h.Color, h.SortOrder,
		h.ArchivedAt, h.IsBuildUp, buildUpJSON,
		h.Version, h.ID,
	)

	var newVersion int
	var newUpdatedAt time.Time

	err = row.Scan(&newVersion, &newUpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			existsQuery := `SELECT count(*) FROM habits WHERE id = $1`
			var count int
			if checkErr := r.db.QueryRowContext(ctx, existsQuery, h.ID).Scan(&count); checkErr != nil {
				return fmt.Errorf("existence check failed: %w", checkErr)
			}

			if count == 0 {
				return domain.ErrHabitNotFound
			}
			return domain.ErrHabitConflict
		}
		return fmt.Errorf("update query failed: %w", err)
	}

	h.Version = newVersion
	h.UpdatedAt = newUpdatedAt

	return nil
}

func (r *PostgresHabitRepository) Delete(ctx context.Context, id string) error {
	query := `
        UPDATE habits
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
		return domain.ErrHabitNotFound
	}

	return nil
}

func (r *PostgresHabitRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Habit, error) {
	query := `
        SELECT ` + habitColumns + ` FROM habits
        WHERE user_id = $1 AND updated_at > $2
        ORDER BY updated_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("sync query error: %w", err)
	}
	defer rows.Close()

	var habits []*domain.Habit

	for rows.Next() {
		h, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("sync row scan error: %w", err)
		}
		habits = append(habits, h)
	}

	return habits, nil
}

// UpdateStreaks writes only the denormalized streak columns and leaves the
// version untouched; a background recalculation must never collide with a
// user edit.
func (r *PostgresHabitRepository) UpdateStreaks(ctx context.Context, id string, current, longest, lastMilestone int) error {
	query := `
        UPDATE habits
        SET current_streak = $1, longest_streak = $2, last_milestone = $3, updated_at = NOW()
        WHERE id = $4 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, current, longest, lastMilestone, id)
	if err != nil {
		return fmt.Errorf("streak update failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}
