package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ritmo-app/ritmo-sync-engine/internal/core/domain"
)

type PostgresEventRepository struct {
	db *sqlx.DB
}

func NewPostgresEventRepository(db *sqlx.DB) *PostgresEventRepository {
	return &PostgresEventRepository{db: db}
}

const eventColumns = `
    id, user_id, title, description,
    date, start_time, duration_minutes,
    recurrence, parent_event_id,
    version, created_at, updated_at, deleted_at`

func (r *PostgresEventRepository) scanRow(row scannable) (*domain.Event, error) {
	var e domain.Event
	var recurrenceJSON []byte

	err := row.Scan(
		&e.ID, &e.UserID, &e.Title, &e.Description,
		&e.Date, &e.StartTime, &e.DurationMinutes,
		&recurrenceJSON, &e.ParentEventID,
		&e.Version, &e.CreatedAt, &e.UpdatedAt, &e.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(recurrenceJSON) > 0 {
		var rec domain.Recurrence
		if err := json.Unmarshal(recurrenceJSON, &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal recurrence: %w", err)
		}
		e.Recurrence = &rec
	}

	return &e, nil
}

func marshalRecurrence(e *domain.Event) ([]byte, error) {
	if e.Recurrence == nil {
		return nil, nil
	}
	return json.Marshal(e.Recurrence)
}

func (r *PostgresEventRepository) Create(ctx context.Context, e *domain.Event) error {
	recurrenceJSON, err := marshalRecurrence(e)
	if err != nil {
		return fmt.Errorf("failed to marshal recurrence: %w", err)
	}

	query := `
        INSERT INTO events (
            id, user_id, title, description,
            date, start_time, duration_minutes,
            recurrence, parent_event_id,
            version, created_at, updated_at, deleted_at
        ) VALUES (
            $1, $2, $3, $4,
            $5, $6, $7,
            $8, $9,
            1, $10, $11, NULL
        )`

	_, err = r.db.ExecContext(ctx, query,
		e.ID, e.UserID, e.Title, e.Description,
		e.Date, e.StartTime, e.DurationMinutes,
		recurrenceJSON, e.ParentEventID,
		e.CreatedAt, e.UpdatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23503" {
				return errors.New("referenced parent event or user does not exist")
			}
			if pqErr.Code == "23505" {
				return domain.ErrEventConflict
			}
		}
		return fmt.Errorf("failed to insert event: %w", err)
	}

	e.Version = 1
	return nil
}

func (r *PostgresEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 AND deleted_at IS NULL`

	row := r.db.QueryRowContext(ctx, query, id)

	e, err := r.scanRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return e, nil
}

func (r *PostgresEventRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Event, error) {
	query := `
        SELECT ` + eventColumns + ` FROM events
        WHERE user_id = $1 AND deleted_at IS NULL
        ORDER BY date ASC, start_time ASC`

	return r.list(ctx, query, userID)
}

func (r *PostgresEventRepository) ListChildren(ctx context.Context, parentEventID string) ([]*domain.Event, error) {
	query := `
        SELECT ` + eventColumns + ` FROM events
        WHERE parent_event_id = $1 AND deleted_at IS NULL
        ORDER BY date ASC`

	return r.list(ctx, query, parentEventID)
}

func (r *PostgresEventRepository) list(ctx context.Context, query string, arg interface{}) ([]*domain.Event, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var events []*domain.Event

	for rows.Next() {
		e, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("row scan error: %w", err)
		}
		events = append(events, e)
	}

	return events, nil
}

func (r *PostgresEventRepository) Update(ctx context.Context, e *domain.Event) error {
	recurrenceJSON, err := marshalRecurrence(e)
	if err != nil {
		return err
	}

	query := `
        UPDATE events SET
            title=$1, description=$2,
            date=$3, start_time=$4, duration_minutes=$5,
            recurrence=$6,
            updated_at=NOW(), version=$7
        WHERE id=$8 AND version < $7 AND deleted_at IS NULL
        RETURNING version, updated_at`

	row := r.db.QueryRowContext(ctx, query,
		e.Title, e.Description,
		e.Date, e.StartTime, e.DurationMinutes,
		recurrenceJSON,
		e.Version, e.ID,
	)

	var newVersion int
	var newUpdatedAt time.Time

	if err := row.Scan(&newVersion, &newUpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			var count int
			if checkErr := r.db.QueryRowContext(ctx, `SELECT count(*) FROM events WHERE id = $1`, e.ID).Scan(&count); checkErr != nil {
				return fmt.Errorf("existence check failed: %w", checkErr)
			}
			if count == 0 {
				return domain.ErrEventNotFound
			}
			return domain.ErrEventConflict
		}
		return fmt.Errorf("update query failed: %w", err)
	}

	e.Version = newVersion
	e.UpdatedAt = newUpdatedAt

	return nil
}

// Delete soft-deletes the event and any detached children carved out of its
// series, keeping the whole series consistent for sync clients.
func (r *PostgresEventRepository) Delete(ctx context.Context, id string) error {
	query := `
        UPDATE events
        SET deleted_at = NOW(), updated_at = NOW(), version = version + 1
        WHERE (id = $1 OR parent_event_id = $1) AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrEventNotFound
	}

	return nil
}

func (r *PostgresEventRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Event, error) {
	query := `
        SELECT ` + eventColumns + ` FROM events
        WHERE user_id = $1 AND updated_at > $2
        ORDER BY updated_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("sync query error: %w", err)
	}
	defer rows.Close()

	var events []*domain.Event

	for rows.Next() {
		e, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("sync row scan error: %w", err)
		}
		events = append(events, e)
	}

	return events, nil
}
