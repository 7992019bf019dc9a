package services

import (
	"context"
	"errors"
	"time"

	"github.com/ritmo-app/ritmo-sync-engine/internal/core/domain"
)

// SyncService implements offline-first delta sync. Pull returns everything
// that changed after the client's last sync point; Push merges client
// changes last-write-wins on UpdatedAt, returning the surviving server copy
// for every record the client lost.
type SyncService struct {
	habitRepo    domain.HabitRepository
	dayRepo      domain.DayRecordRepository
	eventRepo    domain.EventRepository
	fieldRepo    domain.TrackingFieldRepository
	templateRepo domain.TemplateRepository
}

func NewSyncService(
	habitRepo domain.HabitRepository,
	dayRepo domain.DayRecordRepository,
	eventRepo domain.EventRepository,
	fieldRepo domain.TrackingFieldRepository,
	templateRepo domain.TemplateRepository,
) *SyncService {
	return &SyncService{
		habitRepo:    habitRepo,
		dayRepo:      dayRepo,
		eventRepo:    eventRepo,
		fieldRepo:    fieldRepo,
		templateRepo: templateRepo,
	}
}

// Delta carries every change after a sync point, soft-deletes included.
// ServerTime is the last-write-wins clock the client must store as its next
// `since`, epoch milliseconds.
type Delta struct {
	ServerTime int64                   `json:"server_time"`
	Habits     []*domain.Habit         `json:"habits"`
	Days       []*domain.DayRecord     `json:"days"`
	Events     []*domain.Event         `json:"events"`
	Fields     []*domain.TrackingField `json:"fields"`
	Templates  []*domain.Template      `json:"templates"`
}

type PushInput struct {
	UserID    string
	Habits    []*domain.Habit
	Days      []*domain.DayRecord
	Events    []*domain.Event
	Fields    []*domain.TrackingField
	Templates []*domain.Template
}

// Conflict reports a client record that lost the merge; Server holds the
// winning copy for the client to adopt.
type Conflict struct {
	Kind   string      `json:"kind"`
	ID     string      `json:"id"`
	Server interface{} `json:"server"`
}

type PushResult struct {
	Applied   int        `json:"applied"`
	Conflicts []Conflict `json:"conflicts"`
}

func (s *SyncService) Pull(ctx context.Context, userID string, since time.Time) (*Delta, error) {
	habits, err := s.habitRepo.GetChanges(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	days, err := s.dayRepo.GetChanges(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	events, err := s.eventRepo.GetChanges(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	fields, err := s.fieldRepo.GetChanges(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	templates, err := s.templateRepo.GetChanges(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	return &Delta{
		ServerTime: time.Now().UTC().UnixMilli(),
		Habits:     habits,
		Days:       days,
		Events:     events,
		Fields:     fields,
		Templates:  templates,
	}, nil
}

// Snapshot loads the full live aggregate for a first-run bootstrap. Unlike
// Pull it excludes soft-deleted records: a fresh client has nothing to
// tombstone.
func (s *SyncService) Snapshot(ctx context.Context, userID string) (*domain.Snapshot, error) {
	habits, err := s.habitRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	fields, err := s.fieldRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	events, err := s.eventRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	templates, err := s.templateRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	days, err := s.dayRepo.GetChanges(ctx, userID, time.Time{})
	if err != nil {
		return nil, err
	}
	live := make([]*domain.DayRecord, 0, len(days))
	for _, d := range days {
		if d.DeletedAt == nil {
			live = append(live, d)
		}
	}

	return &domain.Snapshot{
		Habits:         habits,
		TrackingFields: fields,
		Days:           domain.DayMap(live),
		Events:         events,
		Templates:      templates,
		LastModified:   time.Now().UTC().UnixMilli(),
	}, nil
}

func (s *SyncService) Push(ctx context.Context, input PushInput) (*PushResult, error) {
	result := &PushResult{}

	for _, h := range input.Habits {
		if h == nil || h.UserID != input.UserID {
			continue
		}
		if err := s.pushHabit(ctx, h, result); err != nil {
			return nil, err
		}
	}
	for _, d := range input.Days {
		if d == nil || d.UserID != input.UserID {
			continue
		}
		if err := s.pushDay(ctx, d, result); err != nil {
			return nil, err
		}
	}
	for _, e := range input.Events {
		if e == nil || e.UserID != input.UserID {
			continue
		}
		if err := s.pushEvent(ctx, e, result); err != nil {
			return nil, err
		}
	}
	for _, f := range input.Fields {
		if f == nil || f.UserID != input.UserID {
			continue
		}
		if err := s.pushField(ctx, f, result); err != nil {
			return nil, err
		}
	}
	for _, t := range input.Templates {
		if t == nil || t.UserID != input.UserID {
			continue
		}
		if err := s.pushTemplate(ctx, t, result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func (s *SyncService) pushHabit(ctx context.Context, client *domain.Habit, result *PushResult) error {
	server, err := s.habitRepo.GetByID(ctx, client.ID)
	if err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			if err := s.habitRepo.Create(ctx, client); err != nil {
				return err
			}
			result.Applied++
			return nil
		}
		return err
	}

	if client.UpdatedAt.After(server.UpdatedAt) {
		if err := s.habitRepo.Update(ctx, client); err != nil {
			return err
		}
		result.Applied++
		return nil
	}

	result.Conflicts = append(result.Conflicts, Conflict{Kind: "habit", ID: client.ID, Server: server})
	return nil
}

func (s *SyncService) pushDay(ctx context.Context, client *domain.DayRecord, result *PushResult) error {
	server, err := s.dayRepo.GetByDate(ctx, client.UserID, client.Date)
	if err != nil {
		if errors.Is(err, domain.ErrDayNotFound) {
			if err := s.dayRepo.Upsert(ctx, client); err != nil {
				return err
			}
			result.Applied++
			return nil
		}
		return err
	}

	if client.UpdatedAt.After(server.UpdatedAt) {
		client.ID = server.ID
		if err := s.dayRepo.Upsert(ctx, client); err != nil {
			return err
		}
		result.Applied++
		return nil
	}

	result.Conflicts = append(result.Conflicts, Conflict{Kind: "day", ID: client.Date, Server: server})
	return nil
}

func (s *SyncService) pushEvent(ctx context.Context, client *domain.Event, result *PushResult) error {
	server, err := s.eventRepo.GetByID(ctx, client.ID)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			if err := s.eventRepo.Create(ctx, client); err != nil {
				return err
			}
			result.Applied++
			return nil
		}
		return err
	}

	if client.UpdatedAt.After(server.UpdatedAt) {
		if err := s.eventRepo.Update(ctx, client); err != nil {
			return err
		}
		result.Applied++
		return nil
	}

	result.Conflicts = append(result.Conflicts, Conflict{Kind: "event", ID: client.ID, Server: server})
	return nil
}

func (s *SyncService) pushField(ctx context.Context, client *domain.TrackingField, result *PushResult) error {
	server, err := s.fieldRepo.GetByID(ctx, client.ID)
	if err != nil {
		if errors.Is(err, domain.ErrFieldNotFound) {
			if err := s.fieldRepo.Create(ctx, client); err != nil {
				return err
			}
			result.Applied++
			return nil
		}
		return err
	}

	if client.UpdatedAt.After(server.UpdatedAt) {
		if err := s.fieldRepo.Update(ctx, client); err != nil {
			return err
		}
		result.Applied++
		return nil
	}

	result.Conflicts = append(result.Conflicts, Conflict{Kind: "field", ID: client.ID, Server: server})
	return nil
}

func (s *SyncService) pushTemplate(ctx context.Context, client *domain.Template, result *PushResult) error {
	server, err := s.templateRepo.GetByID(ctx, client.ID)
	if err != nil {
		if errors.Is(err, domain.ErrTemplateNotFound) {
			if err := s.templateRepo.Create(ctx, client); err != nil {
				return err
			}
			result.Applied++
			return nil
		}
		return err
	}

	if client.UpdatedAt.After(server.UpdatedAt) {
		if err := s.templateRepo.Update(ctx, client); err != nil {
			return err
		}
		result.Applied++
		return nil
	}

	result.Conflicts = append(result.Conflicts, Conflict{Kind: "template", ID: client.ID, Server: server})
	return nil
}
