package services

import (
	"context"
	"sort"
	"time"

	"github.com/ritmo-app/ritmo-sync-engine/internal/core/dateutil"
	"github.com/ritmo-app/ritmo-sync-engine/internal/core/domain"
	"github.com/ritmo-app/ritmo-sync-engine/internal/core/recurrence"
)

type EventService struct {
	repo domain.EventRepository
}

func NewEventService(repo domain.EventRepository) *EventService {
	return &EventService{
		repo: repo,
	}
}

type CreateEventInput struct {
	UserID          string
	Title           string
	Description     string
	Date            string
	StartTime       string
	DurationMinutes int
	Recurrence      *domain.Recurrence
}

type UpdateEventInput struct {
	ID              string
	UserID          string
	Title           string
	Description     string
	Date            string
	StartTime       string
	DurationMinutes int
	Recurrence      *domain.Recurrence
	Version         int
}

// Occurrence is one concrete calendar entry derived from an event.
type Occurrence struct {
	EventID         string `json:"event_id"`
	Date            string `json:"date"`
	Title           string `json:"title"`
	StartTime       string `json:"start_time"`
	DurationMinutes int    `json:"duration_minutes"`
	Detached        bool   `json:"detached,omitempty"`
}

func (s *EventService) Create(ctx context.Context, input CreateEventInput) (*domain.Event, error) {
	event, err := domain.NewEvent(input.UserID, input.Title, input.Description, input.Date, input.StartTime, input.DurationMinutes, input.Recurrence)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventService) GetByID(ctx context.Context, id, userID string) (*domain.Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.UserID != userID {
		return nil, domain.ErrEventNotFound
	}
	return event, nil
}

func (s *EventService) ListByUserID(ctx context.Context, userID string) ([]*domain.Event, error) {
	return s.repo.ListByUserID(ctx, userID)
}

func (s *EventService) Update(ctx context.Context, input UpdateEventInput) (*domain.Event, error) {
	event, err := s.GetByID(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Version > 0 && event.Version != input.Version {
		return nil, domain.ErrEventConflict
	}

	if err := event.Update(input.Title, input.Description, input.Date, input.StartTime, input.DurationMinutes, input.Recurrence); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.GetByID(ctx, id, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// DetachOccurrence carves the given date out of a series into a standalone
// event. The series itself keeps occurring on that date as far as the pure
// engine is concerned; expansion skips it because a child now owns the slot.
func (s *EventService) DetachOccurrence(ctx context.Context, id, userID, date string) (*domain.Event, error) {
	event, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	day, err := dateutil.ParseDay(date)
	if err != nil {
		return nil, err
	}
	if !recurrence.OccursOn(event, day) {
		return nil, domain.ErrEventNotFound
	}

	child, err := event.Detach(date)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, child); err != nil {
		return nil, err
	}
	return child, nil
}

// Occurrences expands every event of the user into concrete dates within
// [from, to]. Dates owned by a detached child are excluded from the parent
// series; the children appear as their own single occurrences.
func (s *EventService) Occurrences(ctx context.Context, userID, from, to string) ([]Occurrence, error) {
	fromDay, err := dateutil.ParseDay(from)
	if err != nil {
		return nil, err
	}
	toDay, err := dateutil.ParseDay(to)
	if err != nil {
		return nil, err
	}

	events, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Detached dates per parent series.
	detached := make(map[string]map[string]bool)
	for _, e := range events {
		if e.ParentEventID != nil {
			if detached[*e.ParentEventID] == nil {
				detached[*e.ParentEventID] = make(map[string]bool)
			}
			detached[*e.ParentEventID][e.Date] = true
		}
	}

	var out []Occurrence
	for _, e := range events {
		for _, d := range recurrence.OccurrencesInRange(e, fromDay, toDay) {
			key := dateutil.FormatDay(d)
			if e.ParentEventID == nil && detached[e.ID][key] {
				continue
			}
			out = append(out, Occurrence{
				EventID:         e.ID,
				Date:            key,
				Title:           e.Title,
				StartTime:       e.StartTime,
				DurationMinutes: e.DurationMinutes,
				Detached:        e.ParentEventID != nil,
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].EventID < out[j].EventID
	})

	return out, nil
}

func (s *EventService) GetDelta(ctx context.Context, userID string, since time.Time) ([]*domain.Event, error) {
	return s.repo.GetChanges(ctx, userID, since)
}
