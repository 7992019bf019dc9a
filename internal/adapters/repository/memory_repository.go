package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ritmo-app/ritmo-sync-engine/internal/core/domain"
)

// In-memory repositories back the test suites and the local development mode
// where no Postgres is available. They hold deep-enough copies that callers
// can mutate returned entities freely.

var (
	_ domain.HabitRepository         = (*InMemoryHabitRepository)(nil)
	_ domain.DayRecordRepository     = (*InMemoryDayRepository)(nil)
	_ domain.EventRepository         = (*InMemoryEventRepository)(nil)
	_ domain.TrackingFieldRepository = (*InMemoryFieldRepository)(nil)
	_ domain.TemplateRepository      = (*InMemoryTemplateRepository)(nil)
	_ domain.UserRepository          = (*InMemoryUserRepository)(nil)
)

type InMemoryHabitRepository struct {
	store map[string]*domain.Habit

	mu sync.RWMutex
}

func NewInMemoryHabitRepository() *InMemoryHabitRepository {
	return &InMemoryHabitRepository{
		store: make(map[string]*domain.Habit),
	}
}

func cloneHabit(h *domain.Habit) *domain.Habit {
	clone := *h
	if h.BuildUp != nil {
		cfg := *h.BuildUp
		clone.BuildUp = &cfg
	}
	return &clone
}

func (r *InMemoryHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[habit.ID] = cloneHabit(habit)
	return nil
}

func (r *InMemoryHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habit, ok := r.store[id]
	if !ok || habit.DeletedAt != nil {
		return nil, domain.ErrHabitNotFound
	}
	return cloneHabit(habit), nil
}

func (r *InMemoryHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var habits []*domain.Habit
	for _, h := range r.store {
		if h.UserID == userID && h.DeletedAt == nil {
			habits = append(habits, cloneHabit(h))
		}
	}

	sort.Slice(habits, func(i, j int) bool {
		return habits[i].SortOrder < habits[j].SortOrder
	})

	return habits, nil
}

func (r *InMemoryHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[habit.ID]; !ok {
		return domain.ErrHabitNotFound
	}
	r.store[habit.ID] = cloneHabit(habit)
	return nil
}

func (r *InMemoryHabitRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	habit, ok := r.store[id]
	if !ok || habit.DeletedAt != nil {
		return domain.ErrHabitNotFound
	}

	now := time.Now().UTC()
	habit.DeletedAt = &now
	habit.UpdatedAt = now
	habit.Version++
	return nil
}

func (r *InMemoryHabitRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var habits []*domain.Habit
	for _, h := range r.store {
		if h.UserID == userID && h.UpdatedAt.After(since) {
			habits = append(habits, cloneHabit(h))
		}
	}

	sort.Slice(habits, func(i, j int) bool {
		return habits[i].UpdatedAt.Before(habits[j].UpdatedAt)
	})

	return habits, nil
}

func (r *InMemoryHabitRepository) UpdateStreaks(ctx context.Context, id string, current, longest, lastMilestone int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	habit, ok := r.store[id]
	if !ok || habit.DeletedAt != nil {
		return domain.ErrHabitNotFound
	}

	habit.CurrentStreak = current
	habit.LongestStreak = longest
	habit.LastMilestone = lastMilestone
	habit.UpdatedAt = time.Now().UTC()
	return nil
}

type InMemoryDayRepository struct {
	store map[string]*domain.DayRecord

	mu sync.RWMutex
}

func NewInMemoryDayRepository() *InMemoryDayRepository {
	return &InMemoryDayRepository{
		store: make(map[string]*domain.DayRecord),
	}
}

func dayStoreKey(userID, date string) string {
	return userID + "|" + date
}

func cloneDay(rec *domain.DayRecord) *domain.DayRecord {
	clone := *rec
	if rec.Completions != nil {
		clone.Completions = make(map[string]bool, len(rec.Completions))
		for k, v := range rec.Completions {
			clone.Completions[k] = v
		}
	}
	if rec.Values != nil {
		clone.Values = make(map[string]string, len(rec.Values))
		for k, v := range rec.Values {
			clone.Values[k] = v
		}
	}
	return &clone
}

func (r *InMemoryDayRepository) Upsert(ctx context.Context, rec *domain.DayRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := dayStoreKey(rec.UserID, rec.Date)
	if existing, ok := r.store[key]; ok {
		rec.ID = existing.ID
		rec.Version = existing.Version + 1
	}
	rec.UpdatedAt = time.Now().UTC()
	r.store[key] = cloneDay(rec)
	return nil
}

func (r *InMemoryDayRepository) GetByDate(ctx context.Context, userID, date string) (*domain.DayRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.store[dayStoreKey(userID, date)]
	if !ok || rec.DeletedAt != nil {
		return nil, domain.ErrDayNotFound
	}
	return cloneDay(rec), nil
}

func (r *InMemoryDayRepository) ListByRange(ctx context.Context, userID, from, to string) ([]*domain.DayRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var records []*domain.DayRecord
	for _, rec := range r.store {
		if rec.UserID == userID && rec.Date >= from && rec.Date <= to && rec.DeletedAt == nil {
			records = append(records, cloneDay(rec))
		}
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Date < records[j].Date
	})

	return records, nil
}

func (r *InMemoryDayRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.DayRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var records []*domain.DayRecord
	for _, rec := range r.store {
		if rec.UserID == userID && rec.UpdatedAt.After(since) {
			records = append(records, cloneDay(rec))
		}
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].UpdatedAt.Before(records[j].UpdatedAt)
	})

	return records, nil
}

type InMemoryEventRepository struct {
	store map[string]*domain.Event

	mu sync.RWMutex
}

func NewInMemoryEventRepository() *InMemoryEventRepository {
	return &InMemoryEventRepository{
		store: make(map[string]*domain.Event),
	}
}

func cloneEvent(e *domain.Event) *domain.Event {
	clone := *e
	if e.Recurrence != nil {
		rec := *e.Recurrence
		clone.Recurrence = &rec
	}
	return &clone
}

func (r *InMemoryEventRepository) Create(ctx context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[event.ID] = cloneEvent(event)
	return nil
}

func (r *InMemoryEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	event, ok := r.store[id]
	if !ok || event.DeletedAt != nil {
		return nil, domain.ErrEventNotFound
	}
	return cloneEvent(event), nil
}

func (r *InMemoryEventRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var events []*domain.Event
	for _, e := range r.store {
		if e.UserID == userID && e.DeletedAt == nil {
			events = append(events, cloneEvent(e))
		}
	}

	sort.Slice(events, func(i, j int) bool {
		if events[i].Date != events[j].Date {
			return events[i].Date < events[j].Date
		}
		return events[i].StartTime < events[j].StartTime
	})

	return events, nil
}

func (r *InMemoryEventRepository) ListChildren(ctx context.Context, parentEventID string) ([]*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var events []*domain.Event
	for _, e := range r.store {
		if e.ParentEventID != nil && *e.ParentEventID == parentEventID && e.DeletedAt == nil {
			events = append(events, cloneEvent(e))
		}
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Date < events[j].Date
	})

	return events, nil
}

func (r *InMemoryEventRepository) Update(ctx context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[event.ID]; !ok {
		return domain.ErrEventNotFound
	}
	r.store[event.ID] = cloneEvent(event)
	return nil
}

func (r *InMemoryEventRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.store[id]
	if !ok || event.DeletedAt != nil {
		return domain.ErrEventNotFound
	}

	now := time.Now().UTC()
	event.DeletedAt = &now
	event.UpdatedAt = now
	event.Version++

	// Detached children die with their series.
	for _, e := range r.store {
		if e.ParentEventID != nil && *e.ParentEventID == id && e.DeletedAt == nil {
			e.DeletedAt = &now
			e.UpdatedAt = now
			e.Version++
		}
	}
	return nil
}

func (r *InMemoryEventRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var events []*domain.Event
	for _, e := range r.store {
		if e.UserID == userID && e.UpdatedAt.After(since) {
			events = append(events, cloneEvent(e))
		}
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].UpdatedAt.Before(events[j].UpdatedAt)
	})

	return events, nil
}

type InMemoryFieldRepository struct {
	store map[string]*domain.TrackingField

	mu sync.RWMutex
}

func NewInMemoryFieldRepository() *InMemoryFieldRepository {
	return &InMemoryFieldRepository{
		store: make(map[string]*domain.TrackingField),
	}
}

func (r *InMemoryFieldRepository) Create(ctx context.Context, field *domain.TrackingField) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *field
	r.store[field.ID] = &clone
	return nil
}

func (r *InMemoryFieldRepository) GetByID(ctx context.Context, id string) (*domain.TrackingField, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	field, ok := r.store[id]
	if !ok || field.DeletedAt != nil {
		return nil, domain.ErrFieldNotFound
	}
	clone := *field
	return &clone, nil
}

func (r *InMemoryFieldRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.TrackingField, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var fields []*domain.TrackingField
	for _, f := range r.store {
		if f.UserID == userID && f.DeletedAt == nil {
			clone := *f
			fields = append(fields, &clone)
		}
	}

	sort.Slice(fields, func(i, j int) bool {
		return fields[i].CreatedAt.Before(fields[j].CreatedAt)
	})

	return fields, nil
}

func (r *InMemoryFieldRepository) Update(ctx context.Context, field *domain.TrackingField) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[field.ID]; !ok {
		return domain.ErrFieldNotFound
	}
	clone := *field
	r.store[field.ID] = &clone
	return nil
}

func (r *InMemoryFieldRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	field, ok := r.store[id]
	if !ok || field.DeletedAt != nil {
		return domain.ErrFieldNotFound
	}

	now := time.Now().UTC()
	field.DeletedAt = &now
	field.UpdatedAt = now
	field.Version++
	return nil
}

func (r *InMemoryFieldRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.TrackingField, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var fields []*domain.TrackingField
	for _, f := range r.store {
		if f.UserID == userID && f.UpdatedAt.After(since) {
			clone := *f
			fields = append(fields, &clone)
		}
	}
	return fields, nil
}

type InMemoryTemplateRepository struct {
	store map[string]*domain.Template

	mu sync.RWMutex
}

func NewInMemoryTemplateRepository() *InMemoryTemplateRepository {
	return &InMemoryTemplateRepository{
		store: make(map[string]*domain.Template),
	}
}

func (r *InMemoryTemplateRepository) Create(ctx context.Context, template *domain.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *template
	r.store[template.ID] = &clone
	return nil
}

func (r *InMemoryTemplateRepository) GetByID(ctx context.Context, id string) (*domain.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	template, ok := r.store[id]
	if !ok || template.DeletedAt != nil {
		return nil, domain.ErrTemplateNotFound
	}
	clone := *template
	return &clone, nil
}

func (r *InMemoryTemplateRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var templates []*domain.Template
	for _, t := range r.store {
		if t.UserID == userID && t.DeletedAt == nil {
			clone := *t
			templates = append(templates, &clone)
		}
	}

	sort.Slice(templates, func(i, j int) bool {
		return templates[i].Name < templates[j].Name
	})

	return templates, nil
}

func (r *InMemoryTemplateRepository) Update(ctx context.Context, template *domain.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[template.ID]; !ok {
		return domain.ErrTemplateNotFound
	}
	clone := *template
	r.store[template.ID] = &clone
	return nil
}

func (r *InMemoryTemplateRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	template, ok := r.store[id]
	if !ok || template.DeletedAt != nil {
		return domain.ErrTemplateNotFound
	}

	now := time.Now().UTC()
	template.DeletedAt = &now
	template.UpdatedAt = now
	template.Version++
	return nil
}

func (r *InMemoryTemplateRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var templates []*domain.Template
	for _, t := range r.store {
		if t.UserID == userID && t.UpdatedAt.After(since) {
			clone := *t
			templates = append(templates, &clone)
		}
	}
	return templates, nil
}

type InMemoryUserRepository struct {
	byID    map[string]*domain.User
	byEmail map[string]*domain.User

	mu sync.RWMutex
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]*domain.User),
	}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return domain.ErrEmailAlreadyExists
	}

	clone := *user
	r.byID[user.ID] = &clone
	r.byEmail[user.Email] = &clone
	return nil
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}
