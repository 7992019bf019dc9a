package domain

// Snapshot is the fully-loaded per-user aggregate the pure calculators
// operate on. The storage adapters own the mutable copy; core functions take
// a snapshot and return derived values or next-state entities without
// touching anything else inside it.
type Snapshot struct {
	Habits         []*Habit              `json:"habits"`
	TrackingFields []*TrackingField      `json:"tracking_fields"`
	Days           map[string]*DayRecord `json:"days"`
	Events         []*Event              `json:"events"`
	Templates      []*Template           `json:"templates"`

	// LastModified is the last-write-wins clock exchanged with clients,
	// epoch milliseconds.
	LastModified int64 `json:"last_modified"`
}

// ActiveHabits returns the habits that participate in status and stat
// aggregation: not archived, not deleted.
func (s *Snapshot) ActiveHabits() []*Habit {
	var active []*Habit
	for _, h := range s.Habits {
		if h.ArchivedAt == nil && h.DeletedAt == nil {
			active = append(active, h)
		}
	}
	return active
}

// Day returns the record for a date key, nil when the day was never written.
func (s *Snapshot) Day(date string) *DayRecord {
	if s.Days == nil {
		return nil
	}
	return s.Days[date]
}
