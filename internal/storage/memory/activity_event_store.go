package memory

import (
	"context"
	"sync"
	"time"

	"fitmetrics/internal/domain"
	"fitmetrics/internal/storage"
)

// ActivityEventStore is an in-memory implementation of storage.ActivityEventStore.
type ActivityEventStore struct {
	mu     sync.RWMutex
	events []*domain.ActivityEvent
}

// NewActivityEventStore creates a new in-memory activity event store.
func NewActivityEventStore() *ActivityEventStore {
	return &ActivityEventStore{}
}

// InsertBulk adds multiple events. Analytics rows, no uniqueness enforced.
func (s *ActivityEventStore) InsertBulk(_ context.Context, events []*domain.ActivityEvent) error {
	for _, e := range events {
		if e == nil || e.EventType == "" || e.UserID == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range events {
		eventCopy := *e
		s.events = append(s.events, &eventCopy)
	}
	return nil
}

// GetDailyCounts returns event counts per UTC calendar day within
// [start, end] (inclusive), keyed by the day's midnight in Unix ms.
func (s *ActivityEventStore) GetDailyCounts(_ context.Context, eventType domain.ActivityEventType, start, end int64) (map[int64]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[int64]int)
	for _, e := range s.events {
		if e.EventType != eventType {
			continue
		}
		if e.OccurredAt < start || e.OccurredAt > end {
			continue
		}
		counts[utcMidnightMs(e.OccurredAt)]++
	}
	return counts, nil
}

// utcMidnightMs truncates a Unix-ms timestamp to its UTC day boundary.
func utcMidnightMs(ts int64) int64 {
	t := time.UnixMilli(ts).UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.UnixMilli()
}

// Verify interface compliance at compile time.
var _ storage.ActivityEventStore = (*ActivityEventStore)(nil)
