package memory

import (
	"context"
	"sort"
	"sync"

	"fitmetrics/internal/domain"
	"fitmetrics/internal/storage"
)

// NotificationStore is an in-memory implementation of storage.NotificationStore.
type NotificationStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Notification // keyed by id
}

// NewNotificationStore creates a new in-memory notification store.
func NewNotificationStore() *NotificationStore {
	return &NotificationStore{
		data: make(map[string]*domain.Notification),
	}
}

// InsertBulk adds multiple notifications atomically.
// A failure anywhere in the batch leaves zero rows inserted.
func (s *NotificationStore) InsertBulk(_ context.Context, ns []*domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(ns))
	for _, n := range ns {
		if n == nil || n.ID == "" || n.UserID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[n.ID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, dup := seen[n.ID]; dup {
			return storage.ErrDuplicateKey
		}
		seen[n.ID] = struct{}{}
	}

	for _, n := range ns {
		s.data[n.ID] = copyNotification(n)
	}
	return nil
}

// GetByUserID retrieves all notifications of a user,
// ordered by created_at DESC, id ASC.
func (s *NotificationStore) GetByUserID(_ context.Context, userID string) ([]*domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Notification
	for _, n := range s.data {
		if n.UserID == userID {
			result = append(result, copyNotification(n))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt > result[j].CreatedAt
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

func copyNotification(n *domain.Notification) *domain.Notification {
	notificationCopy := *n
	if n.Data != nil {
		data := make(map[string]any, len(n.Data))
		for k, v := range n.Data {
			data[k] = v
		}
		notificationCopy.Data = data
	}
	return &notificationCopy
}

// Verify interface compliance at compile time.
var _ storage.NotificationStore = (*NotificationStore)(nil)
