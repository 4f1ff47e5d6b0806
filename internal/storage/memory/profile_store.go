package memory

import (
	"context"
	"sort"
	"sync"

	"fitmetrics/internal/domain"
	"fitmetrics/internal/storage"
)

// ProfileStore is an in-memory implementation of storage.ProfileStore.
type ProfileStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Profile // keyed by user_id
}

// NewProfileStore creates a new in-memory profile store.
func NewProfileStore() *ProfileStore {
	return &ProfileStore{
		data: make(map[string]*domain.Profile),
	}
}

// Insert adds a new profile. Returns ErrDuplicateKey if user_id exists.
func (s *ProfileStore) Insert(_ context.Context, p *domain.Profile) error {
	if p == nil || p.UserID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[p.UserID]; exists {
		return storage.ErrDuplicateKey
	}

	profileCopy := *p
	s.data[p.UserID] = &profileCopy
	return nil
}

// GetByUserID retrieves a profile by user ID. Returns ErrNotFound if not exists.
func (s *ProfileStore) GetByUserID(_ context.Context, userID string) (*domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.data[userID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	profileCopy := *p
	return &profileCopy, nil
}

// GetAll retrieves all profiles, ordered by user_id ASC.
func (s *ProfileStore) GetAll(_ context.Context) ([]*domain.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Profile, 0, len(s.data))
	for _, p := range s.data {
		profileCopy := *p
		result = append(result, &profileCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].UserID < result[j].UserID
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.ProfileStore = (*ProfileStore)(nil)
