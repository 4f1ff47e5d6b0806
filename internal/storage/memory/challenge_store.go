package memory

import (
	"context"
	"sort"
	"sync"

	"fitmetrics/internal/domain"
	"fitmetrics/internal/storage"
)

// ChallengeStore is an in-memory implementation of storage.ChallengeStore.
type ChallengeStore struct {
	mu   sync.Mutex
	data map[string]*domain.Challenge // keyed by id
}

// NewChallengeStore creates a new in-memory challenge store.
func NewChallengeStore() *ChallengeStore {
	return &ChallengeStore{
		data: make(map[string]*domain.Challenge),
	}
}

// Insert adds a new challenge. Returns ErrDuplicateKey if id exists.
func (s *ChallengeStore) Insert(_ context.Context, c *domain.Challenge) error {
	if c == nil || c.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[c.ID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[c.ID] = copyChallenge(c)
	return nil
}

// GetByID retrieves a challenge by its ID. Returns ErrNotFound if not exists.
func (s *ChallengeStore) GetByID(_ context.Context, id string) (*domain.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.data[id]
	if !exists {
		return nil, storage.ErrNotFound
	}

	return copyChallenge(c), nil
}

// GetAll retrieves all challenges, ordered by created_at ASC, id ASC.
func (s *ChallengeStore) GetAll(_ context.Context) ([]*domain.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*domain.Challenge, 0, len(s.data))
	for _, c := range s.data {
		result = append(result, copyChallenge(c))
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt < result[j].CreatedAt
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// GetUnannounced retrieves completed challenges with no winners announced,
// ordered by end_at DESC, id ASC.
func (s *ChallengeStore) GetUnannounced(_ context.Context) ([]*domain.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*domain.Challenge
	for _, c := range s.data {
		if c.Status == domain.ChallengeStatusCompleted && c.WinnerAnnouncedAt == nil {
			result = append(result, copyChallenge(c))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].EndAt != result[j].EndAt {
			return result[i].EndAt > result[j].EndAt
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// SetWinners sets winner fields only if no winners were announced yet.
// The check and the write happen under one lock, mirroring the conditional
// UPDATE of the PostgreSQL implementation.
func (s *ChallengeStore) SetWinners(_ context.Context, challengeID string, winners []domain.Winner, announcedAt int64) error {
	if challengeID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, exists := s.data[challengeID]
	if !exists {
		return storage.ErrNotFound
	}
	if c.WinnerAnnouncedAt != nil {
		return storage.ErrAlreadyAnnounced
	}

	ts := announcedAt
	c.WinnerAnnouncedAt = &ts
	c.WinnerData = append([]domain.Winner(nil), winners...)
	return nil
}

// copyChallenge returns a deep copy to prevent external mutation.
func copyChallenge(c *domain.Challenge) *domain.Challenge {
	challengeCopy := *c
	if c.WinnerAnnouncedAt != nil {
		ts := *c.WinnerAnnouncedAt
		challengeCopy.WinnerAnnouncedAt = &ts
	}
	if c.WinnerData != nil {
		challengeCopy.WinnerData = append([]domain.Winner(nil), c.WinnerData...)
	}
	return &challengeCopy
}

// Verify interface compliance at compile time.
var _ storage.ChallengeStore = (*ChallengeStore)(nil)
