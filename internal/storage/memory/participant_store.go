package memory

import (
	"context"
	"sort"
	"sync"

	"fitmetrics/internal/domain"
	"fitmetrics/internal/storage"
)

// ParticipantStore is an in-memory implementation of storage.ParticipantStore.
type ParticipantStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Participant // keyed by id
}

// NewParticipantStore creates a new in-memory participant store.
func NewParticipantStore() *ParticipantStore {
	return &ParticipantStore{
		data: make(map[string]*domain.Participant),
	}
}

// Insert adds a new participant. Returns ErrDuplicateKey if id exists.
func (s *ParticipantStore) Insert(_ context.Context, p *domain.Participant) error {
	if p == nil || p.ID == "" || p.ChallengeID == "" || p.UserID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[p.ID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[p.ID] = copyParticipant(p)
	return nil
}

// InsertBulk adds multiple participants atomically. Fails entire batch on any duplicate.
func (s *ParticipantStore) InsertBulk(_ context.Context, ps []*domain.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate and check duplicates before writing anything
	seen := make(map[string]struct{}, len(ps))
	for _, p := range ps {
		if p == nil || p.ID == "" || p.ChallengeID == "" || p.UserID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[p.ID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, dup := seen[p.ID]; dup {
			return storage.ErrDuplicateKey
		}
		seen[p.ID] = struct{}{}
	}

	for _, p := range ps {
		s.data[p.ID] = copyParticipant(p)
	}
	return nil
}

// GetByChallengeID retrieves all participants of a challenge,
// ordered by joined_at ASC, id ASC.
func (s *ParticipantStore) GetByChallengeID(_ context.Context, challengeID string) ([]*domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Participant
	for _, p := range s.data {
		if p.ChallengeID == challengeID {
			result = append(result, copyParticipant(p))
		}
	}

	sortParticipants(result)
	return result, nil
}

// GetAll retrieves all participants, ordered by joined_at ASC, id ASC.
func (s *ParticipantStore) GetAll(_ context.Context) ([]*domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Participant, 0, len(s.data))
	for _, p := range s.data {
		result = append(result, copyParticipant(p))
	}

	sortParticipants(result)
	return result, nil
}

func sortParticipants(ps []*domain.Participant) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].JoinedAt != ps[j].JoinedAt {
			return ps[i].JoinedAt < ps[j].JoinedAt
		}
		return ps[i].ID < ps[j].ID
	})
}

func copyParticipant(p *domain.Participant) *domain.Participant {
	participantCopy := *p
	if p.CompletedAt != nil {
		ts := *p.CompletedAt
		participantCopy.CompletedAt = &ts
	}
	return &participantCopy
}

// Verify interface compliance at compile time.
var _ storage.ParticipantStore = (*ParticipantStore)(nil)
