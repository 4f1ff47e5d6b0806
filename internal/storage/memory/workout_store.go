package memory

import (
	"context"
	"sort"
	"sync"

	"fitmetrics/internal/domain"
	"fitmetrics/internal/storage"
)

// WorkoutStore is an in-memory implementation of storage.WorkoutStore.
type WorkoutStore struct {
	mu       sync.RWMutex
	data     map[string]*domain.WorkoutSession // keyed by id
	workouts map[string]*domain.Workout        // keyed by id
}

// NewWorkoutStore creates a new in-memory workout store.
func NewWorkoutStore() *WorkoutStore {
	return &WorkoutStore{
		data:     make(map[string]*domain.WorkoutSession),
		workouts: make(map[string]*domain.Workout),
	}
}

// Insert adds a new session. Returns ErrDuplicateKey if id exists.
func (s *WorkoutStore) Insert(_ context.Context, w *domain.WorkoutSession) error {
	if w == nil || w.ID == "" || w.UserID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[w.ID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[w.ID] = copyWorkout(w)
	return nil
}

// InsertWorkout adds a new workout. Returns ErrDuplicateKey if id exists.
func (s *WorkoutStore) InsertWorkout(_ context.Context, w *domain.Workout) error {
	if w == nil || w.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.workouts[w.ID]; exists {
		return storage.ErrDuplicateKey
	}

	workoutCopy := *w
	s.workouts[w.ID] = &workoutCopy
	return nil
}

// GetAllWorkouts retrieves all workouts, ordered by created_at DESC, id ASC.
func (s *WorkoutStore) GetAllWorkouts(_ context.Context) ([]*domain.Workout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Workout
	for _, w := range s.workouts {
		workoutCopy := *w
		result = append(result, &workoutCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt > result[j].CreatedAt
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// GetByUserID retrieves all sessions of a user, ordered by created_at ASC, id ASC.
func (s *WorkoutStore) GetByUserID(_ context.Context, userID string) ([]*domain.WorkoutSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.WorkoutSession
	for _, w := range s.data {
		if w.UserID == userID {
			result = append(result, copyWorkout(w))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt < result[j].CreatedAt
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// GetAll retrieves all sessions, ordered by created_at ASC, id ASC.
func (s *WorkoutStore) GetAll(_ context.Context) ([]*domain.WorkoutSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.WorkoutSession
	for _, w := range s.data {
		result = append(result, copyWorkout(w))
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt < result[j].CreatedAt
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// CountByUser returns session counts keyed by user_id.
func (s *WorkoutStore) CountByUser(_ context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, w := range s.data {
		counts[w.UserID]++
	}
	return counts, nil
}

func copyWorkout(w *domain.WorkoutSession) *domain.WorkoutSession {
	workoutCopy := *w
	if w.CompletedAt != nil {
		ts := *w.CompletedAt
		workoutCopy.CompletedAt = &ts
	}
	return &workoutCopy
}

// Verify interface compliance at compile time.
var _ storage.WorkoutStore = (*WorkoutStore)(nil)
