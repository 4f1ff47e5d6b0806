package postgres

import (
	"context"
	"fmt"

	"fitmetrics/internal/domain"
	"fitmetrics/internal/storage"
)

// WorkoutStore implements storage.WorkoutStore using PostgreSQL.
type WorkoutStore struct {
	pool *Pool
}

// NewWorkoutStore creates a new WorkoutStore.
func NewWorkoutStore(pool *Pool) *WorkoutStore {
	return &WorkoutStore{pool: pool}
}

// Compile-time interface check.
var _ storage.WorkoutStore = (*WorkoutStore)(nil)

// Insert adds a new session. Returns ErrDuplicateKey if id exists.
func (s *WorkoutStore) Insert(ctx context.Context, w *domain.WorkoutSession) error {
	query := `
		INSERT INTO workout_sessions (id, workout_id, user_id, completed_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.pool.Exec(ctx, query, w.ID, w.WorkoutID, w.UserID, w.CompletedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert workout session: %w", err)
	}
	return nil
}

// InsertWorkout adds a new workout. Returns ErrDuplicateKey if id exists.
func (s *WorkoutStore) InsertWorkout(ctx context.Context, w *domain.Workout) error {
	query := `
		INSERT INTO workouts (id, title, category, duration_minutes)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.pool.Exec(ctx, query, w.ID, w.Title, w.Category, w.DurationMinutes)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert workout: %w", err)
	}
	return nil
}

// GetAllWorkouts retrieves all workouts, ordered by created_at DESC, id ASC.
func (s *WorkoutStore) GetAllWorkouts(ctx context.Context) ([]*domain.Workout, error) {
	query := `
		SELECT id, title, category, duration_minutes, created_at
		FROM workouts
		ORDER BY created_at DESC, id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all workouts: %w", err)
	}
	defer rows.Close()

	var workouts []*domain.Workout
	for rows.Next() {
		var w domain.Workout
		if err := rows.Scan(&w.ID, &w.Title, &w.Category, &w.DurationMinutes, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan workout row: %w", err)
		}
		workouts = append(workouts, &w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workout rows: %w", err)
	}

	return workouts, nil
}

// GetByUserID retrieves all sessions of a user, ordered by created_at ASC, id ASC.
func (s *WorkoutStore) GetByUserID(ctx context.Context, userID string) ([]*domain.WorkoutSession, error) {
	query := `
		SELECT id, workout_id, user_id, completed_at, created_at
		FROM workout_sessions
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get workout sessions by user: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.WorkoutSession
	for rows.Next() {
		var w domain.WorkoutSession
		if err := rows.Scan(&w.ID, &w.WorkoutID, &w.UserID, &w.CompletedAt, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan workout row: %w", err)
		}
		sessions = append(sessions, &w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workout rows: %w", err)
	}

	return sessions, nil
}

// GetAll retrieves all sessions, ordered by created_at ASC, id ASC.
func (s *WorkoutStore) GetAll(ctx context.Context) ([]*domain.WorkoutSession, error) {
	query := `
		SELECT id, workout_id, user_id, completed_at, created_at
		FROM workout_sessions
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all workout sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.WorkoutSession
	for rows.Next() {
		var w domain.WorkoutSession
		if err := rows.Scan(&w.ID, &w.WorkoutID, &w.UserID, &w.CompletedAt, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan workout row: %w", err)
		}
		sessions = append(sessions, &w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workout rows: %w", err)
	}

	return sessions, nil
}

// CountByUser returns session counts keyed by user_id.
func (s *WorkoutStore) CountByUser(ctx context.Context) (map[string]int, error) {
	query := `
		SELECT user_id, COUNT(*)
		FROM workout_sessions
		GROUP BY user_id
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count workouts by user: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var userID string
		var count int
		if err := rows.Scan(&userID, &count); err != nil {
			return nil, fmt.Errorf("scan workout count row: %w", err)
		}
		counts[userID] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workout count rows: %w", err)
	}

	return counts, nil
}
