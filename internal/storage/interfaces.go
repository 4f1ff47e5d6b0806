package storage

import (
	"context"

	"fitmetrics/internal/domain"
)

// ChallengeStore provides access to challenges storage.
type ChallengeStore interface {
	// Insert adds a new challenge. Returns ErrDuplicateKey if id exists.
	Insert(ctx context.Context, c *domain.Challenge) error

	// GetByID retrieves a challenge by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id string) (*domain.Challenge, error)

	// GetAll retrieves all challenges, ordered by created_at ASC, id ASC.
	GetAll(ctx context.Context) ([]*domain.Challenge, error)

	// GetUnannounced retrieves completed challenges with no winners announced,
	// ordered by end_at DESC, id ASC.
	GetUnannounced(ctx context.Context) ([]*domain.Challenge, error)

	// SetWinners sets winner_announced_at and winner_data only if no winners
	// were announced yet (check-and-set on NULL). Returns ErrAlreadyAnnounced
	// if the condition fails, ErrNotFound if the challenge does not exist.
	SetWinners(ctx context.Context, challengeID string, winners []domain.Winner, announcedAt int64) error
}

// ParticipantStore provides access to challenge_participants storage.
type ParticipantStore interface {
	// Insert adds a new participant. Returns ErrDuplicateKey if id exists.
	Insert(ctx context.Context, p *domain.Participant) error

	// InsertBulk adds multiple participants atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, ps []*domain.Participant) error

	// GetByChallengeID retrieves all participants of a challenge,
	// ordered by joined_at ASC, id ASC.
	GetByChallengeID(ctx context.Context, challengeID string) ([]*domain.Participant, error)

	// GetAll retrieves all participants, ordered by joined_at ASC, id ASC.
	GetAll(ctx context.Context) ([]*domain.Participant, error)
}

// ProfileStore provides access to profiles storage.
type ProfileStore interface {
	// Insert adds a new profile. Returns ErrDuplicateKey if user_id exists.
	Insert(ctx context.Context, p *domain.Profile) error

	// GetByUserID retrieves a profile by user ID. Returns ErrNotFound if not exists.
	GetByUserID(ctx context.Context, userID string) (*domain.Profile, error)

	// GetAll retrieves all profiles, ordered by user_id ASC.
	GetAll(ctx context.Context) ([]*domain.Profile, error)
}

// WorkoutStore provides access to workouts and workout_sessions storage.
type WorkoutStore interface {
	// Insert adds a new session. Returns ErrDuplicateKey if id exists.
	Insert(ctx context.Context, w *domain.WorkoutSession) error

	// InsertWorkout adds a new workout. Returns ErrDuplicateKey if id exists.
	InsertWorkout(ctx context.Context, w *domain.Workout) error

	// GetAllWorkouts retrieves all workouts, ordered by created_at DESC, id ASC.
	GetAllWorkouts(ctx context.Context) ([]*domain.Workout, error)

	// GetByUserID retrieves all sessions of a user, ordered by created_at ASC, id ASC.
	GetByUserID(ctx context.Context, userID string) ([]*domain.WorkoutSession, error)

	// GetAll retrieves all sessions, ordered by created_at ASC, id ASC.
	GetAll(ctx context.Context) ([]*domain.WorkoutSession, error)

	// CountByUser returns session counts keyed by user_id.
	CountByUser(ctx context.Context) (map[string]int, error)
}

// NotificationStore provides access to notifications storage.
type NotificationStore interface {
	// InsertBulk adds multiple notifications atomically.
	// A failure anywhere in the batch leaves zero rows inserted.
	InsertBulk(ctx context.Context, ns []*domain.Notification) error

	// GetByUserID retrieves all notifications of a user,
	// ordered by created_at DESC, id ASC.
	GetByUserID(ctx context.Context, userID string) ([]*domain.Notification, error)
}

// ActivityEventStore provides access to activity_events analytics storage.
type ActivityEventStore interface {
	// InsertBulk adds multiple events. Analytics rows, no uniqueness enforced.
	InsertBulk(ctx context.Context, events []*domain.ActivityEvent) error

	// GetDailyCounts returns event counts per UTC calendar day within
	// [start, end] (inclusive), keyed by the day's midnight in Unix ms.
	GetDailyCounts(ctx context.Context, eventType domain.ActivityEventType, start, end int64) (map[int64]int, error)
}
