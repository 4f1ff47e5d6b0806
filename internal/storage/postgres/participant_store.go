package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"fitmetrics/internal/domain"
	"fitmetrics/internal/storage"
)

// ParticipantStore implements storage.ParticipantStore using PostgreSQL.
type ParticipantStore struct {
	pool *Pool
}

// NewParticipantStore creates a new ParticipantStore.
func NewParticipantStore(pool *Pool) *ParticipantStore {
	return &ParticipantStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ParticipantStore = (*ParticipantStore)(nil)

const participantColumns = `id, challenge_id, user_id, progress, points, joined_at, completed_at, created_at`

// Insert adds a new participant. Returns ErrDuplicateKey if id exists.
func (s *ParticipantStore) Insert(ctx context.Context, p *domain.Participant) error {
	query := `
		INSERT INTO challenge_participants (
			id, challenge_id, user_id, progress, points, joined_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		p.ID,
		p.ChallengeID,
		p.UserID,
		p.Progress,
		p.Points,
		p.JoinedAt,
		p.CompletedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

// InsertBulk adds multiple participants atomically. Fails entire batch on any duplicate.
func (s *ParticipantStore) InsertBulk(ctx context.Context, ps []*domain.Participant) error {
	if len(ps) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO challenge_participants (
			id, challenge_id, user_id, progress, points, joined_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, p := range ps {
		_, err := tx.Exec(ctx, query,
			p.ID, p.ChallengeID, p.UserID, p.Progress, p.Points, p.JoinedAt, p.CompletedAt,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert participant in batch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit participant batch: %w", err)
	}
	return nil
}

// GetByChallengeID retrieves all participants of a challenge,
// ordered by joined_at ASC, id ASC.
func (s *ParticipantStore) GetByChallengeID(ctx context.Context, challengeID string) ([]*domain.Participant, error) {
	query := `
		SELECT ` + participantColumns + `
		FROM challenge_participants
		WHERE challenge_id = $1
		ORDER BY joined_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, challengeID)
	if err != nil {
		return nil, fmt.Errorf("get participants by challenge: %w", err)
	}
	defer rows.Close()

	return scanParticipants(rows)
}

// GetAll retrieves all participants, ordered by joined_at ASC, id ASC.
func (s *ParticipantStore) GetAll(ctx context.Context) ([]*domain.Participant, error) {
	query := `
		SELECT ` + participantColumns + `
		FROM challenge_participants
		ORDER BY joined_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all participants: %w", err)
	}
	defer rows.Close()

	return scanParticipants(rows)
}

// scanParticipants scans multiple rows into a slice of Participant.
func scanParticipants(rows pgx.Rows) ([]*domain.Participant, error) {
	var participants []*domain.Participant

	for rows.Next() {
		var p domain.Participant
		err := rows.Scan(
			&p.ID,
			&p.ChallengeID,
			&p.UserID,
			&p.Progress,
			&p.Points,
			&p.JoinedAt,
			&p.CompletedAt,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan participant row: %w", err)
		}
		participants = append(participants, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participant rows: %w", err)
	}

	return participants, nil
}
