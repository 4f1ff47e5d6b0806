package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"fitmetrics/internal/domain"
	"fitmetrics/internal/storage"
)

// ChallengeStore implements storage.ChallengeStore using PostgreSQL.
type ChallengeStore struct {
	pool *Pool
}

// NewChallengeStore creates a new ChallengeStore.
func NewChallengeStore(pool *Pool) *ChallengeStore {
	return &ChallengeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ChallengeStore = (*ChallengeStore)(nil)

const challengeColumns = `id, title, type, status, start_at, end_at, winner_announced_at, winner_data, created_at`

// Insert adds a new challenge. Returns ErrDuplicateKey if id exists.
func (s *ChallengeStore) Insert(ctx context.Context, c *domain.Challenge) error {
	winnerData, err := marshalWinners(c.WinnerData)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO challenges (
			id, title, type, status, start_at, end_at, winner_announced_at, winner_data
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = s.pool.Exec(ctx, query,
		c.ID,
		c.Title,
		string(c.Type),
		string(c.Status),
		c.StartAt,
		c.EndAt,
		c.WinnerAnnouncedAt,
		winnerData,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert challenge: %w", err)
	}
	return nil
}

// GetByID retrieves a challenge by its ID. Returns ErrNotFound if not exists.
func (s *ChallengeStore) GetByID(ctx context.Context, id string) (*domain.Challenge, error) {
	query := `
		SELECT ` + challengeColumns + `
		FROM challenges
		WHERE id = $1
	`

	row := s.pool.QueryRow(ctx, query, id)
	c, err := scanChallenge(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get challenge by id: %w", err)
	}
	return c, nil
}

// GetAll retrieves all challenges, ordered by created_at ASC, id ASC.
func (s *ChallengeStore) GetAll(ctx context.Context) ([]*domain.Challenge, error) {
	query := `
		SELECT ` + challengeColumns + `
		FROM challenges
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all challenges: %w", err)
	}
	defer rows.Close()

	return scanChallenges(rows)
}

// GetUnannounced retrieves completed challenges with no winners announced,
// ordered by end_at DESC, id ASC.
func (s *ChallengeStore) GetUnannounced(ctx context.Context) ([]*domain.Challenge, error) {
	query := `
		SELECT ` + challengeColumns + `
		FROM challenges
		WHERE status = $1 AND winner_announced_at IS NULL
		ORDER BY end_at DESC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, string(domain.ChallengeStatusCompleted))
	if err != nil {
		return nil, fmt.Errorf("get unannounced challenges: %w", err)
	}
	defer rows.Close()

	return scanChallenges(rows)
}

// SetWinners sets winner fields only if no winners were announced yet.
// The WHERE clause carries the check-and-set: a concurrent announcer that
// loses the race matches zero rows and gets ErrAlreadyAnnounced.
func (s *ChallengeStore) SetWinners(ctx context.Context, challengeID string, winners []domain.Winner, announcedAt int64) error {
	if challengeID == "" {
		return storage.ErrInvalidInput
	}

	winnerData, err := marshalWinners(winners)
	if err != nil {
		return err
	}

	query := `
		UPDATE challenges
		SET winner_announced_at = $2, winner_data = $3
		WHERE id = $1 AND winner_announced_at IS NULL
	`

	tag, err := s.pool.Exec(ctx, query, challengeID, announcedAt, winnerData)
	if err != nil {
		return fmt.Errorf("set winners: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Distinguish a lost race from a missing challenge
		var exists bool
		checkQuery := `SELECT EXISTS(SELECT 1 FROM challenges WHERE id = $1)`
		if err := s.pool.QueryRow(ctx, checkQuery, challengeID).Scan(&exists); err != nil {
			return fmt.Errorf("check challenge exists: %w", err)
		}
		if !exists {
			return storage.ErrNotFound
		}
		return storage.ErrAlreadyAnnounced
	}

	return nil
}

// marshalWinners serializes the winner payload for the JSONB column.
func marshalWinners(winners []domain.Winner) ([]byte, error) {
	if winners == nil {
		return nil, nil
	}
	data, err := json.Marshal(winners)
	if err != nil {
		return nil, fmt.Errorf("marshal winner data: %w", err)
	}
	return data, nil
}

// scanChallenge scans a single row into a Challenge.
func scanChallenge(row pgx.Row) (*domain.Challenge, error) {
	var c domain.Challenge
	var typeStr, statusStr string
	var winnerData []byte

	err := row.Scan(
		&c.ID,
		&c.Title,
		&typeStr,
		&statusStr,
		&c.StartAt,
		&c.EndAt,
		&c.WinnerAnnouncedAt,
		&winnerData,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Type = domain.ChallengeType(typeStr)
	c.Status = domain.ChallengeStatus(statusStr)
	if len(winnerData) > 0 {
		if err := json.Unmarshal(winnerData, &c.WinnerData); err != nil {
			return nil, fmt.Errorf("unmarshal winner data: %w", err)
		}
	}
	return &c, nil
}

// scanChallenges scans multiple rows into a slice of Challenge.
func scanChallenges(rows pgx.Rows) ([]*domain.Challenge, error) {
	var challenges []*domain.Challenge

	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, fmt.Errorf("scan challenge row: %w", err)
		}
		challenges = append(challenges, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate challenge rows: %w", err)
	}

	return challenges, nil
}
