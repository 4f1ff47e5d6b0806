package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"fitmetrics/internal/domain"
	"fitmetrics/internal/storage"
)

// ProfileStore implements storage.ProfileStore using PostgreSQL.
type ProfileStore struct {
	pool *Pool
}

// NewProfileStore creates a new ProfileStore.
func NewProfileStore(pool *Pool) *ProfileStore {
	return &ProfileStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ProfileStore = (*ProfileStore)(nil)

const profileColumns = `user_id, display_name, level, total_xp, current_streak, last_active_at, created_at`

// Insert adds a new profile. Returns ErrDuplicateKey if user_id exists.
func (s *ProfileStore) Insert(ctx context.Context, p *domain.Profile) error {
	query := `
		INSERT INTO profiles (
			user_id, display_name, level, total_xp, current_streak, last_active_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.pool.Exec(ctx, query,
		p.UserID,
		p.DisplayName,
		p.Level,
		p.TotalXP,
		p.CurrentStreak,
		p.LastActiveAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

// GetByUserID retrieves a profile by user ID. Returns ErrNotFound if not exists.
func (s *ProfileStore) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE user_id = $1
	`

	row := s.pool.QueryRow(ctx, query, userID)
	var p domain.Profile
	err := row.Scan(
		&p.UserID,
		&p.DisplayName,
		&p.Level,
		&p.TotalXP,
		&p.CurrentStreak,
		&p.LastActiveAt,
		&p.CreatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get profile by user id: %w", err)
	}
	return &p, nil
}

// GetAll retrieves all profiles, ordered by user_id ASC.
func (s *ProfileStore) GetAll(ctx context.Context) ([]*domain.Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		ORDER BY user_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all profiles: %w", err)
	}
	defer rows.Close()

	return scanProfiles(rows)
}

// scanProfiles scans multiple rows into a slice of Profile.
func scanProfiles(rows pgx.Rows) ([]*domain.Profile, error) {
	var profiles []*domain.Profile

	for rows.Next() {
		var p domain.Profile
		err := rows.Scan(
			&p.UserID,
			&p.DisplayName,
			&p.Level,
			&p.TotalXP,
			&p.CurrentStreak,
			&p.LastActiveAt,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan profile row: %w", err)
		}
		profiles = append(profiles, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profile rows: %w", err)
	}

	return profiles, nil
}
