package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"fitmetrics/internal/domain"
	"fitmetrics/internal/storage"
)

// NotificationStore implements storage.NotificationStore using PostgreSQL.
type NotificationStore struct {
	pool *Pool
}

// NewNotificationStore creates a new NotificationStore.
func NewNotificationStore(pool *Pool) *NotificationStore {
	return &NotificationStore{pool: pool}
}

// Compile-time interface check.
var _ storage.NotificationStore = (*NotificationStore)(nil)

// InsertBulk adds multiple notifications atomically.
// Runs in a single transaction: a failure anywhere leaves zero rows.
func (s *NotificationStore) InsertBulk(ctx context.Context, ns []*domain.Notification) error {
	if len(ns) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO notifications (id, user_id, type, title, message, data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	for _, n := range ns {
		if n == nil || n.ID == "" || n.UserID == "" {
			return storage.ErrInvalidInput
		}

		var data []byte
		if n.Data != nil {
			data, err = json.Marshal(n.Data)
			if err != nil {
				return fmt.Errorf("marshal notification data: %w", err)
			}
		}

		_, err := tx.Exec(ctx, query,
			n.ID, n.UserID, string(n.Type), n.Title, n.Message, data, n.CreatedAt,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert notification in batch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit notification batch: %w", err)
	}
	return nil
}

// GetByUserID retrieves all notifications of a user,
// ordered by created_at DESC, id ASC.
func (s *NotificationStore) GetByUserID(ctx context.Context, userID string) ([]*domain.Notification, error) {
	query := `
		SELECT id, user_id, type, title, message, data, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get notifications by user: %w", err)
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		var n domain.Notification
		var typeStr string
		var data []byte

		if err := rows.Scan(&n.ID, &n.UserID, &typeStr, &n.Title, &n.Message, &data, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification row: %w", err)
		}

		n.Type = domain.NotificationType(typeStr)
		if len(data) > 0 {
			if err := json.Unmarshal(data, &n.Data); err != nil {
				return nil, fmt.Errorf("unmarshal notification data: %w", err)
			}
		}
		notifications = append(notifications, &n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notification rows: %w", err)
	}

	return notifications, nil
}
