package clickhouse

import (
	"context"
	"fmt"

	"fitmetrics/internal/domain"
	"fitmetrics/internal/storage"
)

// ActivityEventStore implements storage.ActivityEventStore using ClickHouse.
type ActivityEventStore struct {
	conn *Conn
}

// NewActivityEventStore creates a new ActivityEventStore.
func NewActivityEventStore(conn *Conn) *ActivityEventStore {
	return &ActivityEventStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ActivityEventStore = (*ActivityEventStore)(nil)

// InsertBulk adds multiple events. Analytics rows, no uniqueness enforced.
func (s *ActivityEventStore) InsertBulk(ctx context.Context, events []*domain.ActivityEvent) error {
	if len(events) == 0 {
		return nil
	}

	for _, e := range events {
		if e == nil || e.EventType == "" || e.UserID == "" {
			return storage.ErrInvalidInput
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO activity_events (event_type, user_id, challenge_id, occurred_at)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, e := range events {
		if err := batch.Append(string(e.EventType), e.UserID, e.ChallengeID, e.OccurredAt); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetDailyCounts returns event counts per UTC calendar day within
// [start, end] (inclusive), keyed by the day's midnight in Unix ms.
func (s *ActivityEventStore) GetDailyCounts(ctx context.Context, eventType domain.ActivityEventType, start, end int64) (map[int64]int, error) {
	query := `
		SELECT
			toUnixTimestamp(toStartOfDay(fromUnixTimestamp64Milli(occurred_at), 'UTC')) * 1000 AS day_ms,
			count() AS cnt
		FROM activity_events
		WHERE event_type = ? AND occurred_at >= ? AND occurred_at <= ?
		GROUP BY day_ms
		ORDER BY day_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, string(eventType), start, end)
	if err != nil {
		return nil, fmt.Errorf("query daily counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var dayMs int64
		var cnt uint64
		if err := rows.Scan(&dayMs, &cnt); err != nil {
			return nil, fmt.Errorf("scan daily count row: %w", err)
		}
		counts[dayMs] = int(cnt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily count rows: %w", err)
	}

	return counts, nil
}
