package domain

// NotificationType classifies a notification.
type NotificationType string

// Notification types.
const (
	NotificationTypeChallengeWinner NotificationType = "challenge_winner"
	NotificationTypeAnnouncement    NotificationType = "announcement"
)

// Notification represents an in-app notification row.
// Corresponds to notifications table in PostgreSQL.
// Data carries the audit payload: challenge_id + winners for winner notices,
// target_type + recipients_count for segment sends.
type Notification struct {
	ID        string // PRIMARY KEY (uuid)
	UserID    string
	Type      NotificationType
	Title     string
	Message   string
	Data      map[string]any // persisted as JSONB
	CreatedAt int64          // Unix timestamp in milliseconds
}
