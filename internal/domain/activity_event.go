package domain

// ActivityEventType classifies an analytics activity event.
type ActivityEventType string

// Activity event types.
const (
	ActivityParticipantJoined ActivityEventType = "participant_joined"
	ActivityWorkoutCompleted  ActivityEventType = "workout_completed"
)

// ActivityEvent is an append-only analytics event.
// Corresponds to activity_events table in ClickHouse.
type ActivityEvent struct {
	EventType   ActivityEventType
	UserID      string
	ChallengeID string // empty for workout events
	OccurredAt  int64  // Unix timestamp in milliseconds
}
