package domain

// Workout represents a workout definition users run sessions against.
// Corresponds to workouts table in PostgreSQL.
type Workout struct {
	ID              string // PRIMARY KEY
	Title           string
	Category        string
	DurationMinutes int
	CreatedAt       int64 // Unix timestamp in milliseconds
}

// WorkoutSession represents a single workout session.
// Corresponds to workout_sessions table in PostgreSQL.
type WorkoutSession struct {
	ID          string // PRIMARY KEY
	WorkoutID   string // workout this session ran against, empty for ad-hoc sessions
	UserID      string
	CompletedAt *int64 // nil if abandoned mid-session
	CreatedAt   int64  // Unix timestamp in milliseconds
}
