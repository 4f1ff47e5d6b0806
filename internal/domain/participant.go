package domain

// Participant represents a user's membership in a challenge.
// Corresponds to challenge_participants table in PostgreSQL.
type Participant struct {
	ID          string // PRIMARY KEY
	ChallengeID string
	UserID      string
	Progress    int    // 0-100, >= 100 means completed
	Points      int    // leaderboard score
	JoinedAt    int64  // Unix timestamp in milliseconds
	CompletedAt *int64 // nil while in progress
	CreatedAt   int64  // record creation timestamp (ms)
}

// Completed reports whether the participant finished the challenge.
func (p *Participant) Completed() bool {
	return p.Progress >= 100
}
