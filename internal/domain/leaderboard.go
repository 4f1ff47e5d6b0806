package domain

// LeaderboardEntry is one ranked row of a challenge leaderboard.
// Rank is assigned over the full participant set before any truncation.
type LeaderboardEntry struct {
	Rank          int    `json:"rank"`
	ParticipantID string `json:"participant_id"`
	UserID        string `json:"user_id"`
	UserName      string `json:"user_name"`
	Score         int    `json:"score"`
	JoinedAt      int64  `json:"joined_at"`
}
