package domain

// DashboardStats is the derived dashboard snapshot.
// Pure function of the input snapshots: recomputing over the same data
// yields an identical value.
type DashboardStats struct {
	TotalChallenges   int                   `json:"total_challenges"`
	ActiveChallenges  int                   `json:"active_challenges"`
	ChallengesByType  map[ChallengeType]int `json:"challenges_by_type"`
	TotalParticipants int                   `json:"total_participants"`
	TotalCompletions  int                   `json:"total_completions"`
	CompletionRate    float64               `json:"completion_rate"` // fraction, 0 when no participants
	TotalActiveUsers  int                   `json:"total_active_users"`
	AvgLevel          float64               `json:"avg_level"`  // rounded to 1 decimal
	AvgStreak         int                   `json:"avg_streak"` // rounded to nearest int
	TopChallenges     []ChallengeSummary    `json:"top_challenges"`
	WorkoutStats      []WorkoutSummary      `json:"workout_stats"`
	Participation     []DayBucket           `json:"participation"`
}

// ChallengeSummary is one row of the top-challenges table.
type ChallengeSummary struct {
	ChallengeID    string        `json:"challenge_id"`
	Title          string        `json:"title"`
	Type           ChallengeType `json:"type"`
	Participants   int           `json:"participants"`
	CompletionRate float64       `json:"completion_rate"` // fraction
	Active         bool          `json:"active"`
}

// WorkoutSummary is one row of the per-workout stats table.
// Workouts with zero sessions stay in the table with a zero rate.
type WorkoutSummary struct {
	WorkoutID      string  `json:"workout_id"`
	Title          string  `json:"title"`
	Category       string  `json:"category"`
	Sessions       int     `json:"sessions"`
	Completions    int     `json:"completions"`
	CompletionRate float64 `json:"completion_rate"` // fraction, 0 when no sessions
}

// DayBucket is one zero-filled calendar-day bucket.
// Day is the UTC midnight of the bucket in Unix milliseconds.
type DayBucket struct {
	Day   int64 `json:"day"`
	Count int   `json:"count"`
}
