package domain

// ChallengeType classifies who runs a challenge.
type ChallengeType string

// Challenge types.
const (
	ChallengeTypeLocal     ChallengeType = "local"
	ChallengeTypeVerified  ChallengeType = "verified"
	ChallengeTypeCommunity ChallengeType = "community"
)

// ChallengeStatus is the lifecycle state of a challenge.
type ChallengeStatus string

// Challenge statuses.
const (
	ChallengeStatusActive    ChallengeStatus = "active"
	ChallengeStatusCompleted ChallengeStatus = "completed"
)

// Challenge represents a platform challenge.
// Corresponds to challenges table in PostgreSQL.
type Challenge struct {
	ID                string          // PRIMARY KEY
	Title             string
	Type              ChallengeType   // local | verified | community
	Status            ChallengeStatus // active | completed
	StartAt           int64           // Unix timestamp in milliseconds
	EndAt             int64           // Unix timestamp in milliseconds
	WinnerAnnouncedAt *int64          // nil until winners are announced
	WinnerData        []Winner        // winner payload, set together with WinnerAnnouncedAt
	CreatedAt         int64           // record creation timestamp (ms)
}

// IsActive reports whether the challenge window contains nowMs.
func (c *Challenge) IsActive(nowMs int64) bool {
	return c.StartAt <= nowMs && c.EndAt >= nowMs
}
