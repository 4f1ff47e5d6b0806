package report

import (
	"time"

	"fitmetrics/internal/domain"
)

// Report represents the analytics report structure.
type Report struct {
	// Metadata
	GeneratedAt time.Time

	// Platform Summary
	Summary Summary

	// Challenges by type (sorted by type name)
	ByType []TypeCountRow

	// Top challenges by participant count
	TopChallenges []ChallengeRow

	// Daily participant joins over the reporting window (oldest first)
	Participation []domain.DayBucket
}

// Summary contains the platform-wide numbers.
type Summary struct {
	TotalChallenges   int
	ActiveChallenges  int
	TotalParticipants int
	TotalCompletions  int
	CompletionRate    float64 // fraction
	TotalActiveUsers  int
	AvgLevel          float64
	AvgStreak         int
}

// TypeCountRow represents one challenge-type count.
type TypeCountRow struct {
	Type  domain.ChallengeType
	Count int
}

// ChallengeRow represents one row in the top-challenges table.
type ChallengeRow struct {
	ChallengeID    string
	Title          string
	Type           domain.ChallengeType
	Participants   int
	CompletionRate float64 // fraction
	Active         bool
}
