package domain

// Profile represents a user profile snapshot.
// Corresponds to profiles table in PostgreSQL.
type Profile struct {
	UserID        string // PRIMARY KEY
	DisplayName   string
	Level         int
	TotalXP       int
	CurrentStreak int   // consecutive active days
	LastActiveAt  int64 // Unix timestamp in milliseconds
	CreatedAt     int64 // record creation timestamp (ms)
}
