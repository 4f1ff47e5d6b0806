package storage

import "errors"

// Storage errors.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when attempting to insert a record
	// with a key that already exists.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAlreadyAnnounced is returned when a conditional winner update
	// matches zero rows because winner_announced_at is already set.
	// Exactly one concurrent announcer can win the check-and-set.
	ErrAlreadyAnnounced = errors.New("winners already announced")
)
