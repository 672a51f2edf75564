package model

import "errors"

// Common errors used across the application
var (
	// Submission errors
	ErrInvalidInput = errors.New("invalid input")
	ErrPersistence  = errors.New("persistence failure")

	// Lookup errors
	ErrSessionNotFound = errors.New("quiz session not found")
	ErrEntryNotFound   = errors.New("leaderboard entry not found")

	// Identity errors
	ErrMissingIdentity = errors.New("player identity missing")

	// Roster errors
	ErrInvalidRoster = errors.New("invalid roster")
)
