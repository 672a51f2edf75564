package model

import "time"

// SessionID uniquely identifies a quiz play-through
type SessionID string

const (
	// RoundCount is the number of rounds in a play-through
	RoundCount = 10
	// GuessesPerRound is the number of guesses a player gets before the answer is revealed
	GuessesPerRound = 3
)

// QuizSession is the state of one play-through. It is mutated only by the quiz
// state machine.
type QuizSession struct {
	ID          SessionID
	UserID      UserID
	DisplayName string

	// Order is a shuffled permutation of the roster, one entry per round
	Order []RosterEntry

	RoundIndex       int // 0..len(Order)
	GuessesThisRound int // 0..GuessesPerRound
	Penalties        int

	// Guesses logs the raw text of every correct guess
	Guesses []string

	StartedAt time.Time

	// RevealUntil is set while the answer to an exhausted round is shown
	RevealUntil *time.Time

	Completed   bool
	CompletedAt *time.Time

	// Submitted is set once the final score has been handed to the leaderboard
	Submitted bool
}

// TotalRounds returns the number of rounds in this play-through
func (s *QuizSession) TotalRounds() int {
	return len(s.Order)
}

// CurrentEntry returns the roster entry for the active round, or nil once all
// rounds have been played
func (s *QuizSession) CurrentEntry() *RosterEntry {
	if s.RoundIndex < 0 || s.RoundIndex >= len(s.Order) {
		return nil
	}
	return &s.Order[s.RoundIndex]
}

// IsRevealing returns true if an answer reveal is pending
func (s *QuizSession) IsRevealing() bool {
	return s.RevealUntil != nil
}

// ChancesLeft returns the number of guesses remaining in the active round
func (s *QuizSession) ChancesLeft() int {
	left := GuessesPerRound - s.GuessesThisRound
	if left < 0 {
		return 0
	}
	return left
}

// Elapsed returns the play time so far. It stops advancing once the session
// completes.
func (s *QuizSession) Elapsed(now time.Time) time.Duration {
	end := now
	if s.CompletedAt != nil {
		end = *s.CompletedAt
	}
	if end.Before(s.StartedAt) {
		return 0
	}
	return end.Sub(s.StartedAt)
}
