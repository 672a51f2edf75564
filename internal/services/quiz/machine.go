package quiz

import (
	"strings"
	"time"

	"github.com/mcoot/chinquiz/internal/dependencies/random"
	"github.com/mcoot/chinquiz/internal/model"
)

// RevealDelay is how long the answer to an exhausted round stays on screen
// before the next round begins
const RevealDelay = 2 * time.Second

// Outcome is the result of applying a guess to a session
type Outcome string

const (
	// OutcomeIgnored means the guess arrived while the session could not accept
	// one (completed, or revealing an answer)
	OutcomeIgnored Outcome = "ignored"
	// OutcomeCorrect means the guess named the current target
	OutcomeCorrect Outcome = "correct"
	// OutcomeCompleted means the guess was correct and finished the last round
	OutcomeCompleted Outcome = "completed"
	// OutcomeWrong means the guess missed but chances remain
	OutcomeWrong Outcome = "wrong"
	// OutcomeExhausted means the final chance of the round was used up and the
	// answer is being revealed
	OutcomeExhausted Outcome = "exhausted"
)

// Shuffle returns a uniformly shuffled copy of entries, truncated to
// model.RoundCount
func Shuffle(entries []model.RosterEntry, rnd random.Random) []model.RosterEntry {
	order := make([]model.RosterEntry, len(entries))
	copy(order, entries)
	// Fisher-Yates
	for i := len(order) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		order[i], order[j] = order[j], order[i]
	}
	if len(order) > model.RoundCount {
		order = order[:model.RoundCount]
	}
	return order
}

// NewSession creates a session at the first round with a fresh timer
func NewSession(id model.SessionID, identity model.PlayerIdentity, order []model.RosterEntry, now time.Time) *model.QuizSession {
	return &model.QuizSession{
		ID:          id,
		UserID:      identity.UserID,
		DisplayName: strings.TrimSpace(identity.DisplayName),
		Order:       order,
		Guesses:     []string{},
		StartedAt:   now,
	}
}

// Settle finishes a pending reveal once its delay has elapsed, advancing to the
// next round or completing the session. It returns true if the session changed.
func Settle(s *model.QuizSession, now time.Time) bool {
	if s.Completed || s.RevealUntil == nil || now.Before(*s.RevealUntil) {
		return false
	}
	revealedAt := *s.RevealUntil
	s.RevealUntil = nil
	advance(s, revealedAt)
	return true
}

// ApplyGuess applies a matched guess to the session. matched and ok are the
// matcher's result for the raw guess text.
func ApplyGuess(s *model.QuizSession, guess, matched string, ok bool, now time.Time) Outcome {
	if s.Completed || s.IsRevealing() {
		return OutcomeIgnored
	}
	target := s.CurrentEntry()
	if target == nil {
		return OutcomeIgnored
	}

	if ok && matched == target.Name {
		s.Guesses = append(s.Guesses, guess)
		advance(s, now)
		if s.Completed {
			return OutcomeCompleted
		}
		return OutcomeCorrect
	}

	s.Penalties++
	s.GuessesThisRound++
	if s.GuessesThisRound >= model.GuessesPerRound {
		revealUntil := now.Add(RevealDelay)
		s.RevealUntil = &revealUntil
		return OutcomeExhausted
	}
	return OutcomeWrong
}

// Elapsed returns the play time, frozen once the session completes
func Elapsed(s *model.QuizSession, now time.Time) time.Duration {
	return s.Elapsed(now)
}

func advance(s *model.QuizSession, at time.Time) {
	s.RoundIndex++
	s.GuessesThisRound = 0
	if s.RoundIndex >= s.TotalRounds() {
		s.Completed = true
		completedAt := at
		s.CompletedAt = &completedAt
	}
}
