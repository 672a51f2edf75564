package quiz

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"strings"
	"sync"

	"github.com/mcoot/chinquiz/internal/dependencies/clock"
	"github.com/mcoot/chinquiz/internal/dependencies/random"
	"github.com/mcoot/chinquiz/internal/model"
	"github.com/mcoot/chinquiz/internal/services/leaderboard"
	"github.com/mcoot/chinquiz/internal/services/scoring"
	"github.com/mcoot/chinquiz/internal/storage"
)

// Matcher resolves a free-text guess to a roster name
type Matcher interface {
	Match(guess string) (string, bool)
}

// Submitter records a finished play-through on the leaderboard
type Submitter interface {
	Submit(ctx context.Context, input leaderboard.SubmitInput) (*model.LeaderboardEntry, error)
}

// GuessResult describes what a single guess did
type GuessResult struct {
	Session *model.QuizSession
	Outcome Outcome
	// Matched is the roster name the guess resolved to, if any
	Matched string
	// Answer is the revealed target name when the round was exhausted
	Answer string
	// Score is the final score once the session completes
	Score int64
}

// Controller runs quiz sessions: it loads state, applies transitions and
// persists the result
type Controller struct {
	storage     storage.Storage
	roster      []model.RosterEntry
	matcher     Matcher
	leaderboard Submitter
	clock       clock.Clock
	random      random.Random
	logger      *slog.Logger

	locks sessionLocks
}

// sessionLockStripes bounds the number of mutexes guarding session updates.
// Two sessions may share a stripe; one session always maps to the same one.
const sessionLockStripes = 64

// sessionLocks serialises load, mutate and save for a session id so that
// concurrent guesses cannot both complete it
type sessionLocks [sessionLockStripes]sync.Mutex

func (l *sessionLocks) lock(id model.SessionID) (unlock func()) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	m := &l[h.Sum32()%sessionLockStripes]
	m.Lock()
	return m.Unlock
}

// NewController creates a new quiz Controller
func NewController(
	storage storage.Storage,
	roster []model.RosterEntry,
	matcher Matcher,
	leaderboard Submitter,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:     storage,
		roster:      roster,
		matcher:     matcher,
		leaderboard: leaderboard,
		clock:       clock,
		random:      random,
		logger:      logger,
	}
}

// Start begins a new play-through with a fresh shuffle and timer
func (c *Controller) Start(ctx context.Context, identity model.PlayerIdentity) (*model.QuizSession, error) {
	if strings.TrimSpace(string(identity.UserID)) == "" || !identity.HasName() {
		return nil, model.ErrMissingIdentity
	}

	order := Shuffle(c.roster, c.random)
	session := NewSession(model.SessionID(c.random.UUID()), identity, order, c.clock.Now())

	if err := c.storage.SaveQuizSession(ctx, session); err != nil {
		c.logger.Error("failed to save quiz session",
			slog.String("session_id", string(session.ID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("quiz started",
		slog.String("session_id", string(session.ID)),
		slog.String("user_id", string(identity.UserID)),
		slog.Int("rounds", session.TotalRounds()),
	)
	return session, nil
}

// Restart starts a new play-through and discards the player's previous one.
// A previous session belonging to someone else is left alone.
func (c *Controller) Restart(ctx context.Context, identity model.PlayerIdentity, previous model.SessionID) (*model.QuizSession, error) {
	if previous != "" {
		old, err := c.storage.GetQuizSession(ctx, previous)
		switch {
		case errors.Is(err, model.ErrSessionNotFound):
		case err != nil:
			return nil, err
		case old.UserID == identity.UserID:
			if err := c.storage.DeleteQuizSession(ctx, previous); err != nil {
				return nil, err
			}
		}
	}
	return c.Start(ctx, identity)
}

// Get loads a session, first settling any reveal whose delay has passed
func (c *Controller) Get(ctx context.Context, id model.SessionID) (*model.QuizSession, error) {
	defer c.locks.lock(id)()

	session, err := c.storage.GetQuizSession(ctx, id)
	if err != nil {
		return nil, err
	}

	if Settle(session, c.clock.Now()) {
		if err := c.commit(ctx, session); err != nil {
			return nil, err
		}
	}
	return session, nil
}

// Guess applies a guess to the session. Blank guesses are ignored.
func (c *Controller) Guess(ctx context.Context, id model.SessionID, guess string) (*GuessResult, error) {
	defer c.locks.lock(id)()

	session, err := c.storage.GetQuizSession(ctx, id)
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	changed := Settle(session, now)
	result := &GuessResult{Session: session, Outcome: OutcomeIgnored}

	if strings.TrimSpace(guess) != "" {
		var answer string
		if target := session.CurrentEntry(); target != nil {
			answer = target.Name
		}

		matched, ok := c.matcher.Match(guess)
		result.Outcome = ApplyGuess(session, strings.TrimSpace(guess), matched, ok, now)
		if ok {
			result.Matched = matched
		}
		if result.Outcome == OutcomeExhausted {
			result.Answer = answer
		}
		changed = changed || result.Outcome != OutcomeIgnored

		c.logger.Debug("guess applied",
			slog.String("session_id", string(session.ID)),
			slog.String("outcome", string(result.Outcome)),
			slog.Int("round", session.RoundIndex),
			slog.Int("penalties", session.Penalties),
		)
	}

	if !changed {
		return result, nil
	}

	if session.Completed {
		result.Score = FinalScore(session)
	}
	if err := c.commit(ctx, session); err != nil {
		return nil, err
	}
	return result, nil
}

// FinalScore returns the score for a completed session's time and penalties
func FinalScore(session *model.QuizSession) int64 {
	if session.CompletedAt == nil {
		return 0
	}
	return scoring.Score(session.Elapsed(*session.CompletedAt).Milliseconds(), int64(session.Penalties))
}

// commit saves a changed session. The first commit of a completed session
// claims the submission, saves, then submits the result to the leaderboard.
// Once completed, neither a failed save nor a failed submission is reported to
// the player: their summary is shown regardless.
func (c *Controller) commit(ctx context.Context, session *model.QuizSession) error {
	submit := session.Completed && !session.Submitted && session.CompletedAt != nil
	if submit {
		session.Submitted = true
	}

	if err := c.save(ctx, session); err != nil && !session.Completed {
		return err
	}

	if submit {
		c.submit(ctx, session)
	}
	return nil
}

func (c *Controller) submit(ctx context.Context, session *model.QuizSession) {
	totalTimeMs := session.Elapsed(*session.CompletedAt).Milliseconds()
	penalties := int64(session.Penalties)

	c.logger.Info("quiz completed",
		slog.String("session_id", string(session.ID)),
		slog.String("user_id", string(session.UserID)),
		slog.Int64("total_time_ms", totalTimeMs),
		slog.Int64("penalties", penalties),
	)

	// The player may navigate away mid-request; the submission still goes through
	_, err := c.leaderboard.Submit(context.WithoutCancel(ctx), leaderboard.SubmitInput{
		UserID:      session.UserID,
		TotalTimeMs: &totalTimeMs,
		Penalties:   &penalties,
		DisplayName: session.DisplayName,
	})
	if err != nil {
		c.logger.Error("failed to submit score",
			slog.String("session_id", string(session.ID)),
			slog.String("user_id", string(session.UserID)),
			slog.String("error", err.Error()),
		)
	}
}

func (c *Controller) save(ctx context.Context, session *model.QuizSession) error {
	if err := c.storage.SaveQuizSession(ctx, session); err != nil {
		c.logger.Error("failed to save quiz session",
			slog.String("session_id", string(session.ID)),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("save quiz session: %w", err)
	}
	return nil
}

// ControllerInterface defines the interface for quiz control
type ControllerInterface interface {
	Start(ctx context.Context, identity model.PlayerIdentity) (*model.QuizSession, error)
	Restart(ctx context.Context, identity model.PlayerIdentity, previous model.SessionID) (*model.QuizSession, error)
	Get(ctx context.Context, id model.SessionID) (*model.QuizSession, error)
	Guess(ctx context.Context, id model.SessionID, guess string) (*GuessResult, error)
}

var _ ControllerInterface = (*Controller)(nil)
