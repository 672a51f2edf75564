package quiz

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/chinquiz/internal/dependencies/mocks"
	"github.com/mcoot/chinquiz/internal/model"
	"github.com/mcoot/chinquiz/internal/services/leaderboard"
	"github.com/mcoot/chinquiz/internal/services/matcher"
	"github.com/mcoot/chinquiz/internal/services/roster"
	"github.com/mcoot/chinquiz/internal/storage"
	"github.com/mcoot/chinquiz/internal/storage/memory"
	"github.com/mcoot/chinquiz/internal/testutil"
)

// recordingSubmitter captures submissions and can be made to fail or to
// take a while
type recordingSubmitter struct {
	mu       sync.Mutex
	inputs   []leaderboard.SubmitInput
	ctxErr   []error
	fail     error
	delay    time.Duration
	onSubmit func()
}

func (r *recordingSubmitter) Submit(ctx context.Context, input leaderboard.SubmitInput) (*model.LeaderboardEntry, error) {
	if r.onSubmit != nil {
		r.onSubmit()
	}
	time.Sleep(r.delay)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.inputs = append(r.inputs, input)
	r.ctxErr = append(r.ctxErr, ctx.Err())
	if r.fail != nil {
		return nil, r.fail
	}
	return &model.LeaderboardEntry{UserID: input.UserID}, nil
}

func (r *recordingSubmitter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.inputs)
}

// saveFailingStorage rejects session saves while failSaves is set
type saveFailingStorage struct {
	*memory.Storage
	failSaves bool
}

func (f *saveFailingStorage) SaveQuizSession(ctx context.Context, session *model.QuizSession) error {
	if f.failSaves {
		return errors.New("disk full")
	}
	return f.Storage.SaveQuizSession(ctx, session)
}

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	submitter  *recordingSubmitter
	controller *Controller
	identity   model.PlayerIdentity
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.storage = memory.New(s.clock, 0)
	s.random = mocks.NewMockRandom()
	s.submitter = &recordingSubmitter{}
	s.controller = s.newController(s.storage)
	s.identity = model.PlayerIdentity{UserID: "user-1", DisplayName: "Alice"}
	s.ctx = context.Background()
}

func (s *ControllerSuite) newController(store storage.Storage) *Controller {
	entries := roster.Default().Entries()
	return NewController(
		store,
		entries,
		matcher.New(entries, matcher.DefaultConfig()),
		s.submitter,
		s.clock,
		s.random,
		testutil.NopLogger(),
	)
}

func (s *ControllerSuite) start() *model.QuizSession {
	session, err := s.controller.Start(s.ctx, s.identity)
	s.Require().NoError(err)
	return session
}

func (s *ControllerSuite) guess(id model.SessionID, text string) *GuessResult {
	result, err := s.controller.Guess(s.ctx, id, text)
	s.Require().NoError(err)
	return result
}

// Start tests

func (s *ControllerSuite) TestStartCreatesSession() {
	s.random.QueueUUID("session-1")

	session := s.start()

	s.Equal(model.SessionID("session-1"), session.ID)
	s.Equal(model.UserID("user-1"), session.UserID)
	s.Equal("Alice", session.DisplayName)
	s.Len(session.Order, model.RoundCount)
	s.Equal(s.clock.Now(), session.StartedAt)

	stored, err := s.storage.GetQuizSession(s.ctx, "session-1")
	s.Require().NoError(err)
	s.Equal(session.Order, stored.Order)
}

func (s *ControllerSuite) TestStartRequiresIdentity() {
	_, err := s.controller.Start(s.ctx, model.PlayerIdentity{UserID: "user-1", DisplayName: "  "})
	s.ErrorIs(err, model.ErrMissingIdentity)

	_, err = s.controller.Start(s.ctx, model.PlayerIdentity{DisplayName: "Alice"})
	s.ErrorIs(err, model.ErrMissingIdentity)
}

func (s *ControllerSuite) TestRestartReplacesOwnSession() {
	first := s.start()

	second, err := s.controller.Restart(s.ctx, s.identity, first.ID)
	s.Require().NoError(err)
	s.NotEqual(first.ID, second.ID)

	_, err = s.storage.GetQuizSession(s.ctx, first.ID)
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *ControllerSuite) TestRestartLeavesOtherPlayersSession() {
	other, err := s.controller.Start(s.ctx, model.PlayerIdentity{UserID: "user-2", DisplayName: "Bob"})
	s.Require().NoError(err)

	_, err = s.controller.Restart(s.ctx, s.identity, other.ID)
	s.Require().NoError(err)

	_, err = s.storage.GetQuizSession(s.ctx, other.ID)
	s.NoError(err)
}

func (s *ControllerSuite) TestGetUnknownSession() {
	_, err := s.controller.Get(s.ctx, "missing")
	s.ErrorIs(err, model.ErrSessionNotFound)

	_, err = s.controller.Guess(s.ctx, "missing", "arya")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

// Guess tests

func (s *ControllerSuite) TestCorrectFuzzyGuess() {
	session := s.start()

	result := s.guess(session.ID, "rishab")

	s.Equal(OutcomeCorrect, result.Outcome)
	s.Equal("Rishav", result.Matched)
	s.Equal(1, result.Session.RoundIndex)
	s.Equal([]string{"rishab"}, result.Session.Guesses)
}

func (s *ControllerSuite) TestBlankGuessIgnored() {
	session := s.start()

	result := s.guess(session.ID, "   ")

	s.Equal(OutcomeIgnored, result.Outcome)
	s.Equal(0, result.Session.Penalties)
	s.Equal(0, result.Session.GuessesThisRound)
}

func (s *ControllerSuite) TestUnmatchedGuessIsPenalised() {
	session := s.start()

	result := s.guess(session.ID, "qqqqqqq")

	s.Equal(OutcomeWrong, result.Outcome)
	s.Empty(result.Matched)
	s.Equal(1, result.Session.Penalties)

	stored, err := s.storage.GetQuizSession(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal(1, stored.Penalties)
}

func (s *ControllerSuite) TestExhaustRevealsAnswerThenAdvancesOnGet() {
	session := s.start()
	s.guess(session.ID, "arya")
	s.guess(session.ID, "arya")
	result := s.guess(session.ID, "arya")

	s.Equal(OutcomeExhausted, result.Outcome)
	s.Equal("Rishav", result.Answer)
	s.Equal(3, result.Session.Penalties)

	ignored := s.guess(session.ID, "rishav")
	s.Equal(OutcomeIgnored, ignored.Outcome)

	current, err := s.controller.Get(s.ctx, session.ID)
	s.Require().NoError(err)
	s.True(current.IsRevealing())

	s.clock.Advance(RevealDelay)
	current, err = s.controller.Get(s.ctx, session.ID)
	s.Require().NoError(err)
	s.False(current.IsRevealing())
	s.Equal(1, current.RoundIndex)
	s.Equal("Somnath", current.CurrentEntry().Name)
}

func (s *ControllerSuite) TestCompletionSubmitsOnce() {
	session := s.start()
	s.guess(session.ID, "qqqqqq")

	var last *GuessResult
	for _, entry := range session.Order {
		s.clock.Advance(4500 * time.Millisecond)
		last = s.guess(session.ID, entry.Name)
	}

	s.Equal(OutcomeCompleted, last.Outcome)
	s.True(last.Session.Completed)
	s.True(last.Session.Submitted)
	// 45s + one penalty
	s.Equal(int64(60), last.Score)

	s.Require().Len(s.submitter.inputs, 1)
	input := s.submitter.inputs[0]
	s.Equal(model.UserID("user-1"), input.UserID)
	s.Equal("Alice", input.DisplayName)
	s.Equal(int64(45_000), *input.TotalTimeMs)
	s.Equal(int64(1), *input.Penalties)

	// Further activity never resubmits
	s.guess(session.ID, "arya")
	_, err := s.controller.Get(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Len(s.submitter.inputs, 1)
}

func (s *ControllerSuite) TestExhaustingLastRoundSubmits() {
	session := s.start()
	for _, entry := range session.Order[:model.RoundCount-1] {
		s.guess(session.ID, entry.Name)
	}
	for i := 0; i < model.GuessesPerRound; i++ {
		s.guess(session.ID, "qqqqqq")
	}
	s.Empty(s.submitter.inputs)

	s.clock.Advance(RevealDelay)
	current, err := s.controller.Get(s.ctx, session.ID)
	s.Require().NoError(err)

	s.True(current.Completed)
	s.Require().Len(s.submitter.inputs, 1)
	s.Equal(int64(3), *s.submitter.inputs[0].Penalties)
	s.Equal(RevealDelay.Milliseconds(), *s.submitter.inputs[0].TotalTimeMs)
}

func (s *ControllerSuite) TestSubmissionFailureKeepsCompletion() {
	s.submitter.fail = errors.New("database down")
	session := s.start()

	var last *GuessResult
	for _, entry := range session.Order {
		last = s.guess(session.ID, entry.Name)
	}

	s.Equal(OutcomeCompleted, last.Outcome)
	stored, err := s.storage.GetQuizSession(s.ctx, session.ID)
	s.Require().NoError(err)
	s.True(stored.Completed)
	s.Len(s.submitter.inputs, 1)
}

func (s *ControllerSuite) TestSubmissionSurvivesCancelledRequest() {
	session := s.start()
	for _, entry := range session.Order[:model.RoundCount-1] {
		s.guess(session.ID, entry.Name)
	}

	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	_, err := s.controller.Guess(ctx, session.ID, session.Order[model.RoundCount-1].Name)
	s.Require().NoError(err)

	s.Require().Len(s.submitter.ctxErr, 1)
	s.NoError(s.submitter.ctxErr[0])
}

func (s *ControllerSuite) TestConcurrentFinalGuessesSubmitOnce() {
	s.submitter.delay = 5 * time.Millisecond
	const sessions = 20

	for range sessions {
		session := s.start()
		for _, entry := range session.Order[:model.RoundCount-1] {
			s.guess(session.ID, entry.Name)
		}
		final := session.Order[model.RoundCount-1].Name

		outcomes := make([]Outcome, 2)
		errs := make([]error, 2)
		var wg sync.WaitGroup
		for i := range outcomes {
			wg.Add(1)
			go func() {
				defer wg.Done()
				result, err := s.controller.Guess(s.ctx, session.ID, final)
				errs[i] = err
				if err == nil {
					outcomes[i] = result.Outcome
				}
			}()
		}
		wg.Wait()

		s.Require().NoError(errs[0])
		s.Require().NoError(errs[1])
		s.ElementsMatch([]Outcome{OutcomeCompleted, OutcomeIgnored}, outcomes)
	}

	s.Equal(sessions, s.submitter.count())
}

func (s *ControllerSuite) TestCompletedSessionSavedBeforeSubmitting() {
	session := s.start()
	for _, entry := range session.Order[:model.RoundCount-1] {
		s.guess(session.ID, entry.Name)
	}

	var storedAtSubmit *model.QuizSession
	s.submitter.onSubmit = func() {
		storedAtSubmit, _ = s.storage.GetQuizSession(s.ctx, session.ID)
	}
	s.guess(session.ID, session.Order[model.RoundCount-1].Name)

	s.Require().NotNil(storedAtSubmit)
	s.True(storedAtSubmit.Completed)
	s.True(storedAtSubmit.Submitted)
}

func (s *ControllerSuite) TestSaveFailureAfterCompletionStillShowsResult() {
	store := &saveFailingStorage{Storage: s.storage}
	controller := s.newController(store)

	session, err := controller.Start(s.ctx, s.identity)
	s.Require().NoError(err)
	for _, entry := range session.Order[:model.RoundCount-1] {
		_, err := controller.Guess(s.ctx, session.ID, entry.Name)
		s.Require().NoError(err)
	}

	store.failSaves = true
	result, err := controller.Guess(s.ctx, session.ID, session.Order[model.RoundCount-1].Name)
	s.Require().NoError(err)
	s.Equal(OutcomeCompleted, result.Outcome)
	s.True(result.Session.Completed)
	s.NotNil(result.Session.CompletedAt)
	s.Equal(1, s.submitter.count())
}

func (s *ControllerSuite) TestSaveFailureMidQuizIsReported() {
	store := &saveFailingStorage{Storage: s.storage}
	controller := s.newController(store)

	session, err := controller.Start(s.ctx, s.identity)
	s.Require().NoError(err)

	store.failSaves = true
	_, err = controller.Guess(s.ctx, session.ID, session.Order[0].Name)
	s.Error(err)
	s.Zero(s.submitter.count())
}
