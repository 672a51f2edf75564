package leaderboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/chinquiz/internal/dependencies/mocks"
	"github.com/mcoot/chinquiz/internal/model"
	"github.com/mcoot/chinquiz/internal/storage/memory"
	"github.com/mcoot/chinquiz/internal/testutil"
)

// flakyStorage counts leaderboard writes and can be made to fail them
type flakyStorage struct {
	*memory.Storage
	upserts int
	fail    error
}

func (f *flakyStorage) UpsertLeaderboardEntry(ctx context.Context, entry *model.LeaderboardEntry) (*model.LeaderboardEntry, error) {
	f.upserts++
	if f.fail != nil {
		return nil, f.fail
	}
	return f.Storage.UpsertLeaderboardEntry(ctx, entry)
}

func (f *flakyStorage) ListLeaderboardEntries(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	return f.Storage.ListLeaderboardEntries(ctx, limit)
}

type ServiceSuite struct {
	suite.Suite
	storage *flakyStorage
	clock   *mocks.MockClock
	random  *mocks.MockRandom
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.storage = &flakyStorage{Storage: memory.New(s.clock, 0)}
	s.random = mocks.NewMockRandom()
	s.service = New(s.storage, DefaultConfig(), s.clock, s.random, testutil.NopLogger())
	s.ctx = context.Background()
}

func ptr(v int64) *int64 { return &v }

func (s *ServiceSuite) submit(userID model.UserID, ms, penalties int64, name string) *model.LeaderboardEntry {
	entry, err := s.service.Submit(s.ctx, SubmitInput{
		UserID:      userID,
		TotalTimeMs: ptr(ms),
		Penalties:   ptr(penalties),
		DisplayName: name,
	})
	s.Require().NoError(err)
	return entry
}

// Submit tests

func (s *ServiceSuite) TestSubmitCreatesEntry() {
	s.random.QueueUUID("entry-1")

	entry := s.submit("user-1", 45_300, 2, "  Alice ")

	s.Equal("entry-1", entry.ID)
	s.Equal(model.UserID("user-1"), entry.UserID)
	s.Equal("Alice", entry.DisplayName)
	s.Equal(int64(45_300), entry.TotalTimeMs)
	s.Equal(int64(2), entry.Penalties)
	s.Equal(int64(75), entry.Score)
	s.Equal(s.clock.Now(), entry.CompletedAt)
}

func (s *ServiceSuite) TestSubmitBlankNameUsesPlaceholder() {
	entry := s.submit("abcdef123456", 1000, 0, "   ")
	s.Equal("Player abcdef12", entry.DisplayName)

	short := s.submit("abc", 1000, 0, "")
	s.Equal("Player abc", short.DisplayName)
}

func (s *ServiceSuite) TestSubmitOverwritesAndKeepsID() {
	s.random.QueueUUID("entry-1", "entry-2")
	s.submit("user-1", 10_000, 0, "Alice")

	s.clock.Advance(time.Minute)
	second := s.submit("user-1", 90_000, 4, "Alice Again")

	s.Equal("entry-1", second.ID)
	s.Equal(int64(150), second.Score)
	s.Equal("Alice Again", second.DisplayName)

	entries, err := s.service.List(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(int64(150), entries[0].Score)
}

func (s *ServiceSuite) TestSubmitBestPolicyKeepsLowerScore() {
	s.service = New(s.storage, Config{Policy: PolicyBest}, s.clock, s.random, testutil.NopLogger())

	s.submit("user-1", 10_000, 0, "Alice")
	kept := s.submit("user-1", 90_000, 4, "Alice")
	s.Equal(int64(10), kept.Score)
	s.Equal(1, s.storage.upserts)

	improved := s.submit("user-1", 5_000, 0, "Alice")
	s.Equal(int64(5), improved.Score)
	s.Equal(2, s.storage.upserts)
}

func (s *ServiceSuite) TestSubmitRejectsInvalidInput() {
	cases := []struct {
		name  string
		input SubmitInput
	}{
		{"missing user", SubmitInput{TotalTimeMs: ptr(1), Penalties: ptr(0)}},
		{"blank user", SubmitInput{UserID: "  ", TotalTimeMs: ptr(1), Penalties: ptr(0)}},
		{"missing time", SubmitInput{UserID: "u", Penalties: ptr(0)}},
		{"missing penalties", SubmitInput{UserID: "u", TotalTimeMs: ptr(1)}},
		{"negative time", SubmitInput{UserID: "u", TotalTimeMs: ptr(-1), Penalties: ptr(0)}},
		{"negative penalties", SubmitInput{UserID: "u", TotalTimeMs: ptr(1), Penalties: ptr(-2)}},
	}

	for _, c := range cases {
		_, err := s.service.Submit(s.ctx, c.input)
		s.ErrorIs(err, model.ErrInvalidInput, c.name)
	}
	s.Equal(0, s.storage.upserts)
}

func (s *ServiceSuite) TestSubmitWrapsStorageFailure() {
	s.storage.fail = errors.New("disk on fire")

	_, err := s.service.Submit(s.ctx, SubmitInput{UserID: "u", TotalTimeMs: ptr(1), Penalties: ptr(0)})
	s.ErrorIs(err, model.ErrPersistence)
}

// List tests

func (s *ServiceSuite) TestListRanksAndClamps() {
	for i := 0; i < MaxEntries+5; i++ {
		s.submit(model.UserID(string(rune('A'+i%26))+string(rune('a'+i/26))), int64(i)*1000, 0, "")
	}

	entries, err := s.service.List(s.ctx, 500)
	s.Require().NoError(err)
	s.Len(entries, MaxEntries)
	for i := 1; i < len(entries); i++ {
		s.LessOrEqual(entries[i-1].Score, entries[i].Score)
	}

	entries, err = s.service.List(s.ctx, -1)
	s.Require().NoError(err)
	s.Len(entries, MaxEntries)

	entries, err = s.service.List(s.ctx, 3)
	s.Require().NoError(err)
	s.Len(entries, 3)
	s.Equal(int64(0), entries[0].Score)
}

func (s *ServiceSuite) TestListEmpty() {
	entries, err := s.service.List(s.ctx, 10)
	s.Require().NoError(err)
	s.Empty(entries)
}

func (s *ServiceSuite) TestListWrapsStorageFailure() {
	s.storage.fail = errors.New("connection refused")

	_, err := s.service.List(s.ctx, 10)
	s.ErrorIs(err, model.ErrPersistence)
}

func (s *ServiceSuite) TestParsePolicy() {
	p, err := ParsePolicy("")
	s.Require().NoError(err)
	s.Equal(PolicyOverwrite, p)

	p, err = ParsePolicy("BEST")
	s.Require().NoError(err)
	s.Equal(PolicyBest, p)

	_, err = ParsePolicy("first")
	s.Error(err)
}
