package scoring

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/chinquiz/internal/model"
)

type ServiceSuite struct {
	suite.Suite
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) TestScore() {
	cases := []struct {
		ms        int64
		penalties int64
		expected  int64
	}{
		{0, 0, 0},
		{999, 0, 0},
		{1000, 0, 1},
		{45_300, 2, 75},
		{45_999, 0, 45},
		{0, 3, 45},
	}
	for _, c := range cases {
		s.Equal(c.expected, Score(c.ms, c.penalties), "ms=%d penalties=%d", c.ms, c.penalties)
	}
}

func (s *ServiceSuite) TestScoreMonotonic() {
	s.Less(Score(10_000, 1), Score(10_000, 2))
	s.LessOrEqual(Score(10_000, 1), Score(10_500, 1))
	s.Less(Score(10_000, 1), Score(11_000, 1))
}

func (s *ServiceSuite) TestRankRecomputesAndSorts() {
	entries := []model.LeaderboardEntry{
		{UserID: "slow", TotalTimeMs: 90_000, Penalties: 0, Score: 1},
		{UserID: "fast", TotalTimeMs: 20_000, Penalties: 1},
		{UserID: "penalised", TotalTimeMs: 10_000, Penalties: 4},
	}

	ranked := Rank(entries)

	s.Require().Len(ranked, 3)
	s.Equal(model.UserID("fast"), ranked[0].UserID)
	s.Equal(int64(35), ranked[0].Score)
	s.Equal(model.UserID("penalised"), ranked[1].UserID)
	s.Equal(int64(70), ranked[1].Score)
	s.Equal(model.UserID("slow"), ranked[2].UserID)
	s.Equal(int64(90), ranked[2].Score)

	// Input is not modified
	s.Equal(int64(1), entries[0].Score)
}

func (s *ServiceSuite) TestRankIsStableForTies() {
	entries := []model.LeaderboardEntry{
		{UserID: "first", TotalTimeMs: 15_000},
		{UserID: "second", TotalTimeMs: 0, Penalties: 1},
		{UserID: "third", TotalTimeMs: 15_500},
	}

	ranked := Rank(entries)

	s.Equal(model.UserID("first"), ranked[0].UserID)
	s.Equal(model.UserID("second"), ranked[1].UserID)
	s.Equal(model.UserID("third"), ranked[2].UserID)
}

func (s *ServiceSuite) TestRankEmpty() {
	s.Empty(Rank(nil))
}
