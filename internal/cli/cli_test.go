package cli

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/chinquiz/internal/api"
	"github.com/mcoot/chinquiz/internal/factory"
	"github.com/mcoot/chinquiz/internal/testutil"
)

type CLISuite struct {
	suite.Suite
	app          *factory.TestApp
	server       *httptest.Server
	identityFile string
}

func TestCLISuite(t *testing.T) {
	suite.Run(t, new(CLISuite))
}

func (s *CLISuite) SetupTest() {
	s.app = factory.NewTestApp()
	s.server = httptest.NewServer(api.NewRouter(api.RouterConfig{
		Logger:             testutil.NopLogger(),
		Storage:            s.app.Storage,
		LeaderboardService: s.app.LeaderboardService,
		QuizController:     s.app.QuizController,
		IdentityService:    s.app.IdentityService,
		Clock:              s.app.MockClock,
		RateLimit:          -1,
	}))
	s.identityFile = filepath.Join(s.T().TempDir(), "identity.json")
}

func (s *CLISuite) TearDownTest() {
	s.server.Close()
}

// run executes the CLI against the test server
func (s *CLISuite) run(stdin string, args ...string) (string, error) {
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--server", s.server.URL, "--identity-file", s.identityFile}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (s *CLISuite) TestHealth() {
	output, err := s.run("", "health")
	s.Require().NoError(err, output)
	s.Contains(output, "Status: ok")

	output, err = s.run("", "--output", "json", "health")
	s.Require().NoError(err, output)
	var result HealthResult
	s.Require().NoError(json.Unmarshal([]byte(output), &result))
	s.Equal("ok", result.Status)
}

func (s *CLISuite) TestVerboseTracesRequests() {
	output, err := s.run("", "--verbose", "health")
	s.Require().NoError(err, output)
	s.Contains(output, "GET /api/v1/health -> 200")
}

func (s *CLISuite) TestIdentitySetKeepsUserID() {
	_, err := s.run("", "identity", "show")
	s.Error(err)

	output, err := s.run("", "identity", "set", "--name", "Alice")
	s.Require().NoError(err, output)
	s.Contains(output, "Player: Alice")

	first, err := cfg.LoadIdentity()
	s.Require().NoError(err)
	s.Require().NotNil(first)
	s.NotEmpty(first.UserID)

	_, err = s.run("", "identity", "set", "--name", "Alicia")
	s.Require().NoError(err)

	output, err = s.run("", "--output", "json", "identity", "show")
	s.Require().NoError(err, output)
	var shown StoredIdentity
	s.Require().NoError(json.Unmarshal([]byte(output), &shown))
	s.Equal(first.UserID, shown.UserID)
	s.Equal("Alicia", shown.DisplayName)
}

func (s *CLISuite) TestLeaderboardSubmitAndList() {
	output, err := s.run("", "leaderboard", "list")
	s.Require().NoError(err, output)
	s.Contains(output, "No scores yet. Be the first!")

	_, err = s.run("", "identity", "set", "--name", "Alice")
	s.Require().NoError(err)

	output, err = s.run("", "leaderboard", "submit", "--time", "45300", "--penalties", "2")
	s.Require().NoError(err, output)
	s.Contains(output, "Recorded Alice: 45s, 2 penalties, score 75")

	output, err = s.run("", "leaderboard", "submit", "--user", "u-bob", "--time", "30000")
	s.Require().NoError(err, output)

	output, err = s.run("", "--output", "json", "leaderboard", "list")
	s.Require().NoError(err, output)
	var entries []LeaderboardEntry
	s.Require().NoError(json.Unmarshal([]byte(output), &entries))
	s.Require().Len(entries, 2)
	s.Equal("u-bob", entries[0].UserID)
	s.Equal(int64(30), entries[0].Score)
	s.Equal("Alice", entries[1].DisplayName)

	output, err = s.run("", "leaderboard", "list", "--limit", "1")
	s.Require().NoError(err, output)
	s.Contains(output, "Player u-bob")
	s.NotContains(output, "Alice")
}

func (s *CLISuite) TestLeaderboardSubmitRejected() {
	_, err := s.run("", "leaderboard", "submit", "--time", "1000")
	s.Error(err, "no identity and no --user")

	_, err = s.run("", "leaderboard", "submit", "--user", "u-1", "--time", "-5")
	var apiErr *APIError
	s.Require().ErrorAs(err, &apiErr)
	s.Equal("INVALID_INPUT", apiErr.Code)
}

func (s *CLISuite) TestPlayFullQuiz() {
	guesses := append([]string{"", "Somnath"}, s.app.RosterNames()...)

	output, err := s.run(strings.Join(guesses, "\n")+"\n", "play", "--name", "Alice")
	s.Require().NoError(err, output)

	s.Contains(output, "Question 1/10: /static/game/rishav.png")
	s.Contains(output, "Not quite. 2 chances left.")
	s.Contains(output, "Correct!")
	s.Contains(output, "Quiz Complete!")
	s.Contains(output, "Penalties: 1")
	s.Contains(output, "Final Score: 15")
	s.Contains(output, "Player: Alice")

	stored, err := cfg.LoadIdentity()
	s.Require().NoError(err)
	s.Require().NotNil(stored)
	s.Equal("Alice", stored.DisplayName)

	entries, err := s.app.LeaderboardService.List(s.T().Context(), 0)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(stored.UserID, string(entries[0].UserID))
}

func (s *CLISuite) TestPlayQuitsAtEndOfInput() {
	output, err := s.run("Rishav\n", "play", "--name", "Alice")
	s.Require().NoError(err, output)
	s.Contains(output, "Question 2/10")
	s.Contains(output, "Quit.")
}

func (s *CLISuite) TestPlayRequiresName() {
	_, err := s.run("", "play")
	s.Error(err)
}

func TestOutputLeaderboardTable(t *testing.T) {
	var buf bytes.Buffer
	NewOutput("text", &buf).Print([]LeaderboardEntry{
		{Rank: 1, DisplayName: "Alice", TotalTime: 45300, Penalties: 2, Score: 75},
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "PLAYER")
	assert.Contains(t, lines[1], "Alice")
	assert.Contains(t, lines[1], "45s")
	assert.Contains(t, lines[1], "75")
}
