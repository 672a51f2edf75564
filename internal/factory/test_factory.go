package factory

import (
	"time"

	"github.com/mcoot/chinquiz/internal/dependencies/mocks"
	"github.com/mcoot/chinquiz/internal/services/leaderboard"
	"github.com/mcoot/chinquiz/internal/services/matcher"
	"github.com/mcoot/chinquiz/internal/services/roster"
	"github.com/mcoot/chinquiz/internal/storage/memory"
	"github.com/mcoot/chinquiz/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// With no queued Intn values the quiz order matches the roster order.
func NewTestApp() *TestApp {
	return NewTestAppWithConfig(leaderboard.DefaultConfig())
}

// NewTestAppWithConfig is NewTestApp with a specific leaderboard configuration
func NewTestAppWithConfig(leaderboardCfg leaderboard.Config) *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	store := memory.New(mockClock, memory.DefaultSessionTTL)
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(
		store,
		roster.Default(),
		matcher.DefaultConfig(),
		leaderboardCfg,
		mockClock,
		mockRandom,
		testutil.NopLogger(),
	)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// RosterNames returns the roster names in the order a test quiz asks them
func (t *TestApp) RosterNames() []string {
	return t.Roster.Names()
}
