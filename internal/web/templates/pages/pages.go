package pages

import (
	_ "embed"

	"github.com/a-h/templ"

	"github.com/mcoot/chinquiz/internal/web/templates/layout"
)

var (
	//go:embed start.html
	startHTML string
	//go:embed play.html
	playHTML string
	//go:embed leaderboard.html
	leaderboardHTML string
)

var (
	startPage       = layout.NewPage(startHTML)
	playPage        = layout.NewPage(playHTML)
	leaderboardPage = layout.NewPage(leaderboardHTML)
)

// StartData is the data for the start screen
type StartData struct {
	layout.PageData
	// Name pre-fills the name field
	Name string
}

// Start renders the start screen
func Start(data StartData) templ.Component {
	return layout.Render(startPage, data)
}

// PlayData is the data for the quiz screen
type PlayData struct {
	layout.PageData
	Round       int
	TotalRounds int
	Image       string
	ChancesLeft int
	Penalties   int
	ElapsedMs   int64
	// Revealed is the answer shown after a round runs out of chances
	Revealed  string
	Completed bool
	Score     int64
}

// Play renders the quiz screen, or the summary once the quiz is complete
func Play(data PlayData) templ.Component {
	return layout.Render(playPage, data)
}

// LeaderboardRow is one ranked row
type LeaderboardRow struct {
	Rank        int
	DisplayName string
	TotalTimeMs int64
	Penalties   int64
	Score       int64
}

// LeaderboardData is the data for the leaderboard page
type LeaderboardData struct {
	layout.PageData
	Rows []LeaderboardRow
}

// Leaderboard renders the leaderboard page
func Leaderboard(data LeaderboardData) templ.Component {
	return layout.Render(leaderboardPage, data)
}
