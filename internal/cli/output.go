package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		o.printJSON(map[string]string{"message": msg})
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case StoredIdentity:
		o.printIdentity(v)
	case []LeaderboardEntry:
		o.printLeaderboard(v)
	case LeaderboardEntry:
		o.printEntry(v)
	case Session:
		o.printSession(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// LeaderboardEntry response type (matches API)
type LeaderboardEntry struct {
	ID          string    `json:"id"`
	Rank        int       `json:"rank,omitempty"`
	UserID      string    `json:"userId"`
	DisplayName string    `json:"displayName"`
	TotalTime   int64     `json:"totalTime"`
	Penalties   int64     `json:"penalties"`
	Score       int64     `json:"score"`
	CompletedAt time.Time `json:"completedAt"`
}

// Session response type
type Session struct {
	ID          string         `json:"id"`
	Player      StoredIdentity `json:"player"`
	Round       int            `json:"round"`
	TotalRounds int            `json:"totalRounds"`
	ChancesLeft int            `json:"chancesLeft"`
	Penalties   int            `json:"penalties"`
	ElapsedMs   int64          `json:"elapsedMs"`
	Image       string         `json:"image,omitempty"`
	Revealing   bool           `json:"revealing"`
	Revealed    string         `json:"revealed,omitempty"`
	Guesses     []string       `json:"guesses"`
	Completed   bool           `json:"completed"`
	Score       *int64         `json:"score,omitempty"`
}

// SessionCreated response type
type SessionCreated struct {
	Identity StoredIdentity `json:"identity"`
	Session  Session        `json:"session"`
}

// GuessResult response type
type GuessResult struct {
	Outcome string  `json:"outcome"`
	Matched string  `json:"matched,omitempty"`
	Answer  string  `json:"answer,omitempty"`
	Session Session `json:"session"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printIdentity(i StoredIdentity) {
	_, _ = fmt.Fprintf(o.w, "Player: %s (%s)\n", i.DisplayName, i.UserID)
}

func (o *Output) printLeaderboard(entries []LeaderboardEntry) {
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(o.w, "No scores yet. Be the first!")
		return
	}

	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "#\tPLAYER\tTIME\tPENALTIES\tSCORE")
	for _, e := range entries {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%ds\t%d\t%d\n", e.Rank, e.DisplayName, e.TotalTime/1000, e.Penalties, e.Score)
	}
	_ = tw.Flush()
}

func (o *Output) printEntry(e LeaderboardEntry) {
	_, _ = fmt.Fprintf(o.w, "Recorded %s: %ds, %d penalties, score %d\n", e.DisplayName, e.TotalTime/1000, e.Penalties, e.Score)
}

func (o *Output) printSession(s Session) {
	if s.Completed {
		_, _ = fmt.Fprintln(o.w, "Quiz Complete!")
		_, _ = fmt.Fprintf(o.w, "Total Time: %ds\n", s.ElapsedMs/1000)
		_, _ = fmt.Fprintf(o.w, "Penalties: %d\n", s.Penalties)
		if s.Score != nil {
			_, _ = fmt.Fprintf(o.w, "Final Score: %d\n", *s.Score)
		}
		_, _ = fmt.Fprintf(o.w, "Player: %s\n", s.Player.DisplayName)
		return
	}

	_, _ = fmt.Fprintf(o.w, "Question %d/%d: %s\n", s.Round, s.TotalRounds, s.Image)
	_, _ = fmt.Fprintf(o.w, "Chances: %d  Penalties: %d  Time: %ds\n", s.ChancesLeft, s.Penalties, s.ElapsedMs/1000)
}

func (o *Output) printHealthResult(h HealthResult) {
	_, _ = fmt.Fprintf(o.w, "Status: %s\n", h.Status)
}
