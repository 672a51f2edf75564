package response

import (
	"time"

	"github.com/mcoot/chinquiz/internal/model"
	"github.com/mcoot/chinquiz/internal/services/quiz"
	"github.com/mcoot/chinquiz/internal/services/scoring"
)

// Identity represents a player identity in API responses
type Identity struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

// IdentityFromModel converts a model.PlayerIdentity
func IdentityFromModel(p model.PlayerIdentity) Identity {
	return Identity{
		UserID:      string(p.UserID),
		DisplayName: p.DisplayName,
	}
}

// LeaderboardEntry represents a leaderboard entry in API responses. TotalTime
// is in milliseconds.
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

// LeaderboardEntryFromModel converts a model.LeaderboardEntry. rank is
// 1-based, or zero for a single entry outside a listing.
func LeaderboardEntryFromModel(e *model.LeaderboardEntry, rank int) LeaderboardEntry {
	return LeaderboardEntry{
		ID:          e.ID,
		Rank:        rank,
		UserID:      string(e.UserID),
		DisplayName: e.DisplayName,
		TotalTime:   e.TotalTimeMs,
		Penalties:   e.Penalties,
		Score:       scoring.ScoreEntry(e),
		CompletedAt: e.CompletedAt,
	}
}

// LeaderboardFromModels converts an ordered list, assigning ranks by position
func LeaderboardFromModels(entries []model.LeaderboardEntry) []LeaderboardEntry {
	result := make([]LeaderboardEntry, len(entries))
	for i := range entries {
		result[i] = LeaderboardEntryFromModel(&entries[i], i+1)
	}
	return result
}

// Session represents a quiz session in API responses. The current target's
// name is only included while it is being revealed.
type Session struct {
	ID          string   `json:"id"`
	Player      Identity `json:"player"`
	Round       int      `json:"round"`
	TotalRounds int      `json:"totalRounds"`
	ChancesLeft int      `json:"chancesLeft"`
	Penalties   int      `json:"penalties"`
	ElapsedMs   int64    `json:"elapsedMs"`
	Image       string   `json:"image,omitempty"`
	Revealing   bool     `json:"revealing"`
	Revealed    string   `json:"revealed,omitempty"`
	Guesses     []string `json:"guesses"`
	Completed   bool     `json:"completed"`
	Score       *int64   `json:"score,omitempty"`
}

// SessionFromModel converts a model.QuizSession as seen at now
func SessionFromModel(s *model.QuizSession, now time.Time) Session {
	view := Session{
		ID:          string(s.ID),
		Player:      IdentityFromModel(model.PlayerIdentity{UserID: s.UserID, DisplayName: s.DisplayName}),
		Round:       min(s.RoundIndex+1, s.TotalRounds()),
		TotalRounds: s.TotalRounds(),
		ChancesLeft: s.ChancesLeft(),
		Penalties:   s.Penalties,
		ElapsedMs:   s.Elapsed(now).Milliseconds(),
		Revealing:   s.IsRevealing(),
		Guesses:     append([]string{}, s.Guesses...),
		Completed:   s.Completed,
	}
	if entry := s.CurrentEntry(); entry != nil && !s.Completed {
		view.Image = entry.ImageRef
		if view.Revealing {
			view.Revealed = entry.Name
		}
	}
	if s.Completed {
		score := quiz.FinalScore(s)
		view.Score = &score
	}
	return view
}

// GuessResult is the response for a guess
type GuessResult struct {
	Outcome string  `json:"outcome"`
	Matched string  `json:"matched,omitempty"`
	Answer  string  `json:"answer,omitempty"`
	Session Session `json:"session"`
}

// GuessResultFromModel converts a quiz.GuessResult
func GuessResultFromModel(r *quiz.GuessResult, now time.Time) GuessResult {
	return GuessResult{
		Outcome: string(r.Outcome),
		Matched: r.Matched,
		Answer:  r.Answer,
		Session: SessionFromModel(r.Session, now),
	}
}

// SessionCreated is the response for starting a session
type SessionCreated struct {
	Identity Identity `json:"identity"`
	Session  Session  `json:"session"`
}

// Health is the response for the health check
type Health struct {
	Status string `json:"status"`
}
