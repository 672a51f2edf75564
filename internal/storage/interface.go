package storage

import (
	"context"

	"github.com/mcoot/chinquiz/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Ping checks that the backend is reachable
	Ping(ctx context.Context) error

	// Quiz session operations. Sessions are transient and may expire.
	SaveQuizSession(ctx context.Context, session *model.QuizSession) error
	GetQuizSession(ctx context.Context, id model.SessionID) (*model.QuizSession, error)
	DeleteQuizSession(ctx context.Context, id model.SessionID) error

	// Leaderboard operations

	// UpsertLeaderboardEntry atomically inserts or replaces the entry keyed by
	// entry.UserID. An existing entry keeps its ID; every other field is
	// replaced. The stored entry is returned.
	UpsertLeaderboardEntry(ctx context.Context, entry *model.LeaderboardEntry) (*model.LeaderboardEntry, error)
	GetLeaderboardEntry(ctx context.Context, userID model.UserID) (*model.LeaderboardEntry, error)
	// ListLeaderboardEntries returns at most limit entries ordered by score,
	// lowest first
	ListLeaderboardEntries(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
}
