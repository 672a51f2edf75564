package sql

import (
	"time"

	"gorm.io/datatypes"

	"github.com/mcoot/chinquiz/internal/model"
)

// leaderboardRow is the persisted form of a LeaderboardEntry. Seq orders
// entries with equal scores by first submission.
type leaderboardRow struct {
	Seq         uint64    `gorm:"primaryKey;autoIncrement"`
	EntryID     string    `gorm:"size:64;not null;uniqueIndex"`
	UserID      string    `gorm:"size:128;not null;uniqueIndex"`
	DisplayName string    `gorm:"size:256;not null"`
	TotalTimeMs int64     `gorm:"not null"`
	Penalties   int64     `gorm:"not null"`
	Score       int64     `gorm:"not null;index"`
	CompletedAt time.Time `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (leaderboardRow) TableName() string { return "leaderboard_entries" }

func (r *leaderboardRow) toModel() model.LeaderboardEntry {
	return model.LeaderboardEntry{
		ID:          r.EntryID,
		UserID:      model.UserID(r.UserID),
		DisplayName: r.DisplayName,
		TotalTimeMs: r.TotalTimeMs,
		Penalties:   r.Penalties,
		CompletedAt: r.CompletedAt.UTC(),
		Score:       r.Score,
	}
}

func rowFromEntry(e *model.LeaderboardEntry) leaderboardRow {
	return leaderboardRow{
		EntryID:     e.ID,
		UserID:      string(e.UserID),
		DisplayName: e.DisplayName,
		TotalTimeMs: e.TotalTimeMs,
		Penalties:   e.Penalties,
		Score:       e.Score,
		CompletedAt: e.CompletedAt,
	}
}

// sessionRow stores a QuizSession as a JSON document
type sessionRow struct {
	ID        string         `gorm:"primaryKey;size:64"`
	UserID    string         `gorm:"size:128;not null;index"`
	Data      datatypes.JSON `gorm:"not null"`
	ExpiresAt time.Time      `gorm:"not null;index"`
	UpdatedAt time.Time
}

func (sessionRow) TableName() string { return "quiz_sessions" }
