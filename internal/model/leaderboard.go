package model

import "time"

// LeaderboardEntry is the best-known result for a single player
type LeaderboardEntry struct {
	ID          string    `json:"id"`
	UserID      UserID    `json:"userId"`
	DisplayName string    `json:"displayName"`
	TotalTimeMs int64     `json:"totalTime"`
	Penalties   int64     `json:"penalties"`
	CompletedAt time.Time `json:"completedAt"`
	Score       int64     `json:"score"`
}
