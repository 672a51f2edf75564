package redis

import (
	"fmt"

	"github.com/mcoot/chinquiz/internal/model"
)

// Key prefix for all quiz data
const keyPrefix = "chinquiz"

// sessionKey returns the Redis key for a QuizSession
func sessionKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}

// entryKey returns the Redis key for a player's LeaderboardEntry
func entryKey(userID model.UserID) string {
	return fmt.Sprintf("%s:leaderboard:entry:%s", keyPrefix, userID)
}

// scoresKey returns the Redis key for the sorted set ranking user ids by score
func scoresKey() string {
	return fmt.Sprintf("%s:leaderboard:scores", keyPrefix)
}
