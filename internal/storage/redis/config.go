package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// SessionTTL bounds how long an abandoned quiz session is kept.
	// Leaderboard entries never expire.
	SessionTTL time.Duration

	// UpsertRetries is how many times a leaderboard upsert is retried when a
	// concurrent write to the same player invalidates the transaction
	UpsertRetries int
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:           "redis://localhost:6379",
		PoolSize:      10,
		MinIdleConns:  2,
		SessionTTL:    2 * time.Hour,
		UpsertRetries: 5,
	}
}
