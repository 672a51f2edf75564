package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/chinquiz/internal/api/handler"
	"github.com/mcoot/chinquiz/internal/api/middleware"
	"github.com/mcoot/chinquiz/internal/dependencies/clock"
	basemiddleware "github.com/mcoot/chinquiz/internal/middleware"
	"github.com/mcoot/chinquiz/internal/services/identity"
	"github.com/mcoot/chinquiz/internal/services/quiz"
	"github.com/mcoot/chinquiz/internal/storage"
)

// Default rate limit for API clients
const (
	DefaultRateLimit = 10
	DefaultRateBurst = 20
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger             *slog.Logger
	Storage            storage.Storage
	LeaderboardService handler.LeaderboardService
	QuizController     quiz.ControllerInterface
	IdentityService    *identity.Service
	Clock              clock.Clock

	// RateLimit is requests per second per client; zero uses DefaultRateLimit,
	// negative disables limiting
	RateLimit float64
	RateBurst int
	// MaxBodyBytes caps request bodies; zero uses middleware.DefaultMaxBodyBytes
	MaxBodyBytes int64
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	Register(r, cfg)
	return r
}

// Register mounts the API under /api/v1 on an existing router
func Register(r *mux.Router, cfg RouterConfig) {
	// Create handlers
	healthHandler := handler.NewHealthHandler(cfg.Storage, cfg.Logger)
	leaderboardHandler := handler.NewLeaderboardHandler(cfg.LeaderboardService)
	sessionHandler := handler.NewSessionHandler(cfg.QuizController, cfg.IdentityService, cfg.Clock)

	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = middleware.DefaultMaxBodyBytes
	}

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))
	if limiter := newRateLimiter(cfg); limiter != nil {
		api.Use(middleware.RateLimit(limiter, cfg.Logger))
	}
	api.Use(middleware.BodyLimit(maxBody))

	// Health check endpoint
	api.HandleFunc("/health", healthHandler.Get).Methods(http.MethodGet)

	// Leaderboard routes
	api.HandleFunc("/leaderboard", leaderboardHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard", leaderboardHandler.Submit).Methods(http.MethodPost)

	// Quiz session routes
	api.HandleFunc("/sessions", sessionHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}", sessionHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/guesses", sessionHandler.Guess).Methods(http.MethodPost)
}

func newRateLimiter(cfg RouterConfig) *basemiddleware.RateLimiter {
	rps, burst := cfg.RateLimit, cfg.RateBurst
	if rps < 0 {
		return nil
	}
	if rps == 0 {
		rps = DefaultRateLimit
	}
	if burst <= 0 {
		burst = DefaultRateBurst
	}
	return basemiddleware.NewRateLimiter(rps, burst, cfg.Clock)
}
