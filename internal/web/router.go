package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/chinquiz/internal/dependencies/clock"
	basemiddleware "github.com/mcoot/chinquiz/internal/middleware"
	"github.com/mcoot/chinquiz/internal/services/identity"
	"github.com/mcoot/chinquiz/internal/services/quiz"
	"github.com/mcoot/chinquiz/internal/web/handler"
	"github.com/mcoot/chinquiz/internal/web/middleware"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger             *slog.Logger
	IdentityService    *identity.Service
	QuizController     quiz.ControllerInterface
	LeaderboardService handler.LeaderboardLister
	Clock              clock.Clock
	StaticDir          string // Path to static files directory
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	Register(r, cfg)
	return r
}

// Register mounts the web pages on an existing router
func Register(r *mux.Router, cfg RouterConfig) {
	// Create middleware
	loggingMiddleware := basemiddleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)
	flashMiddleware := middleware.Flash()
	identityMiddleware := middleware.Identity()
	requireIdentityMiddleware := middleware.RequireIdentity()

	// Create handlers
	homeHandler := handler.NewHomeHandler(cfg.IdentityService, cfg.QuizController, cfg.Logger)
	playHandler := handler.NewPlayHandler(cfg.QuizController, cfg.Clock, cfg.Logger)
	leaderboardHandler := handler.NewLeaderboardHandler(cfg.LeaderboardService, cfg.Logger)

	// Static files
	if cfg.StaticDir != "" {
		staticHandler := http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticDir)))
		r.PathPrefix("/static/").Handler(loggingMiddleware(staticHandler))
	}

	pages := r.NewRoute().Subrouter()
	pages.Use(recoveryMiddleware)
	pages.Use(loggingMiddleware)
	pages.Use(basemiddleware.SecurityHeaders())
	pages.Use(flashMiddleware)
	pages.Use(identityMiddleware)

	// Public routes
	pages.HandleFunc("/", homeHandler.Home).Methods(http.MethodGet)
	pages.HandleFunc("/start", homeHandler.Start).Methods(http.MethodPost)
	pages.HandleFunc("/leaderboard", leaderboardHandler.View).Methods(http.MethodGet)

	// Routes that need a named player
	play := pages.PathPrefix("/play").Subrouter()
	play.Use(requireIdentityMiddleware)
	play.HandleFunc("", playHandler.View).Methods(http.MethodGet)
	play.HandleFunc("/guess", playHandler.Guess).Methods(http.MethodPost)
	play.HandleFunc("/again", playHandler.Again).Methods(http.MethodPost)
}
