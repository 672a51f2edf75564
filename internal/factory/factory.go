package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/chinquiz/internal/dependencies/clock"
	"github.com/mcoot/chinquiz/internal/dependencies/random"
	"github.com/mcoot/chinquiz/internal/services/identity"
	"github.com/mcoot/chinquiz/internal/services/leaderboard"
	"github.com/mcoot/chinquiz/internal/services/matcher"
	"github.com/mcoot/chinquiz/internal/services/quiz"
	"github.com/mcoot/chinquiz/internal/services/roster"
	"github.com/mcoot/chinquiz/internal/storage"
	"github.com/mcoot/chinquiz/internal/storage/memory"
	redisstorage "github.com/mcoot/chinquiz/internal/storage/redis"
	sqlstorage "github.com/mcoot/chinquiz/internal/storage/sql"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQL    = "sql"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Roster             *roster.Service
	Matcher            *matcher.Matcher
	LeaderboardService *leaderboard.Service
	QuizController     *quiz.Controller
	IdentityService    *identity.Service

	closer io.Closer
}

// Close releases storage connections
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// Config holds configuration for the application factory
type Config struct {
	// RosterPath is the path to a roster YAML file (optional)
	// If empty, the built-in roster is used
	RosterPath string
	// MatcherConfig tunes guess matching (optional)
	// If zero value, defaults to matcher.DefaultConfig()
	MatcherConfig matcher.Config
	// LeaderboardConfig holds leaderboard behavior (optional)
	// If zero value, defaults to leaderboard.DefaultConfig()
	LeaderboardConfig leaderboard.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sql")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLConfig holds database settings (required if StorageType is "sql")
	SQLConfig *sqlstorage.Config
	// SessionTTL bounds how long the memory backend keeps an untouched session
	// If zero, defaults to memory.DefaultSessionTTL
	SessionTTL time.Duration
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	// Create storage based on type
	var store storage.Storage
	var closer io.Closer
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New(clk, cfg.SessionTTL)
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store, closer = redisStore, redisStore
	case StorageTypeSQL:
		if cfg.SQLConfig == nil {
			return nil, errors.New("SQLConfig required when StorageType is sql")
		}
		sqlStore, err := sqlstorage.New(*cfg.SQLConfig, clk, logger)
		if err != nil {
			return nil, err
		}
		store, closer = sqlStore, sqlStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'sql'")
	}

	r := roster.Default()
	if cfg.RosterPath != "" {
		loaded, err := roster.LoadFromFile(cfg.RosterPath)
		if err != nil {
			return nil, fmt.Errorf("load roster %s: %w", cfg.RosterPath, err)
		}
		r = loaded
	}

	matcherCfg := cfg.MatcherConfig
	if matcherCfg.Threshold == 0 {
		matcherCfg = matcher.DefaultConfig()
	}

	app := newWithDependencies(store, r, matcherCfg, cfg.LeaderboardConfig, clk, rnd, logger)
	app.closer = closer

	logger.Info("application wired",
		slog.String("storage", storageType),
		slog.Int("roster_size", r.Len()),
		slog.String("leaderboard_policy", string(app.LeaderboardService.Policy())),
	)
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	r *roster.Service,
	matcherCfg matcher.Config,
	leaderboardCfg leaderboard.Config,
	clk clock.Clock,
	rnd random.Random,
	logger *slog.Logger,
) *App {
	// Create services
	m := matcher.New(r.Entries(), matcherCfg)
	leaderboardService := leaderboard.New(store, leaderboardCfg, clk, rnd, logger)
	quizController := quiz.NewController(store, r.Entries(), m, leaderboardService, clk, rnd, logger)
	identityService := identity.New(rnd)

	return &App{
		Storage:            store,
		Clock:              clk,
		Random:             rnd,
		Roster:             r,
		Matcher:            m,
		LeaderboardService: leaderboardService,
		QuizController:     quizController,
		IdentityService:    identityService,
	}
}
