package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mcoot/chinquiz/internal/api"
	"github.com/mcoot/chinquiz/internal/config"
	"github.com/mcoot/chinquiz/internal/factory"
	"github.com/mcoot/chinquiz/internal/web"
)

const version = "0.1.0"

func main() {
	cfg := &config.Config{}
	cmd := config.NewCommand(cfg, version, run)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := cfg.Logger(os.Stdout)
	slog.SetDefault(logger)

	// Create application factory
	app, err := factory.New(cfg.FactoryConfig(logger))
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	staticDir := cfg.StaticDir
	if staticDir == "" {
		staticDir = findStaticDir()
	}

	// Create API router
	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:             logger,
		Storage:            app.Storage,
		LeaderboardService: app.LeaderboardService,
		QuizController:     app.QuizController,
		IdentityService:    app.IdentityService,
		Clock:              app.Clock,
		RateLimit:          cfg.RateLimit,
		RateBurst:          cfg.RateBurst,
	})

	// Create web router
	webRouter := web.NewRouter(web.RouterConfig{
		Logger:             logger,
		IdentityService:    app.IdentityService,
		QuizController:     app.QuizController,
		LeaderboardService: app.LeaderboardService,
		Clock:              app.Clock,
		StaticDir:          staticDir,
	})

	// Combine routers
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("/", webRouter)

	// Create server
	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Bind
	serverConfig.Port = cfg.Port
	server := api.NewServer(mux, serverConfig, logger)

	if purger, ok := app.Storage.(sessionPurger); ok {
		go purgeSessions(ctx, purger, purgeInterval, logger)
	}

	logger.Info("starting chinquiz", slog.String("version", version), slog.String("storage", cfg.StorageType))
	if err := server.Run(ctx); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}

// sessionPurger is implemented by backends without native key expiry
type sessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

const purgeInterval = 10 * time.Minute

func purgeSessions(ctx context.Context, purger sessionPurger, every time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := purger.PurgeExpiredSessions(ctx)
			if err != nil {
				logger.Warn("failed to purge expired sessions", slog.String("error", err.Error()))
				continue
			}
			if purged > 0 {
				logger.Info("purged expired sessions", slog.Int64("count", purged))
			}
		}
	}
}

// findStaticDir returns the first static asset directory found next to the
// working directory or the executable
func findStaticDir() string {
	const rel = "internal/web/static"

	candidates := []string{rel}
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Dir(exe)
		candidates = append(candidates, filepath.Join(dir, rel), filepath.Join(dir, "..", rel))
	}

	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return rel
}
