package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mcoot/chinquiz/internal/factory"
	"github.com/mcoot/chinquiz/internal/services/leaderboard"
	"github.com/mcoot/chinquiz/internal/services/matcher"
	redisstorage "github.com/mcoot/chinquiz/internal/storage/redis"
	sqlstorage "github.com/mcoot/chinquiz/internal/storage/sql"
)

// EnvPrefix is prepended to every flag name to form its environment variable
const EnvPrefix = "CHINQUIZ"

// Config holds server settings
type Config struct {
	Bind string
	Port int

	StorageType    string
	RedisURL       string
	DatabaseDriver string
	DatabaseURL    string
	SessionTTL     time.Duration

	RosterPath        string
	MatchThreshold    float64
	LeaderboardPolicy string

	RateLimit float64
	RateBurst int

	LogLevel  string
	LogFormat string

	StaticDir string
}

// Validate checks settings that flags alone cannot enforce
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}

	switch c.StorageType {
	case factory.StorageTypeMemory:
	case factory.StorageTypeRedis:
		if c.RedisURL == "" {
			return errors.New("--redis-url is required when --storage is redis")
		}
	case factory.StorageTypeSQL:
		if c.DatabaseURL == "" {
			return errors.New("--database-url is required when --storage is sql")
		}
		if c.DatabaseDriver != sqlstorage.DriverPostgres && c.DatabaseDriver != sqlstorage.DriverSQLite {
			return fmt.Errorf("invalid database driver %q (must be postgres or sqlite)", c.DatabaseDriver)
		}
	default:
		return fmt.Errorf("invalid storage %q (must be memory, redis or sql)", c.StorageType)
	}

	if c.SessionTTL <= 0 {
		return errors.New("--session-ttl must be positive")
	}
	if c.MatchThreshold <= 0 || c.MatchThreshold > 1 {
		return fmt.Errorf("invalid match threshold %v (must be in (0, 1])", c.MatchThreshold)
	}
	if _, err := leaderboard.ParsePolicy(c.LeaderboardPolicy); err != nil {
		return err
	}
	if c.RateLimit <= 0 || c.RateBurst < 1 {
		return errors.New("--rate-limit and --rate-burst must be positive")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("invalid log format %q (must be json or text)", c.LogFormat)
	}
	return nil
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Bind, c.Port)
}

// Logger builds the application logger writing to w
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// FactoryConfig translates settings into an application factory config
func (c *Config) FactoryConfig(logger *slog.Logger) factory.Config {
	policy, _ := leaderboard.ParsePolicy(c.LeaderboardPolicy)

	cfg := factory.Config{
		RosterPath:        c.RosterPath,
		MatcherConfig:     matcher.Config{Threshold: c.MatchThreshold},
		LeaderboardConfig: leaderboard.Config{Policy: policy},
		Logger:            logger,
		StorageType:       c.StorageType,
		SessionTTL:        c.SessionTTL,
	}

	switch c.StorageType {
	case factory.StorageTypeRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.RedisURL
		redisCfg.SessionTTL = c.SessionTTL
		cfg.RedisConfig = &redisCfg
	case factory.StorageTypeSQL:
		sqlCfg := sqlstorage.DefaultConfig()
		sqlCfg.Driver = c.DatabaseDriver
		sqlCfg.DSN = c.DatabaseURL
		sqlCfg.SessionTTL = c.SessionTTL
		cfg.SQLConfig = &sqlCfg
	}
	return cfg
}

func parseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return level, fmt.Errorf("invalid log level %q", name)
	}
	return level, nil
}

// NewCommand builds the server command. Every flag may also be supplied as an
// environment variable, e.g. --storage as CHINQUIZ_STORAGE. Explicit flags win.
func NewCommand(cfg *Config, version string, run func(ctx context.Context, cfg *Config) error) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "chinquiz-server",
		Short:         "Serves the chin quiz web game, its JSON API and leaderboard.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       version,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.Bind, "bind", "b", "0.0.0.0", "address to bind to (env: CHINQUIZ_BIND)")
	fs.IntVarP(&cfg.Port, "port", "p", 8080, "port to listen on (env: CHINQUIZ_PORT)")
	fs.StringVar(&cfg.StorageType, "storage", factory.StorageTypeMemory, "storage backend: memory, redis or sql (env: CHINQUIZ_STORAGE)")
	fs.StringVar(&cfg.RedisURL, "redis-url", "", "redis connection url (env: CHINQUIZ_REDIS_URL)")
	fs.StringVar(&cfg.DatabaseDriver, "database-driver", sqlstorage.DriverPostgres, "sql driver: postgres or sqlite (env: CHINQUIZ_DATABASE_DRIVER)")
	fs.StringVar(&cfg.DatabaseURL, "database-url", "", "sql connection string (env: CHINQUIZ_DATABASE_URL)")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", 2*time.Hour, "how long an unfinished quiz is kept (env: CHINQUIZ_SESSION_TTL)")
	fs.StringVar(&cfg.RosterPath, "roster", "", "path to a roster yaml file; built-in roster if empty (env: CHINQUIZ_ROSTER)")
	fs.Float64Var(&cfg.MatchThreshold, "match-threshold", matcher.DefaultThreshold, "largest accepted guess distance, 0..1 (env: CHINQUIZ_MATCH_THRESHOLD)")
	fs.StringVar(&cfg.LeaderboardPolicy, "leaderboard-policy", string(leaderboard.PolicyOverwrite), "resubmission policy: overwrite or best (env: CHINQUIZ_LEADERBOARD_POLICY)")
	fs.Float64Var(&cfg.RateLimit, "rate-limit", 10, "api requests per second per client (env: CHINQUIZ_RATE_LIMIT)")
	fs.IntVar(&cfg.RateBurst, "rate-burst", 20, "api request burst per client (env: CHINQUIZ_RATE_BURST)")
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "debug, info, warn or error (env: CHINQUIZ_LOG_LEVEL)")
	fs.StringVar(&cfg.LogFormat, "log-format", "json", "json or text (env: CHINQUIZ_LOG_FORMAT)")
	fs.StringVar(&cfg.StaticDir, "static-dir", "", "directory of static assets; auto-detected if empty (env: CHINQUIZ_STATIC_DIR)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("chinquiz-server v{{.Version}}\n")

	return cmd
}
