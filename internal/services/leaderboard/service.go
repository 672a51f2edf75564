package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mcoot/chinquiz/internal/dependencies/clock"
	"github.com/mcoot/chinquiz/internal/dependencies/random"
	"github.com/mcoot/chinquiz/internal/model"
	"github.com/mcoot/chinquiz/internal/services/scoring"
	"github.com/mcoot/chinquiz/internal/storage"
)

// MaxEntries is the most entries List will return
const MaxEntries = 50

// Policy decides what happens when a player who already has an entry submits
// again
type Policy string

const (
	// PolicyOverwrite replaces the existing entry with every submission
	PolicyOverwrite Policy = "overwrite"
	// PolicyBest keeps whichever of the existing and new results scores lower
	PolicyBest Policy = "best"
)

// ParsePolicy validates a policy name. An empty name selects PolicyOverwrite.
func ParsePolicy(name string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(name))) {
	case "", PolicyOverwrite:
		return PolicyOverwrite, nil
	case PolicyBest:
		return PolicyBest, nil
	default:
		return "", fmt.Errorf("unknown leaderboard policy %q", name)
	}
}

// Config holds leaderboard behavior settings
type Config struct {
	Policy Policy
}

// DefaultConfig returns the default leaderboard configuration
func DefaultConfig() Config {
	return Config{Policy: PolicyOverwrite}
}

// SubmitInput is an untrusted score submission. Numeric fields are pointers so
// that a missing value can be told apart from zero.
type SubmitInput struct {
	UserID      model.UserID
	TotalTimeMs *int64
	Penalties   *int64
	DisplayName string
}

// Service validates submissions and serves the ranked leaderboard
type Service struct {
	storage storage.Storage
	cfg     Config
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// New creates a new leaderboard Service
func New(storage storage.Storage, cfg Config, clock clock.Clock, random random.Random, logger *slog.Logger) *Service {
	if cfg.Policy == "" {
		cfg.Policy = PolicyOverwrite
	}
	return &Service{
		storage: storage,
		cfg:     cfg,
		clock:   clock,
		random:  random,
		logger:  logger,
	}
}

// List returns up to limit entries ranked best first. A limit outside
// 1..MaxEntries is treated as MaxEntries.
func (s *Service) List(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if limit <= 0 || limit > MaxEntries {
		limit = MaxEntries
	}

	entries, err := s.storage.ListLeaderboardEntries(ctx, limit)
	if err != nil {
		s.logger.Error("failed to list leaderboard",
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %v", model.ErrPersistence, err)
	}
	return scoring.Rank(entries), nil
}

// Submit validates a result and records it as the player's leaderboard entry
func (s *Service) Submit(ctx context.Context, input SubmitInput) (*model.LeaderboardEntry, error) {
	if err := validate(input); err != nil {
		return nil, err
	}

	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = model.PlaceholderName(input.UserID)
	}

	entry := &model.LeaderboardEntry{
		ID:          s.random.UUID(),
		UserID:      input.UserID,
		DisplayName: displayName,
		TotalTimeMs: *input.TotalTimeMs,
		Penalties:   *input.Penalties,
		CompletedAt: s.clock.Now(),
	}
	entry.Score = scoring.ScoreEntry(entry)

	if s.cfg.Policy == PolicyBest {
		existing, err := s.storage.GetLeaderboardEntry(ctx, input.UserID)
		switch {
		case errors.Is(err, model.ErrEntryNotFound):
		case err != nil:
			return nil, s.persistenceError(input.UserID, err)
		case scoring.ScoreEntry(existing) <= entry.Score:
			s.logger.Info("kept existing leaderboard entry",
				slog.String("user_id", string(input.UserID)),
				slog.Int64("existing_score", existing.Score),
				slog.Int64("submitted_score", entry.Score),
			)
			return existing, nil
		}
	}

	stored, err := s.storage.UpsertLeaderboardEntry(ctx, entry)
	if err != nil {
		return nil, s.persistenceError(input.UserID, err)
	}

	s.logger.Info("leaderboard entry recorded",
		slog.String("user_id", string(stored.UserID)),
		slog.String("entry_id", stored.ID),
		slog.Int64("total_time_ms", stored.TotalTimeMs),
		slog.Int64("penalties", stored.Penalties),
		slog.Int64("score", stored.Score),
	)
	return stored, nil
}

func (s *Service) persistenceError(userID model.UserID, err error) error {
	s.logger.Error("failed to save leaderboard entry",
		slog.String("user_id", string(userID)),
		slog.String("error", err.Error()),
	)
	return fmt.Errorf("%w: %v", model.ErrPersistence, err)
}

func validate(input SubmitInput) error {
	if strings.TrimSpace(string(input.UserID)) == "" {
		return fmt.Errorf("%w: userId is required", model.ErrInvalidInput)
	}
	if input.TotalTimeMs == nil {
		return fmt.Errorf("%w: totalTime is required", model.ErrInvalidInput)
	}
	if input.Penalties == nil {
		return fmt.Errorf("%w: penalties is required", model.ErrInvalidInput)
	}
	if *input.TotalTimeMs < 0 {
		return fmt.Errorf("%w: totalTime must not be negative", model.ErrInvalidInput)
	}
	if *input.Penalties < 0 {
		return fmt.Errorf("%w: penalties must not be negative", model.ErrInvalidInput)
	}
	return nil
}

// Policy returns the active resubmission policy
func (s *Service) Policy() Policy {
	return s.cfg.Policy
}
