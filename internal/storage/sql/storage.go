package sql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/mcoot/chinquiz/internal/dependencies/clock"
	"github.com/mcoot/chinquiz/internal/model"
	"github.com/mcoot/chinquiz/internal/storage"
)

// Storage is a gorm-backed relational implementation of the storage interface
type Storage struct {
	db    *gorm.DB
	cfg   Config
	clock clock.Clock
}

// New opens the configured database and migrates the schema
func New(cfg Config, clk clock.Clock, log *slog.Logger) (*Storage, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	case DriverSQLite:
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(
			slog.NewLogLogger(log.Handler(), slog.LevelWarn),
			logger.Config{
				SlowThreshold:             500 * time.Millisecond,
				LogLevel:                  logger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		),
		NowFunc: func() time.Time { return clk.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	maxOpen := cfg.MaxOpenConns
	if cfg.Driver == DriverSQLite {
		// sqlite allows a single writer; in-memory databases are per connection
		maxOpen = 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)

	s := &Storage{db: db, cfg: cfg, clock: clk}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Storage) migrate() error {
	return s.db.AutoMigrate(&leaderboardRow{}, &sessionRow{})
}

// Close closes the underlying connection pool
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Quiz session operations

func (s *Storage) SaveQuizSession(ctx context.Context, session *model.QuizSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	row := sessionRow{
		ID:        string(session.ID),
		UserID:    string(session.UserID),
		Data:      data,
		ExpiresAt: s.clock.Now().Add(s.cfg.SessionTTL),
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_id", "data", "expires_at", "updated_at"}),
		}).
		Create(&row).Error
}

func (s *Storage) GetQuizSession(ctx context.Context, id model.SessionID) (*model.QuizSession, error) {
	var row sessionRow
	err := s.db.WithContext(ctx).
		Where("id = ? AND expires_at > ?", string(id), s.clock.Now()).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	var session model.QuizSession
	if err := json.Unmarshal(row.Data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Storage) DeleteQuizSession(ctx context.Context, id model.SessionID) error {
	return s.db.WithContext(ctx).Delete(&sessionRow{}, "id = ?", string(id)).Error
}

// PurgeExpiredSessions deletes sessions whose TTL has lapsed and returns how
// many were removed
func (s *Storage) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Where("expires_at <= ?", s.clock.Now()).Delete(&sessionRow{})
	return result.RowsAffected, result.Error
}

// Leaderboard operations

func (s *Storage) UpsertLeaderboardEntry(ctx context.Context, entry *model.LeaderboardEntry) (*model.LeaderboardEntry, error) {
	var stored leaderboardRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := rowFromEntry(entry)
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"display_name", "total_time_ms", "penalties", "score", "completed_at", "updated_at",
			}),
		}).Create(&row).Error
		if err != nil {
			return err
		}
		return tx.Where("user_id = ?", string(entry.UserID)).Take(&stored).Error
	})
	if err != nil {
		return nil, err
	}

	result := stored.toModel()
	return &result, nil
}

func (s *Storage) GetLeaderboardEntry(ctx context.Context, userID model.UserID) (*model.LeaderboardEntry, error) {
	var row leaderboardRow
	err := s.db.WithContext(ctx).Where("user_id = ?", string(userID)).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrEntryNotFound
		}
		return nil, err
	}
	entry := row.toModel()
	return &entry, nil
}

func (s *Storage) ListLeaderboardEntries(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	query := s.db.WithContext(ctx).Order("score ASC").Order("seq ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []leaderboardRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]model.LeaderboardEntry, len(rows))
	for i := range rows {
		entries[i] = rows[i].toModel()
	}
	return entries, nil
}
