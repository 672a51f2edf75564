package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/mcoot/chinquiz/internal/dependencies/clock"
	"github.com/mcoot/chinquiz/internal/model"
	"github.com/mcoot/chinquiz/internal/storage"
)

// DefaultSessionTTL is how long an untouched quiz session is kept
const DefaultSessionTTL = 2 * time.Hour

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	clock      clock.Clock
	sessionTTL time.Duration

	sessions map[model.SessionID]storedSession
	entries  map[model.UserID]*storedEntry
	seq      int
}

type storedSession struct {
	session   model.QuizSession
	expiresAt time.Time
}

type storedEntry struct {
	entry model.LeaderboardEntry
	// seq records first insertion so that equal scores list in a stable order
	seq int
}

// New creates an in-memory store. Sessions expire sessionTTL after their last
// save; a non-positive TTL uses DefaultSessionTTL.
func New(clk clock.Clock, sessionTTL time.Duration) *Storage {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &Storage{
		clock:      clk,
		sessionTTL: sessionTTL,
		sessions:   make(map[model.SessionID]storedSession),
		entries:    make(map[model.UserID]*storedEntry),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) Ping(ctx context.Context) error {
	return nil
}

// Quiz session operations

func (s *Storage) SaveQuizSession(ctx context.Context, session *model.QuizSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = storedSession{
		session:   cloneSession(session),
		expiresAt: s.clock.Now().Add(s.sessionTTL),
	}
	return nil
}

func (s *Storage) GetQuizSession(ctx context.Context, id model.SessionID) (*model.QuizSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.sessions[id]
	if !ok || !s.clock.Now().Before(stored.expiresAt) {
		return nil, model.ErrSessionNotFound
	}
	result := cloneSession(&stored.session)
	return &result, nil
}

func (s *Storage) DeleteQuizSession(ctx context.Context, id model.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// PurgeExpiredSessions drops sessions whose TTL has lapsed and returns how
// many were removed
func (s *Storage) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	var purged int64
	for id, stored := range s.sessions {
		if !now.Before(stored.expiresAt) {
			delete(s.sessions, id)
			purged++
		}
	}
	return purged, nil
}

// Leaderboard operations

func (s *Storage) UpsertLeaderboardEntry(ctx context.Context, entry *model.LeaderboardEntry) (*model.LeaderboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *entry
	if existing, ok := s.entries[entry.UserID]; ok {
		stored.ID = existing.entry.ID
		existing.entry = stored
	} else {
		s.seq++
		s.entries[entry.UserID] = &storedEntry{entry: stored, seq: s.seq}
	}
	return &stored, nil
}

func (s *Storage) GetLeaderboardEntry(ctx context.Context, userID model.UserID) (*model.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	existing, ok := s.entries[userID]
	if !ok {
		return nil, model.ErrEntryNotFound
	}
	entry := existing.entry
	return &entry, nil
}

func (s *Storage) ListLeaderboardEntries(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*storedEntry, 0, len(s.entries))
	for _, e := range s.entries {
		all = append(all, e)
	}
	slices.SortFunc(all, func(a, b *storedEntry) int {
		if a.entry.Score != b.entry.Score {
			return cmp.Compare(a.entry.Score, b.entry.Score)
		}
		return a.seq - b.seq
	})

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	result := make([]model.LeaderboardEntry, len(all))
	for i, e := range all {
		result[i] = e.entry
	}
	return result, nil
}

func cloneSession(session *model.QuizSession) model.QuizSession {
	c := *session
	c.Order = slices.Clone(session.Order)
	c.Guesses = slices.Clone(session.Guesses)
	if session.RevealUntil != nil {
		t := *session.RevealUntil
		c.RevealUntil = &t
	}
	if session.CompletedAt != nil {
		t := *session.CompletedAt
		c.CompletedAt = &t
	}
	return c
}
