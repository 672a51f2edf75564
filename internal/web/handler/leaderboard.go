package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mcoot/chinquiz/internal/model"
	"github.com/mcoot/chinquiz/internal/services/scoring"
	"github.com/mcoot/chinquiz/internal/web/middleware"
	"github.com/mcoot/chinquiz/internal/web/templates/layout"
	"github.com/mcoot/chinquiz/internal/web/templates/pages"
)

// LeaderboardLister reads the ranked leaderboard
type LeaderboardLister interface {
	List(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
}

// LeaderboardHandler handles the leaderboard page
type LeaderboardHandler struct {
	leaderboard LeaderboardLister
	logger      *slog.Logger
}

// NewLeaderboardHandler creates a new LeaderboardHandler
func NewLeaderboardHandler(leaderboard LeaderboardLister, logger *slog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboard: leaderboard,
		logger:      logger,
	}
}

// View renders the leaderboard
func (h *LeaderboardHandler) View(w http.ResponseWriter, r *http.Request) {
	data := pages.LeaderboardData{
		PageData: layout.PageData{
			Title:  "Leaderboard",
			Player: middleware.GetIdentity(r.Context()),
			Flash:  middleware.GetFlash(r.Context()),
		},
	}

	entries, err := h.leaderboard.List(r.Context(), 0)
	if err != nil {
		h.logger.Error("failed to load leaderboard", slog.String("error", err.Error()))
		data.Flash = &layout.FlashMessage{Type: middleware.FlashError, Message: "Could not load the leaderboard right now."}
	}

	for i := range entries {
		e := &entries[i]
		data.Rows = append(data.Rows, pages.LeaderboardRow{
			Rank:        i + 1,
			DisplayName: e.DisplayName,
			TotalTimeMs: e.TotalTimeMs,
			Penalties:   e.Penalties,
			Score:       scoring.ScoreEntry(e),
		})
	}

	render(w, r, h.logger, pages.Leaderboard(data))
}
