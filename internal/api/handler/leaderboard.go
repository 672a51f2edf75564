package handler

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/mcoot/chinquiz/internal/api/request"
	"github.com/mcoot/chinquiz/internal/api/response"
	"github.com/mcoot/chinquiz/internal/model"
	"github.com/mcoot/chinquiz/internal/services/leaderboard"
)

// LeaderboardService is the leaderboard behaviour the handler needs
type LeaderboardService interface {
	List(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
	Submit(ctx context.Context, input leaderboard.SubmitInput) (*model.LeaderboardEntry, error)
}

// LeaderboardHandler handles leaderboard endpoints
type LeaderboardHandler struct {
	leaderboard LeaderboardService
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(leaderboard LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboard: leaderboard,
	}
}

// List handles GET /api/v1/leaderboard
func (h *LeaderboardHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			WriteError(w, NewInvalidRequestError("limit must be an integer"))
			return
		}
		limit = n
	}

	entries, err := h.leaderboard.List(r.Context(), limit)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LeaderboardFromModels(entries))
}

// Submit handles POST /api/v1/leaderboard
func (h *LeaderboardHandler) Submit(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		WriteError(w, err)
		return
	}

	input, err := request.ParseSubmitScore(body)
	if err != nil {
		WriteError(w, err)
		return
	}

	entry, err := h.leaderboard.Submit(r.Context(), input)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LeaderboardEntryFromModel(entry, 0))
}
