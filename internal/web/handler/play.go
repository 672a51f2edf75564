package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mcoot/chinquiz/internal/dependencies/clock"
	"github.com/mcoot/chinquiz/internal/model"
	"github.com/mcoot/chinquiz/internal/services/quiz"
	"github.com/mcoot/chinquiz/internal/web/middleware"
	"github.com/mcoot/chinquiz/internal/web/templates/layout"
	"github.com/mcoot/chinquiz/internal/web/templates/pages"
)

// PlayHandler handles the quiz screen and its actions
type PlayHandler struct {
	quiz   quiz.ControllerInterface
	clock  clock.Clock
	logger *slog.Logger
}

// NewPlayHandler creates a new PlayHandler
func NewPlayHandler(quiz quiz.ControllerInterface, clock clock.Clock, logger *slog.Logger) *PlayHandler {
	return &PlayHandler{
		quiz:   quiz,
		clock:  clock,
		logger: logger,
	}
}

// View renders the current round, starting a play-through if the player has none
func (h *PlayHandler) View(w http.ResponseWriter, r *http.Request) {
	player := middleware.GetIdentity(r.Context())

	session, err := h.currentSession(r, player)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if session == nil {
		session, err = h.quiz.Start(r.Context(), *player)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		middleware.SetSessionID(w, session.ID)
	}

	render(w, r, h.logger, pages.Play(h.playData(r, player, session)))
}

// Guess applies the submitted guess to the current round
func (h *PlayHandler) Guess(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		middleware.SetFlash(w, middleware.FlashError, "Invalid form data")
		http.Redirect(w, r, "/play", http.StatusSeeOther)
		return
	}

	player := middleware.GetIdentity(r.Context())
	session, err := h.currentSession(r, player)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if session == nil {
		http.Redirect(w, r, "/play", http.StatusSeeOther)
		return
	}

	result, err := h.quiz.Guess(r.Context(), session.ID, r.FormValue("guess"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if flashType, message := guessFlash(result); message != "" {
		middleware.SetFlash(w, flashType, message)
	}
	http.Redirect(w, r, "/play", http.StatusSeeOther)
}

// Again discards the current play-through and starts a new one
func (h *PlayHandler) Again(w http.ResponseWriter, r *http.Request) {
	player := middleware.GetIdentity(r.Context())

	session, err := h.quiz.Restart(r.Context(), *player, middleware.GetSessionID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	middleware.SetSessionID(w, session.ID)

	http.Redirect(w, r, "/play", http.StatusSeeOther)
}

// currentSession loads the session named by the cookie. A missing, expired or
// someone else's session yields nil.
func (h *PlayHandler) currentSession(r *http.Request, player *model.PlayerIdentity) (*model.QuizSession, error) {
	id := middleware.GetSessionID(r)
	if id == "" {
		return nil, nil
	}
	session, err := h.quiz.Get(r.Context(), id)
	if errors.Is(err, model.ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if session.UserID != player.UserID {
		return nil, nil
	}
	return session, nil
}

func (h *PlayHandler) playData(r *http.Request, player *model.PlayerIdentity, session *model.QuizSession) pages.PlayData {
	now := h.clock.Now()
	data := pages.PlayData{
		PageData: layout.PageData{
			Title:  "Play",
			Player: player,
			Flash:  middleware.GetFlash(r.Context()),
		},
		Round:       min(session.RoundIndex+1, session.TotalRounds()),
		TotalRounds: session.TotalRounds(),
		ChancesLeft: session.ChancesLeft(),
		Penalties:   session.Penalties,
		ElapsedMs:   session.Elapsed(now).Milliseconds(),
		Completed:   session.Completed,
	}

	if session.Completed {
		data.Title = "Quiz Complete"
		data.Score = quiz.FinalScore(session)
		return data
	}

	if entry := session.CurrentEntry(); entry != nil {
		data.Image = entry.ImageRef
		if session.IsRevealing() {
			data.Revealed = entry.Name
			data.RefreshSeconds = refreshAfter(session.RevealUntil.Sub(now))
		}
	}
	return data
}

// refreshAfter rounds a remaining reveal time up to whole seconds
func refreshAfter(remaining time.Duration) int {
	seconds := int((remaining + time.Second - 1) / time.Second)
	return max(seconds, 1)
}

func guessFlash(result *quiz.GuessResult) (string, string) {
	switch result.Outcome {
	case quiz.OutcomeCorrect:
		return middleware.FlashSuccess, "Correct!"
	case quiz.OutcomeCompleted:
		return middleware.FlashSuccess, "Correct! That's all of them."
	case quiz.OutcomeWrong:
		left := result.Session.ChancesLeft()
		if left == 1 {
			return middleware.FlashError, "Not quite. 1 chance left."
		}
		return middleware.FlashError, fmt.Sprintf("Not quite. %d chances left.", left)
	case quiz.OutcomeExhausted:
		return middleware.FlashInfo, "Out of chances! It was " + result.Answer + "."
	default:
		return "", ""
	}
}

func (h *PlayHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("quiz request failed",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	middleware.SetFlash(w, middleware.FlashError, "Something went wrong. Please try again.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
