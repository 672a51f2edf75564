package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mcoot/chinquiz/internal/model"
	"github.com/mcoot/chinquiz/internal/services/identity"
	"github.com/mcoot/chinquiz/internal/services/quiz"
	"github.com/mcoot/chinquiz/internal/web/middleware"
	"github.com/mcoot/chinquiz/internal/web/templates/layout"
	"github.com/mcoot/chinquiz/internal/web/templates/pages"
)

// HomeHandler handles the start screen
type HomeHandler struct {
	identity *identity.Service
	quiz     quiz.ControllerInterface
	logger   *slog.Logger
}

// NewHomeHandler creates a new HomeHandler
func NewHomeHandler(identity *identity.Service, quiz quiz.ControllerInterface, logger *slog.Logger) *HomeHandler {
	return &HomeHandler{
		identity: identity,
		quiz:     quiz,
		logger:   logger,
	}
}

// Home renders the start screen
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	player := middleware.GetIdentity(r.Context())

	data := pages.StartData{
		PageData: layout.PageData{
			Title:  "Home",
			Player: player,
			Flash:  middleware.GetFlash(r.Context()),
		},
	}
	if player != nil {
		data.Name = player.DisplayName
	}

	render(w, r, h.logger, pages.Start(data))
}

// Start saves the player's name and begins a new play-through
func (h *HomeHandler) Start(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		middleware.SetFlash(w, middleware.FlashError, "Invalid form data")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	player, err := h.identity.Resolve(middleware.GetIdentity(r.Context()), r.FormValue("name"))
	if errors.Is(err, model.ErrMissingIdentity) {
		middleware.SetFlash(w, middleware.FlashError, "Please enter a name to continue")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if err := middleware.SetIdentity(w, player); err != nil {
		h.fail(w, r, err)
		return
	}

	session, err := h.quiz.Restart(r.Context(), player, middleware.GetSessionID(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	middleware.SetSessionID(w, session.ID)

	http.Redirect(w, r, "/play", http.StatusSeeOther)
}

func (h *HomeHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("failed to start quiz", slog.String("error", err.Error()))
	middleware.SetFlash(w, middleware.FlashError, "Could not start the quiz. Please try again.")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
