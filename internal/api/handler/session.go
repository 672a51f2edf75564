package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/chinquiz/internal/api/request"
	"github.com/mcoot/chinquiz/internal/api/response"
	"github.com/mcoot/chinquiz/internal/dependencies/clock"
	"github.com/mcoot/chinquiz/internal/model"
	"github.com/mcoot/chinquiz/internal/services/identity"
	"github.com/mcoot/chinquiz/internal/services/quiz"
)

// SessionHandler handles quiz session endpoints
type SessionHandler struct {
	quiz     quiz.ControllerInterface
	identity *identity.Service
	clock    clock.Clock
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(quiz quiz.ControllerInterface, identity *identity.Service, clock clock.Clock) *SessionHandler {
	return &SessionHandler{
		quiz:     quiz,
		identity: identity,
		clock:    clock,
	}
}

// Create handles POST /api/v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	var existing *model.PlayerIdentity
	if req.UserID != "" {
		existing = &model.PlayerIdentity{UserID: model.UserID(req.UserID)}
	}
	player, err := h.identity.Resolve(existing, req.DisplayName)
	if err != nil {
		WriteError(w, err)
		return
	}

	session, err := h.quiz.Start(r.Context(), player)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Created(w, "/api/v1/sessions/"+string(session.ID), response.SessionCreated{
		Identity: response.IdentityFromModel(player),
		Session:  response.SessionFromModel(session, h.clock.Now()),
	})
}

// Get handles GET /api/v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.SessionID(mux.Vars(r)["id"])

	session, err := h.quiz.Get(r.Context(), id)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromModel(session, h.clock.Now()))
}

// Guess handles POST /api/v1/sessions/{id}/guesses
func (h *SessionHandler) Guess(w http.ResponseWriter, r *http.Request) {
	id := model.SessionID(mux.Vars(r)["id"])

	var req request.GuessRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	result, err := h.quiz.Guess(r.Context(), id, req.Guess)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GuessResultFromModel(result, h.clock.Now()))
}
