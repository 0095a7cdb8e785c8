package handler

import (
	"net/http"

	"livequiz/internal/service"
	"livequiz/internal/transport/rest/middleware"
)

// GameHandler exposes the operator controls of the room
type GameHandler struct {
	game *service.GameService
}

// NewGameHandler creates a new game handler
func NewGameHandler(game *service.GameService) *GameHandler {
	return &GameHandler{game: game}
}

// AskQuestionRequest is the request body for asking a question
type AskQuestionRequest struct {
	ID          string   `json:"id,omitempty"`
	Text        string   `json:"text"`
	Options     []string `json:"options"` // texts for A, B, C, D in order
	Correct     string   `json:"correct"`
	TimeSeconds int      `json:"timeSeconds,omitempty"`
}

// Start handles POST /v1/game/start
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	if err := h.game.Start(); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.game.Snapshot())
}

// Ask handles POST /v1/game/questions
func (h *GameHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskQuestionRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TimeSeconds == 0 {
		req.TimeSeconds = service.DefaultQuestionSeconds
	}

	q, err := service.BuildQuestion(req.ID, req.Text, req.Options, req.Correct, req.TimeSeconds)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	asked, number, err := h.game.Ask(q)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"question":       asked,
		"questionNumber": number,
		"askedBy":        middleware.GetHostID(r.Context()),
	})
}

// Reveal handles POST /v1/game/reveal
func (h *GameHandler) Reveal(w http.ResponseWriter, r *http.Request) {
	if err := h.game.Reveal(); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.game.Leaderboard())
}

// End handles POST /v1/game/end and returns the final standings
func (h *GameHandler) End(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.game.End())
}

// Reset handles POST /v1/game/reset
func (h *GameHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.game.Reset()
	writeJSON(w, http.StatusOK, map[string]string{"status": string(h.game.CurrentStatus())})
}

// Status handles GET /v1/game/status
func (h *GameHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.game.Snapshot())
}

// Players handles GET /v1/game/players
func (h *GameHandler) Players(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.game.CurrentPlayers())
}

// Leaderboard handles GET /v1/game/leaderboard
func (h *GameHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.game.Leaderboard())
}
