package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"livequiz/internal/service"
)

const defaultReportLimit = 10

// ReportHandler serves the round archive and mirrored standings
type ReportHandler struct {
	reportSvc *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportSvc *service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// ListRounds handles GET /v1/reports/rounds?gameId=
func (h *ReportHandler) ListRounds(w http.ResponseWriter, r *http.Request) {
	rounds, err := h.reportSvc.ListRounds(r.Context(), r.URL.Query().Get("gameId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rounds)
}

// GetRound handles GET /v1/reports/rounds/{gameId}/{number}
func (h *ReportHandler) GetRound(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	number, err := strconv.Atoi(vars["number"])
	if err != nil || number < 1 {
		writeError(w, http.StatusBadRequest, "invalid question number")
		return
	}

	round, err := h.reportSvc.GetRound(r.Context(), vars["gameId"], number)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if round == nil {
		writeError(w, http.StatusNotFound, "round not found")
		return
	}
	writeJSON(w, http.StatusOK, round)
}

// Leaderboard handles GET /v1/reports/leaderboard?limit=
func (h *ReportHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := defaultReportLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	entries, err := h.reportSvc.TopLeaderboard(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// PlayerRank handles GET /v1/reports/leaderboard/{playerId}
func (h *ReportHandler) PlayerRank(w http.ResponseWriter, r *http.Request) {
	playerID := mux.Vars(r)["playerId"]

	rank, err := h.reportSvc.PlayerRank(r.Context(), playerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if rank < 0 {
		writeError(w, http.StatusNotFound, "player not ranked")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"playerId": playerID, "rank": rank})
}

// Room handles GET /v1/reports/room
func (h *ReportHandler) Room(w http.ResponseWriter, r *http.Request) {
	meta, err := h.reportSvc.RoomMeta(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if meta == nil {
		writeError(w, http.StatusNotFound, "room not mirrored yet")
		return
	}
	writeJSON(w, http.StatusOK, meta)
}
