package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"livequiz/internal/service"
)

const maxBodyBytes = 64 << 10

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps operator misuse to 4xx and anything else to 500
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrMalformedQuestion):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotInLobby),
		errors.Is(err, service.ErrNotActive),
		errors.Is(err, service.ErrNoCurrentQuestion),
		errors.Is(err, service.ErrDuplicateQuestionID):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrArchiveDisabled),
		errors.Is(err, service.ErrMirrorDisabled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
