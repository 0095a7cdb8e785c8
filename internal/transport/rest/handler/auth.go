package handler

import (
	"log"
	"net/http"

	"livequiz/internal/model"
	"livequiz/internal/service"
)

// AuthHandler handles operator login
type AuthHandler struct {
	authSvc *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authSvc *service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.authSvc.Login(req.Username, req.Password)
	if err != nil {
		log.Printf("Failed operator login for %q", req.Username)
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	log.Printf("Operator %s logged in", resp.HostID)
	writeJSON(w, http.StatusOK, resp)
}
