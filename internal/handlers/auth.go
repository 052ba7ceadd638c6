package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/city-traffic/internal/auth"
	"github.com/ukydev/city-traffic/internal/models"
)

// AuthHandler handles token requests
type AuthHandler struct {
	authService *auth.Service
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Token exchanges operator credentials for an operator token
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req models.TokenRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	resp, err := h.authService.Login(req)
	switch {
	case errors.Is(err, auth.ErrOperatorDisabled):
		http.Error(w, "Operator login is not configured", http.StatusServiceUnavailable)
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		log.WithField("username", req.Username).Warn("Rejected operator login")
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	case err != nil:
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	log.WithField("username", req.Username).Info("Operator logged in")
	writeJSON(w, http.StatusOK, resp)
}

// Guest issues a viewer token
func (h *AuthHandler) Guest(w http.ResponseWriter, r *http.Request) {
	resp, err := h.authService.GuestToken()
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
