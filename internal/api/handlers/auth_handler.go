package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/markdave123-py/reviewdesk/internal/logging"
	"github.com/markdave123-py/reviewdesk/internal/services"
)

// Authenticator issues admin tokens.
type Authenticator interface {
	Login(password string) (string, error)
}

type AuthHandler struct {
	auth Authenticator
}

func NewAuthHandler(auth Authenticator) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Status string `json:"status"`
	Token  string `json:"token"`
}

// Login handles POST /api/admin/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&req); err != nil {
		writeStatus(w, http.StatusBadRequest, statusError, "Invalid request body")
		return
	}

	token, err := h.auth.Login(req.Password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, loginResponse{Status: statusSuccess, Token: token})
	case errors.Is(err, services.ErrInvalidCredentials):
		logging.Warn("admin login rejected", logrus.Fields{"remote": r.RemoteAddr})
		writeStatus(w, http.StatusUnauthorized, statusError, "Invalid credentials")
	case errors.Is(err, services.ErrAuthDisabled):
		writeStatus(w, http.StatusServiceUnavailable, statusError, "Admin login is not configured")
	default:
		logging.Error("admin login failed", logrus.Fields{"error": err.Error()})
		writeStatus(w, http.StatusInternalServerError, statusError, msgUnexpected)
	}
}
