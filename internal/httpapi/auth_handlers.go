package httpapi

import (
	"errors"
	"net/http"
	"time"

	"fieldops.org/internal/audit"
	"fieldops.org/internal/auth"
	"fieldops.org/internal/stream"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success   bool           `json:"success"`
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	User      *auth.Identity `json:"user"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result, err := a.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeError(w, r, http.StatusUnauthorized, "invalid email or password")
		case errors.Is(err, auth.ErrAccountDeactivated):
			writeError(w, r, http.StatusUnauthorized, "account is deactivated")
		case errors.Is(err, auth.ErrSponsorDeactivated):
			writeError(w, r, http.StatusUnauthorized, "sponsoring admin is deactivated")
		default:
			writeError(w, r, http.StatusInternalServerError, "login failed")
		}
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.login", map[string]any{
		"user_id": result.Identity.ID,
		"role":    string(result.Identity.Role),
	})
	if a.events != nil {
		a.events.Publish(stream.SessionEvent{Event: stream.EventLogin, UserID: result.Identity.ID})
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Success:   true,
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      result.Identity,
	})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := a.auth.Logout(r.Context(), identity.ID); err != nil {
		writeError(w, r, http.StatusInternalServerError, "logout failed")
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.logout", map[string]any{
		"user_id": identity.ID,
	})
	if a.events != nil {
		a.events.Publish(stream.SessionEvent{Event: stream.EventLogout, UserID: identity.ID})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "logged out",
	})
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    identity,
	})
}
