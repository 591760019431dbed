package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"fieldops.org/internal/auth"
	"fieldops.org/internal/obs"
	"fieldops.org/internal/stream"
)

const (
	authHeader   = "Authorization"
	bearerPrefix = "Bearer "
)

var publicPaths = []string{
	"/v1/auth/login",
	"/v1/info",
	"/metrics",
	"/healthz",
	"/readyz",
	"/",
}

// withAuth is the authentication pipeline, terminal on first failure:
// ExtractToken -> DecodeToken -> LookupIdentity -> ValidateSession ->
// attach identity -> next handler.
func (a *API) withAuth(next http.Handler) http.Handler {
	if a == nil || a.auth == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, err := extractBearerToken(r.Header.Get(authHeader))
		if err != nil {
			a.rejectAuth(w, r, err)
			return
		}

		identity, err := a.auth.Authenticate(r.Context(), token)
		if err != nil {
			a.rejectAuth(w, r, err)
			return
		}

		obs.AuthDecision("ok")
		ctx := auth.ContextWithIdentity(r.Context(), identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *API) rejectAuth(w http.ResponseWriter, r *http.Request, err error) {
	status, outcome, msg := authRejection(err)
	obs.AuthDecision(outcome)
	if a.events != nil {
		a.events.Publish(stream.SessionEvent{
			Event:  stream.EventAuthDenied,
			Reason: outcome,
		})
	}
	w.Header().Set("WWW-Authenticate", `Bearer realm="fieldops"`)
	writeError(w, r, status, msg)
}

// authRejection maps a pipeline failure onto its fixed externally-visible
// status and message. Unexpected errors collapse to a generic 500; no
// internal detail crosses the boundary.
func authRejection(err error) (status int, outcome, msg string) {
	switch {
	case errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized, "missing_token", "missing bearer token"
	case errors.Is(err, auth.ErrTokenMalformed):
		return http.StatusUnauthorized, "invalid_token", "invalid token"
	case errors.Is(err, auth.ErrTokenExpired):
		return http.StatusUnauthorized, "token_expired", "token expired"
	case errors.Is(err, auth.ErrIdentityNotFound):
		return http.StatusUnauthorized, "identity_not_found", "identity not found"
	case errors.Is(err, auth.ErrAccountDeactivated):
		return http.StatusUnauthorized, "account_deactivated", "account is deactivated"
	case errors.Is(err, auth.ErrSponsorDeactivated):
		return http.StatusUnauthorized, "sponsor_deactivated", "sponsoring admin is deactivated"
	case errors.Is(err, auth.ErrNoActiveSession):
		return http.StatusUnauthorized, "no_active_session", "no active session"
	case errors.Is(err, auth.ErrSessionSuperseded):
		return http.StatusUnauthorized, "session_superseded", "session superseded by new login"
	case errors.Is(err, auth.ErrSessionExpired):
		return http.StatusUnauthorized, "session_expired", "session expired"
	default:
		return http.StatusInternalServerError, "internal_error", "authentication error"
	}
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", auth.ErrMissingToken
	}
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", auth.ErrMissingToken
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", auth.ErrMissingToken
	}
	return token, nil
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}
