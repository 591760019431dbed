package httpapi

import (
	"errors"
	"net/http"

	"fieldops.org/internal/auth"
)

// RequireRole gates a route on an explicit allowed-role set. Without an
// authenticated identity in context it fails closed with 401.
func RequireRole(allowed ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, _ := auth.IdentityFromContext(r.Context())
			if err := auth.Authorize(identity, allowed...); err != nil {
				if errors.Is(err, auth.ErrUnauthenticated) {
					w.Header().Set("WWW-Authenticate", `Bearer realm="fieldops"`)
					writeError(w, r, http.StatusUnauthorized, "authentication required")
					return
				}
				writeError(w, r, http.StatusForbidden, "access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
