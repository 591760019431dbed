package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"fieldops.org/internal/auth"
)

// readRoles is every role allowed to reach the resource read endpoints.
// Auditors get read visibility from this gate alone; the ownership gate
// below only scopes field agents.
var readRoles = []auth.Role{
	auth.RoleSuperSuperAdmin,
	auth.RoleSuperAdmin,
	auth.RoleAdmin,
	auth.RoleFieldAgent,
	auth.RoleAuditor,
}

// resourceHandler builds the guarded GET handler for one resource kind.
func (a *API) resourceHandler(kind, prefix string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		id := strings.TrimPrefix(r.URL.Path, prefix)
		if id == "" || strings.Contains(id, "/") {
			writeError(w, r, http.StatusNotFound, "resource not found")
			return
		}

		identity, _ := auth.IdentityFromContext(r.Context())
		if err := auth.Authorize(identity, readRoles...); err != nil {
			a.writeGateError(w, r, err)
			return
		}
		if identity.Role != auth.RoleAuditor {
			if err := auth.AuthorizeResource(r.Context(), a.resources, identity, kind, id); err != nil {
				a.writeGateError(w, r, err)
				return
			}
		}

		res, err := a.resources.Get(r.Context(), kind, id)
		if err != nil {
			if errors.Is(err, auth.ErrResourceNotFound) {
				writeError(w, r, http.StatusNotFound, "resource not found")
				return
			}
			writeError(w, r, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success":  true,
			"resource": res,
		})
	}
}

func (a *API) writeGateError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		w.Header().Set("WWW-Authenticate", `Bearer realm="fieldops"`)
		writeError(w, r, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, auth.ErrForbidden):
		writeError(w, r, http.StatusForbidden, "access denied")
	case errors.Is(err, auth.ErrResourceNotFound):
		writeError(w, r, http.StatusNotFound, "resource not found")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
