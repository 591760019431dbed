package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"fieldops.org/internal/auth"
	"fieldops.org/internal/obs"
	"fieldops.org/internal/resource"
	"fieldops.org/internal/stream"
)

const serviceName = "fieldops-api"

// ReadyProbe checks the persistence dependency for the readiness endpoint.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Deps carries the collaborators injected into the HTTP layer.
type Deps struct {
	Auth       *auth.Service
	Resources  *resource.Registry
	Events     *stream.Stream
	ReadyProbe ReadyProbe
	Version    string
}

// API is the HTTP layer: routing, the authentication pipeline, and the thin
// guarded handlers in front of the auth core.
type API struct {
	mux        *http.ServeMux
	auth       *auth.Service
	resources  *resource.Registry
	events     *stream.Stream
	readyProbe ReadyProbe
	version    string
}

func New(deps Deps) *API {
	a := &API{
		mux:        http.NewServeMux(),
		auth:       deps.Auth,
		resources:  deps.Resources,
		events:     deps.Events,
		readyProbe: deps.ReadyProbe,
		version:    deps.Version,
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// session lifecycle
	a.mux.HandleFunc("/v1/auth/login", a.handleLogin)
	a.mux.HandleFunc("/v1/auth/logout", a.handleLogout)
	a.mux.HandleFunc("/v1/auth/me", a.handleMe)

	// guarded resource reads
	a.mux.HandleFunc("/v1/vehicles/", a.resourceHandler(resource.KindVehicle, "/v1/vehicles/"))
	a.mux.HandleFunc("/v1/tasks/", a.resourceHandler(resource.KindTask, "/v1/tasks/"))
	a.mux.HandleFunc("/v1/payments/", a.resourceHandler(resource.KindPayment, "/v1/payments/"))

	// admin dashboard feed
	a.mux.Handle("/v1/events/sessions",
		RequireRole(auth.PrivilegedRoles...)(http.HandlerFunc(a.handleSessionEvents)))

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler assembles the middleware chain around the mux. RequestID sits
// outermost so every log line and error envelope can carry it.
func (a *API) Handler() http.Handler {
	h := a.withAuth(a.mux)
	h = MaxBodyBytes(h, 1<<20)
	h = RateLimit(h, 20, 10)
	h = obs.Instrument(h)
	h = LoggingJSON(h)
	h = SecurityHeaders(h)
	h = CORS(h)
	h = RequestID(h)
	return h
}

// --- ops handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": serviceName,
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		obs.SetReady(false)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
		})
		return
	}
	obs.SetReady(true)
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    serviceName,
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError emits the uniform rejection envelope. The message is the only
// detail a caller ever sees; internal errors stay in the logs.
func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"success": false,
		"message": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}
