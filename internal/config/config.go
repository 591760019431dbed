// Package config loads process configuration once at startup. All values come
// from FIELDOPS_* environment variables and are passed explicitly into
// constructors; nothing in the request path reads the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	defaultHTTPAddr   = ":8080"
	defaultTokenTTL   = 15 * time.Minute
	defaultSessionTTL = 12 * time.Hour
)

// Config is the flat process configuration.
type Config struct {
	// HTTPAddr is the listen address of the HTTP API.
	HTTPAddr string
	// GRPCAddr enables the gRPC health listener when non-empty.
	GRPCAddr string
	// PGDSN is the PostgreSQL connection string. Empty disables the store
	// (readiness then skips the DB ping); the API refuses to start without
	// it outside of tooling.
	PGDSN string
	// AuthSecret signs bearer tokens. Required.
	AuthSecret string
	// TokenTTL bounds the signed token lifetime.
	TokenTTL time.Duration
	// SessionTTL bounds the server-side session lifetime set at login.
	SessionTTL time.Duration
}

// ErrMissingSecret reports the fatal startup condition of an absent signing
// secret.
var ErrMissingSecret = errors.New("config: FIELDOPS_AUTH_SECRET is required")

// Load reads configuration from the environment.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:   envOr("FIELDOPS_HTTP_ADDR", defaultHTTPAddr),
		GRPCAddr:   strings.TrimSpace(os.Getenv("FIELDOPS_GRPC_ADDR")),
		PGDSN:      strings.TrimSpace(os.Getenv("FIELDOPS_PG_DSN")),
		AuthSecret: strings.TrimSpace(os.Getenv("FIELDOPS_AUTH_SECRET")),
		TokenTTL:   defaultTokenTTL,
		SessionTTL: defaultSessionTTL,
	}
	if cfg.AuthSecret == "" {
		return Config{}, ErrMissingSecret
	}
	if raw := strings.TrimSpace(os.Getenv("FIELDOPS_TOKEN_TTL")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("config: invalid FIELDOPS_TOKEN_TTL %q", raw)
		}
		cfg.TokenTTL = d
	}
	if raw := strings.TrimSpace(os.Getenv("FIELDOPS_SESSION_TTL")); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("config: invalid FIELDOPS_SESSION_TTL %q", raw)
		}
		cfg.SessionTTL = d
	}
	return cfg, nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
