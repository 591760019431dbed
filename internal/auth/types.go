package auth

import "time"

// Identity is a persisted user record with secret fields stripped. It is the
// value attached to the request context after a successful authentication.
type Identity struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	IsActive bool   `json:"is_active"`

	// CreatedBy references the admin that created a fieldAgent/auditor
	// identity. The sponsor must stay active for the dependent's sessions
	// to validate. It never grants the sponsor any authorization.
	CreatedBy string `json:"created_by,omitempty"`

	// CurrentSessionToken is the opaque server-issued value of the single
	// currently-valid login. Empty means no active session.
	CurrentSessionToken string `json:"-"`

	// SessionExpiresAt bounds the current session independently of the
	// signed token's own expiry. Nil means the session never expires.
	SessionExpiresAt *time.Time `json:"session_expires_at,omitempty"`

	// LastSeen is advisory only; it is updated best-effort after each
	// successful authentication.
	LastSeen *time.Time `json:"last_seen,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
