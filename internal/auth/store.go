package auth

import (
	"context"
	"time"
)

// IdentityStore is the persistence collaborator for identity records. It is
// the single source of truth for session state; the auth core holds no
// in-process session state and relies on the store serving a consistent
// CurrentSessionToken per read.
type IdentityStore interface {
	// FindByID returns the identity record excluding secret fields, or
	// ErrIdentityNotFound.
	FindByID(ctx context.Context, id string) (*Identity, error)
	// FindByEmail returns the identity record for a login attempt, or
	// ErrIdentityNotFound.
	FindByEmail(ctx context.Context, email string) (*Identity, error)
	// PasswordHash returns the stored credential hash for an identity.
	PasswordHash(ctx context.Context, id string) (string, error)
	// UpdateSession atomically replaces the identity's session token and
	// expiry, superseding any previous session.
	UpdateSession(ctx context.Context, id, sessionToken string, expiresAt time.Time) error
	// ClearSession removes the current session. Clearing an already-empty
	// session is not an error.
	ClearSession(ctx context.Context, id string) error
	// UpdateLastSeen records the advisory last-seen timestamp. Callers
	// treat failures as non-fatal.
	UpdateLastSeen(ctx context.Context, id string, at time.Time) error
}
