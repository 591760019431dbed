package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultTokenTTL        = 15 * time.Minute
	defaultSessionTTL      = 12 * time.Hour
	defaultLastSeenTimeout = 5 * time.Second
)

// Service orchestrates the session lifecycle: login issues the single valid
// session token for an identity, logout destroys it, and Authenticate
// decides whether a presented bearer token is still authoritative.
//
// All session state lives in the IdentityStore; concurrent requests for one
// identity are arbitrated by the store serving a consistent
// CurrentSessionToken per read. The service holds no locks around I/O.
type Service struct {
	store IdentityStore
	codec *Codec
	now   func() time.Time

	tokenTTL        time.Duration
	sessionTTL      time.Duration
	lastSeenTimeout time.Duration
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithTokenTTL bounds the signed token lifetime.
func WithTokenTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithSessionTTL bounds the server-side session lifetime set at login.
func WithSessionTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs a Service.
func NewService(store IdentityStore, codec *Codec, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("auth: identity store is required")
	}
	if codec == nil {
		return nil, errors.New("auth: token codec is required")
	}
	svc := &Service{
		store:           store,
		codec:           codec,
		now:             time.Now,
		tokenTTL:        defaultTokenTTL,
		sessionTTL:      defaultSessionTTL,
		lastSeenTimeout: defaultLastSeenTimeout,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// LoginResult carries the issued bearer credential and the authenticated
// identity.
type LoginResult struct {
	Identity  *Identity
	Token     string
	ExpiresAt time.Time
}

// Login verifies credentials and issues a fresh session. The new session
// token overwrites any previous one, implicitly invalidating prior logins.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}
	identity, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("find identity: %w", err)
	}
	if !identity.IsActive {
		return LoginResult{}, ErrAccountDeactivated
	}
	if err := s.checkSponsor(ctx, identity); err != nil {
		return LoginResult{}, err
	}
	hash, err := s.store.PasswordHash(ctx, identity.ID)
	if err != nil {
		return LoginResult{}, fmt.Errorf("load credentials: %w", err)
	}
	if err := VerifyPassword(hash, password); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	sessionToken := uuid.NewString()
	expiresAt := s.now().UTC().Add(s.sessionTTL)
	if err := s.store.UpdateSession(ctx, identity.ID, sessionToken, expiresAt); err != nil {
		return LoginResult{}, fmt.Errorf("persist session: %w", err)
	}
	signed, err := s.codec.Encode(identity.ID, sessionToken, s.tokenTTL)
	if err != nil {
		return LoginResult{}, fmt.Errorf("sign token: %w", err)
	}

	identity.CurrentSessionToken = sessionToken
	identity.SessionExpiresAt = &expiresAt
	return LoginResult{
		Identity:  identity,
		Token:     signed,
		ExpiresAt: expiresAt,
	}, nil
}

// Logout clears the identity's current session. Logging out twice in a row
// is not an error.
func (s *Service) Logout(ctx context.Context, identityID string) error {
	identityID = strings.TrimSpace(identityID)
	if identityID == "" {
		return ErrUnauthenticated
	}
	if err := s.store.ClearSession(ctx, identityID); err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return err
		}
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Authenticate decodes the bearer token, loads the identity, and validates
// the session. On success it returns the identity (secret fields stripped)
// and schedules a best-effort lastSeen update that never fails the request.
func (s *Service) Authenticate(ctx context.Context, rawToken string) (*Identity, error) {
	token, err := s.codec.Decode(rawToken)
	if err != nil {
		return nil, err
	}
	identity, err := s.store.FindByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return nil, ErrIdentityNotFound
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}
	if err := s.validateSession(ctx, token, identity); err != nil {
		return nil, err
	}
	s.touchLastSeen(ctx, identity.ID)
	return identity, nil
}

// validateSession runs the ordered session checks, short-circuiting on the
// first failure so the pipeline can report a precise cause.
func (s *Service) validateSession(ctx context.Context, token Token, identity *Identity) error {
	if identity == nil {
		return ErrIdentityNotFound
	}
	if !identity.IsActive {
		return ErrAccountDeactivated
	}
	if err := s.checkSponsor(ctx, identity); err != nil {
		return err
	}
	if identity.CurrentSessionToken == "" || token.SessionToken == "" {
		return ErrNoActiveSession
	}
	if identity.CurrentSessionToken != token.SessionToken {
		return ErrSessionSuperseded
	}
	// Boundary is inclusive: a request at exactly SessionExpiresAt is
	// valid. A nil expiry means the session never expires.
	if identity.SessionExpiresAt != nil && s.now().After(*identity.SessionExpiresAt) {
		return ErrSessionExpired
	}
	return nil
}

// checkSponsor enforces the sponsor cascade: fieldAgent/auditor identities
// are only valid while the admin that created them exists and is active.
func (s *Service) checkSponsor(ctx context.Context, identity *Identity) error {
	if !identity.Role.Sponsored() || identity.CreatedBy == "" {
		return nil
	}
	sponsor, err := s.store.FindByID(ctx, identity.CreatedBy)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return ErrSponsorDeactivated
		}
		return fmt.Errorf("find sponsor: %w", err)
	}
	if !sponsor.IsActive {
		return ErrSponsorDeactivated
	}
	return nil
}

// touchLastSeen fires a detached write so a client abort cannot cancel or
// fail it. Errors are dropped; lastSeen is advisory.
func (s *Service) touchLastSeen(ctx context.Context, identityID string) {
	at := s.now().UTC()
	detached := context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(detached, s.lastSeenTimeout)
		defer cancel()
		_ = s.store.UpdateLastSeen(ctx, identityID, at)
	}()
}
