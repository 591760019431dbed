package auth

import "errors"

// Pipeline rejection reasons. Each maps to a fixed externally-visible status
// at the HTTP boundary; the sentinels themselves carry no internal detail.
var (
	ErrMissingToken       = errors.New("missing bearer token")            // 401
	ErrTokenMalformed     = errors.New("invalid token")                   // 401
	ErrTokenExpired       = errors.New("token expired")                   // 401
	ErrIdentityNotFound   = errors.New("identity not found")              // 401
	ErrAccountDeactivated = errors.New("account is deactivated")          // 401
	ErrSponsorDeactivated = errors.New("sponsoring admin is deactivated") // 401
	ErrNoActiveSession    = errors.New("no active session")               // 401
	ErrSessionSuperseded  = errors.New("session superseded by new login") // 401
	ErrSessionExpired     = errors.New("session expired")                 // 401
)

// Gate failures.
var (
	ErrUnauthenticated  = errors.New("authentication required") // 401, gate called without identity
	ErrForbidden        = errors.New("access denied")           // 403
	ErrResourceNotFound = errors.New("resource not found")      // 404
)

// Login and input failures.
var (
	ErrInvalidCredentials = errors.New("invalid email or password") // 401
	ErrInvalidInput       = errors.New("invalid input")             // 400
)
