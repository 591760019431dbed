package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "fieldops"

// Token is the decoded payload of a signed bearer credential. SessionToken
// must equal the identity's CurrentSessionToken to be authoritative.
type Token struct {
	UserID       string
	SessionToken string
	IssuedAt     time.Time
	ExpiresAt    time.Time
}

type sessionClaims struct {
	SessionToken string `json:"sid"`
	jwt.RegisteredClaims
}

// Codec signs and verifies expiring bearer tokens using HS256. It is a pure
// transform around a process-wide secret injected at startup.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// NewCodec constructs a Codec. An empty secret is a configuration error.
func NewCodec(secret string, opts ...CodecOption) (*Codec, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("auth: signing secret is required")
	}
	c := &Codec{secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// CodecOption configures Codec behavior.
type CodecOption func(*Codec)

// WithCodecClock overrides the time source (useful for tests).
func WithCodecClock(fn func() time.Time) CodecOption {
	return func(c *Codec) {
		if fn != nil {
			c.now = fn
		}
	}
}

// Encode signs a token binding the identity to its current session token.
func (c *Codec) Encode(userID, sessionToken string, ttl time.Duration) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", errors.New("userID is required")
	}
	if strings.TrimSpace(sessionToken) == "" {
		return "", errors.New("sessionToken is required")
	}
	if ttl <= 0 {
		return "", errors.New("ttl must be greater than zero")
	}

	now := c.now().UTC()
	claims := sessionClaims{
		SessionToken: sessionToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Decode verifies signature and expiry. It returns ErrTokenExpired when the
// signature is valid but past expiry, ErrTokenMalformed for everything else.
func (c *Codec) Decode(raw string) (Token, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Token{}, ErrTokenMalformed
	}
	parsed, err := jwt.ParseWithClaims(raw, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrTokenMalformed
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now), jwt.WithIssuer(issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Token{}, ErrTokenExpired
		}
		return Token{}, ErrTokenMalformed
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return Token{}, ErrTokenMalformed
	}
	if strings.TrimSpace(claims.Subject) == "" || claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return Token{}, ErrTokenMalformed
	}
	return Token{
		UserID:       claims.Subject,
		SessionToken: claims.SessionToken,
		IssuedAt:     claims.IssuedAt.Time,
		ExpiresAt:    claims.ExpiresAt.Time,
	}, nil
}
