// Package auth issues and verifies the signed, time-bounded credentials that
// represent a logged-in user, and decides how those credentials travel over
// HTTP (cookie and/or Authorization header).
//
// Verification is a pure computation over the token and the secret: there is
// no server-side session or revocation list. Logging out only tells the client
// to drop its copy, so a token replayed before its expiry still verifies.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTTL is the validity window of an issued credential.
const DefaultTTL = 7 * 24 * time.Hour

// Identity is a verified user as known to the user directory.
type Identity struct {
	ID    string
	Email string
}

// Credential is an issued token together with its validity window.
type Credential struct {
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Session is the identity resolved from a verified credential. It lives for
// the duration of one request.
type Session struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

// Authenticator signs and verifies credentials with a process-wide secret.
// It holds no mutable state and is safe for concurrent use.
type Authenticator struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithTTL overrides the credential validity window.
func WithTTL(ttl time.Duration) Option {
	return func(a *Authenticator) {
		if ttl > 0 {
			a.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) {
		if now != nil {
			a.now = now
		}
	}
}

// New returns an Authenticator signing with secret.
func New(secret []byte, opts ...Option) (*Authenticator, error) {
	if len(secret) == 0 {
		return nil, errors.New("auth: empty signing secret")
	}
	a := &Authenticator{
		secret: append([]byte(nil), secret...),
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// TTL reports the validity window of issued credentials.
func (a *Authenticator) TTL() time.Duration {
	return a.ttl
}

// Issue signs a new credential for id. Each call carries a fresh jti, so two
// credentials for the same identity never coincide.
func (a *Authenticator) Issue(id Identity) (Credential, error) {
	if strings.TrimSpace(id.ID) == "" {
		return Credential{}, ErrMalformedIdentity
	}

	issuedAt := a.now().Truncate(time.Second)
	expiresAt := issuedAt.Add(a.ttl)

	claims := jwt.MapClaims{
		"sub": id.ID,
		"iat": jwt.NewNumericDate(issuedAt),
		"exp": jwt.NewNumericDate(expiresAt),
		"jti": uuid.NewString(),
	}
	if id.Email != "" {
		claims["email"] = id.Email
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return Credential{}, fmt.Errorf("sign token: %w", err)
	}

	return Credential{Token: token, IssuedAt: issuedAt, ExpiresAt: expiresAt}, nil
}

// Verify checks the signature and expiry of token and resolves its identity.
//
// It fails with ErrUnauthenticated when token is empty, ErrInvalidCredential
// when the token is malformed, forged or expired, and ErrMalformedIdentity
// when it verifies but names no subject.
func (a *Authenticator) Verify(token string) (Session, error) {
	if token == "" {
		return Session{}, ErrUnauthenticated
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, a.key,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrInvalidCredential, err)
	}
	if !parsed.Valid {
		return Session{}, ErrInvalidCredential
	}

	userID, ok := subjectFromClaims(claims)
	if !ok {
		return Session{}, ErrMalformedIdentity
	}

	s := Session{UserID: userID, Email: stringClaim(claims, "email")}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		s.ExpiresAt = exp.Time
	}
	return s, nil
}

func (a *Authenticator) key(*jwt.Token) (any, error) {
	return a.secret, nil
}
