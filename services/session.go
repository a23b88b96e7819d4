package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"

	"github.com/lumenapp/server/core"
)

const (
	// DefaultSessionTTL matches the mobile clients' long-lived login window.
	DefaultSessionTTL = 30 * 24 * time.Hour

	minSecretLen = 32
)

// SessionIssuer mints and verifies stateless signed tokens bound to a
// credential id. There is no revocation; expiry is the only termination
// mechanism.
type SessionIssuer struct {
	secret []byte
	ttl    time.Duration
	clock  clockwork.Clock
}

func NewSessionIssuer(secret string, ttl time.Duration, clock clockwork.Clock) (*SessionIssuer, error) {
	if secret == "" {
		return nil, core.ErrSecretRequired
	}
	if len(secret) < minSecretLen {
		return nil, fmt.Errorf("%w - minimum of %d characters", core.ErrSecretTooShort, minSecretLen)
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SessionIssuer{secret: []byte(secret), ttl: ttl, clock: clock}, nil
}

// Issue mints a signed token for the given credential id, valid from now
// until now plus the configured window.
func (si *SessionIssuer) Issue(userID string) (string, error) {
	now := si.clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(si.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(si.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Verify returns the credential id a token was issued for, or one of the
// session token errors.
func (si *SessionIssuer) Verify(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return si.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(si.clock.Now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", core.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "", core.ErrTokenSignature
	case err != nil:
		return "", core.ErrTokenMalformed
	}
	if claims.Subject == "" {
		return "", core.ErrTokenMalformed
	}
	return claims.Subject, nil
}
