// Package identity is the boundary to the external identity provider: it
// verifies provider-issued session tokens and consumes the provider's
// user-lifecycle webhook. No session state is kept here; the provider owns
// the session protocol.
package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/labtrack/labtrack/internal/shared"
)

// ErrInvalidToken wraps any token verification failure.
var ErrInvalidToken = errors.New("identity: invalid token")

// Verifier validates provider-issued session JWTs (HS256) and extracts the
// stable user handle.
type Verifier struct {
	secret []byte
	issuer string
	leeway time.Duration
}

// NewVerifier builds a verifier. issuer may be empty to skip issuer checks.
func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer, leeway: 30 * time.Second}
}

// Verify parses and validates a bearer token, returning the identity it
// asserts.
func (v *Verifier) Verify(token string) (shared.Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return shared.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return shared.Identity{}, ErrInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil || strings.TrimSpace(sub) == "" {
		return shared.Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	id := shared.Identity{Handle: sub}
	if email, ok := claims["email"].(string); ok {
		id.Email = email
	}
	if name, ok := claims["name"].(string); ok {
		id.Name = name
	}
	return id, nil
}
