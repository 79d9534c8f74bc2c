package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSigningSecret = "test-signing-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestVerifyValidToken(t *testing.T) {
	verifier := NewVerifier(testSigningSecret, "")
	token := signToken(t, testSigningSecret, jwt.MapClaims{
		"sub":   "user_abc",
		"email": "ana@lab.test",
		"name":  "Ana Lopez",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	id, err := verifier.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user_abc", id.Handle)
	assert.Equal(t, "ana@lab.test", id.Email)
	assert.Equal(t, "Ana Lopez", id.Name)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	verifier := NewVerifier(testSigningSecret, "")
	token := signToken(t, "other-secret", jwt.MapClaims{
		"sub": "user_abc",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	verifier := NewVerifier(testSigningSecret, "")
	token := signToken(t, testSigningSecret, jwt.MapClaims{
		"sub": "user_abc",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	_, err := verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRequiresExpiration(t *testing.T) {
	verifier := NewVerifier(testSigningSecret, "")
	token := signToken(t, testSigningSecret, jwt.MapClaims{
		"sub": "user_abc",
	})

	_, err := verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRequiresSubject(t *testing.T) {
	verifier := NewVerifier(testSigningSecret, "")
	token := signToken(t, testSigningSecret, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyChecksIssuer(t *testing.T) {
	verifier := NewVerifier(testSigningSecret, "https://auth.lab.test")

	good := signToken(t, testSigningSecret, jwt.MapClaims{
		"sub": "user_abc",
		"iss": "https://auth.lab.test",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	_, err := verifier.Verify(good)
	assert.NoError(t, err)

	bad := signToken(t, testSigningSecret, jwt.MapClaims{
		"sub": "user_abc",
		"iss": "https://evil.test",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	_, err = verifier.Verify(bad)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
