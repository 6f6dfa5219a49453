package token

import (
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	svc := NewService("test-secret")

	raw, err := svc.Issue(42, "alice", "user")
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	identity, ok := svc.Verify(raw)
	require.True(t, ok)
	assert.Equal(t, 42, identity.AccountID)
	assert.Equal(t, "alice", identity.Username)
	assert.Equal(t, "user", identity.Role)
}

func TestVerifyStripsBearerPrefix(t *testing.T) {
	svc := NewService("test-secret")

	raw, err := svc.Issue(7, "bob", "admin")
	require.NoError(t, err)

	for _, header := range []string{"Bearer " + raw, "bearer " + raw, "  Bearer  " + raw + "  "} {
		identity, ok := svc.Verify(header)
		require.True(t, ok, "header %q", header)
		assert.Equal(t, 7, identity.AccountID)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc := NewService("test-secret")

	for _, header := range []string{"", "   ", "Bearer ", "Bearer not-a-token", "definitely-not-a-token"} {
		_, ok := svc.Verify(header)
		assert.False(t, ok, "header %q", header)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewService("secret-a")
	verifier := NewService("secret-b")

	raw, err := issuer.Issue(1, "alice", "user")
	require.NoError(t, err)

	_, ok := verifier.Verify(raw)
	assert.False(t, ok)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	secret := "test-secret"
	svc := NewService(secret)

	now := time.Now()
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Username: "alice",
		Role:     "user",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(1),
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * TTL)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-TTL)),
		},
	})
	raw, err := expired.SignedString([]byte(secret))
	require.NoError(t, err)

	_, ok := svc.Verify(raw)
	assert.False(t, ok)
}

func TestVerifyRejectsNonNumericSubject(t *testing.T) {
	secret := "test-secret"
	svc := NewService(secret)

	bad := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Username: "alice",
		Role:     "user",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "not-a-number",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	raw, err := bad.SignedString([]byte(secret))
	require.NoError(t, err)

	_, ok := svc.Verify(raw)
	assert.False(t, ok)
}
