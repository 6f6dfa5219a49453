// Package token issues and verifies the signed identity assertions that
// authenticate every request after login.
package token

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TTL is the validity window of an issued assertion.
const TTL = 7 * 24 * time.Hour

// Identity is the resolved subject of a verified assertion.
type Identity struct {
	AccountID int
	Username  string
	Role      string
}

type claims struct {
	Username string `json:"name"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Service signs and verifies identity assertions with a shared secret.
type Service struct {
	secret []byte
}

// NewService constructs a Service around the given signing secret.
func NewService(secret string) *Service {
	return &Service{secret: []byte(secret)}
}

// Issue produces a signed assertion for the given account, valid for TTL.
func (s *Service) Issue(accountID int, username, role string) (string, error) {
	now := time.Now()
	c := claims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(accountID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TTL)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return t.SignedString(s.secret)
}

// Verify resolves an identity from a raw Authorization header value.
// A missing "Bearer " prefix is tolerated. Malformed, unsigned, or expired
// input yields ok == false; Verify never reports why.
func (s *Service) Verify(rawHeaderValue string) (Identity, bool) {
	raw := strings.TrimSpace(rawHeaderValue)
	if prefix := "bearer "; len(raw) > len(prefix) && strings.EqualFold(raw[:len(prefix)], prefix) {
		raw = strings.TrimSpace(raw[len(prefix):])
	}
	if raw == "" {
		return Identity{}, false
	}

	c := claims{}
	t, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	})
	if err != nil || !t.Valid {
		return Identity{}, false
	}

	accountID, err := strconv.Atoi(strings.TrimSpace(c.Subject))
	if err != nil || accountID < 1 {
		return Identity{}, false
	}

	return Identity{
		AccountID: accountID,
		Username:  c.Username,
		Role:      c.Role,
	}, true
}
