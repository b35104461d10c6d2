package api

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload the backend signs into login tokens. Backends that
// only set "sub" are supported through UserIDFromClaims.
type Claims struct {
	UserID int64  `json:"userId,omitempty"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// ID resolves the user id from userId, falling back to a numeric subject.
func (c *Claims) ID() int64 {
	if c == nil {
		return 0
	}
	if c.UserID != 0 {
		return c.UserID
	}
	if n, err := strconv.ParseInt(strings.TrimSpace(c.Subject), 10, 64); err == nil {
		return n
	}
	return 0
}

// Expired reports whether the token carries an expiry before now.
func (c *Claims) Expired(now time.Time) bool {
	return c != nil && c.ExpiresAt != nil && c.ExpiresAt.Time.Before(now)
}

// ParseClaimsUnverified decodes token claims without checking the signature.
// The client never holds the signing key; the backend stays the verifier.
func ParseClaimsUnverified(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(strings.TrimSpace(token), claims); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	return claims, nil
}
