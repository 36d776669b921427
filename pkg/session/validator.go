package session

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the parts of an access credential the client reads.
type Claims struct {
	UserID    any  `json:"user_id,omitempty"`
	IsPremium bool `json:"is_premium,omitempty"`
	jwt.RegisteredClaims
}

// SubjectID returns the "sub" claim, falling back to "user_id".
func (c *Claims) SubjectID() string {
	if c.Subject != "" {
		return c.Subject
	}
	switch v := c.UserID.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	}
	return ""
}

var errNoExpiry = errors.New("token has no exp claim")

// ParseClaims decodes a credential's claims without verifying its signature.
// Only the server can verify; the client reads expiry and display fields.
func ParseClaims(token string) (*Claims, error) {
	if token == "" {
		return nil, fmt.Errorf("session.ParseClaims: empty token")
	}
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("session.ParseClaims: %w", err)
	}
	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("session.ParseClaims: %w", errNoExpiry)
	}
	return &claims, nil
}

// Validator answers whether an access credential is currently usable.
type Validator struct {
	Now func() time.Time
}

// Valid reports whether token decodes and expires strictly after now.
// Malformed, absent or exp-less tokens are invalid. It never panics and
// never makes a network call.
func (v Validator) Valid(token string) bool {
	claims, err := ParseClaims(token)
	if err != nil {
		return false
	}
	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	return claims.ExpiresAt.Time.After(now())
}
