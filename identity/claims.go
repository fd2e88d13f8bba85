package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenClaims reads the claims of a provider-issued token without checking
// its signature; the provider stays the authority on validity.
func TokenClaims(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// ExpiresWithin reports whether the token expires before now+d.
// Tokens without an exp claim never do.
func (c *Claims) ExpiresWithin(now time.Time, d time.Duration) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return c.ExpiresAt.Time.Before(now.Add(d))
}

func (c *Claims) session() Session {
	return Session{Valid: c.Subject != "", UserID: c.Subject, Email: c.Email}
}
