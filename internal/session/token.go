package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrMalformedToken = errors.New("malformed access token")

// Claims are the fields this client reads out of the bearer token.
type Claims struct {
	Name      string
	ExpiresAt time.Time
}

// Expired reports whether the token has an expiry and it has passed.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Introspect decodes the token payload without verifying the signature.
// Verification belongs to the remote API; the client only needs the name
// claim to know who it is acting as, and the expiry to warn before a request
// is doomed to fail.
func Introspect(token string) (Claims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	out := Claims{}
	if name, ok := claims["name"].(string); ok {
		out.Name = name
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}
