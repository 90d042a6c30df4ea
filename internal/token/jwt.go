package token

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the decoded payload of a bearer token. The payload shape is
// controlled by the backend issuer and may evolve, so every field is
// optional and decoding is best-effort.
type Claims map[string]any

// identifier claims probed by UserID, first match wins
var idClaims = []string{"user_id", "id", "sub", "uid"}

// Parse decodes the payload segment of a JWT without verifying its
// signature. It is total: any malformed input (wrong segment count, bad
// base64url, bad JSON) yields nil, never a panic or an error. Verification
// is the backend's job; this side only needs the claims.
func Parse(tok string) Claims {
	if tok == "" {
		return nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return nil
	}
	return Claims(claims)
}

// UserID probes the claims for a user identifier. Returns "" when no
// candidate field is present.
func (c Claims) UserID() string {
	for _, name := range idClaims {
		if id := stringValue(c[name]); id != "" {
			return id
		}
	}
	return ""
}

// ExpiresAt returns the token expiry when the payload carries one
func (c Claims) ExpiresAt() (time.Time, bool) {
	switch exp := c["exp"].(type) {
	case float64:
		return time.Unix(int64(exp), 0), true
	case int64:
		return time.Unix(exp, 0), true
	}
	return time.Time{}, false
}

// UserID composes Get and Parse: it returns "" whenever the store is empty,
// the token is malformed, or no identifier claim matches.
func UserID(s Store) string {
	claims := Parse(s.Get())
	if claims == nil {
		return ""
	}
	return claims.UserID()
}

func stringValue(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		return strconv.FormatInt(int64(value), 10)
	}
	return ""
}
