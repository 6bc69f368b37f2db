// Package token decodes bearer token payloads without verifying signatures.
// Signature verification belongs to the backend; the client only needs the
// claims and the expiration instant to drive session state.
package token

import (
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Legacy claim URIs emitted by older backend releases. When both the
// namespaced and the short-form claim are present, the namespaced one wins.
const (
	claimNameIdentifier = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier"
	claimName           = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/name"
	claimEmailAddress   = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/emailaddress"
	claimRole           = "http://schemas.microsoft.com/ws/2008/06/identity/claims/role"
)

// Payload holds the claims the client cares about.
type Payload struct {
	UserID   string
	Username string
	Email    string
	Role     string
	// ExpiresAt is zero when the token carries no readable exp claim.
	ExpiresAt time.Time
}

// Decode parses the payload segment of a compact token. It returns nil for
// anything malformed (wrong segment count, bad base64, bad JSON) and never
// panics. The signature is deliberately not checked.
func Decode(raw string) *Payload {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return nil
	}

	p := &Payload{
		UserID:   stringClaim(claims, claimNameIdentifier, "userId"),
		Username: stringClaim(claims, claimName, "username"),
		Email:    stringClaim(claims, claimEmailAddress, "email"),
		Role:     stringClaim(claims, claimRole, "role"),
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		p.ExpiresAt = exp.Time
	}
	return p
}

// IsExpired reports whether the token is unusable: undecodable, missing its
// exp claim, or past its expiration instant.
func IsExpired(raw string) bool {
	p := Decode(raw)
	if p == nil || p.ExpiresAt.IsZero() {
		return true
	}
	return time.Now().Unix() > p.ExpiresAt.Unix()
}

// ExpirationTime returns the expiration instant, or false when the token is
// undecodable or carries no exp claim.
func ExpirationTime(raw string) (time.Time, bool) {
	p := Decode(raw)
	if p == nil || p.ExpiresAt.IsZero() {
		return time.Time{}, false
	}
	return p.ExpiresAt, true
}

// WillExpireWithin reports whether the token expires within the given number
// of minutes, boundary inclusive. Unknown expiration yields false: such a
// token never authenticates (IsExpired is true), so there is nothing to
// count down.
func WillExpireWithin(raw string, minutes int) bool {
	exp, ok := ExpirationTime(raw)
	if !ok {
		return false
	}
	return !time.Now().Add(time.Duration(minutes) * time.Minute).Before(exp)
}

// MinutesRemaining returns whole minutes until expiration, never negative,
// and 0 when the expiration is unknown.
func MinutesRemaining(raw string) int {
	exp, ok := ExpirationTime(raw)
	if !ok {
		return 0
	}
	remaining := time.Until(exp)
	if remaining <= 0 {
		return 0
	}
	return int(remaining / time.Minute)
}

func stringClaim(claims jwt.MapClaims, legacyKey, shortKey string) string {
	if v, ok := claims[legacyKey].(string); ok && v != "" {
		return v
	}
	if v, ok := claims[shortKey].(string); ok {
		return v
	}
	return ""
}
