package identity

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokens are refreshed this long before they expire
const refreshSkew = 5 * time.Minute

// claims carried by provider-issued id tokens
type idTokenClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	jwt.RegisteredClaims
}

// works out when an id token stops being usable. The token arrives straight from the
// provider over TLS, so only its claims are read; the signature is the provider's concern.
func tokenExpiry(idToken, expiresIn string, now time.Time) time.Time {
	claims := &idTokenClaims{}

	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time
	}

	if secs, err := strconv.Atoi(expiresIn); err == nil && secs > 0 {
		return now.Add(time.Duration(secs) * time.Second)
	}

	return now.Add(time.Hour)
}

func (t tokens) stale(now time.Time) bool {
	return t.idToken == "" || !now.Add(refreshSkew).Before(t.expiresAt)
}
