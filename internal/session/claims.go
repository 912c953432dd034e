package session

import (
	"time"

	jwt "github.com/dgrijalva/jwt-go"
)

// tokenExpiry reads the exp claim without verifying the signature. The
// backend remains the authority on validity; the value is informational.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	switch exp := claims["exp"].(type) {
	case float64:
		return time.Unix(int64(exp), 0).UTC(), true
	case int64:
		return time.Unix(exp, 0).UTC(), true
	}
	return time.Time{}, false
}
