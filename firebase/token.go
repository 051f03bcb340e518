package firebase

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpiry đọc claim exp của ID token (không xác minh chữ ký).
func tokenExpiry(idToken string) (time.Time, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, &claims); err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, errors.New("id token has no exp claim")
	}
	return claims.ExpiresAt.Time, nil
}
