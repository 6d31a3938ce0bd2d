package utils

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrMalformedToken = errors.New("malformed token")

// BackendClaims are the claims the backend puts in the staff token. The gateway
// never holds the signing key, so the token is read without verification; the
// backend stays the authority on validity.
type BackendClaims struct {
	UserID int64  `json:"userId,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func ParseBackendToken(tokenString string) (*BackendClaims, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
	if tokenString == "" {
		return nil, ErrMalformedToken
	}

	claims := &BackendClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, ErrMalformedToken
	}
	return claims, nil
}

// TokenExpired reports whether the token carries an exp claim earlier than now.
// Opaque tokens and tokens without exp are not considered expired.
func TokenExpired(tokenString string, now time.Time) bool {
	claims, err := ParseBackendToken(tokenString)
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(claims.ExpiresAt.Time)
}
