// Package identity turns bearer tokens into user IDs. The user ID is the
// token's "sub" claim, as issued by Supabase.
package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoSecret   = errors.New("server is not configured to validate JWTs")
	ErrNoSubject  = errors.New("user ID (sub) claim is missing or invalid")
	ErrNoToken    = errors.New("no token provided")
	ErrBadClaims  = errors.New("could not parse token claims")
	ErrBadSigning = errors.New("unexpected signing method")
)

// Verify checks the HMAC signature and expiry of tokenString and returns the
// user ID it carries.
func Verify(secret, tokenString string) (string, error) {
	if tokenString == "" {
		return "", ErrNoToken
	}
	if secret == "" {
		return "", ErrNoSecret
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: %v", ErrBadSigning, token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}
	return subject(token)
}

// FromToken reads the user ID without checking the signature. Clients use it
// to learn who they are; the server still verifies every request.
func FromToken(tokenString string) (string, error) {
	if tokenString == "" {
		return "", ErrNoToken
	}
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return "", err
	}
	return subject(token)
}

// Issue signs an HS256 token for userID. A zero ttl means no expiry.
func Issue(secret, userID string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrNoSecret
	}
	if userID == "" {
		return "", ErrNoSubject
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  userID,
		"iat":  now.Unix(),
		"role": "authenticated",
	}
	if ttl > 0 {
		claims["exp"] = now.Add(ttl).Unix()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func subject(token *jwt.Token) (string, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrBadClaims
	}
	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return "", ErrNoSubject
	}
	return userID, nil
}
