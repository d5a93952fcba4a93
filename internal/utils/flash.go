// Package utils holds the signed flash token used to carry one-shot
// messages across a redirect.
package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidFlash is returned for tokens that fail signature, expiry or
// shape checks.
var ErrInvalidFlash = errors.New("invalid flash token")

const flashIssuer = "club-booking"

type flashClaims struct {
	Messages []string `json:"msgs"`
	jwt.RegisteredClaims
}

// SignFlash packs messages into an HS256 JWT that expires after ttl.
func SignFlash(secret string, messages []string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := flashClaims{
		Messages: messages,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    flashIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// ParseFlash verifies token and returns the messages it carries.
func ParseFlash(secret, token string) ([]string, error) {
	var claims flashClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(flashIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, errors.Join(ErrInvalidFlash, err)
	}
	return claims.Messages, nil
}
