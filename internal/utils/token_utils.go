package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer is written to the iss claim of issued client tokens.
const TokenIssuer = "catalog_sync"

// GenerateClientToken signs an HS256 token whose subject is the API client ID.
func GenerateClientToken(clientID string, secret string, expiry time.Duration) (string, error) {
	if clientID == "" {
		return "", errors.New("client id is required")
	}
	if secret == "" {
		return "", errors.New("signing secret is required")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    TokenIssuer,
		Subject:   clientID,
		ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
