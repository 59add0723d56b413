package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// OperatorClaims identifies the operator behind a request.
type OperatorClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies operator tokens with a shared HMAC secret.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer returns an issuer. An empty secret falls back to a development value.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if secret == "" {
		secret = "ose-dev-secret"
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// GenerateToken creates a signed JWT for the operator. The token expires after the issuer TTL.
func (ti *TokenIssuer) GenerateToken(operatorID, name, email string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ti.ttl)
	claims := OperatorClaims{
		Name:  name,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   operatorID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ti.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ValidateToken parses and validates a token string and returns its claims.
func (ti *TokenIssuer) ValidateToken(tokenString string) (*OperatorClaims, error) {
	claims := &OperatorClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return ti.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// HashToken computes a SHA-256 hash of the token string.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
