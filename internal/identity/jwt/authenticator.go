// Package jwt issues and validates HMAC-signed access tokens.
package jwt

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/opswatch/opswatch/internal/domain"
)

// Config holds token signing settings.
type Config struct {
	SecretKey     string
	Issuer        string
	TokenDuration time.Duration
}

// Authenticator issues and validates access tokens. It implements both
// the identity service's token source and the HTTP middleware's
// validator.
type Authenticator struct {
	config Config
}

// NewAuthenticator creates a new authenticator.
func NewAuthenticator(config Config) (*Authenticator, error) {
	if config.SecretKey == "" {
		return nil, fmt.Errorf("secret key is required")
	}
	if config.TokenDuration <= 0 {
		config.TokenDuration = time.Hour
	}
	if config.Issuer == "" {
		config.Issuer = "opswatch"
	}
	return &Authenticator{config: config}, nil
}

type claims struct {
	jwt.RegisteredClaims
	Role           domain.Role `json:"role"`
	OrganizationID string      `json:"org"`
}

// GenerateToken issues a signed access token for the user.
func (a *Authenticator) GenerateToken(_ context.Context, user *domain.User) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    a.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.config.TokenDuration)),
		},
		Role:           user.Role,
		OrganizationID: user.OrganizationID,
	})

	signed, err := token.SignedString([]byte(a.config.SecretKey))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies an access token, returning the user
// id and role carried in its claims.
func (a *Authenticator) ValidateToken(_ context.Context, tokenString string) (string, domain.Role, error) {
	var c claims

	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(a.config.SecretKey), nil
	}, jwt.WithIssuer(a.config.Issuer), jwt.WithExpirationRequired())

	if err != nil {
		return "", "", fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return "", "", fmt.Errorf("invalid token")
	}

	return c.Subject, c.Role, nil
}
