// Package auth provides JWT-based authentication for tradingbuddy-engine.
// Tokens are validated against the configured identity provider's JWKS
// endpoints; the subject claim is the owning user's UUID and is the sole
// basis for resource ownership.
package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// ClaimsKey is the context key for storing JWT claims.
	ClaimsKey contextKey = "claims"
	// TokenKey is the context key for storing the raw JWT token string.
	TokenKey contextKey = "token"
)

// Claims represents the JWT claims issued by the identity provider.
// RegisteredClaims provides the standard fields (sub, iss, exp, ...);
// Subject carries the user UUID.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}
