package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// GetClaims retrieves JWT claims from the context. Returns false if the
// request was not authenticated.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*Claims)
	return claims, ok && claims != nil
}

// SetClaims stores JWT claims in the context. Used by the middleware and
// by tests that exercise handlers directly.
func SetClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}

// GetUserIDFromContext extracts the caller's user UUID from JWT claims in
// the context. Returns uuid.Nil if not authenticated or the subject is
// not a UUID.
func GetUserIDFromContext(ctx context.Context) uuid.UUID {
	claims, ok := GetClaims(ctx)
	if !ok {
		return uuid.Nil
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil
	}

	return userID
}

// RequireUserIDFromContext extracts the caller's user UUID and returns an
// error if the request carries no valid identity. Every ownership check
// in the service layer goes through this single resolution point.
func RequireUserIDFromContext(ctx context.Context) (uuid.UUID, error) {
	userID := GetUserIDFromContext(ctx)
	if userID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}
