package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CookieName is the cookie carrying the JWT for browser clients.
const CookieName = "tradingbuddy_jwt"

// Common authentication errors.
var (
	ErrMissingAuthorization = errors.New("missing authorization")
	ErrInvalidAuthFormat    = errors.New("invalid authorization header format")
	ErrInvalidSubject       = errors.New("token subject is not a valid user ID")
)

// Service defines the interface for authentication operations. It is the
// single identity-resolution point: every handler receives its caller
// through this abstraction rather than re-deriving identity per route.
type Service interface {
	// ValidateRequest extracts and validates a JWT from the request.
	// It checks for the token in:
	//   1. Cookie named "tradingbuddy_jwt" (browser clients)
	//   2. Authorization header with "Bearer" scheme (API clients)
	// Returns the validated claims, the raw token string, or an error.
	ValidateRequest(r *http.Request) (*Claims, string, error)
}

// service implements Service.
type service struct {
	jwksClient JWKSClientInterface
	logger     *zap.Logger
}

// NewService creates a new Service with the given JWKS client and logger.
func NewService(jwksClient JWKSClientInterface, logger *zap.Logger) Service {
	return &service{
		jwksClient: jwksClient,
		logger:     logger,
	}
}

// ValidateRequest extracts and validates a JWT from the request.
func (s *service) ValidateRequest(r *http.Request) (*Claims, string, error) {
	var tokenString string
	var tokenSource string

	// Try cookie first (browser clients)
	if cookie, err := r.Cookie(CookieName); err == nil {
		tokenString = cookie.Value
		tokenSource = "cookie"
	} else {
		// Fallback to Authorization header (API clients)
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			s.logger.Debug("No JWT found in request",
				zap.String("path", r.URL.Path),
				zap.String("method", r.Method))
			return nil, "", ErrMissingAuthorization
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			s.logger.Debug("Invalid Authorization header format",
				zap.String("path", r.URL.Path))
			return nil, "", ErrInvalidAuthFormat
		}
		tokenString = parts[1]
		tokenSource = "header"
	}

	claims, err := s.jwksClient.ValidateToken(tokenString)
	if err != nil {
		s.logger.Debug("JWT validation failed",
			zap.Error(err),
			zap.String("path", r.URL.Path),
			zap.String("token_source", tokenSource))
		return nil, "", err
	}

	// Ownership is keyed on the subject UUID; reject tokens without one
	// before any store access.
	if _, err := uuid.Parse(claims.Subject); err != nil {
		s.logger.Debug("Token subject is not a UUID",
			zap.String("subject", claims.Subject))
		return nil, "", ErrInvalidSubject
	}

	return claims, tokenString, nil
}
