package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

// Common OAuth errors.
var (
	ErrTokenExchangeFailed = errors.New("token exchange failed")
)

// OAuthConfig contains configuration for the OAuth service.
type OAuthConfig struct {
	// BaseURL is the base URL of this service (for redirect URI).
	BaseURL string
	// ClientID is the OAuth client ID.
	ClientID string
	// AuthServerURL is the OAuth authorization server URL.
	AuthServerURL string
}

// TokenExchangeRequest contains the parameters for a token exchange.
type TokenExchangeRequest struct {
	// Code is the authorization code from the OAuth callback.
	Code string
	// CodeVerifier is the PKCE code verifier stored at login time.
	CodeVerifier string
}

// TokenResponse contains the response from a token exchange.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// OAuthService drives the authorization-code-with-PKCE login flow.
type OAuthService interface {
	// AuthorizeURL builds the authorization redirect for the given state
	// and PKCE verifier.
	AuthorizeURL(state, codeVerifier string) (string, error)
	// ExchangeCodeForToken exchanges an authorization code for a JWT
	// access token.
	ExchangeCodeForToken(ctx context.Context, req *TokenExchangeRequest) (string, error)
}

// HTTPClient interface for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type oauthService struct {
	config     *OAuthConfig
	httpClient HTTPClient
	logger     *zap.Logger
}

// NewOAuthService creates a new OAuth service.
func NewOAuthService(config *OAuthConfig, logger *zap.Logger) OAuthService {
	return &oauthService{
		config:     config,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// NewOAuthServiceWithClient creates a new OAuth service with a custom HTTP client (for testing).
func NewOAuthServiceWithClient(config *OAuthConfig, httpClient HTTPClient, logger *zap.Logger) OAuthService {
	return &oauthService{
		config:     config,
		httpClient: httpClient,
		logger:     logger,
	}
}

// GenerateState returns a random OAuth state parameter.
func GenerateState() (string, error) {
	return randomURLSafe(16)
}

// GenerateCodeVerifier returns a random PKCE code verifier.
func GenerateCodeVerifier() (string, error) {
	return randomURLSafe(32)
}

// CodeChallenge derives the S256 PKCE code challenge from a verifier.
func CodeChallenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func randomURLSafe(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func (s *oauthService) redirectURI() (string, error) {
	baseURL, err := url.Parse(s.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	parsed, err := baseURL.Parse("/oauth/callback")
	if err != nil {
		return "", fmt.Errorf("failed to construct redirect URI: %w", err)
	}
	return parsed.String(), nil
}

// AuthorizeURL builds the authorization endpoint URL with PKCE parameters.
func (s *oauthService) AuthorizeURL(state, codeVerifier string) (string, error) {
	authURL, err := url.Parse(s.config.AuthServerURL)
	if err != nil {
		return "", fmt.Errorf("invalid auth server URL: %w", err)
	}
	authorize, err := authURL.Parse("/authorize")
	if err != nil {
		return "", fmt.Errorf("failed to construct authorize URL: %w", err)
	}

	redirectURI, err := s.redirectURI()
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", s.config.ClientID)
	q.Set("redirect_uri", redirectURI)
	q.Set("state", state)
	q.Set("code_challenge", CodeChallenge(codeVerifier))
	q.Set("code_challenge_method", "S256")
	authorize.RawQuery = q.Encode()

	return authorize.String(), nil
}

// ExchangeCodeForToken exchanges an authorization code for a JWT access token.
func (s *oauthService) ExchangeCodeForToken(ctx context.Context, req *TokenExchangeRequest) (string, error) {
	redirectURI, err := s.redirectURI()
	if err != nil {
		return "", err
	}

	reqBody := map[string]string{
		"grant_type":   "authorization_code",
		"code":         req.Code,
		"redirect_uri": redirectURI,
		"client_id":    s.config.ClientID,
	}
	if req.CodeVerifier != "" {
		reqBody["code_verifier"] = req.CodeVerifier
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	authURL, err := url.Parse(s.config.AuthServerURL)
	if err != nil {
		return "", fmt.Errorf("invalid auth server URL: %w", err)
	}
	tokenURL, err := authURL.Parse("/token")
	if err != nil {
		return "", fmt.Errorf("failed to construct token URL: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL.String(), bytes.NewBuffer(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		s.logger.Error("Token request failed",
			zap.String("token_url", tokenURL.String()),
			zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrTokenExchangeFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		s.logger.Error("Token endpoint error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		return "", fmt.Errorf("%w: status %d", ErrTokenExchangeFailed, resp.StatusCode)
	}

	var tokenResp TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrTokenExchangeFailed)
	}

	return tokenResp.AccessToken, nil
}
