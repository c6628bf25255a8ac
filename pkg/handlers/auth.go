package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/tradingbuddy/tradingbuddy-engine/pkg/auth"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/config"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/services"
)

// LogoutResponse represents the response for logout.
type LogoutResponse struct {
	Success     bool   `json:"success"`
	RedirectURL string `json:"redirect_url"`
}

// MeResponse represents the response for the /api/auth/me endpoint.
type MeResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// AuthHandler drives the browser login flow: it redirects to the
// authorization server with PKCE, exchanges the callback code for a JWT,
// and stores the JWT in an httpOnly cookie.
type AuthHandler struct {
	oauthService services.OAuthService
	config       *config.Config
	logger       *zap.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(oauthService services.OAuthService, cfg *config.Config, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		oauthService: oauthService,
		config:       cfg,
		logger:       logger,
	}
}

// RegisterRoutes registers the auth handler's routes on the given mux.
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /auth/login", h.Login)
	mux.HandleFunc("GET /oauth/callback", h.Callback)
	mux.HandleFunc("POST /api/auth/logout", h.Logout)
	mux.HandleFunc("GET /api/auth/me", authMiddleware.RequireAuth(h.Me))
}

// Login handles GET /auth/login
// Generates OAuth state and a PKCE verifier, stashes them in the session
// cookie, and redirects to the authorization server.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state, err := services.GenerateState()
	if err != nil {
		h.logger.Error("Failed to generate OAuth state", zap.Error(err))
		writeOrLog(w, h.logger, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}
	verifier, err := services.GenerateCodeVerifier()
	if err != nil {
		h.logger.Error("Failed to generate PKCE verifier", zap.Error(err))
		writeOrLog(w, h.logger, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	session, _ := auth.GetSession(r)
	session.Values[auth.SessionKeyState] = state
	session.Values[auth.SessionKeyCodeVerifier] = verifier
	if next := r.URL.Query().Get("next"); next != "" && next[0] == '/' {
		session.Values[auth.SessionKeyOriginalURL] = next
	}
	if err := auth.SaveSession(r, w, session); err != nil {
		h.logger.Error("Failed to save session", zap.Error(err))
		writeOrLog(w, h.logger, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	authorizeURL, err := h.oauthService.AuthorizeURL(state, verifier)
	if err != nil {
		h.logger.Error("Failed to build authorize URL", zap.Error(err))
		writeOrLog(w, h.logger, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	http.Redirect(w, r, authorizeURL, http.StatusFound)
}

// Callback handles GET /oauth/callback
// Validates the state, exchanges the authorization code for a JWT, and
// sets it as an httpOnly cookie before redirecting back into the app.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		writeOrLog(w, h.logger, http.StatusBadRequest, "MISSING_PARAMETERS", "missing code or state")
		return
	}

	session, _ := auth.GetSession(r)
	storedState, _ := session.Values[auth.SessionKeyState].(string)
	verifier, _ := session.Values[auth.SessionKeyCodeVerifier].(string)
	if storedState == "" || storedState != state {
		h.logger.Warn("OAuth state mismatch")
		writeOrLog(w, h.logger, http.StatusBadRequest, "INVALID_STATE", "OAuth state mismatch")
		return
	}

	token, err := h.oauthService.ExchangeCodeForToken(r.Context(), &services.TokenExchangeRequest{
		Code:         code,
		CodeVerifier: verifier,
	})
	if err != nil {
		h.logger.Error("Token exchange failed", zap.Error(err))
		writeOrLog(w, h.logger, http.StatusBadGateway, "TOKEN_EXCHANGE_FAILED", "authentication failed")
		return
	}

	cookieSettings := auth.DeriveCookieSettings(h.config.BaseURL, "")
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   cookieSettings.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400, // 24 hours
		Path:     "/",
		Domain:   cookieSettings.Domain,
	})

	originalURL, _ := session.Values[auth.SessionKeyOriginalURL].(string)
	auth.ClearSessionValues(session)
	if err := auth.SaveSession(r, w, session); err != nil {
		h.logger.Error("Failed to save session", zap.Error(err))
	}
	if originalURL == "" {
		originalURL = "/"
	}

	h.logger.Info("Login completed", zap.String("redirect", originalURL))
	http.Redirect(w, r, originalURL, http.StatusFound)
}

// Logout handles POST /api/auth/logout
// Clears the JWT cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookieSettings := auth.DeriveCookieSettings(h.config.BaseURL, "")
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   cookieSettings.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1, // Delete immediately
		Path:     "/",
		Domain:   cookieSettings.Domain,
	})

	h.logger.Info("User logged out")

	if err := WriteJSON(w, http.StatusOK, LogoutResponse{
		Success:     true,
		RedirectURL: "/",
	}); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// Me handles GET /api/auth/me
// Returns the authenticated user's identity from the validated claims.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.GetClaims(r.Context())
	if !ok || claims == nil {
		writeOrLog(w, h.logger, http.StatusUnauthorized, "UNAUTHORIZED", "not authenticated")
		return
	}

	response := MeResponse{
		UserID: claims.Subject,
		Email:  claims.Email,
		Name:   claims.Name,
	}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
