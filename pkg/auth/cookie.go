package auth

import (
	"net/url"
)

// CookieSettings contains cookie security settings derived from base URL.
type CookieSettings struct {
	// Secure indicates whether the cookie should only be sent over HTTPS.
	Secure bool
	// Domain is the cookie domain scope.
	Domain string
}

// DeriveCookieSettings determines cookie security settings from the
// server's base URL. Localhost over HTTP keeps Secure off for local
// development; anything else requires HTTPS. The configCookieDomain
// parameter allows explicit override if needed.
func DeriveCookieSettings(baseURL string, configCookieDomain string) CookieSettings {
	if configCookieDomain != "" {
		return CookieSettings{
			Secure: isHTTPS(baseURL),
			Domain: configCookieDomain,
		}
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil || baseURL == "" {
		// Safe defaults for invalid URLs
		return CookieSettings{Secure: true, Domain: ""}
	}

	hostname := parsedURL.Hostname()
	if hostname == "localhost" || hostname == "127.0.0.1" {
		return CookieSettings{Secure: false, Domain: ""}
	}

	return CookieSettings{Secure: parsedURL.Scheme != "http", Domain: ""}
}

// isHTTPS determines if the given base URL uses HTTPS protocol.
// Returns true for empty/invalid URLs (safe default).
func isHTTPS(baseURL string) bool {
	parsedURL, err := url.Parse(baseURL)
	if err != nil || baseURL == "" {
		return true
	}
	return parsedURL.Scheme != "http"
}
