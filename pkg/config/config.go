package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all configuration for tradingbuddy-engine.
// Configuration can come from a YAML file (config.yaml) or environment
// variables; environment variables override YAML values. Secrets
// (passwords, keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8090"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL" env-default:""`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Authentication configuration
	Auth AuthConfig `yaml:"auth"`

	// OAuth configuration for the dashboard login flow
	OAuth OAuthConfig `yaml:"oauth"`

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Redis configuration (optional quote cache)
	Redis RedisConfig `yaml:"redis"`

	// Market data simulation settings
	Market MarketConfig `yaml:"market"`

	// Encryption key for broker API credentials. Must be a 32-byte key,
	// base64 encoded (openssl rand -base64 32), or any passphrase which
	// is hashed to 32 bytes. Server fails to start if unset.
	CredentialsKey string `yaml:"-" env:"CREDENTIALS_KEY"` // Secret - not in YAML

	// SessionSecret signs the short-lived OAuth state cookie.
	SessionSecret string `yaml:"-" env:"SESSION_SECRET"` // Secret - not in YAML
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	// EnableVerification controls whether JWT signatures are validated.
	// Set to false for local development without an auth server.
	EnableVerification bool `yaml:"enable_verification" env:"AUTH_ENABLE_VERIFICATION" env-default:"true"`

	// JWKSEndpointsStr is a comma-separated list of issuer=jwks_url pairs.
	JWKSEndpointsStr string `yaml:"jwks_endpoints" env:"JWKS_ENDPOINTS" env-default:""`

	// JWKSEndpoints is the parsed map from JWKSEndpointsStr.
	JWKSEndpoints map[string]string `yaml:"-"`

	// CookieDomain restricts the JWT cookie (optional; derived from
	// BaseURL when empty).
	CookieDomain string `yaml:"cookie_domain" env:"COOKIE_DOMAIN" env-default:""`
}

// OAuthConfig holds OAuth client configuration for the login flow.
type OAuthConfig struct {
	ClientID      string `yaml:"client_id" env:"OAUTH_CLIENT_ID" env-default:"tradingbuddy-engine"`
	AuthServerURL string `yaml:"auth_server_url" env:"AUTH_SERVER_URL" env-default:""`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"tradingbuddy"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"tradingbuddy"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`
}

// URL builds a pgx-compatible connection URL.
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

// RedisConfig holds Redis configuration. Redis is optional; an empty
// host disables the quote cache.
type RedisConfig struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:""`
	Port     int    `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"` // Secret - not in YAML
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// MarketConfig holds market data simulation settings.
type MarketConfig struct {
	// QuoteTTLSeconds is how long simulated quotes are cached in Redis.
	QuoteTTLSeconds int `yaml:"quote_ttl_seconds" env:"MARKET_QUOTE_TTL_SECONDS" env-default:"5"`
}

// Load reads configuration from config.yaml (when present) and the
// environment. A .env file in the working directory is loaded first for
// local development.
func Load(version string) (*Config, error) {
	// Best effort; absent .env is the normal case outside development.
	_ = godotenv.Load()

	var cfg Config

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	cfg.Version = version

	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:" + cfg.Port
	}

	if cfg.CredentialsKey == "" {
		return nil, fmt.Errorf("CREDENTIALS_KEY must be set")
	}

	endpoints, err := parseJWKSEndpoints(cfg.Auth.JWKSEndpointsStr)
	if err != nil {
		return nil, err
	}
	cfg.Auth.JWKSEndpoints = endpoints

	if cfg.Auth.EnableVerification && len(cfg.Auth.JWKSEndpoints) == 0 {
		return nil, fmt.Errorf("JWKS_ENDPOINTS must be set when auth verification is enabled")
	}

	return &cfg, nil
}

// parseJWKSEndpoints parses "issuer1=url1,issuer2=url2" into a map.
func parseJWKSEndpoints(s string) (map[string]string, error) {
	endpoints := make(map[string]string)
	if strings.TrimSpace(s) == "" {
		return endpoints, nil
	}

	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		issuer, url, found := strings.Cut(pair, "=")
		if !found || issuer == "" || url == "" {
			return nil, fmt.Errorf("invalid JWKS endpoint pair %q (want issuer=url)", pair)
		}
		endpoints[strings.TrimSpace(issuer)] = strings.TrimSpace(url)
	}

	return endpoints, nil
}
