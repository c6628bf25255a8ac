package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"go.uber.org/zap"

	"github.com/tradingbuddy/tradingbuddy-engine/pkg/auth"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/config"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/crypto"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/database"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/handlers"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/logging"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/marketdata"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/middleware"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/repositories"
	"github.com/tradingbuddy/tradingbuddy-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.URL())),
		zap.String("redis_host", cfg.Redis.Host))

	ctx := context.Background()

	// Migrations run over database/sql; the pgx pool serves requests.
	migrationDB, err := sql.Open("pgx", cfg.Database.URL())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.String("error", logging.SanitizeError(err)))
	}
	if err := database.RunMigrations(migrationDB, cfg.Database.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.String("error", logging.SanitizeError(err)))
	}
	_ = migrationDB.Close()

	db, err := database.NewConnection(ctx, &database.Config{URL: cfg.Database.URL()})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.String("error", logging.SanitizeError(err)))
	}
	defer db.Pool.Close()

	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.String("error", logging.SanitizeError(err)))
	}
	if redisClient == nil {
		logger.Info("Redis not configured, quote caching disabled")
	}

	encryptor, err := crypto.NewCredentialEncryptor(cfg.CredentialsKey)
	if err != nil {
		logger.Fatal("Failed to initialize credential encryptor", zap.Error(err))
	}

	jwksClient, err := auth.NewJWKSClient(&auth.JWKSConfig{
		EnableVerification: cfg.Auth.EnableVerification,
		JWKSEndpoints:      cfg.Auth.JWKSEndpoints,
	})
	if err != nil {
		logger.Fatal("Failed to initialize JWKS client", zap.Error(err))
	}
	defer jwksClient.Close()

	authService := auth.NewService(jwksClient, logger)
	authMiddleware := auth.NewMiddleware(authService, logger)

	cookieSettings := auth.DeriveCookieSettings(cfg.BaseURL, "")
	auth.InitSessionStore(cfg.SessionSecret, cookieSettings.Secure)

	// Repositories
	brokerConnectionRepo := repositories.NewBrokerConnectionRepository(db)
	mlModelRepo := repositories.NewMLModelRepository(db)
	backtestRepo := repositories.NewBacktestRepository(db)
	positionRepo := repositories.NewPositionRepository(db)
	watchlistRepo := repositories.NewWatchlistRepository(db)
	newsRepo := repositories.NewNewsRepository(db)

	// Market data
	simulator := marketdata.NewSimulator()
	quoteTTL := time.Duration(cfg.Market.QuoteTTLSeconds) * time.Second
	marketService := marketdata.NewService(simulator, redisClient, quoteTTL, logger)

	// Services
	brokerConnectionService := services.NewBrokerConnectionService(brokerConnectionRepo, encryptor, logger)
	mlModelService := services.NewMLModelService(mlModelRepo, logger)
	backtestService := services.NewBacktestService(backtestRepo, simulator, logger)
	positionService := services.NewPositionService(positionRepo, logger)
	watchlistService := services.NewWatchlistService(watchlistRepo, logger)
	newsService := services.NewNewsService(newsRepo, logger)
	oauthService := services.NewOAuthService(&services.OAuthConfig{
		BaseURL:       cfg.BaseURL,
		ClientID:      cfg.OAuth.ClientID,
		AuthServerURL: cfg.OAuth.AuthServerURL,
	}, logger)

	mux := http.NewServeMux()

	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewAuthHandler(oauthService, cfg, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewBrokerConnectionHandler(brokerConnectionService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewMLModelHandler(mlModelService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewBacktestHandler(backtestService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewPositionHandler(positionService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewWatchlistHandler(watchlistService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewNewsHandler(newsService, logger).RegisterRoutes(mux, authMiddleware)
	handlers.NewMarketHandler(marketService, logger).RegisterRoutes(mux, authMiddleware)

	// Serve static UI files from ui/dist
	fs := http.FileServer(http.Dir("./ui/dist"))
	mux.Handle("/", fs)

	server := &http.Server{
		Addr:              cfg.BindAddr + ":" + cfg.Port,
		Handler:           middleware.RequestLogger(logger)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting tradingbuddy-engine",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}

// newLogger builds a production JSON logger, or a human-readable
// development logger when running locally.
func newLogger(env string) (*zap.Logger, error) {
	if env == "development" || env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
