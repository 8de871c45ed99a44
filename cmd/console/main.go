package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/BradenHooton/superadmin-console/internal/backend"
	"github.com/BradenHooton/superadmin-console/internal/background"
	"github.com/BradenHooton/superadmin-console/internal/config"
	"github.com/BradenHooton/superadmin-console/internal/database"
	"github.com/BradenHooton/superadmin-console/internal/handlers"
	middlewareCustom "github.com/BradenHooton/superadmin-console/internal/middleware"
	"github.com/BradenHooton/superadmin-console/internal/notify"
	"github.com/BradenHooton/superadmin-console/internal/routes"
	"github.com/BradenHooton/superadmin-console/internal/services"
	"github.com/BradenHooton/superadmin-console/internal/session"
	"github.com/BradenHooton/superadmin-console/internal/storage"
	"github.com/BradenHooton/superadmin-console/internal/storage/postgres"
	"github.com/BradenHooton/superadmin-console/internal/storage/redis"
	"github.com/BradenHooton/superadmin-console/internal/throttle"
	"github.com/BradenHooton/superadmin-console/internal/upload"
	pkghttp "github.com/BradenHooton/superadmin-console/pkg/http"
	pkglogger "github.com/BradenHooton/superadmin-console/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.Server.LogLevel)}))
	slog.SetDefault(logger)

	logger.Info("configuration loaded",
		slog.String("env", cfg.Server.Env),
		slog.String("storage", cfg.Storage.Driver),
		slog.String("backend", cfg.Backend.BaseURL),
	)

	// Initialize device storage
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, closeStore, err := openStore(ctx, cfg, logger)
	cancel()
	if err != nil {
		logger.Error("failed to open storage", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeStore()

	var cleanupManager *background.CleanupManager
	if sweeper, ok := store.(storage.Sweeper); ok {
		cleanupManager = background.NewCleanupManager(sweeper, logger, cfg.Storage.CleanupInterval)
	}

	// Backend API client
	client := backend.New(cfg.Backend.BaseURL,
		backend.WithLogger(logger),
		backend.WithTokenCookie(cfg.Session.TokenCookie()),
		backend.WithHTTPClient(&http.Client{Timeout: cfg.Backend.Timeout}),
	)

	// Sessions and CSRF
	cookieConfig := session.CookieConfig{
		Domain:   cfg.Session.CookieDomain,
		Secure:   cfg.Session.CookieSecure,
		SameSite: cfg.Session.CookieSameSite,
	}
	sessions := session.NewManager(store, session.Config{
		CookieNames:   cfg.Session.CookieNames,
		CookieTTL:     cfg.Session.CookieTTL,
		GuardInterval: cfg.Session.GuardInterval,
		Cookies:       cookieConfig,
	}, logger)
	csrfManager := session.NewCSRFTokenManager(store, cfg.Session.CSRFTokenTTL)

	// Login throttle, one per device
	throttleConfig := throttle.Config{
		MaxAttempts:  cfg.Throttle.MaxAttempts,
		LockDuration: cfg.Throttle.LockDuration,
		Retention:    cfg.Throttle.AttemptRetention,
	}
	throttles := func(deviceID string) *throttle.Throttle {
		return throttle.New(storage.DeviceStore(store, deviceID), throttleConfig, logger)
	}

	uploads := upload.NewProcessor(cfg.Uploads.MaxBytes, cfg.Uploads.MaxDimension)
	auditLogger := pkglogger.NewAuditLogger(logger)

	// Initialize services
	authService := services.NewAuthService(client, logger, auditLogger)
	schoolService := services.NewSchoolService(client, auditLogger)
	adminService := services.NewAdminService(client, auditLogger)
	profileService := services.NewProfileService(client, auditLogger)
	notificationService := services.NewNotificationService(func(token string) notify.Source {
		return client.Notifications(token)
	}, cfg.Notifications.PollInterval, logger, auditLogger)

	// Initialize handlers
	respond := handlers.NewResponder(sessions, pkghttp.NewProxies(cfg.Server.TrustedProxies), logger, auditLogger)

	var pinger storage.Pinger
	if p, ok := store.(storage.Pinger); ok {
		pinger = p
	}

	h := routes.Handlers{
		Auth:          handlers.NewAuthHandler(authService, throttles, sessions, respond, logger),
		CSRF:          handlers.NewCSRFHandler(csrfManager, cookieConfig, logger),
		Health:        handlers.NewHealthHandler(pinger, logger),
		Schools:       handlers.NewSchoolHandler(schoolService, uploads, respond),
		Admins:        handlers.NewAdminHandler(adminService, uploads, respond),
		Profile:       handlers.NewProfileHandler(profileService, uploads, respond),
		Notifications: handlers.NewNotificationHandler(notificationService, respond),
		Events:        handlers.NewEventsHandler(notificationService, sessions, respond, logger, auditLogger),
	}

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(middlewareCustom.DefaultCORSConfig(cfg.Server.AllowedOrigins)))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middlewareCustom.Prometheus)
	router.Use(middlewareCustom.Device(cookieConfig))

	// Register routes
	routes.RegisterRoutes(router, h, routes.Deps{
		Sessions:   sessions,
		CSRF:       csrfManager,
		Respond:    respond,
		LoginLimit: middlewareCustom.RateLimitConfig{RequestsPerMinute: cfg.Server.LoginRequestsPerMinute},
	})

	// Create server. WriteTimeout stays 0 by default so event streams stay open.
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start cleanup task
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()

	if cleanupManager != nil {
		go cleanupManager.Start(cleanupCtx)
	}

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	cleanupCancel()
	if cleanupManager != nil {
		cleanupManager.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

// openStore opens the configured storage driver. The returned close function
// is always non-nil.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Store, func(), error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		db, err := database.NewConnection(ctx, &cfg.Database, logger)
		if err != nil {
			return nil, func() {}, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, func() {}, fmt.Errorf("migrate: %w", err)
		}
		return postgres.NewStore(db.Pool), db.Close, nil

	case config.StorageRedis:
		store, err := redis.Open(ctx, cfg.Storage.RedisURL, cfg.Storage.RedisPrefix)
		if err != nil {
			return nil, func() {}, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Warn("failed to close redis client", slog.Any("error", err))
			}
		}, nil

	default:
		logger.Warn("using in-memory storage; sessions and lockouts reset on restart")
		return storage.NewMemoryStore(), func() {}, nil
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
