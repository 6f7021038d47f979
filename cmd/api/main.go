// Copyright (c) 2026 Roastlog. All rights reserved.

// Command api is the entry point for the Roastlog HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect storage (in-memory by default, PostgreSQL when configured).
//  4. Build the registration rate limiter (in-memory or Redis-backed).
//  5. Run database migrations (idempotent, postgres driver only).
//  6. Wire HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/roastlog/roastlog/internal/api"
	"github.com/roastlog/roastlog/internal/platform/audit"
	"github.com/roastlog/roastlog/internal/platform/config"
	"github.com/roastlog/roastlog/internal/platform/constants"
	"github.com/roastlog/roastlog/internal/platform/migration"
	pgstore "github.com/roastlog/roastlog/internal/platform/postgres"
	"github.com/roastlog/roastlog/internal/platform/ratelimit"
	redisstore "github.com/roastlog/roastlog/internal/platform/redis"
	"github.com/roastlog/roastlog/internal/platform/sec"
	"github.com/roastlog/roastlog/internal/users/registration"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[Roastlog] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("storage_driver", cfg.StorageDriver),
		slog.String("rate_limit_driver", cfg.RateLimitDriver),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// Lifetime context for background workers (janitor goroutines).
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// ── 3. Storage ────────────────────────────────────────────────────────
	var userStore registration.UserStore
	healthDeps := api.HealthDependencies{}

	switch cfg.StorageDriver {
	case constants.DriverPostgres:
		pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
		must(log, err, "connect to postgres")
		defer func() {
			log.Info("closing postgres pool")
			pool.Close()
		}()

		must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

		userStore = registration.NewPostgresStore(pool)
		healthDeps.CheckDatabase = func() error {
			return pgstore.Ping(context.Background(), pool)
		}
	default:
		log.Info("using in-memory user store",
			slog.Int("seeded_emails", len(registration.SeededTakenEmails)))
		userStore = registration.NewMemoryStore()
	}

	// ── 4. Rate Limiter ───────────────────────────────────────────────────
	var limiter ratelimit.Limiter

	switch cfg.RateLimitDriver {
	case constants.DriverRedis:
		var rdb *redis.Client
		rdb, err = redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()

		limiter = ratelimit.NewRedis(rdb, constants.RegistrationRateLimit, constants.RegistrationRateWindow, log)
		healthDeps.CheckRateLimitStore = func() error {
			return redisstore.Ping(context.Background(), rdb)
		}
	default:
		memoryLimiter := ratelimit.NewMemory(constants.RegistrationRateLimit, constants.RegistrationRateWindow)
		memoryLimiter.StartJanitor(appCtx, constants.RegistrationRateWindow)
		limiter = memoryLimiter
	}

	// ── 5. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(healthDeps, log)

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	auditLogger := audit.NewLogger(log)
	csrfIssuer := sec.NewCSRFIssuer(cfg.CSRFSecret)

	registrationService := registration.NewService(userStore, auditLogger)
	registrationHandler := registration.NewHandler(registrationService, limiter, csrfIssuer, auditLogger)

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:     liveness,
		Readiness:    readiness,
		Registration: registrationHandler,
	}

	server := api.NewServer(appCtx, cfg, log, handlers)

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
