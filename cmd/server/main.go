package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/condo-care/backend/internal/handler"
	"github.com/condo-care/backend/internal/infrastructure/logger"
	"github.com/condo-care/backend/internal/infrastructure/redis"
	"github.com/condo-care/backend/internal/migrations"
	"github.com/condo-care/backend/internal/observability/metrics"
	"github.com/condo-care/backend/internal/observability/tracing"
	"github.com/condo-care/backend/internal/reliability/retry"
	"github.com/condo-care/backend/internal/repository"
	"github.com/condo-care/backend/internal/security/audit"
	"github.com/condo-care/backend/internal/security/auth"
	"github.com/condo-care/backend/internal/security/middleware"
	"github.com/condo-care/backend/internal/security/ratelimit"
	"github.com/condo-care/backend/internal/service"
	"github.com/condo-care/backend/internal/worker"
	"github.com/condo-care/backend/pkg/cache"
	"github.com/condo-care/backend/pkg/config"
	"github.com/condo-care/backend/pkg/database"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting CondoCare server", slog.String("environment", cfg.Environment))

	// 3. Tracing (no-op unless OTEL_EXPORTER_OTLP_ENDPOINT is set)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Init(ctx, log, "condocare-backend", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Connect to PostgreSQL, retrying while the database comes up
	var pool *database.ConnectionPool
	err = retry.Do(ctx, retry.DefaultConfig(), log, "database connect", func(ctx context.Context) error {
		var connErr error
		pool, connErr = database.NewConnectionPool(ctx, &database.Config{
			Host:     cfg.DatabaseHost,
			Port:     cfg.DatabasePort,
			User:     cfg.DatabaseUser,
			Password: cfg.DatabasePassword,
			Database: cfg.DatabaseName,
			SSLMode:  cfg.DatabaseSSLMode,
		}, log)
		return connErr
	})
	if err != nil {
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()
	db := pool.GetDB()

	// 5. Schema and seed accounts
	if err := migrations.Apply(ctx, db); err != nil {
		log.Error("failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.SeedDefaultUsers {
		if err := migrations.Seed(ctx, db, log); err != nil {
			log.Error("failed to seed default users", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	// 6. Cache tier: Redis when configured, in-process otherwise
	var reportCache service.Cache
	var redisCache *redis.Cache
	if cfg.RedisURL != "" {
		redisCache, err = redis.NewCache(cfg.RedisURL, log)
		if err != nil {
			log.Error("failed to connect to Redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisCache.Close()
		reportCache = redisCache
	} else {
		reportCache = cache.New()
		log.Info("using in-memory cache, set REDIS_URL for a shared tier")
	}

	// 7. Repositories and services
	userRepo := repository.NewPostgresUserRepository(db, log)
	reportRepo := repository.NewPostgresReportRepository(db, log)

	tokenManager := auth.NewTokenManager(cfg.JWTSecret, "condocare", time.Duration(cfg.JWTExpireMinutes)*time.Minute)
	cacheTTL := time.Duration(cfg.CacheTTLSeconds) * time.Second

	authService := service.NewAuthService(userRepo, tokenManager, log)
	reportService := service.NewReportService(reportRepo, reportCache, cacheTTL, log)
	userService := service.NewUserService(userRepo, log)

	// 8. Handlers and security components
	auditLogger := audit.NewLogger(log)
	authHandler := handler.NewAuthHandler(authService, auditLogger, log)
	reportHandler := handler.NewReportHandler(reportService, auditLogger, log)
	userHandler := handler.NewUserHandler(userService, auditLogger, log)

	var cachePinger handler.Pinger
	if redisCache != nil {
		cachePinger = redisCache
	}
	healthHandler := handler.NewHealthHandler(db, cachePinger, log)

	authn := middleware.NewAuthenticator(tokenManager, log)
	rateLimiter := ratelimit.NewLimiter(cfg.RateLimitRequests, time.Duration(cfg.RateLimitWindowSeconds)*time.Second)

	// 9. Routes
	mux := handler.NewRouter(authHandler, reportHandler, userHandler, healthHandler, authn)

	// CORS honoring configured origins
	handlerWithCORS := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(cfg.CORSAllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if len(cfg.CORSAllowedOrigins) > 0 {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins[0])
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})

	// Chain middleware: request ID -> metrics -> rate limit -> audit -> CORS
	rootHandler := withRequestID(
		metrics.HTTPMetricsMiddleware(
			middleware.RateLimitMiddleware(rateLimiter, tokenManager, log)(
				middleware.AuditMiddleware(auditLogger, tokenManager)(handlerWithCORS),
			),
		),
		log,
	)

	// 10. Counter reconciliation worker
	reconcileWorker := worker.NewReconcileWorker(
		reportRepo,
		log,
		time.Duration(cfg.ReconcileIntervalMinutes)*time.Minute,
	)
	go reconcileWorker.Start(ctx)

	// 11. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      otelhttp.NewHandler(rootHandler, "http.server"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("auth", "jwt"),
		slog.Int("rate_limit", cfg.RateLimitRequests),
		slog.Int("rate_limit_window_seconds", cfg.RateLimitWindowSeconds),
	)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	cancel() // stop reconcile worker
	rateLimiter.Stop()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}
	log.Info("server stopped")
}

type requestIDKey struct{}

// withRequestID attaches a request ID to the context and response headers for traceability
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := generateRequestID()
		w.Header().Set("X-Request-ID", reqID)

		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration_ms", time.Since(start)),
		)
	})
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

func generateRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}
	return fmt.Sprintf("req-%d", time.Now().UnixNano())
}
