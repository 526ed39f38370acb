package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/socialchef/thermochef/internal/api"
	"github.com/socialchef/thermochef/internal/config"
	"github.com/socialchef/thermochef/internal/logger"
	"github.com/socialchef/thermochef/internal/metrics"
	"github.com/socialchef/thermochef/internal/middleware"
	"github.com/socialchef/thermochef/internal/sentry"
	"github.com/socialchef/thermochef/internal/services/generation"
	"github.com/socialchef/thermochef/internal/telemetry"
)

func main() {
	defer sentry.Recover()

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize telemetry
	shutdownTelemetry, err := telemetry.InitTelemetry(ctx, cfg.ServiceName, cfg.ServiceVersion, cfg.Env, cfg.OtelExporterOTLPEndpoint, cfg.OTLPHeaders())
	if err != nil {
		slog.Warn("Failed to init telemetry", "error", err)
		shutdownTelemetry = func(context.Context) error { return nil }
	}

	// Initialize Sentry
	if err := sentry.Init(cfg.SentryDSN, cfg.Env, cfg.ServiceName, cfg.ServiceVersion); err != nil {
		slog.Warn("Failed to init Sentry", "error", err)
	}

	// Initialize business metrics
	if err := metrics.Init(); err != nil {
		slog.Warn("Failed to init business metrics", "error", err)
	}

	// Initialize logger with OTel support
	slog.SetDefault(logger.New(cfg.Env))

	generator, err := generation.NewProvider(cfg.Generation, cfg.Keys())
	switch {
	case errors.Is(err, generation.ErrMissingAPIKey):
		// Keep serving: the convert endpoint answers with a configuration error.
		slog.Error("Generation API key not set, conversions will fail", "provider", cfg.Generation.Provider, "env_var", cfg.CredentialEnvVar())
	case err != nil:
		log.Fatalf("Failed to create generation provider: %v", err)
	default:
		generator = generation.Instrumented(generator, cfg.Generation.Provider)
		slog.Info("Generation provider ready", "provider", cfg.Generation.Provider, "model", cfg.Generation.Model)
	}

	limiter, closeLimiter, err := newLimiter(cfg)
	if err != nil {
		log.Fatalf("Failed to create rate limiter: %v", err)
	}
	defer closeLimiter()

	apiServer := api.NewServer(cfg, generator)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(cfg, apiServer, limiter),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Generation.Timeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		slog.Warn("Telemetry shutdown failed", "error", err)
	}
	sentry.Flush(2 * time.Second)
}

// newLimiter picks the Redis limiter when REDIS_URL is set and an in-memory one otherwise.
// A zero per-minute limit disables rate limiting.
func newLimiter(cfg *config.Config) (middleware.Limiter, func(), error) {
	noop := func() {}
	if cfg.Limits.RateLimitPerMinute <= 0 {
		slog.Info("Rate limiting disabled")
		return nil, noop, nil
	}

	if cfg.RedisURL == "" {
		return middleware.NewMemoryLimiter(cfg.Limits.RateLimitPerMinute, cfg.Limits.RateLimitBurst), noop, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, noop, err
	}
	client := redis.NewClient(opts)
	if err := redisotel.InstrumentTracing(client); err != nil {
		slog.Warn("Failed to instrument Redis tracing", "error", err)
	}
	if err := redisotel.InstrumentMetrics(client); err != nil {
		slog.Warn("Failed to instrument Redis metrics", "error", err)
	}
	limiter := middleware.NewRedisLimiter(client, cfg.Limits.RateLimitPerMinute, time.Minute, "thermochef:ratelimit:convert")
	return limiter, func() { client.Close() }, nil
}
