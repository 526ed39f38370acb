package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/riandyrn/otelchi"
	otelchimetric "github.com/riandyrn/otelchi/metric"
	"go.opentelemetry.io/otel"

	"github.com/socialchef/thermochef/internal/api"
	"github.com/socialchef/thermochef/internal/config"
	"github.com/socialchef/thermochef/internal/middleware"
	"github.com/socialchef/thermochef/internal/sentry"
	"github.com/socialchef/thermochef/internal/web"
)

func newRouter(cfg *config.Config, apiServer *api.Server, limiter middleware.Limiter) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(otelchi.Middleware(cfg.ServiceName,
		otelchi.WithChiRoutes(r),
		otelchi.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health"
		}),
	))

	// HTTP metrics
	metricCfg := otelchimetric.NewBaseConfig(cfg.ServiceName, otelchimetric.WithMeterProvider(otel.GetMeterProvider()))
	r.Use(otelchimetric.NewRequestDurationMillis(metricCfg))
	r.Use(otelchimetric.NewRequestInFlight(metricCfg))
	r.Use(otelchimetric.NewResponseSizeBytes(metricCfg))

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(sentry.HTTPMiddleware)

	// The convert routes answer preflight requests themselves.
	r.Group(func(r chi.Router) {
		r.Use(middleware.AllowAnyOrigin)
		r.Use(middleware.RateLimit(limiter))
		r.HandleFunc("/convert", apiServer.HandleConvert)
		r.HandleFunc("/api/convert", apiServer.HandleConvert)
	})

	r.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "HEAD", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))
		r.Get("/health", apiServer.HandleHealth)
		r.Handle("/", web.Handler())
	})

	return r
}
