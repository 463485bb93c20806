package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/Continuity-Map/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Continuity-Map/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/Continuity-Map/internal/interfaces/http/handlers"
	"github.com/turtacn/Continuity-Map/internal/interfaces/http/middleware"
)

// RouterConfig aggregates all handler and middleware dependencies required
// to construct the complete HTTP route tree.
type RouterConfig struct {
	// Handlers
	SessionHandler   *handlers.SessionHandler
	ReferenceHandler *handlers.ReferenceHandler
	HealthHandler    *handlers.HealthHandler

	// Middleware
	CORSMiddleware    *middleware.CORSMiddleware
	LoggingMiddleware *middleware.LoggingMiddleware
	MetricsMiddleware *middleware.MetricsMiddleware

	// GeocodeLimiter guards the routes that call the upstream geocoder.
	GeocodeLimiter middleware.RateLimiter

	// Infrastructure
	Logger           logging.Logger
	MetricsCollector prometheus.MetricsCollector
	// MetricsPath is where the collector is exposed; "/metrics" when empty.
	MetricsPath string
}

// NewRouter constructs the complete HTTP route tree from the given configuration.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if cfg.CORSMiddleware != nil {
		r.Use(cfg.CORSMiddleware.Handler)
	}
	if cfg.MetricsMiddleware != nil {
		r.Use(cfg.MetricsMiddleware.Handler)
	}
	if cfg.LoggingMiddleware != nil {
		r.Use(cfg.LoggingMiddleware.Handler)
	}

	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/healthz/detail", cfg.HealthHandler.Detailed)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsCollector != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, cfg.MetricsCollector.Handler())
	}

	geocodeLimit := func(next http.Handler) http.Handler { return next }
	if cfg.GeocodeLimiter != nil {
		geocodeLimit = middleware.RateLimit(cfg.GeocodeLimiter, middleware.DefaultRateLimitConfig())
	}

	r.Route("/api/v1", func(api chi.Router) {
		registerReferenceRoutes(api, cfg.ReferenceHandler, geocodeLimit)
		registerSessionRoutes(api, cfg.SessionHandler, geocodeLimit)
	})

	return r
}

// registerReferenceRoutes mounts the session-independent lookups.
func registerReferenceRoutes(r chi.Router, h *handlers.ReferenceHandler, geocodeLimit func(http.Handler) http.Handler) {
	if h == nil {
		return
	}
	r.Get("/facilities", h.Facilities)
	r.Get("/event-types", h.EventTypes)
	r.With(geocodeLimit).Get("/geocode/suggest", h.Suggest)
}

// registerSessionRoutes mounts the per-session workflow under /sessions.
func registerSessionRoutes(r chi.Router, h *handlers.SessionHandler, geocodeLimit func(http.Handler) http.Handler) {
	if h == nil {
		return
	}
	r.Route("/sessions", func(sr chi.Router) {
		sr.Post("/", h.Create)

		sr.Route("/{sessionID}", func(item chi.Router) {
			item.Get("/", h.Get)
			item.Delete("/", h.Delete)

			item.Post("/dataset", h.Upload)
			item.Get("/dataset/overview", h.Overview)

			item.Get("/filters", h.GetFilters)
			item.Put("/filters", h.PutFilters)

			item.Post("/zone", h.DrawZone)

			item.Get("/report", h.Report)
			item.Get("/report/export.csv", h.ExportCSV)
			item.Post("/report/document", h.ExportDocument)

			item.With(geocodeLimit).Post("/geocode", h.Geocode)
		})
	})
}

//Personal.AI order the ending
