package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Continuity-Map/internal/application/continuity"
	"github.com/turtacn/Continuity-Map/internal/application/reporting"
	"github.com/turtacn/Continuity-Map/internal/config"
	"github.com/turtacn/Continuity-Map/internal/domain/facility"
	"github.com/turtacn/Continuity-Map/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Continuity-Map/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/Continuity-Map/internal/interfaces/http/handlers"
	"github.com/turtacn/Continuity-Map/internal/interfaces/http/middleware"
	"github.com/turtacn/Continuity-Map/internal/testutil"
)

func newTestRouter(t *testing.T) (http.Handler, prometheus.MetricsCollector) {
	t.Helper()
	reg, err := facility.NewRegistry(config.DefaultFacilities())
	require.NoError(t, err)
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "test"}, logging.NewNopLogger())
	require.NoError(t, err)
	metrics := prometheus.NewAppMetrics(collector)

	store := continuity.NewMemorySessionStore()
	svc, err := continuity.NewService(continuity.Dependencies{
		Store:     store,
		Registry:  reg,
		Documents: reporting.NewDocumentRenderer(reporting.DocumentOptions{}, nil, nil),
		Metrics:   metrics,
	}, continuity.Options{})
	require.NoError(t, err)

	limiter := middleware.NewTokenBucketLimiter(1, 1, 0)
	t.Cleanup(limiter.Stop)

	logger := logging.NewNopLogger()
	return NewRouter(RouterConfig{
		SessionHandler:    handlers.NewSessionHandler(svc, logger),
		ReferenceHandler:  handlers.NewReferenceHandler(svc, logger),
		HealthHandler:     handlers.NewHealthHandler("test", store),
		CORSMiddleware:    middleware.NewCORSMiddleware(middleware.CORSConfigForOrigins([]string{"https://mapa.example.com"})),
		LoggingMiddleware: middleware.NewLoggingMiddleware(logger, middleware.DefaultLoggingConfig()),
		MetricsMiddleware: middleware.NewMetricsMiddleware(metrics, "/metrics"),
		GeocodeLimiter:    limiter,
		Logger:            logger,
		MetricsCollector:  collector,
	}), collector
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(method, path, strings.NewReader(body))
	r.RemoteAddr = "192.0.2.10:5000"
	h.ServeHTTP(w, r)
	return w
}

func TestNewRouter_HealthAndMetrics(t *testing.T) {
	h, _ := newTestRouter(t)

	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/readyz", "").Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/healthz/detail", "").Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/metrics", "").Code)
}

func TestNewRouter_RoutesRegistered(t *testing.T) {
	h, collector := newTestRouter(t)

	w := serve(h, http.MethodPost, "/api/v1/sessions", "")
	require.Equal(t, http.StatusCreated, w.Code)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/api/v1/facilities", http.StatusOK},
		{http.MethodGet, "/api/v1/event-types", http.StatusOK},
		{http.MethodGet, "/api/v1/sessions/missing", http.StatusNotFound},
		{http.MethodGet, "/api/v1/sessions/missing/report", http.StatusNotFound},
		{http.MethodPut, "/api/v1/sessions/missing/filters", http.StatusNotFound},
		{http.MethodGet, "/api/v1/unknown", http.StatusNotFound},
		{http.MethodPatch, "/api/v1/sessions/missing/zone", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		body := ""
		if tt.method == http.MethodPut {
			body = "{}"
		}
		w := serve(h, tt.method, tt.path, body)
		assert.Equal(t, tt.status, w.Code, "%s %s", tt.method, tt.path)
	}

	scraped := serve(collector.Handler(), http.MethodGet, "/metrics", "").Body.String()
	assert.Contains(t, scraped, `route="/api/v1/sessions/{sessionID}/report"`)
	assert.NotContains(t, scraped, "/api/v1/sessions/missing")
}

func TestNewRouter_GeocodeRoutesRateLimited(t *testing.T) {
	h, _ := newTestRouter(t)

	first := serve(h, http.MethodGet, "/api/v1/geocode/suggest?q=Calle+100", "")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.JSONEq(t, `{"suggestions":[]}`, first.Body.String())

	second := serve(h, http.MethodGet, "/api/v1/geocode/suggest?q=Calle+100", "")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	// other routes are not limited
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/api/v1/facilities", "").Code)
	}
}

func TestNewRouter_CORSApplied(t *testing.T) {
	h, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodOptions, "/api/v1/sessions", nil)
	r.Header.Set("Origin", "https://mapa.example.com")
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	h.ServeHTTP(w, r)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://mapa.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewRouter_NilHandlersNoPanic(t *testing.T) {
	var h http.Handler
	require.NotPanics(t, func() { h = NewRouter(RouterConfig{}) })

	assert.Equal(t, http.StatusNotFound, serve(h, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(h, http.MethodPost, "/api/v1/sessions", "").Code)
}

func TestNewRouter_RecoversFromPanics(t *testing.T) {
	logger := testutil.NewMockLogger()
	h := NewRouter(RouterConfig{
		LoggingMiddleware: middleware.NewLoggingMiddleware(logger, middleware.DefaultLoggingConfig()),
	})
	mux, ok := h.(interface {
		Get(string, http.HandlerFunc)
	})
	require.True(t, ok)
	mux.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	w := serve(h, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

//Personal.AI order the ending
