package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/Continuity-Map/internal/infrastructure/monitoring/prometheus"
)

// MetricsMiddleware records request counts, latencies and in-flight requests.
type MetricsMiddleware struct {
	metrics   *prometheus.AppMetrics
	skipPaths map[string]bool
}

// NewMetricsMiddleware creates a MetricsMiddleware.  The metrics endpoint
// itself is not recorded.
func NewMetricsMiddleware(metrics *prometheus.AppMetrics, skipPaths ...string) *MetricsMiddleware {
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}
	return &MetricsMiddleware{metrics: metrics, skipPaths: skip}
}

// Handler returns the middleware handler function.
func (m *MetricsMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.metrics == nil || m.skipPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		active := m.metrics.HTTPActiveRequests.WithLabelValues(r.Method)
		active.Inc()
		defer active.Dec()

		start := time.Now()
		wrapped := newWrappedResponseWriter(w)
		next.ServeHTTP(wrapped, r)

		// the route pattern is only complete once routing has finished
		prometheus.RecordHTTPRequest(m.metrics, r.Method, routeLabel(r), wrapped.statusCode, time.Since(start))
	})
}

// routeLabel keeps unmatched paths out of the label set.
func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

//Personal.AI order the ending
