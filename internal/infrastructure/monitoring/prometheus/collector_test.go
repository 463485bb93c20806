package prometheus

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/Continuity-Map/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Continuity-Map/internal/testutil"
)

func newTestCollector(t *testing.T) MetricsCollector {
	cfg := CollectorConfig{
		Namespace:            "test",
		Subsystem:            "unit",
		EnableGoMetrics:      false,
		EnableProcessMetrics: false,
	}
	c, err := NewMetricsCollector(cfg, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func scrapeMetrics(t *testing.T, collector MetricsCollector) string {
	handler := collector.Handler()
	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestNewMetricsCollector_ValidConfig(t *testing.T) {
	c := newTestCollector(t)
	assert.NotNil(t, c)
}

func TestNewMetricsCollector_EmptyNamespace(t *testing.T) {
	cfg := CollectorConfig{
		Subsystem: "unit",
	}
	_, err := NewMetricsCollector(cfg, logging.NewNopLogger())
	assert.Error(t, err)
}

func TestNewMetricsCollector_WithProcessMetrics(t *testing.T) {
	cfg := CollectorConfig{
		Namespace:            "test",
		EnableProcessMetrics: true,
	}
	c, err := NewMetricsCollector(cfg, logging.NewNopLogger())
	require.NoError(t, err)
	output := scrapeMetrics(t, c)
	assert.Contains(t, output, "process_cpu_seconds_total")
}

func TestRegisterCounter_Success(t *testing.T) {
	c := newTestCollector(t)
	counter := c.RegisterCounter("requests_total", "Total requests")
	counter.WithLabelValues().Inc()

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, "test_unit_requests_total")
}

func TestRegisterCounter_WithLabels(t *testing.T) {
	c := newTestCollector(t)
	counter := c.RegisterCounter("http_requests", "HTTP requests", "method")
	counter.WithLabelValues("GET").Add(5)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, "test_unit_http_requests{method=\"GET\"}")
}

func TestRegisterCounter_Duplicate(t *testing.T) {
	c := newTestCollector(t)
	c1 := c.RegisterCounter("dup_counter", "help")
	c2 := c.RegisterCounter("dup_counter", "help")

	c1.WithLabelValues().Inc()
	c2.WithLabelValues().Inc()

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, "test_unit_dup_counter 2")
}

func TestRegisterGauge_Success(t *testing.T) {
	c := newTestCollector(t)
	gauge := c.RegisterGauge("active_users", "Active users")
	gauge.WithLabelValues().Set(10)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, "test_unit_active_users")
}

func TestRegisterHistogram_DefaultBuckets(t *testing.T) {
	c := newTestCollector(t)
	hist := c.RegisterHistogram("latency", "Latency", nil)
	hist.WithLabelValues().Observe(0.1)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, "test_unit_latency_bucket")
}

func TestTimer_MeasuresDuration(t *testing.T) {
	c := newTestCollector(t)
	hist := c.RegisterHistogram("timer_test", "Timer test", nil)
	timer := NewTimer(hist.WithLabelValues())
	time.Sleep(10 * time.Millisecond)
	timer.ObserveDuration()

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, "test_unit_timer_test_count")
}

func TestTimer_NilHistogram(t *testing.T) {
	timer := NewTimer(nil)
	assert.NotPanics(t, timer.ObserveDuration)
}

func TestRegisterCounter_ConflictLogsWarning(t *testing.T) {
	log := testutil.NewMockLogger()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "test"}, log)
	require.NoError(t, err)

	c.RegisterHistogram("shared", "help", nil)
	c.RegisterCounter("shared", "help").WithLabelValues().Inc()
	assert.True(t, log.HasMessage("warn", "metric type mismatch"))
}

func TestConcurrentRegistration(t *testing.T) {
	c := newTestCollector(t)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.RegisterCounter("concurrent_metric", "help", "id").WithLabelValues("1").Inc()
		}(i)
	}
	wg.Wait()

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, "test_unit_concurrent_metric")
}

func TestNoopCounter_NoError(t *testing.T) {
	c := newTestCollector(t)
	c.RegisterCounter("conflict", "help").WithLabelValues().Inc()

	gauge := c.RegisterGauge("conflict", "help")
	gauge.WithLabelValues().Set(10)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, "# TYPE test_unit_conflict counter")
}

func TestMustRegister_CustomCollector(t *testing.T) {
	c := newTestCollector(t)
	pc := prometheus.NewCounter(prometheus.CounterOpts{Name: "custom_collector"})
	c.MustRegister(pc)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, "custom_collector")
}

func TestUnregister_Success(t *testing.T) {
	c := newTestCollector(t)
	pc := prometheus.NewCounter(prometheus.CounterOpts{Name: "to_unregister"})
	c.MustRegister(pc)

	success := c.Unregister(pc)
	assert.True(t, success)

	output := scrapeMetrics(t, c)
	assert.NotContains(t, output, "to_unregister")
}

//Personal.AI order the ending
