package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds all application metrics.
type AppMetrics struct {
	// HTTP Layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Ingestion
	UploadsTotal        CounterVec
	RecordsDroppedTotal CounterVec
	DatasetCacheTotal   CounterVec

	// Zone evaluation
	ReportsTotal        CounterVec
	AffectedEmployees   HistogramVec
	ContainmentDuration HistogramVec

	// Exports
	DocumentsTotal         CounterVec
	DocumentRenderDuration HistogramVec
	ArchiveTotal           CounterVec

	// Geocoding
	GeocodeRequestsTotal CounterVec
	GeocodeDuration      HistogramVec

	// Sessions and events
	ActiveSessions       GaugeVec
	EventsPublishedTotal CounterVec

	ErrorsTotal CounterVec
}

// Default Buckets
var (
	DefaultHTTPDurationBuckets   = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultRenderDurationBuckets = []float64{.1, .25, .5, 1, 2, 5, 10, 30, 60}
	DefaultCountBuckets          = []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000, 3000}
	DefaultFastDurationBuckets   = []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5}
)

// Outcome label values shared by the counters below.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// NewAppMetrics registers all metrics and returns AppMetrics struct.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	// HTTP
	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "route", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "route")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method")

	// Ingestion
	m.UploadsTotal = collector.RegisterCounter("uploads_total", "Personnel uploads by outcome", "outcome")
	m.RecordsDroppedTotal = collector.RegisterCounter("records_dropped_total", "Upload rows dropped during validation", "reason")
	m.DatasetCacheTotal = collector.RegisterCounter("dataset_cache_total", "Validated dataset cache lookups", "result")

	// Zone evaluation
	m.ReportsTotal = collector.RegisterCounter("zone_reports_total", "Zone reports generated", "zone_kind")
	m.AffectedEmployees = collector.RegisterHistogram("zone_affected_employees", "Employees inside a drawn zone", DefaultCountBuckets)
	m.ContainmentDuration = collector.RegisterHistogram("zone_containment_duration_seconds", "Point-in-zone evaluation duration", DefaultFastDurationBuckets)

	// Exports
	m.DocumentsTotal = collector.RegisterCounter("documents_total", "Emergency documents rendered", "outcome")
	m.DocumentRenderDuration = collector.RegisterHistogram("document_render_duration_seconds", "Emergency document render duration", DefaultRenderDurationBuckets)
	m.ArchiveTotal = collector.RegisterCounter("exports_archived_total", "Exports written to object storage", "format", "outcome")

	// Geocoding
	m.GeocodeRequestsTotal = collector.RegisterCounter("geocode_requests_total", "Geocoding requests", "operation", "outcome")
	m.GeocodeDuration = collector.RegisterHistogram("geocode_duration_seconds", "Geocoding request duration", DefaultHTTPDurationBuckets, "operation")

	// Sessions and events
	m.ActiveSessions = collector.RegisterGauge("active_sessions", "Live operator sessions")
	m.EventsPublishedTotal = collector.RegisterCounter("events_published_total", "Domain events published", "event_type", "outcome")

	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "code")

	return m
}

// Helpers

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}

func RecordHTTPRequest(metrics *AppMetrics, method, route string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	metrics.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordUpload counts one upload and its per-reason drops.
func RecordUpload(metrics *AppMetrics, drops map[string]int, err error) {
	metrics.UploadsTotal.WithLabelValues(outcome(err)).Inc()
	for reason, n := range drops {
		if n > 0 {
			metrics.RecordsDroppedTotal.WithLabelValues(reason).Add(float64(n))
		}
	}
}

func RecordDatasetCache(metrics *AppMetrics, hit bool) {
	if hit {
		metrics.DatasetCacheTotal.WithLabelValues("hit").Inc()
	} else {
		metrics.DatasetCacheTotal.WithLabelValues("miss").Inc()
	}
}

func RecordReport(metrics *AppMetrics, zoneKind string, affected int, duration time.Duration) {
	metrics.ReportsTotal.WithLabelValues(zoneKind).Inc()
	metrics.AffectedEmployees.WithLabelValues().Observe(float64(affected))
	metrics.ContainmentDuration.WithLabelValues().Observe(duration.Seconds())
}

func RecordDocument(metrics *AppMetrics, duration time.Duration, err error) {
	metrics.DocumentsTotal.WithLabelValues(outcome(err)).Inc()
	if err == nil {
		metrics.DocumentRenderDuration.WithLabelValues().Observe(duration.Seconds())
	}
}

func RecordArchive(metrics *AppMetrics, format string, err error) {
	metrics.ArchiveTotal.WithLabelValues(format, outcome(err)).Inc()
}

func RecordGeocode(metrics *AppMetrics, operation string, duration time.Duration, err error) {
	metrics.GeocodeRequestsTotal.WithLabelValues(operation, outcome(err)).Inc()
	metrics.GeocodeDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func RecordEventPublished(metrics *AppMetrics, eventType string, err error) {
	metrics.EventsPublishedTotal.WithLabelValues(eventType, outcome(err)).Inc()
}

func RecordError(metrics *AppMetrics, component, code string) {
	metrics.ErrorsTotal.WithLabelValues(component, code).Inc()
}

//Personal.AI order the ending
