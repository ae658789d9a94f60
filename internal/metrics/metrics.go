// Clubzones - Cannabis Club Eligible Zone Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clubzones

package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "error_type"},
	)

	// Store Metrics
	IngestRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_rows_total",
			Help: "Rows processed during location ingestion",
		},
		[]string{"result"}, // "inserted", "failed", "skipped"
	)

	StoredLocations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "stored_locations",
			Help: "Number of sensitive locations currently held by the store",
		},
	)

	SnapshotLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapshot_loads_total",
			Help: "Snapshot load attempts",
		},
		[]string{"result"}, // "loaded", "failed"
	)

	GeometryRepairs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geometry_repairs_total",
			Help: "Invalid geometries repaired or rejected, by method",
		},
		[]string{"method"}, // "make_valid", "buffer", "reduce_precision", "unrepairable"
	)

	// Zone Calculation Metrics
	ZoneCalculations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zone_calculations_total",
			Help: "Zone calculations by mode and outcome",
		},
		[]string{"mode", "outcome"}, // outcome: "success", "fallback", "cancelled", "error"
	)

	ZoneCalculationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "zone_calculation_duration_seconds",
			Help:    "Zone calculation duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"mode"},
	)

	ZoneLocationsConsidered = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "zone_locations_considered",
			Help:    "Locations matched by the viewport prefilter per calculation",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8), // 1 to 16384
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// WebSocket Session Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active zone sessions",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSMessagesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_received_total",
			Help: "Total number of WebSocket messages received",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Dataset events published on the in-process bus",
		},
		[]string{"topic"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, classifyError(err.Error())).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordIngest adds the row counts of one ingestion.
func RecordIngest(inserted, failed, skipped int64) {
	IngestRows.WithLabelValues("inserted").Add(float64(inserted))
	IngestRows.WithLabelValues("failed").Add(float64(failed))
	IngestRows.WithLabelValues("skipped").Add(float64(skipped))
	StoredLocations.Set(float64(inserted))
}

// RecordZoneCalculation records one calculation outcome.
func RecordZoneCalculation(mode, outcome string, duration time.Duration, considered int) {
	ZoneCalculations.WithLabelValues(mode, outcome).Inc()
	ZoneCalculationDuration.WithLabelValues(mode).Observe(duration.Seconds())
	if outcome == "success" {
		ZoneLocationsConsidered.Observe(float64(considered))
	}
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// classifyError keeps the error_type label cardinality bounded.
func classifyError(msg string) string {
	switch {
	case strings.Contains(msg, "TopologyException"):
		return "topology"
	case strings.Contains(msg, "context deadline exceeded"), strings.Contains(msg, "timed out"):
		return "timeout"
	case strings.Contains(msg, "context canceled"), strings.Contains(msg, "Interrupted"):
		return "cancelled"
	case strings.Contains(msg, "Catalog Error"):
		return "catalog"
	case strings.Contains(msg, "Conversion Error"), strings.Contains(msg, "Invalid Input Error"):
		return "input"
	default:
		return "other"
	}
}

