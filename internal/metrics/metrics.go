// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchgate_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "searchgate_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "searchgate_http_active_requests",
			Help: "Current number of in-flight HTTP requests",
		},
	)

	// Guard Metrics
	GuardDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchgate_guard_decisions_total",
			Help: "Access guard decisions by request category",
		},
		[]string{"category", "verdict"}, // verdict: allow, deny
	)

	GuardDenials = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchgate_guard_denials_total",
			Help: "Access guard denials by request category and HTTP status",
		},
		[]string{"category", "status"},
	)

	EngineRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "searchgate_engine_request_duration_seconds",
			Help:    "Duration of timed requests forwarded to the engine",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Engine Metrics
	CoresLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "searchgate_cores_loaded",
			Help: "Number of registered search cores",
		},
	)

	CoreInitFailures = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "searchgate_core_init_failures",
			Help: "Number of cores that failed to open at startup",
		},
	)

	BootstrapFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "searchgate_bootstrap_fallbacks_total",
			Help: "Times the container was loaded from the fallback home",
		},
	)

	DocumentsIndexed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchgate_documents_indexed_total",
			Help: "Documents written to a core",
		},
		[]string{"core"},
	)

	DocumentsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchgate_documents_skipped_total",
			Help: "Documents skipped during batch indexing",
		},
		[]string{"core"},
	)

	SearchQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchgate_search_queries_total",
			Help: "Search queries executed against a core",
		},
		[]string{"core", "status"}, // status: ok, error
	)

	// Identity Metrics
	AuthLoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchgate_auth_login_attempts_total",
			Help: "Login attempts by result",
		},
		[]string{"result"}, // success, failure
	)

	SessionsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "searchgate_sessions_expired_total",
			Help: "Expired sessions removed by the cleanup service",
		},
	)
)

// RecordHTTPRequest records an HTTP request metric
func RecordHTTPRequest(method, route string, statusCode int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight HTTP requests
func TrackActiveRequest(inc bool) {
	if inc {
		HTTPActiveRequests.Inc()
	} else {
		HTTPActiveRequests.Dec()
	}
}

// RecordGuardAllow records a forwarded request.
func RecordGuardAllow(category string) {
	GuardDecisions.WithLabelValues(category, "allow").Inc()
}

// RecordGuardDeny records a rejected request and its status.
func RecordGuardDeny(category string, status int) {
	GuardDecisions.WithLabelValues(category, "deny").Inc()
	GuardDenials.WithLabelValues(category, strconv.Itoa(status)).Inc()
}

// RecordSearch records a query against a core.
func RecordSearch(core string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	SearchQueries.WithLabelValues(core, status).Inc()
}

// RecordIndexed records indexed and skipped document counts for a core.
func RecordIndexed(core string, indexed, skipped int) {
	if indexed > 0 {
		DocumentsIndexed.WithLabelValues(core).Add(float64(indexed))
	}
	if skipped > 0 {
		DocumentsSkipped.WithLabelValues(core).Add(float64(skipped))
	}
}

// SetCoreCounts updates the core registry gauges.
func SetCoreCounts(loaded, failed int) {
	CoresLoaded.Set(float64(loaded))
	CoreInitFailures.Set(float64(failed))
}
