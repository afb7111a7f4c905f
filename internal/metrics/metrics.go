// FlowSense - Wellbeing Trend & Performance Analytics
// Copyright 2026 FlowSense contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsense/engine

// Package metrics provides Prometheus instrumentation for the FlowSense
// engine: dashboard generation latency, result-cache efficiency, data-source
// health, entry-store query performance, and HTTP traffic. Metrics are
// exposed at /metrics in Prometheus text format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Dashboard metrics
	DashboardBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dashboard_build_duration_seconds",
			Help:    "Time spent assembling a dashboard on cache miss",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"period"},
	)

	DashboardBuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_builds_total",
			Help: "Total dashboards assembled, by period and display mode",
		},
		[]string{"period", "mode"},
	)

	// Result cache metrics
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dashboard_cache_hits_total",
			Help: "Dashboard requests served from a fresh cache entry",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dashboard_cache_misses_total",
			Help: "Dashboard requests that required recomputation",
		},
	)

	CacheEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dashboard_cache_evictions_total",
			Help: "Cache entries removed by the eviction sweep",
		},
	)

	CacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dashboard_cache_entries",
			Help: "Current number of cached dashboards",
		},
	)

	// Data source metrics
	DataSourceFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "datasource_fetch_duration_seconds",
			Help:    "Duration of data-source fetches backing dashboard builds",
			Buckets: prometheus.DefBuckets,
		},
	)

	DataSourceErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "datasource_fetch_errors_total",
			Help: "Failed data-source fetches (after circuit breaker)",
		},
	)

	// Entry store metrics
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
		[]string{"operation"},
	)

	EntriesIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wellbeing_entries_ingested_total",
			Help: "Raw wellbeing entries written to the store",
		},
	)

	// HTTP metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)
)

// RecordDBQuery records a query's duration and outcome.
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordAPIRequest records one completed HTTP request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
