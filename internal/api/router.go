// FlowSense - Wellbeing Trend & Performance Analytics
// Copyright 2026 FlowSense contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsense/engine

// Package api exposes the analytics engine over HTTP. All data endpoints
// sit under /api/v1 behind rate limiting and Prometheus instrumentation;
// health probes and the metrics scrape endpoint stay outside that group.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/flowsense/engine/internal/dashboard"
	"github.com/flowsense/engine/internal/export"
	"github.com/flowsense/engine/internal/store"
)

// EntryStore is the slice of the entry store the API needs.
type EntryStore interface {
	RecordEntry(ctx context.Context, entry store.Entry) (store.Entry, error)
	Ping(ctx context.Context) error
}

// Config holds the router's middleware knobs.
type Config struct {
	CORSOrigins     []string
	RateLimitReqs   int
	RateLimitWindow time.Duration
}

// Router builds the HTTP handler tree for the engine.
type Router struct {
	orch     *dashboard.Orchestrator
	entries  EntryStore
	exporter *export.Exporter
	cfg      Config
	logger   zerolog.Logger
}

// NewRouter creates a Router. exporter may carry a nil PDF renderer.
func NewRouter(orch *dashboard.Orchestrator, entries EntryStore, exporter *export.Exporter, cfg Config, logger zerolog.Logger) *Router {
	return &Router{
		orch:     orch,
		entries:  entries,
		exporter: exporter,
		cfg:      cfg,
		logger:   logger.With().Str("component", "api").Logger(),
	}
}

// Handler assembles the chi route tree.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: rt.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/live", rt.HealthLive)
		r.Get("/ready", rt.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		if rt.cfg.RateLimitReqs > 0 {
			r.Use(httprate.Limit(
				rt.cfg.RateLimitReqs,
				rt.cfg.RateLimitWindow,
				httprate.WithKeyFuncs(httprate.KeyByIP),
			))
		}
		r.Use(PrometheusMetrics)

		r.Get("/dashboard", rt.Dashboard)
		r.Get("/dashboard/compare", rt.Compare)
		r.Get("/dashboard/export", rt.Export)
		r.Get("/cache/stats", rt.CacheStats)
		r.Post("/entries", rt.CreateEntry)
	})

	return r
}
