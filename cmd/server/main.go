// FlowSense - Wellbeing Trend & Performance Analytics
// Copyright 2026 FlowSense contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsense/engine

// Command server runs the FlowSense analytics engine: the DuckDB entry
// store, the dashboard orchestrator with its result cache, and the HTTP
// API, all under one supervision tree.
//
// Startup order:
//  1. Load configuration (defaults, optional YAML file, FLOWSENSE_* env)
//  2. Initialize structured logging
//  3. Open the entry store and ensure the schema
//  4. Wire the orchestrator, exporter, and router
//  5. Start the supervisor tree (HTTP server + cache janitor)
//
// Shutdown is signal-driven: SIGINT/SIGTERM cancels the root context and
// the supervisor drains every service before the process exits.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flowsense/engine/internal/api"
	"github.com/flowsense/engine/internal/config"
	"github.com/flowsense/engine/internal/dashboard"
	"github.com/flowsense/engine/internal/export"
	"github.com/flowsense/engine/internal/logging"
	"github.com/flowsense/engine/internal/store"
	"github.com/flowsense/engine/internal/supervisor"
	"github.com/flowsense/engine/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("addr", cfg.Server.Addr()).
		Dur("cache_freshness", cfg.Cache.Freshness).
		Dur("cache_max_age", cfg.Cache.MaxAge).
		Msg("Starting FlowSense engine")

	entryStore, err := store.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open entry store")
	}
	defer func() {
		if err := entryStore.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close entry store")
		}
	}()

	orch := dashboard.NewOrchestrator(entryStore, dashboard.Config{
		EntriesPerDay:  cfg.Analytics.EntriesPerDay,
		CacheFreshness: cfg.Cache.Freshness,
		CacheMaxAge:    cfg.Cache.MaxAge,
	}, logging.Logger())

	router := api.NewRouter(orch, entryStore, export.NewExporter(nil), api.Config{
		CORSOrigins:     cfg.Server.CORSOrigins,
		RateLimitReqs:   cfg.Server.RateLimitReqs,
		RateLimitWindow: cfg.Server.RateLimitWindow,
	}, logging.Logger())

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddAPIService(services.NewHTTPService(server, cfg.Server.ShutdownTimeout))
	tree.AddMaintenanceService(services.NewJanitorService(orch.Cache(), cfg.Cache.SweepInterval, logging.Logger()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Engine stopped gracefully")
}
