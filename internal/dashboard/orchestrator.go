// FlowSense - Wellbeing Trend & Performance Analytics
// Copyright 2026 FlowSense contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsense/engine

package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/flowsense/engine/internal/analytics"
	"github.com/flowsense/engine/internal/insights"
	"github.com/flowsense/engine/internal/metrics"
	"github.com/flowsense/engine/internal/visualization"
)

// Orchestrator is the engine's entry point. It owns the pure calculators,
// the result cache, and the circuit breaker guarding the data source. Safe
// for concurrent use: the calculators share no mutable state and the cache
// is internally synchronized.
type Orchestrator struct {
	source     DataSource
	calculator *analytics.Calculator
	trends     *analytics.TrendAnalyzer
	insights   *insights.Generator
	charts     *visualization.Adapter
	cache      *ResultCache
	breaker    *gobreaker.CircuitBreaker[[]analytics.DataPoint]
	cfg        Config
	logger     zerolog.Logger
}

// Config holds orchestrator tunables.
type Config struct {
	// EntriesPerDay is the full-completion assumption shared with the
	// metrics calculator and the data quality score.
	EntriesPerDay int

	// Cache timings; zero values use the package defaults.
	CacheFreshness time.Duration
	CacheMaxAge    time.Duration
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		EntriesPerDay:  analytics.DefaultEntriesPerDay,
		CacheFreshness: DefaultFreshness,
		CacheMaxAge:    DefaultMaxAge,
	}
}

// NewOrchestrator wires the engine together: the four calculators, the
// result cache, and a circuit breaker around source. This is the only
// construction path; there are no package-level instances.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewOrchestrator(source DataSource, cfg Config, logger zerolog.Logger) *Orchestrator {
	if cfg.EntriesPerDay < 1 {
		cfg.EntriesPerDay = analytics.DefaultEntriesPerDay
	}

	log := logger.With().Str("component", "dashboard").Logger()

	breaker := gobreaker.NewCircuitBreaker[[]analytics.DataPoint](gobreaker.Settings{
		Name:    "wellbeing-datasource",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && counts.TotalFailures*2 > counts.Requests
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("data source circuit breaker state change")
		},
	})

	return &Orchestrator{
		source:     source,
		calculator: analytics.NewCalculator(analytics.CalculatorConfig{EntriesPerDay: cfg.EntriesPerDay}),
		trends:     analytics.NewTrendAnalyzer(),
		insights:   insights.NewGenerator(),
		charts:     visualization.NewAdapter(),
		cache: NewResultCache(CacheOptions{
			Freshness: cfg.CacheFreshness,
			MaxAge:    cfg.CacheMaxAge,
		}),
		breaker: breaker,
		cfg:     cfg,
		logger:  log,
	}
}

// Cache exposes the result cache for the janitor service and for
// invalidation on entry ingest.
func (o *Orchestrator) Cache() *ResultCache {
	return o.cache
}

// Generate returns the dashboard for (userID, period, mode). With useCache
// set, a fresh cached result is returned without recomputation; otherwise
// the data source is consulted and the full pipeline runs. A fetch failure
// propagates to the caller and nothing is cached.
func (o *Orchestrator) Generate(ctx context.Context, userID string, period analytics.Period, mode analytics.Mode, useCache bool) (*Data, error) {
	key := Key{UserID: userID, Period: period, Mode: mode}

	if useCache {
		if cached, ok := o.cache.Get(key); ok {
			o.logger.Debug().
				Str("user_id", userID).
				Str("period", string(period)).
				Msg("dashboard served from cache")
			return cached, nil
		}
	}

	start := time.Now()
	points, err := o.fetch(ctx, userID, period.Days(), mode)
	if err != nil {
		metrics.DataSourceErrors.Inc()
		return nil, fmt.Errorf("fetch data points: %w", err)
	}

	data := o.assemble(userID, period, mode, points)
	o.cache.Put(key, data)

	metrics.DashboardBuildDuration.WithLabelValues(string(period)).Observe(time.Since(start).Seconds())
	metrics.DashboardBuilds.WithLabelValues(string(period), string(mode)).Inc()
	o.logger.Info().
		Str("user_id", userID).
		Str("period", string(period)).
		Int("data_points", len(points)).
		Dur("elapsed", time.Since(start)).
		Msg("dashboard assembled")

	return data, nil
}

// fetch retrieves points through the circuit breaker.
func (o *Orchestrator) fetch(ctx context.Context, userID string, daysBack int, mode analytics.Mode) ([]analytics.DataPoint, error) {
	start := time.Now()
	points, err := o.breaker.Execute(func() ([]analytics.DataPoint, error) {
		return o.source.FetchDataPoints(ctx, userID, daysBack, mode)
	})
	metrics.DataSourceFetchDuration.Observe(time.Since(start).Seconds())
	return points, err
}

// assemble runs the pure pipeline over a single data snapshot. Metrics and
// trend analysis are independent computations over the same immutable
// slice, so they run concurrently.
func (o *Orchestrator) assemble(userID string, period analytics.Period, mode analytics.Mode, points []analytics.DataPoint) *Data {
	now := time.Now().UTC()

	var (
		wg            sync.WaitGroup
		perfMetrics   analytics.PerformanceMetrics
		trendAnalysis analytics.TrendAnalysis
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		perfMetrics = o.calculator.Calculate(points, period)
	}()
	go func() {
		defer wg.Done()
		trendAnalysis = o.trends.Analyze(points, period)
	}()
	wg.Wait()

	return &Data{
		UserID:         userID,
		Period:         period,
		Mode:           mode,
		GeneratedAt:    now,
		Metrics:        perfMetrics,
		Trends:         trendAnalysis,
		Insights:       o.insights.Generate(perfMetrics, trendAnalysis, mode, now),
		Visualizations: o.charts.Build(points, perfMetrics, trendAnalysis),
		DataQuality:    computeDataQuality(points, period, o.cfg.EntriesPerDay, now),
	}
}
