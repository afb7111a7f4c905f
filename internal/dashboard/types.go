// FlowSense - Wellbeing Trend & Performance Analytics
// Copyright 2026 FlowSense contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsense/engine

package dashboard

import (
	"context"
	"time"

	"github.com/flowsense/engine/internal/analytics"
	"github.com/flowsense/engine/internal/insights"
	"github.com/flowsense/engine/internal/visualization"
)

// DataSource yields dated wellbeing entries for a user. Implementations own
// their retry and timeout policy; the orchestrator only propagates failures.
type DataSource interface {
	// FetchDataPoints returns day-aggregated points covering the last
	// daysBack days. Order is not guaranteed.
	FetchDataPoints(ctx context.Context, userID string, daysBack int, mode analytics.Mode) ([]analytics.DataPoint, error)

	// FetchHistoricalDataPoints returns points for an explicit window,
	// used by the comparative analyzer for the preceding period. The
	// result may contain multiple points per calendar day; callers
	// re-aggregate.
	FetchHistoricalDataPoints(ctx context.Context, userID string, start, end time.Time, mode analytics.Mode) ([]analytics.DataPoint, error)
}

// DataQuality summarizes how trustworthy the underlying series is.
type DataQuality struct {
	// Completeness is actual entries over expected entries. Deliberately
	// not clamped above 1: over-tracking is reported as-is.
	Completeness   float64 `json:"completeness"`
	Reliability    float64 `json:"reliability"` // [0,1]
	HasRecentData  bool    `json:"has_recent_data"`
	OverallScore   float64 `json:"overall_score"` // [0,1]
	GapDays        int     `json:"gap_days"`
	Recommendation string  `json:"recommendation"`
}

// Data is the assembled dashboard: the aggregate root returned to callers
// and held by the cache. It is never mutated after construction.
type Data struct {
	UserID         string                       `json:"user_id"`
	Period         analytics.Period             `json:"period"`
	Mode           analytics.Mode               `json:"mode"`
	GeneratedAt    time.Time                    `json:"generated_at"`
	Metrics        analytics.PerformanceMetrics `json:"metrics"`
	Trends         analytics.TrendAnalysis      `json:"trends"`
	Insights       []insights.Insight           `json:"insights"`
	Visualizations visualization.Charts         `json:"visualizations"`
	DataQuality    DataQuality                  `json:"data_quality"`
}

// MetricDeltas holds current-minus-comparison differences for the headline
// metrics.
type MetricDeltas struct {
	AverageMood      float64 `json:"average_mood"`
	ConsistencyScore float64 `json:"consistency_score"`
	TrendScore       float64 `json:"trend_score"`
	CompletionRate   float64 `json:"completion_rate"`
}

// Comparison is the output of the comparative analyzer: the current
// dashboard, the metrics of the immediately preceding window, and their
// deltas.
type Comparison struct {
	Current           *Data                        `json:"current"`
	ComparisonPeriod  analytics.Period             `json:"comparison_period"`
	ComparisonMetrics analytics.PerformanceMetrics `json:"comparison_metrics"`
	Improvements      MetricDeltas                 `json:"improvements"`
	Insights          []string                     `json:"insights"`
}
