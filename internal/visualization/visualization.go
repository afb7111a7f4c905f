// FlowSense - Wellbeing Trend & Performance Analytics
// Copyright 2026 FlowSense contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsense/engine

// Package visualization converts the engine's intermediate objects into
// chart-ready structures. It performs only grouping and bucketing; all
// rendering belongs to downstream consumers.
package visualization

import (
	"math"
	"time"

	"github.com/flowsense/engine/internal/analytics"
)

// LinePoint is one point on the mood line chart.
type LinePoint struct {
	Date  time.Time `json:"date"`
	Score float64   `json:"score"`
}

// LineSeries is the mood-over-time chart with an average-line overlay.
type LineSeries struct {
	Points  []LinePoint `json:"points"`
	Average float64     `json:"average"`
}

// RadarAxis is one normalized axis of the performance radar.
type RadarAxis struct {
	Label string  `json:"label"`
	Value float64 `json:"value"` // [0,1]
}

// ComparisonBar is one labeled bar of the metric comparison chart.
type ComparisonBar struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Charts is the complete chart-ready bundle for one dashboard.
type Charts struct {
	MoodLine        LineSeries                  `json:"mood_line"`
	Radar           []RadarAxis                 `json:"radar"`
	WeekdayAverages map[string]float64          `json:"weekday_averages"`
	ScoreHistogram  map[int]int                 `json:"score_histogram"`
	MetricBars      []ComparisonBar             `json:"metric_bars"`
	Predictions     []analytics.TrendPrediction `json:"predictions,omitempty"`
}

// Adapter builds chart structures from the raw series and computed results.
// It is pure and safe for concurrent use.
type Adapter struct{}

// NewAdapter creates an Adapter.
func NewAdapter() *Adapter {
	return &Adapter{}
}

// Build assembles every chart for the dashboard. Empty input produces empty
// but well-formed structures, never nil maps.
func (a *Adapter) Build(points []analytics.DataPoint, m analytics.PerformanceMetrics, trends analytics.TrendAnalysis) Charts {
	return Charts{
		MoodLine:        a.moodLine(points, m),
		Radar:           a.radar(m),
		WeekdayAverages: a.weekdayAverages(points),
		ScoreHistogram:  a.histogram(points),
		MetricBars:      a.metricBars(m),
		Predictions:     trends.Predictions,
	}
}

func (a *Adapter) moodLine(points []analytics.DataPoint, m analytics.PerformanceMetrics) LineSeries {
	line := LineSeries{
		Points:  make([]LinePoint, 0, len(points)),
		Average: m.AverageMood,
	}
	for _, p := range points {
		line.Points = append(line.Points, LinePoint{
			Date:  p.Date,
			Score: analytics.ClampScore(p.Score),
		})
	}
	return line
}

// radar produces the five-axis performance radar. Every axis is normalized
// to [0,1].
func (a *Adapter) radar(m analytics.PerformanceMetrics) []RadarAxis {
	return []RadarAxis{
		{Label: "mood", Value: analytics.Clamp(m.AverageMood/10, 0, 1)},
		{Label: "consistency", Value: m.ConsistencyScore},
		{Label: "trend", Value: m.TrendScore},
		{Label: "completion", Value: m.CompletionRate},
		{Label: "wellness", Value: m.WellnessScore},
	}
}

func (a *Adapter) weekdayAverages(points []analytics.DataPoint) map[string]float64 {
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, p := range points {
		day := p.Date.Weekday().String()
		sums[day] += analytics.ClampScore(p.Score)
		counts[day]++
	}

	out := make(map[string]float64, len(sums))
	for day, sum := range sums {
		out[day] = sum / float64(counts[day])
	}
	return out
}

// histogram buckets scores by their integer floor. Scores are clamped first,
// so buckets range over 1..10.
func (a *Adapter) histogram(points []analytics.DataPoint) map[int]int {
	out := map[int]int{}
	for _, p := range points {
		bucket := int(math.Floor(analytics.ClampScore(p.Score)))
		out[bucket]++
	}
	return out
}

func (a *Adapter) metricBars(m analytics.PerformanceMetrics) []ComparisonBar {
	return []ComparisonBar{
		{Label: "mood", Value: m.AverageMood},
		{Label: "consistency", Value: m.ConsistencyScore * 10},
		{Label: "wellness", Value: m.WellnessScore * 10},
	}
}
