// FlowSense - Wellbeing Trend & Performance Analytics
// Copyright 2026 FlowSense contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsense/engine

package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/flowsense/engine/internal/analytics"
)

// Delta thresholds for comparison insights. They mirror the thresholds the
// insight generator uses for absolute values.
const (
	moodDeltaThreshold        = 0.5
	consistencyDeltaThreshold = 0.1
	completionDeltaThreshold  = 0.1
)

// Compare builds the current dashboard and measures it against the
// immediately preceding window of comparisonPeriod length. The preceding
// window's raw entries are re-aggregated by calendar day before metrics run.
func (o *Orchestrator) Compare(ctx context.Context, userID string, period, comparisonPeriod analytics.Period, mode analytics.Mode) (*Comparison, error) {
	current, err := o.Generate(ctx, userID, period, mode, true)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	currentDays := period.Days()
	end := now.AddDate(0, 0, -currentDays)
	start := end.AddDate(0, 0, -comparisonPeriod.Days())

	raw, err := o.source.FetchHistoricalDataPoints(ctx, userID, start, end, mode)
	if err != nil {
		return nil, fmt.Errorf("fetch comparison window: %w", err)
	}

	comparisonMetrics := o.calculator.Calculate(aggregateByDay(raw), comparisonPeriod)

	deltas := MetricDeltas{
		AverageMood:      current.Metrics.AverageMood - comparisonMetrics.AverageMood,
		ConsistencyScore: current.Metrics.ConsistencyScore - comparisonMetrics.ConsistencyScore,
		TrendScore:       current.Metrics.TrendScore - comparisonMetrics.TrendScore,
		CompletionRate:   current.Metrics.CompletionRate - comparisonMetrics.CompletionRate,
	}

	return &Comparison{
		Current:           current,
		ComparisonPeriod:  comparisonPeriod,
		ComparisonMetrics: comparisonMetrics,
		Improvements:      deltas,
		Insights:          comparisonInsights(deltas),
	}, nil
}

// aggregateByDay collapses raw entries into one DataPoint per calendar day:
// the day's mean score and the count of entries that produced it. Input that
// is already day-aggregated passes through unchanged (each day has one
// point).
func aggregateByDay(points []analytics.DataPoint) []analytics.DataPoint {
	type bucket struct {
		date  time.Time
		sum   float64
		n     int
		count int
	}
	buckets := map[string]*bucket{}
	for _, p := range points {
		day := p.Date.Format("2006-01-02")
		b, ok := buckets[day]
		if !ok {
			b = &bucket{date: truncateToDay(p.Date)}
			buckets[day] = b
		}
		b.sum += analytics.ClampScore(p.Score)
		b.n++
		count := p.EntryCount
		if count <= 0 {
			count = 1
		}
		b.count += count
	}

	out := make([]analytics.DataPoint, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, analytics.DataPoint{
			Date:       b.date,
			Score:      b.sum / float64(b.n),
			EntryCount: b.count,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// comparisonInsights converts metric deltas into qualitative statements.
// Sub-threshold movement produces nothing; an empty list is valid.
func comparisonInsights(d MetricDeltas) []string {
	var out []string
	if d.AverageMood > moodDeltaThreshold {
		out = append(out, fmt.Sprintf("Your average mood improved by %.1f points over the previous period.", d.AverageMood))
	}
	if d.AverageMood < -moodDeltaThreshold {
		out = append(out, fmt.Sprintf("Your average mood dropped by %.1f points from the previous period.", -d.AverageMood))
	}
	if d.ConsistencyScore > consistencyDeltaThreshold {
		out = append(out, "Your mood has become noticeably more stable than last period.")
	}
	if d.CompletionRate > completionDeltaThreshold {
		out = append(out, "You are tracking more consistently than last period.")
	}
	return out
}
