// FlowSense - Wellbeing Trend & Performance Analytics
// Copyright 2026 FlowSense contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsense/engine

package analytics

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// DefaultEntriesPerDay is the product assumption for "full" completion:
// two logged entries per day count as 100% completion. It is configurable
// because it is a product decision, not a derived constant.
const DefaultEntriesPerDay = 2

// minImprovementPoints is the minimum series length for the improvement
// rate (the half-split comparison is meaningless on shorter series).
const minImprovementPoints = 7

// CalculatorConfig holds tunables for metric computation.
type CalculatorConfig struct {
	// EntriesPerDay is the number of entries per day considered full
	// completion. Must be >= 1.
	EntriesPerDay int
}

// DefaultCalculatorConfig returns the production defaults.
func DefaultCalculatorConfig() CalculatorConfig {
	return CalculatorConfig{EntriesPerDay: DefaultEntriesPerDay}
}

// Calculator derives PerformanceMetrics from a score series. It is pure and
// safe for concurrent use.
type Calculator struct {
	cfg CalculatorConfig
}

// NewCalculator creates a Calculator. Zero or negative EntriesPerDay falls
// back to the default.
func NewCalculator(cfg CalculatorConfig) *Calculator {
	if cfg.EntriesPerDay < 1 {
		cfg.EntriesPerDay = DefaultEntriesPerDay
	}
	return &Calculator{cfg: cfg}
}

// Calculate computes all performance metrics for the given series over the
// given period. An empty series yields the canonical empty metrics value:
// zeros everywhere except a neutral TrendScore of 0.5.
func (c *Calculator) Calculate(points []DataPoint, period Period) PerformanceMetrics {
	now := time.Now().UTC()
	periodDays := period.Days()

	if len(points) == 0 {
		return PerformanceMetrics{
			TrendScore:   0.5,
			PeriodDays:   periodDays,
			CalculatedAt: now,
		}
	}

	sorted := sortedByDate(points)
	scores := make([]float64, len(sorted))
	totalEntries := 0
	for i, p := range sorted {
		scores[i] = ClampScore(p.Score)
		totalEntries += p.EntryCount
	}

	avg := stat.Mean(scores, nil)
	highest, lowest := scores[0], scores[0]
	for _, s := range scores[1:] {
		highest = math.Max(highest, s)
		lowest = math.Min(lowest, s)
	}

	consistency := Clamp(1-popStdDev(scores)/10, 0, 1)
	trendScore := Clamp(0.5+olsSlope(scores)*0.1, 0, 1)
	volatility := Clamp(meanAbsChange(scores)/10, 0, 1)

	expected := float64(periodDays * c.cfg.EntriesPerDay)
	completion := Clamp(float64(totalEntries)/expected, 0, 1)

	wellness := Clamp(0.4*(avg/10)+0.3*consistency+0.3*trendScore, 0, 1)

	return PerformanceMetrics{
		AverageMood:      avg,
		HighestMood:      highest,
		LowestMood:       lowest,
		ConsistencyScore: consistency,
		TrendScore:       trendScore,
		VolatilityScore:  volatility,
		CompletionRate:   completion,
		ImprovementRate:  improvementRate(scores),
		WellnessScore:    wellness,
		TotalEntries:     totalEntries,
		PeriodDays:       periodDays,
		CalculatedAt:     now,
	}
}

// olsSlope returns the ordinary-least-squares slope of scores regressed on
// chronological index 0..n-1. A flat or single-point series has slope 0.
func olsSlope(scores []float64) float64 {
	if len(scores) < 2 {
		return 0
	}
	idx := make([]float64, len(scores))
	for i := range idx {
		idx[i] = float64(i)
	}
	_, slope := stat.LinearRegression(idx, scores, nil, false)
	if math.IsNaN(slope) {
		return 0
	}
	return slope
}

// popStdDev returns the population standard deviation.
func popStdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.PopStdDev(xs, nil)
}

// meanAbsChange returns the mean absolute day-over-day change of the
// chronologically ordered scores.
func meanAbsChange(scores []float64) float64 {
	if len(scores) < 2 {
		return 0
	}
	sum := 0.0
	for i := 1; i < len(scores); i++ {
		sum += math.Abs(scores[i] - scores[i-1])
	}
	return sum / float64(len(scores)-1)
}

// improvementRate compares the later half of the series against the earlier
// half. Series shorter than minImprovementPoints report 0.
func improvementRate(scores []float64) float64 {
	if len(scores) < minImprovementPoints {
		return 0
	}
	mid := len(scores) / 2
	earlier := stat.Mean(scores[:mid], nil)
	later := stat.Mean(scores[mid:], nil)
	return Clamp((later-earlier)/10, -1, 1)
}
