// FlowSense - Wellbeing Trend & Performance Analytics
// Copyright 2026 FlowSense contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsense/engine

package analytics

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Slope thresholds for trend classification. Slopes within the band are
// considered stable.
const (
	slopeImproving = 0.05
	slopeDeclining = -0.05
)

// Streak score bands. Scores between the two are the neutral band and reset
// any running streak.
const (
	streakHighScore = 7.5
	streakLowScore  = 4.5
	streakMinLength = 3
)

// PredictionHorizon is the number of forward days projected when the series
// qualifies (at least 7 observed points).
const PredictionHorizon = 7

// minTrendPoints is the minimum series length for slope classification;
// shorter series are reported stable.
const minTrendPoints = 4

// minMomentumPoints is the minimum series length for momentum and
// predictions.
const minMomentumPoints = 7

// weeklyPatternMinSpread is the required best-minus-worst weekday mean
// difference before a weekly pattern is emitted.
const weeklyPatternMinSpread = 1.0

// TrendAnalyzer derives TrendAnalysis from a score series. It is pure and
// safe for concurrent use.
type TrendAnalyzer struct{}

// NewTrendAnalyzer creates a TrendAnalyzer.
func NewTrendAnalyzer() *TrendAnalyzer {
	return &TrendAnalyzer{}
}

// Analyze computes the full trend analysis for the given series. An empty
// series yields the canonical empty analysis: stable, all zeros, no
// predictions or patterns, zero confidence.
func (a *TrendAnalyzer) Analyze(points []DataPoint, period Period) TrendAnalysis {
	if len(points) == 0 {
		return TrendAnalysis{OverallTrend: TrendStable}
	}

	sorted := sortedByDate(points)
	scores := make([]float64, len(sorted))
	for i, p := range sorted {
		scores[i] = ClampScore(p.Score)
	}

	direction := classifyTrend(scores)
	momentum := momentum(scores)
	confidence := seriesConfidence(len(scores))

	analysis := TrendAnalysis{
		OverallTrend: direction,
		Momentum:     momentum,
		Volatility:   popStdDev(scores),
		Confidence:   confidence,
	}

	if len(scores) >= minMomentumPoints {
		analysis.Predictions = predict(sorted, scores, direction, momentum, confidence)
	}

	if wp, ok := weeklyPattern(sorted); ok {
		analysis.Patterns = append(analysis.Patterns, wp)
	}
	analysis.Patterns = append(analysis.Patterns, streakPatterns(sorted)...)

	return analysis
}

// classifyTrend classifies the OLS slope of the chronologically sorted
// scores. Series shorter than minTrendPoints are reported stable.
func classifyTrend(scores []float64) TrendDirection {
	if len(scores) < minTrendPoints {
		return TrendStable
	}
	slope := olsSlope(scores)
	switch {
	case slope > slopeImproving:
		return TrendImproving
	case slope < slopeDeclining:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// momentum is the mean of the most recent 7 scores minus the mean of the up
// to 7 scores before them. Series shorter than 7 points, or series with no
// points before the recent window, report 0.
func momentum(scores []float64) float64 {
	n := len(scores)
	if n < minMomentumPoints {
		return 0
	}
	recent := scores[n-7:]
	prevStart := n - 14
	if prevStart < 0 {
		prevStart = 0
	}
	previous := scores[prevStart : n-7]
	if len(previous) == 0 {
		return 0
	}
	return stat.Mean(recent, nil) - stat.Mean(previous, nil)
}

// seriesConfidence tiers overall confidence by series length.
func seriesConfidence(n int) float64 {
	switch {
	case n < 7:
		return 0.3
	case n < 30:
		return 0.7
	default:
		return 0.9
	}
}

// predict projects PredictionHorizon days forward from the last observed
// point. Predicted scores extrapolate momentum with a 0.1 damping factor per
// day; per-day confidence decays geometrically and is floored at 0.1.
func predict(sorted []DataPoint, scores []float64, direction TrendDirection, mom, confidence float64) []TrendPrediction {
	last := sorted[len(sorted)-1]
	lastScore := scores[len(scores)-1]

	preds := make([]TrendPrediction, 0, PredictionHorizon)
	decay := confidence
	for day := 1; day <= PredictionHorizon; day++ {
		decay *= 0.9
		preds = append(preds, TrendPrediction{
			Date:           last.Date.AddDate(0, 0, day),
			PredictedScore: ClampScore(lastScore + mom*float64(day)*0.1),
			Confidence:     Clamp(decay, 0.1, 0.9),
			Factors: []string{
				fmt.Sprintf("overall trend %s", direction),
				fmt.Sprintf("momentum %+.2f", mom),
			},
		})
	}
	return preds
}

// weeklyPattern groups scores by weekday and reports the best and worst
// weekdays when all seven weekdays are represented and the spread of their
// means exceeds weeklyPatternMinSpread.
func weeklyPattern(sorted []DataPoint) (WeeklyPattern, bool) {
	sums := [7]float64{}
	counts := [7]int{}
	for _, p := range sorted {
		wd := p.Date.Weekday()
		sums[wd] += ClampScore(p.Score)
		counts[wd]++
	}
	for _, c := range counts {
		if c == 0 {
			return WeeklyPattern{}, false
		}
	}

	best, worst := time.Sunday, time.Sunday
	bestMean, worstMean := math.Inf(-1), math.Inf(1)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		mean := sums[wd] / float64(counts[wd])
		if mean > bestMean {
			bestMean, best = mean, wd
		}
		if mean < worstMean {
			worstMean, worst = mean, wd
		}
	}

	diff := bestMean - worstMean
	if diff <= weeklyPatternMinSpread {
		return WeeklyPattern{}, false
	}
	return WeeklyPattern{
		BestDay:    best,
		WorstDay:   worst,
		Difference: diff,
		Confidence: 0.8,
	}, true
}

// streakPatterns walks the chronologically sorted series and emits a streak
// pattern for every run of at least streakMinLength consecutive days with
// uniformly high or low scores. A neutral-band score, a polarity flip, or a
// calendar gap ends the current run. Multiple streaks may be emitted.
func streakPatterns(sorted []DataPoint) []Pattern {
	var patterns []Pattern
	var runLen int
	var runPolarity StreakPolarity
	var prevDate time.Time

	flush := func() {
		if runLen >= streakMinLength {
			patterns = append(patterns, StreakPattern{
				Length:     runLen,
				Polarity:   runPolarity,
				Confidence: 0.9,
			})
		}
		runLen = 0
	}

	for _, p := range sorted {
		score := ClampScore(p.Score)
		var polarity StreakPolarity
		inBand := false
		switch {
		case score >= streakHighScore:
			polarity, inBand = StreakPositive, true
		case score <= streakLowScore:
			polarity, inBand = StreakNegative, true
		}

		consecutive := runLen > 0 && isNextDay(prevDate, p.Date)
		if !inBand || polarity != runPolarity || !consecutive {
			flush()
		}
		if inBand {
			if runLen == 0 {
				runPolarity = polarity
			}
			runLen++
		}
		prevDate = p.Date
	}
	flush()

	return patterns
}

// isNextDay reports whether b falls on the calendar day immediately after a.
func isNextDay(a, b time.Time) bool {
	next := a.AddDate(0, 0, 1)
	return next.Year() == b.Year() && next.YearDay() == b.YearDay()
}
