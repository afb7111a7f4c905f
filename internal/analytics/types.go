// FlowSense - Wellbeing Trend & Performance Analytics
// Copyright 2026 FlowSense contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsense/engine

package analytics

import (
	"fmt"
	"sort"
	"time"
)

// ScoreMin and ScoreMax bound every wellbeing score. Scores coming from the
// data source are clamped into this range before any computation.
const (
	ScoreMin = 1.0
	ScoreMax = 10.0
)

// DataPoint is one day's aggregated wellbeing score. EntryCount records how
// many raw entries contributed to the day's mean. DataPoints are produced by
// the data source and treated as immutable.
type DataPoint struct {
	Date       time.Time `json:"date"`
	Score      float64   `json:"score"`
	EntryCount int       `json:"entry_count"`
}

// Period is a named day-count window used to normalize expected data volume.
type Period string

// Supported analysis periods.
const (
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
)

// Days returns the day count of the period.
func (p Period) Days() int {
	switch p {
	case PeriodWeek:
		return 7
	case PeriodMonth:
		return 30
	case PeriodQuarter:
		return 90
	case PeriodYear:
		return 365
	default:
		return 30
	}
}

// Valid reports whether p is one of the supported periods.
func (p Period) Valid() bool {
	switch p {
	case PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear:
		return true
	}
	return false
}

// ParsePeriod parses a period name ("week", "month", "quarter", "year").
func ParsePeriod(s string) (Period, error) {
	p := Period(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown period %q", s)
	}
	return p, nil
}

// Mode is a display mode flag. It affects only the wording of generated
// insight messages, never the computed numbers, but it is part of the
// dashboard cache key because the assembled result differs per mode.
type Mode string

// Supported display modes.
const (
	ModeStandard Mode = "standard"
	ModeDetailed Mode = "detailed"
)

// Valid reports whether m is a supported display mode.
func (m Mode) Valid() bool {
	return m == ModeStandard || m == ModeDetailed
}

// PerformanceMetrics holds scalar metrics derived from a score series.
// All *Score and *Rate fields are clamped to their declared ranges at the
// point of computation. The value is immutable and recomputed on every call.
type PerformanceMetrics struct {
	AverageMood      float64   `json:"average_mood"`
	HighestMood      float64   `json:"highest_mood"`
	LowestMood       float64   `json:"lowest_mood"`
	ConsistencyScore float64   `json:"consistency_score"` // [0,1]
	TrendScore       float64   `json:"trend_score"`       // [0,1], 0.5 = flat
	VolatilityScore  float64   `json:"volatility_score"`  // [0,1]
	CompletionRate   float64   `json:"completion_rate"`   // [0,1]
	ImprovementRate  float64   `json:"improvement_rate"`  // [-1,1]
	WellnessScore    float64   `json:"wellness_score"`    // [0,1]
	TotalEntries     int       `json:"total_entries"`
	PeriodDays       int       `json:"period_days"`
	CalculatedAt     time.Time `json:"calculated_at"`
}

// TrendDirection classifies the overall slope of a score series.
type TrendDirection string

// Trend classifications.
const (
	TrendImproving TrendDirection = "improving"
	TrendStable    TrendDirection = "stable"
	TrendDeclining TrendDirection = "declining"
)

// TrendAnalysis is the full trend output for a score series.
type TrendAnalysis struct {
	OverallTrend TrendDirection    `json:"overall_trend"`
	Momentum     float64           `json:"momentum"`
	Volatility   float64           `json:"volatility"`
	Predictions  []TrendPrediction `json:"predictions,omitempty"`
	Patterns     PatternList       `json:"patterns,omitempty"`
	Confidence   float64           `json:"confidence"` // [0,1]
}

// TrendPrediction is a single forward-projected score.
type TrendPrediction struct {
	Date           time.Time `json:"date"`
	PredictedScore float64   `json:"predicted_score"` // [1,10]
	Confidence     float64   `json:"confidence"`      // [0,1]
	Factors        []string  `json:"factors"`
}

// PatternKind discriminates the Pattern variants.
type PatternKind string

// Pattern kinds.
const (
	PatternWeekly PatternKind = "weekly"
	PatternStreak PatternKind = "streak"
)

// Pattern is a recurring structure detected in the score series. It is a
// closed sum: the only implementations are WeeklyPattern and StreakPattern.
type Pattern interface {
	Kind() PatternKind
	PatternConfidence() float64
}

// WeeklyPattern reports a significant spread between the best- and the
// worst-scoring weekday.
type WeeklyPattern struct {
	BestDay    time.Weekday `json:"best_day"`
	WorstDay   time.Weekday `json:"worst_day"`
	Difference float64      `json:"difference"`
	Confidence float64      `json:"confidence"`
}

// Kind implements Pattern.
func (WeeklyPattern) Kind() PatternKind { return PatternWeekly }

// PatternConfidence implements Pattern.
func (p WeeklyPattern) PatternConfidence() float64 { return p.Confidence }

// StreakPolarity is the direction of a streak.
type StreakPolarity string

// Streak polarities.
const (
	StreakPositive StreakPolarity = "positive"
	StreakNegative StreakPolarity = "negative"
)

// StreakPattern reports a run of at least three consecutive days with
// uniformly high (>= 7.5) or low (<= 4.5) scores.
type StreakPattern struct {
	Length     int            `json:"length"`
	Polarity   StreakPolarity `json:"polarity"`
	Confidence float64        `json:"confidence"`
}

// Kind implements Pattern.
func (StreakPattern) Kind() PatternKind { return PatternStreak }

// PatternConfidence implements Pattern.
func (p StreakPattern) PatternConfidence() float64 { return p.Confidence }

// WeeklyFrom returns the first weekly pattern in the analysis, if any.
func (a TrendAnalysis) WeeklyFrom() (WeeklyPattern, bool) {
	for _, p := range a.Patterns {
		if wp, ok := p.(WeeklyPattern); ok {
			return wp, true
		}
	}
	return WeeklyPattern{}, false
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampScore bounds a wellbeing score to [ScoreMin, ScoreMax].
func ClampScore(v float64) float64 {
	return Clamp(v, ScoreMin, ScoreMax)
}

// sortedByDate returns a chronologically sorted copy of the series. Both
// calculators regress on the result of this helper so their slope-derived
// outputs always agree.
func sortedByDate(points []DataPoint) []DataPoint {
	out := make([]DataPoint, len(points))
	copy(out, points)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
