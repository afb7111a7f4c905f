// FlowSense - Wellbeing Trend & Performance Analytics
// Copyright 2026 FlowSense contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsense/engine

// Package insights turns computed metrics and trend analysis into ranked,
// human-readable insight records. Each rule is evaluated independently; the
// display mode changes only the wording, never which rules fire.
package insights

import (
	"fmt"
	"sort"
	"time"

	"github.com/flowsense/engine/internal/analytics"
)

// MaxInsights caps the number of insights returned per dashboard.
const MaxInsights = 5

// Type categorizes an insight for presentation.
type Type string

// Insight types.
const (
	TypePositive       Type = "positive"
	TypeNeutral        Type = "neutral"
	TypeAttention      Type = "attention"
	TypeRecommendation Type = "recommendation"
)

// Insight is one ranked, display-ready observation about the user's data.
type Insight struct {
	Type        Type      `json:"type"`
	Message     string    `json:"message"`
	Importance  float64   `json:"importance"` // [0,1]
	GeneratedAt time.Time `json:"generated_at"`
}

// Generator produces insights from metrics and trends. It is pure and safe
// for concurrent use.
type Generator struct{}

// NewGenerator creates a Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate evaluates every rule against the inputs, then returns at most
// MaxInsights insights sorted by importance, highest first. Missing data is
// not an error; an empty result is valid.
func (g *Generator) Generate(m analytics.PerformanceMetrics, trends analytics.TrendAnalysis, mode analytics.Mode, now time.Time) []Insight {
	var out []Insight

	add := func(t Type, importance float64, msg string) {
		out = append(out, Insight{
			Type:        t,
			Message:     msg,
			Importance:  importance,
			GeneratedAt: now,
		})
	}

	detailed := mode == analytics.ModeDetailed

	if m.AverageMood >= 8.0 {
		msg := "Your average mood is excellent."
		if detailed {
			msg = fmt.Sprintf("Your average mood of %.1f is excellent: whatever you are doing is working.", m.AverageMood)
		}
		add(TypePositive, 0.8, msg)
	}
	if m.AverageMood > 0 && m.AverageMood <= 4.0 {
		msg := "Your average mood has been low."
		if detailed {
			msg = fmt.Sprintf("Your average mood of %.1f has been low: consider reaching out for support.", m.AverageMood)
		}
		add(TypeAttention, 0.9, msg)
	}

	switch trends.OverallTrend {
	case analytics.TrendImproving:
		msg := "Your wellbeing is trending upward."
		if detailed {
			msg = "Your wellbeing is trending upward over this period: keep the momentum going."
		}
		add(TypePositive, 0.7, msg)
	case analytics.TrendDeclining:
		msg := "Your wellbeing has been trending downward."
		if detailed {
			msg = "Your wellbeing has been trending downward over this period: it may help to review what changed."
		}
		add(TypeAttention, 0.8, msg)
	case analytics.TrendStable:
		// Stability on its own is not worth surfacing.
	}

	if m.ConsistencyScore >= 0.8 {
		add(TypePositive, 0.6, "Your mood has been very steady.")
	}
	if m.TotalEntries > 0 && m.ConsistencyScore <= 0.4 {
		msg := "Your mood swings a lot day to day."
		if detailed {
			msg = "Your mood swings a lot day to day: a regular routine can help smooth the highs and lows."
		}
		add(TypeRecommendation, 0.7, msg)
	}

	if m.CompletionRate >= 0.9 {
		add(TypePositive, 0.5, "Great tracking habit: you log entries almost every day.")
	}
	if m.TotalEntries > 0 && m.CompletionRate <= 0.3 {
		msg := "You have been tracking infrequently."
		if detailed {
			msg = "You have been tracking infrequently: more entries make your trends and predictions more reliable."
		}
		add(TypeRecommendation, 0.6, msg)
	}

	if wp, ok := trends.WeeklyFrom(); ok {
		msg := fmt.Sprintf("%ss tend to be your best day; %ss your hardest.", wp.BestDay, wp.WorstDay)
		if detailed {
			msg = fmt.Sprintf("%ss tend to be your best day and %ss your hardest, with a %.1f point spread.",
				wp.BestDay, wp.WorstDay, wp.Difference)
		}
		add(TypeNeutral, 0.5, msg)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Importance > out[j].Importance
	})
	if len(out) > MaxInsights {
		out = out[:MaxInsights]
	}
	return out
}
