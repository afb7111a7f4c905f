// FlowSense - Wellbeing Trend & Performance Analytics
// Copyright 2026 FlowSense contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsense/engine

package analytics

import (
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
)

func TestPatternMarshalEmitsKind(t *testing.T) {
	wp := WeeklyPattern{BestDay: time.Monday, WorstDay: time.Friday, Difference: 2.5, Confidence: 0.8}
	data, err := json.Marshal(wp)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"kind":"weekly"`) {
		t.Errorf("expected kind discriminator in %s", data)
	}

	sp := StreakPattern{Length: 4, Polarity: StreakPositive, Confidence: 0.9}
	data, err = json.Marshal(sp)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"kind":"streak"`) {
		t.Errorf("expected kind discriminator in %s", data)
	}
}

func TestTrendAnalysisRoundTrip(t *testing.T) {
	in := TrendAnalysis{
		OverallTrend: TrendImproving,
		Momentum:     0.4,
		Confidence:   0.7,
		Patterns: PatternList{
			WeeklyPattern{BestDay: time.Monday, WorstDay: time.Friday, Difference: 3, Confidence: 0.8},
			StreakPattern{Length: 5, Polarity: StreakNegative, Confidence: 0.9},
		},
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var out TrendAnalysis
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if len(out.Patterns) != 2 {
		t.Fatalf("expected 2 patterns, got %d", len(out.Patterns))
	}
	wp, ok := out.Patterns[0].(WeeklyPattern)
	if !ok {
		t.Fatalf("expected WeeklyPattern, got %T", out.Patterns[0])
	}
	if wp.BestDay != time.Monday || wp.Difference != 3 {
		t.Errorf("weekly pattern lost fields: %+v", wp)
	}
	sp, ok := out.Patterns[1].(StreakPattern)
	if !ok {
		t.Fatalf("expected StreakPattern, got %T", out.Patterns[1])
	}
	if sp.Length != 5 || sp.Polarity != StreakNegative {
		t.Errorf("streak pattern lost fields: %+v", sp)
	}
}

func TestPatternListRejectsUnknownKind(t *testing.T) {
	var l PatternList
	err := json.Unmarshal([]byte(`[{"kind":"lunar","confidence":0.5}]`), &l)
	if err == nil {
		t.Error("expected error for unknown pattern kind, got nil")
	}
}
