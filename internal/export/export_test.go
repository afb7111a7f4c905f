// FlowSense - Wellbeing Trend & Performance Analytics
// Copyright 2026 FlowSense contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsense/engine

package export

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/flowsense/engine/internal/analytics"
	"github.com/flowsense/engine/internal/dashboard"
	"github.com/flowsense/engine/internal/insights"
	"github.com/flowsense/engine/internal/visualization"
)

func testData() *dashboard.Data {
	day := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	return &dashboard.Data{
		UserID:      "user-1",
		Period:      analytics.PeriodWeek,
		Mode:        analytics.ModeStandard,
		GeneratedAt: time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC),
		Metrics: analytics.PerformanceMetrics{
			AverageMood:      7.25,
			ConsistencyScore: 0.8,
			TrendScore:       0.55,
			CompletionRate:   1,
			TotalEntries:     14,
		},
		Trends: analytics.TrendAnalysis{OverallTrend: analytics.TrendImproving},
		Insights: []insights.Insight{
			{Type: insights.TypePositive, Message: "Mood is on the rise", Importance: 0.8},
		},
		Visualizations: visualization.Charts{
			MoodLine: visualization.LineSeries{
				Points: []visualization.LinePoint{
					{Date: day, Score: 7},
					{Date: day.AddDate(0, 0, 1), Score: 7.5},
				},
				Average: 7.25,
			},
		},
		DataQuality: dashboard.DataQuality{OverallScore: 0.9},
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	e := NewExporter(nil)
	if err := e.Export(&buf, testData(), FormatJSON); err != nil {
		t.Fatalf("Export(json) failed: %v", err)
	}

	var decoded dashboard.Data
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("exported JSON does not decode: %v", err)
	}
	if decoded.UserID != "user-1" {
		t.Errorf("expected user_id user-1, got %q", decoded.UserID)
	}
	if decoded.Metrics.AverageMood != 7.25 {
		t.Errorf("expected average_mood 7.25, got %v", decoded.Metrics.AverageMood)
	}
	if len(decoded.Visualizations.MoodLine.Points) != 2 {
		t.Errorf("expected 2 mood line points, got %d", len(decoded.Visualizations.MoodLine.Points))
	}
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	e := NewExporter(nil)
	if err := e.Export(&buf, testData(), FormatCSV); err != nil {
		t.Fatalf("Export(csv) failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"metric,value",
		"user_id,user-1",
		"average_mood,7.25",
		"trend_direction,improving",
		"date,score",
		"2026-02-02,7",
		"2026-02-03,7.5",
		"type,importance,message",
		"Mood is on the rise",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected CSV to contain %q, output:\n%s", want, out)
		}
	}

	// Three sections separated by blank lines.
	if got := strings.Count(out, "\n\n"); got != 2 {
		t.Errorf("expected 2 section separators, got %d", got)
	}
}

type stubRenderer struct {
	calls int
	err   error
}

func (s *stubRenderer) Render(w io.Writer, data *dashboard.Data) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	_, err := io.WriteString(w, "%PDF-stub "+data.UserID)
	return err
}

func TestExportPDFWithoutRenderer(t *testing.T) {
	var buf bytes.Buffer
	e := NewExporter(nil)
	err := e.Export(&buf, testData(), FormatPDF)
	if !errors.Is(err, ErrNoRenderer) {
		t.Errorf("expected ErrNoRenderer, got %v", err)
	}
}

func TestExportPDFDelegatesToRenderer(t *testing.T) {
	r := &stubRenderer{}
	var buf bytes.Buffer
	e := NewExporter(r)
	if err := e.Export(&buf, testData(), FormatPDF); err != nil {
		t.Fatalf("Export(pdf) failed: %v", err)
	}
	if r.calls != 1 {
		t.Errorf("expected 1 renderer call, got %d", r.calls)
	}
	if !strings.Contains(buf.String(), "user-1") {
		t.Errorf("expected rendered output to mention the user, got %q", buf.String())
	}
}

func TestExportUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	e := NewExporter(nil)
	err := e.Export(&buf, testData(), Format("yaml"))
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestContentType(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatJSON, "application/json"},
		{FormatCSV, "text/csv"},
		{FormatPDF, "application/pdf"},
		{Format("yaml"), ""},
	}
	for _, tt := range tests {
		if got := ContentType(tt.format); got != tt.want {
			t.Errorf("ContentType(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}
}
