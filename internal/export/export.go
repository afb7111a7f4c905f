// FlowSense - Wellbeing Trend & Performance Analytics
// Copyright 2026 FlowSense contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsense/engine

// Package export serializes dashboard results for download. JSON and CSV
// are built in; PDF rendering is delegated to an injected Renderer so the
// engine carries no document toolkit of its own.
package export

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"encoding/csv"

	json "github.com/goccy/go-json"

	"github.com/flowsense/engine/internal/dashboard"
)

// Format selects the export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
)

// ErrNoRenderer is returned for PDF exports when no Renderer was injected.
var ErrNoRenderer = errors.New("export: no PDF renderer configured")

// ErrUnknownFormat is returned for formats outside the supported set.
var ErrUnknownFormat = errors.New("export: unknown format")

// Renderer turns a dashboard into a rendered document stream.
type Renderer interface {
	Render(w io.Writer, data *dashboard.Data) error
}

// Exporter writes dashboard data in a chosen format.
type Exporter struct {
	renderer Renderer // nil means PDF is unavailable
}

// NewExporter creates an Exporter. renderer may be nil.
func NewExporter(renderer Renderer) *Exporter {
	return &Exporter{renderer: renderer}
}

// ContentType returns the MIME type for a format, or "" if unknown.
func ContentType(f Format) string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv"
	case FormatPDF:
		return "application/pdf"
	default:
		return ""
	}
}

// Export writes data to w in the requested format.
func (e *Exporter) Export(w io.Writer, data *dashboard.Data, format Format) error {
	switch format {
	case FormatJSON:
		return e.exportJSON(w, data)
	case FormatCSV:
		return e.exportCSV(w, data)
	case FormatPDF:
		if e.renderer == nil {
			return ErrNoRenderer
		}
		return e.renderer.Render(w, data)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func (e *Exporter) exportJSON(w io.Writer, data *dashboard.Data) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to encode dashboard JSON: %w", err)
	}
	return nil
}

// exportCSV emits three sections separated by blank lines: a metric
// summary, the daily mood series, and the generated insights.
func (e *Exporter) exportCSV(w io.Writer, data *dashboard.Data) error {
	cw := csv.NewWriter(w)

	summary := [][]string{
		{"metric", "value"},
		{"user_id", data.UserID},
		{"period", string(data.Period)},
		{"mode", string(data.Mode)},
		{"generated_at", data.GeneratedAt.Format("2006-01-02T15:04:05Z07:00")},
		{"average_mood", formatFloat(data.Metrics.AverageMood)},
		{"consistency_score", formatFloat(data.Metrics.ConsistencyScore)},
		{"trend_score", formatFloat(data.Metrics.TrendScore)},
		{"completion_rate", formatFloat(data.Metrics.CompletionRate)},
		{"improvement_rate", formatFloat(data.Metrics.ImprovementRate)},
		{"total_entries", strconv.Itoa(data.Metrics.TotalEntries)},
		{"trend_direction", string(data.Trends.OverallTrend)},
		{"data_quality", formatFloat(data.DataQuality.OverallScore)},
	}
	if err := cw.WriteAll(summary); err != nil {
		return fmt.Errorf("failed to write CSV summary: %w", err)
	}

	cw.Flush()
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("failed to write CSV separator: %w", err)
	}

	series := [][]string{{"date", "score"}}
	for _, p := range data.Visualizations.MoodLine.Points {
		series = append(series, []string{
			p.Date.Format("2006-01-02"),
			formatFloat(p.Score),
		})
	}
	if err := cw.WriteAll(series); err != nil {
		return fmt.Errorf("failed to write CSV series: %w", err)
	}

	cw.Flush()
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("failed to write CSV separator: %w", err)
	}

	insightRows := [][]string{{"type", "importance", "message"}}
	for _, ins := range data.Insights {
		insightRows = append(insightRows, []string{
			string(ins.Type),
			formatFloat(ins.Importance),
			ins.Message,
		})
	}
	if err := cw.WriteAll(insightRows); err != nil {
		return fmt.Errorf("failed to write CSV insights: %w", err)
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
