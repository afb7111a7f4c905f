// FlowSense - Wellbeing Trend & Performance Analytics
// Copyright 2026 FlowSense contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsense/engine

package store

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/flowsense/engine/internal/analytics"
	"github.com/flowsense/engine/internal/config"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(&config.DatabaseConfig{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return s
}

func mustRecord(t *testing.T, s *Store, userID string, at time.Time, score float64) {
	t.Helper()
	if _, err := s.RecordEntry(context.Background(), Entry{
		UserID:     userID,
		RecordedAt: at,
		Score:      score,
	}); err != nil {
		t.Fatalf("failed to record entry: %v", err)
	}
}

func TestRecordEntryAssignsIDAndTimestamp(t *testing.T) {
	s := newTestStore(t)

	got, err := s.RecordEntry(context.Background(), Entry{UserID: "u1", Score: 7})
	if err != nil {
		t.Fatalf("RecordEntry failed: %v", err)
	}
	if got.ID == "" {
		t.Error("expected generated ID, got empty string")
	}
	if got.RecordedAt.IsZero() {
		t.Error("expected assigned timestamp, got zero time")
	}
}

func TestRecordEntryValidation(t *testing.T) {
	s := newTestStore(t)

	tests := []struct {
		name  string
		entry Entry
	}{
		{"missing user", Entry{Score: 5}},
		{"score below range", Entry{UserID: "u1", Score: 0.5}},
		{"score above range", Entry{UserID: "u1", Score: 10.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.RecordEntry(context.Background(), tt.entry); err == nil {
				t.Errorf("expected validation error, got nil")
			}
		})
	}
}

func TestFetchDataPointsAggregatesByDay(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	yesterday := time.Now().UTC().AddDate(0, 0, -1).Truncate(24 * time.Hour)
	mustRecord(t, s, "u1", yesterday.Add(9*time.Hour), 6)
	mustRecord(t, s, "u1", yesterday.Add(21*time.Hour), 8)
	// Another user's entries must not leak in.
	mustRecord(t, s, "u2", yesterday.Add(12*time.Hour), 2)

	points, err := s.FetchDataPoints(ctx, "u1", 7, analytics.ModeStandard)
	if err != nil {
		t.Fatalf("FetchDataPoints failed: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("expected 1 aggregated day, got %d", len(points))
	}
	if math.Abs(points[0].Score-7) > 1e-9 {
		t.Errorf("expected day average 7, got %v", points[0].Score)
	}
	if points[0].EntryCount != 2 {
		t.Errorf("expected entry count 2, got %d", points[0].EntryCount)
	}
}

func TestFetchDataPointsWindow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	mustRecord(t, s, "u1", now.AddDate(0, 0, -2), 5)
	mustRecord(t, s, "u1", now.AddDate(0, 0, -30), 9)

	points, err := s.FetchDataPoints(ctx, "u1", 7, analytics.ModeStandard)
	if err != nil {
		t.Fatalf("FetchDataPoints failed: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("expected only the in-window day, got %d points", len(points))
	}
	if points[0].Score != 5 {
		t.Errorf("expected in-window score 5, got %v", points[0].Score)
	}
}

func TestFetchDataPointsOrderedByDate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	mustRecord(t, s, "u1", now.AddDate(0, 0, -1), 8)
	mustRecord(t, s, "u1", now.AddDate(0, 0, -5), 4)
	mustRecord(t, s, "u1", now.AddDate(0, 0, -3), 6)

	points, err := s.FetchDataPoints(ctx, "u1", 7, analytics.ModeStandard)
	if err != nil {
		t.Fatalf("FetchDataPoints failed: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 days, got %d", len(points))
	}
	for i := 1; i < len(points); i++ {
		if !points[i-1].Date.Before(points[i].Date) {
			t.Errorf("points out of order at %d: %v !< %v", i, points[i-1].Date, points[i].Date)
		}
	}
}

func TestFetchHistoricalDataPoints(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mustRecord(t, s, "u1", base, 5)                  // in window
	mustRecord(t, s, "u1", base.AddDate(0, 0, 3), 7) // in window
	mustRecord(t, s, "u1", base.AddDate(0, 0, 9), 9) // past the end

	start := base.AddDate(0, 0, -1)
	end := base.AddDate(0, 0, 7)
	points, err := s.FetchHistoricalDataPoints(ctx, "u1", start, end, analytics.ModeStandard)
	if err != nil {
		t.Fatalf("FetchHistoricalDataPoints failed: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 in-window days, got %d", len(points))
	}
	if points[0].Score != 5 || points[1].Score != 7 {
		t.Errorf("expected scores [5 7], got [%v %v]", points[0].Score, points[1].Score)
	}
}

func TestFetchDataPointsEmptyUser(t *testing.T) {
	s := newTestStore(t)

	points, err := s.FetchDataPoints(context.Background(), "nobody", 30, analytics.ModeStandard)
	if err != nil {
		t.Fatalf("FetchDataPoints failed: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("expected no points for unknown user, got %d", len(points))
	}
}

func TestEntryCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for i := 0; i < 4; i++ {
		mustRecord(t, s, "u1", now.AddDate(0, 0, -i), 6)
	}
	n, err := s.EntryCount(ctx, "u1")
	if err != nil {
		t.Fatalf("EntryCount failed: %v", err)
	}
	if n != 4 {
		t.Errorf("expected 4 entries, got %d", n)
	}
}
