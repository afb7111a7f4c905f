// FlowSense - Wellbeing Trend & Performance Analytics
// Copyright 2026 FlowSense contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsense/engine

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/flowsense/engine/internal/analytics"
	"github.com/flowsense/engine/internal/dashboard"
	"github.com/flowsense/engine/internal/export"
	"github.com/flowsense/engine/internal/logging"
	"github.com/flowsense/engine/internal/store"
)

type fakeSource struct {
	points []analytics.DataPoint
	err    error
}

func (f *fakeSource) FetchDataPoints(ctx context.Context, userID string, daysBack int, mode analytics.Mode) ([]analytics.DataPoint, error) {
	return f.points, f.err
}

func (f *fakeSource) FetchHistoricalDataPoints(ctx context.Context, userID string, start, end time.Time, mode analytics.Mode) ([]analytics.DataPoint, error) {
	return f.points, f.err
}

type fakeEntryStore struct {
	recorded []store.Entry
	recErr   error
	pingErr  error
}

func (f *fakeEntryStore) RecordEntry(ctx context.Context, entry store.Entry) (store.Entry, error) {
	if f.recErr != nil {
		return store.Entry{}, f.recErr
	}
	if entry.ID == "" {
		entry.ID = "test-id"
	}
	f.recorded = append(f.recorded, entry)
	return entry, nil
}

func (f *fakeEntryStore) Ping(ctx context.Context) error {
	return f.pingErr
}

func weekOfPoints() []analytics.DataPoint {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	points := make([]analytics.DataPoint, 7)
	for i := range points {
		points[i] = analytics.DataPoint{
			Date:       start.AddDate(0, 0, i),
			Score:      6 + float64(i)*0.3,
			EntryCount: 2,
		}
	}
	return points
}

func newTestRouter(t *testing.T, src dashboard.DataSource, entries EntryStore, renderer export.Renderer) (*Router, *dashboard.Orchestrator) {
	t.Helper()
	logger := logging.NewTestLogger(io.Discard)
	orch := dashboard.NewOrchestrator(src, dashboard.DefaultConfig(), logger)
	rt := NewRouter(orch, entries, export.NewExporter(renderer), Config{
		CORSOrigins: []string{"*"},
	}, logger)
	return rt, orch
}

func doRequest(t *testing.T, handler http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not valid JSON: %v\n%s", err, rec.Body.String())
	}
	return resp
}

func TestDashboardRequiresUserID(t *testing.T) {
	rt, _ := newTestRouter(t, &fakeSource{}, &fakeEntryStore{}, nil)
	rec := doRequest(t, rt.Handler(), http.MethodGet, "/api/v1/dashboard", nil)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp.Status != "error" || resp.Error == nil {
		t.Errorf("expected error envelope, got %+v", resp)
	}
}

func TestDashboardRejectsUnknownPeriod(t *testing.T) {
	rt, _ := newTestRouter(t, &fakeSource{points: weekOfPoints()}, &fakeEntryStore{}, nil)
	rec := doRequest(t, rt.Handler(), http.MethodGet, "/api/v1/dashboard?user_id=u1&period=decade", nil)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown period, got %d", rec.Code)
	}
}

func TestDashboardReturnsData(t *testing.T) {
	rt, _ := newTestRouter(t, &fakeSource{points: weekOfPoints()}, &fakeEntryStore{}, nil)
	rec := doRequest(t, rt.Handler(), http.MethodGet, "/api/v1/dashboard?user_id=u1&period=week", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeResponse(t, rec)
	if resp.Status != "ok" {
		t.Errorf("expected status ok, got %q", resp.Status)
	}

	raw, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatalf("failed to re-marshal data: %v", err)
	}
	var data dashboard.Data
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatalf("data is not a dashboard payload: %v", err)
	}
	if data.UserID != "u1" {
		t.Errorf("expected user_id u1, got %q", data.UserID)
	}
	if data.Metrics.TotalEntries != 14 {
		t.Errorf("expected 14 total entries, got %d", data.Metrics.TotalEntries)
	}
}

func TestDashboardSourceFailure(t *testing.T) {
	rt, _ := newTestRouter(t, &fakeSource{err: errors.New("db down")}, &fakeEntryStore{}, nil)
	rec := doRequest(t, rt.Handler(), http.MethodGet, "/api/v1/dashboard?user_id=u1", nil)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", rec.Code)
	}
}

func TestCompareReturnsComparison(t *testing.T) {
	rt, _ := newTestRouter(t, &fakeSource{points: weekOfPoints()}, &fakeEntryStore{}, nil)
	rec := doRequest(t, rt.Handler(), http.MethodGet,
		"/api/v1/dashboard/compare?user_id=u1&period=week&comparison_period=week", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeResponse(t, rec)
	if resp.Status != "ok" {
		t.Errorf("expected status ok, got %q", resp.Status)
	}
}

func TestExportCSV(t *testing.T) {
	rt, _ := newTestRouter(t, &fakeSource{points: weekOfPoints()}, &fakeEntryStore{}, nil)
	rec := doRequest(t, rt.Handler(), http.MethodGet,
		"/api/v1/dashboard/export?user_id=u1&format=csv", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("expected text/csv, got %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "flowsense-u1-week.csv") {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}
	if !strings.Contains(rec.Body.String(), "average_mood") {
		t.Errorf("expected CSV body, got %q", rec.Body.String())
	}
}

func TestExportUnknownFormat(t *testing.T) {
	rt, _ := newTestRouter(t, &fakeSource{points: weekOfPoints()}, &fakeEntryStore{}, nil)
	rec := doRequest(t, rt.Handler(), http.MethodGet,
		"/api/v1/dashboard/export?user_id=u1&format=xml", nil)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown format, got %d", rec.Code)
	}
}

func TestExportPDFNotConfigured(t *testing.T) {
	rt, _ := newTestRouter(t, &fakeSource{points: weekOfPoints()}, &fakeEntryStore{}, nil)
	rec := doRequest(t, rt.Handler(), http.MethodGet,
		"/api/v1/dashboard/export?user_id=u1&format=pdf", nil)

	if rec.Code != http.StatusNotImplemented {
		t.Errorf("expected 501 without a renderer, got %d", rec.Code)
	}
}

func TestCreateEntryInvalidatesCache(t *testing.T) {
	entries := &fakeEntryStore{}
	rt, orch := newTestRouter(t, &fakeSource{points: weekOfPoints()}, entries, nil)
	handler := rt.Handler()

	// Warm the cache for the user.
	doRequest(t, handler, http.MethodGet, "/api/v1/dashboard?user_id=u1", nil)
	key := dashboard.Key{UserID: "u1", Period: analytics.PeriodWeek, Mode: analytics.ModeStandard}
	if !orch.Cache().Contains(key) {
		t.Fatal("expected cache to be warm before ingest")
	}

	body := strings.NewReader(`{"user_id":"u1","score":8.5,"note":"good day"}`)
	rec := doRequest(t, handler, http.MethodPost, "/api/v1/entries", body)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(entries.recorded) != 1 {
		t.Fatalf("expected 1 recorded entry, got %d", len(entries.recorded))
	}
	if entries.recorded[0].Score != 8.5 {
		t.Errorf("expected score 8.5, got %v", entries.recorded[0].Score)
	}
	if orch.Cache().Contains(key) {
		t.Error("expected user cache to be invalidated after ingest")
	}
}

func TestCreateEntryRejectsInvalidJSON(t *testing.T) {
	rt, _ := newTestRouter(t, &fakeSource{}, &fakeEntryStore{}, nil)
	rec := doRequest(t, rt.Handler(), http.MethodPost, "/api/v1/entries", strings.NewReader("{not json"))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestCreateEntryRejectsStoreError(t *testing.T) {
	entries := &fakeEntryStore{recErr: errors.New("score out of range")}
	rt, _ := newTestRouter(t, &fakeSource{}, entries, nil)
	body := strings.NewReader(`{"user_id":"u1","score":42}`)
	rec := doRequest(t, rt.Handler(), http.MethodPost, "/api/v1/entries", body)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	rt, _ := newTestRouter(t, &fakeSource{}, &fakeEntryStore{}, nil)
	handler := rt.Handler()

	if rec := doRequest(t, handler, http.MethodGet, "/api/v1/health/live", nil); rec.Code != http.StatusOK {
		t.Errorf("live: expected 200, got %d", rec.Code)
	}
	if rec := doRequest(t, handler, http.MethodGet, "/api/v1/health/ready", nil); rec.Code != http.StatusOK {
		t.Errorf("ready: expected 200, got %d", rec.Code)
	}
}

func TestHealthReadyFailure(t *testing.T) {
	rt, _ := newTestRouter(t, &fakeSource{}, &fakeEntryStore{pingErr: errors.New("closed")}, nil)
	rec := doRequest(t, rt.Handler(), http.MethodGet, "/api/v1/health/ready", nil)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestCacheStats(t *testing.T) {
	rt, _ := newTestRouter(t, &fakeSource{points: weekOfPoints()}, &fakeEntryStore{}, nil)
	handler := rt.Handler()

	doRequest(t, handler, http.MethodGet, "/api/v1/dashboard?user_id=u1", nil)
	rec := doRequest(t, handler, http.MethodGet, "/api/v1/cache/stats", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "entries") {
		t.Errorf("expected cache stats body, got %q", rec.Body.String())
	}
}

func TestRequestIDEcho(t *testing.T) {
	rt, _ := newTestRouter(t, &fakeSource{}, &fakeEntryStore{}, nil)
	handler := rt.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "fixed-id" {
		t.Errorf("expected echoed request ID, got %q", got)
	}

	// Without a client ID one is generated.
	rec2 := doRequest(t, handler, http.MethodGet, "/api/v1/health/live", nil)
	if rec2.Header().Get("X-Request-ID") == "" {
		t.Error("expected generated request ID header")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	rt, _ := newTestRouter(t, &fakeSource{}, &fakeEntryStore{}, nil)
	rec := doRequest(t, rt.Handler(), http.MethodGet, "/metrics", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "dashboard_cache_hits_total") {
		t.Errorf("expected engine metrics in scrape output")
	}
}
