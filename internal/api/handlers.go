// FlowSense - Wellbeing Trend & Performance Analytics
// Copyright 2026 FlowSense contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsense/engine

package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/flowsense/engine/internal/analytics"
	"github.com/flowsense/engine/internal/export"
	"github.com/flowsense/engine/internal/store"
)

// HealthLive reports process liveness. It never touches dependencies.
func (rt *Router) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, map[string]string{"status": "alive"}, Metadata{})
}

// HealthReady reports readiness by pinging the entry store.
func (rt *Router) HealthReady(w http.ResponseWriter, r *http.Request) {
	if err := rt.entries.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "NOT_READY", "entry store unavailable", err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"status": "ready"}, Metadata{})
}

// dashboardParams parses the query parameters shared by the dashboard
// endpoints.
func dashboardParams(r *http.Request) (userID string, period analytics.Period, mode analytics.Mode, err error) {
	userID = r.URL.Query().Get("user_id")
	if userID == "" {
		return "", "", "", fmt.Errorf("user_id is required")
	}

	period = analytics.PeriodWeek
	if s := r.URL.Query().Get("period"); s != "" {
		if period, err = analytics.ParsePeriod(s); err != nil {
			return "", "", "", err
		}
	}

	mode = analytics.ModeStandard
	if s := r.URL.Query().Get("mode"); s != "" {
		mode = analytics.Mode(s)
		if !mode.Valid() {
			return "", "", "", fmt.Errorf("unknown mode %q", s)
		}
	}
	return userID, period, mode, nil
}

// Dashboard serves GET /api/v1/dashboard. Pass refresh=true to bypass
// the result cache.
func (rt *Router) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, period, mode, err := dashboardParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	useCache := r.URL.Query().Get("refresh") != "true"

	start := time.Now()
	data, err := rt.orch.Generate(r.Context(), userID, period, mode, useCache)
	if err != nil {
		respondError(w, http.StatusBadGateway, "GENERATION_FAILED", "failed to generate dashboard", err)
		return
	}

	respondData(w, http.StatusOK, data, Metadata{
		QueryTimeMS: time.Since(start).Milliseconds(),
		Cached:      data.GeneratedAt.Before(start),
	})
}

// Compare serves GET /api/v1/dashboard/compare. comparison_period
// defaults to the dashboard period.
func (rt *Router) Compare(w http.ResponseWriter, r *http.Request) {
	userID, period, mode, err := dashboardParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}

	comparisonPeriod := period
	if s := r.URL.Query().Get("comparison_period"); s != "" {
		if comparisonPeriod, err = analytics.ParsePeriod(s); err != nil {
			respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
			return
		}
	}

	start := time.Now()
	comparison, err := rt.orch.Compare(r.Context(), userID, period, comparisonPeriod, mode)
	if err != nil {
		respondError(w, http.StatusBadGateway, "COMPARISON_FAILED", "failed to compare periods", err)
		return
	}

	respondData(w, http.StatusOK, comparison, Metadata{
		QueryTimeMS: time.Since(start).Milliseconds(),
	})
}

// Export serves GET /api/v1/dashboard/export?format=json|csv|pdf. The
// response body is the raw document, not the JSON envelope.
func (rt *Router) Export(w http.ResponseWriter, r *http.Request) {
	userID, period, mode, err := dashboardParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}

	format := export.FormatJSON
	if s := r.URL.Query().Get("format"); s != "" {
		format = export.Format(s)
	}
	contentType := export.ContentType(format)
	if contentType == "" {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST",
			fmt.Sprintf("unknown export format %q", format), nil)
		return
	}

	data, err := rt.orch.Generate(r.Context(), userID, period, mode, true)
	if err != nil {
		respondError(w, http.StatusBadGateway, "GENERATION_FAILED", "failed to generate dashboard", err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("flowsense-%s-%s.%s", userID, period, format)))

	if err := rt.exporter.Export(w, data, format); err != nil {
		if errors.Is(err, export.ErrNoRenderer) {
			w.Header().Del("Content-Disposition")
			respondError(w, http.StatusNotImplemented, "PDF_UNAVAILABLE", "PDF export is not configured", nil)
			return
		}
		rt.logger.Error().Err(err).Str("format", string(format)).Msg("Export failed mid-stream")
	}
}

// CacheStats serves GET /api/v1/cache/stats.
func (rt *Router) CacheStats(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, rt.orch.Cache().Stats(), Metadata{})
}

// entryRequest is the POST /api/v1/entries body.
type entryRequest struct {
	UserID     string    `json:"user_id"`
	Score      float64   `json:"score"`
	RecordedAt time.Time `json:"recorded_at"`
	Note       string    `json:"note"`
}

// CreateEntry serves POST /api/v1/entries and invalidates the user's
// cached dashboards so the next request reflects the new entry.
func (rt *Router) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", err)
		return
	}

	entry, err := rt.entries.RecordEntry(r.Context(), store.Entry{
		UserID:     req.UserID,
		Score:      req.Score,
		RecordedAt: req.RecordedAt,
		Note:       req.Note,
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_ENTRY", err.Error(), nil)
		return
	}

	rt.orch.Cache().InvalidateUser(entry.UserID)
	respondData(w, http.StatusCreated, entry, Metadata{})
}
