// FlowSense - Wellbeing Trend & Performance Analytics
// Copyright 2026 FlowSense contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsense/engine

// Package store persists wellbeing entries in DuckDB and serves the
// day-aggregated series the dashboard pipeline consumes. All aggregation
// happens in SQL so raw entries never leave the database layer.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/google/uuid"

	"github.com/flowsense/engine/internal/analytics"
	"github.com/flowsense/engine/internal/config"
	"github.com/flowsense/engine/internal/logging"
	"github.com/flowsense/engine/internal/metrics"
)

// Entry is one raw wellbeing log entry as submitted by a user.
type Entry struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	RecordedAt time.Time `json:"recorded_at"`
	Score      float64   `json:"score"` // [1,10]
	Note       string    `json:"note,omitempty"`
}

// Store is the DuckDB-backed entry store. It implements
// dashboard.DataSource and is safe for concurrent use.
type Store struct {
	conn *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS wellbeing_entries (
    id          VARCHAR PRIMARY KEY,
    user_id     VARCHAR NOT NULL,
    recorded_at TIMESTAMP NOT NULL,
    score       DOUBLE NOT NULL CHECK (score >= 1 AND score <= 10),
    note        VARCHAR
);
CREATE INDEX IF NOT EXISTS idx_entries_user_time
    ON wellbeing_entries (user_id, recorded_at);
`

// New opens (or creates) the DuckDB database at cfg.Path and ensures the
// schema exists. Use Path ":memory:" for an ephemeral store.
func New(cfg *config.DatabaseConfig) (*Store, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	if cfg.Path != ":memory:" {
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}

	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, numThreads)
	if cfg.MaxMemory != "" {
		connStr += "&max_memory=" + cfg.MaxMemory
	}

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(numThreads)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(time.Hour)

	s := &Store{conn: conn}
	if err := s.initialize(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Info().Str("path", cfg.Path).Int("threads", numThreads).Msg("Entry store opened")
	return s, nil
}

func (s *Store) initialize() error {
	start := time.Now()
	_, err := s.conn.Exec(schema)
	metrics.RecordDBQuery("init_schema", time.Since(start), err)
	return err
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// RecordEntry validates and persists one wellbeing entry. A missing ID is
// assigned; a zero RecordedAt is set to the current time.
func (s *Store) RecordEntry(ctx context.Context, entry Entry) (Entry, error) {
	if entry.UserID == "" {
		return Entry{}, fmt.Errorf("entry user_id is required")
	}
	if entry.Score < 1 || entry.Score > 10 {
		return Entry{}, fmt.Errorf("entry score %.2f outside [1,10]", entry.Score)
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now().UTC()
	}

	start := time.Now()
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO wellbeing_entries (id, user_id, recorded_at, score, note)
		 VALUES (?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.RecordedAt, entry.Score, entry.Note)
	metrics.RecordDBQuery("record_entry", time.Since(start), err)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to insert entry: %w", err)
	}

	metrics.EntriesIngested.Inc()
	logging.Debug().
		Str("user_id", entry.UserID).
		Float64("score", entry.Score).
		Msg("Entry recorded")
	return entry, nil
}

// dayAggregateQuery averages scores per calendar day and counts the raw
// entries behind each average.
const dayAggregateQuery = `
SELECT date_trunc('day', recorded_at) AS day,
       AVG(score)                     AS avg_score,
       COUNT(*)                       AS entry_count
FROM wellbeing_entries
WHERE user_id = ? AND recorded_at >= ? AND recorded_at < ?
GROUP BY day
ORDER BY day`

// FetchDataPoints implements dashboard.DataSource. The analysis mode does
// not change retrieval; every entry participates in the day aggregates.
func (s *Store) FetchDataPoints(ctx context.Context, userID string, daysBack int, mode analytics.Mode) ([]analytics.DataPoint, error) {
	now := time.Now().UTC()
	start := now.AddDate(0, 0, -daysBack)
	return s.fetchAggregated(ctx, "fetch_data_points", userID, start, now)
}

// FetchHistoricalDataPoints implements dashboard.DataSource for an
// explicit [start, end) window.
func (s *Store) FetchHistoricalDataPoints(ctx context.Context, userID string, start, end time.Time, mode analytics.Mode) ([]analytics.DataPoint, error) {
	return s.fetchAggregated(ctx, "fetch_historical", userID, start, end)
}

func (s *Store) fetchAggregated(ctx context.Context, operation, userID string, start, end time.Time) ([]analytics.DataPoint, error) {
	began := time.Now()
	rows, err := s.conn.QueryContext(ctx, dayAggregateQuery, userID, start, end)
	metrics.RecordDBQuery(operation, time.Since(began), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query day aggregates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var points []analytics.DataPoint
	for rows.Next() {
		var p analytics.DataPoint
		if err := rows.Scan(&p.Date, &p.Score, &p.EntryCount); err != nil {
			return nil, fmt.Errorf("failed to scan day aggregate: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate day aggregates: %w", err)
	}
	return points, nil
}

// EntryCount returns the total number of stored entries for a user.
func (s *Store) EntryCount(ctx context.Context, userID string) (int, error) {
	began := time.Now()
	var n int
	err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM wellbeing_entries WHERE user_id = ?`, userID).Scan(&n)
	metrics.RecordDBQuery("entry_count", time.Since(began), err)
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return n, nil
}
