// FlowSense - Wellbeing Trend & Performance Analytics
// Copyright 2026 FlowSense contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsense/engine

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper is the part of the result cache the janitor needs: one sweep pass
// returning the number of entries evicted.
type Sweeper interface {
	Sweep() int
}

// DefaultSweepInterval is how often the janitor sweeps the result cache.
const DefaultSweepInterval = time.Hour

// JanitorService periodically evicts expired dashboard cache entries. It is
// owned by the supervisor tree: started when the tree starts, stopped via
// context cancellation on shutdown.
type JanitorService struct {
	cache    Sweeper
	interval time.Duration
	logger   zerolog.Logger
}

// NewJanitorService creates the janitor. A non-positive interval falls back
// to DefaultSweepInterval.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewJanitorService(cache Sweeper, interval time.Duration, logger zerolog.Logger) *JanitorService {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &JanitorService{
		cache:    cache,
		interval: interval,
		logger:   logger.With().Str("service", "cache-janitor").Logger(),
	}
}

// Serve implements suture.Service.
func (s *JanitorService) Serve(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.interval).Msg("cache janitor running")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("cache janitor shutting down")
			return ctx.Err()

		case <-ticker.C:
			evicted := s.cache.Sweep()
			if evicted > 0 {
				s.logger.Debug().Int("evicted", evicted).Msg("cache sweep completed")
			}
		}
	}
}

// String implements fmt.Stringer for suture's log messages.
func (s *JanitorService) String() string {
	return "cache-janitor"
}
