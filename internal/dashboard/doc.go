// FlowSense - Wellbeing Trend & Performance Analytics
// Copyright 2026 FlowSense contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsense/engine

/*
Package dashboard owns the top level of the analytics engine: fetching data
points from the external source, composing the pure calculators into a
DashboardData aggregate, caching the result, and running period-over-period
comparisons.

# Cache lifecycle

Each cache entry is keyed by (user, period, mode) and moves through:

	absent -> fresh (age <= freshness window)
	       -> stale (age > freshness window, <= max age)
	       -> evicted (age > max age, removed by the sweep)

Reads only ever return fresh entries. Stale entries are overwritten by the
next recomputation; the eviction sweep removes entries past max age
unconditionally, independent of the freshness check. Within a single key the
last write wins; every cached value was computed from a single data snapshot,
so a reader can never observe torn state.

# Failure model

The data-source fetch is the only propagating error path, and it is wrapped
in a circuit breaker. On fetch failure nothing is cached and no partial
result exists. The pure calculators never fail: empty input yields canonical
empty results.
*/
package dashboard
