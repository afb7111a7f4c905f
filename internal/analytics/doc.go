// FlowSense - Wellbeing Trend & Performance Analytics
// Copyright 2026 FlowSense contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsense/engine

/*
Package analytics implements the pure computational core of the FlowSense
engine: scalar performance metrics and trend analysis over a daily series
of wellbeing scores.

The package has no I/O and no dependencies on other internal packages.
Both calculators are deterministic: the same input series always produces
the same output, and the input slice is never mutated (both sort a copy).

# Components

  - Calculator: time series -> PerformanceMetrics (averages, consistency,
    OLS trend score, volatility, completion, improvement, composite wellness)
  - TrendAnalyzer: time series -> TrendAnalysis (trend classification,
    momentum, volatility, 7-day predictions, weekly/streak patterns)

# Empty input

Empty input is not an error. Calculator returns the canonical empty metrics
value (all zeros, neutral TrendScore of 0.5) and TrendAnalyzer returns a
stable analysis with zero confidence and no predictions or patterns, so
downstream consumers never divide by zero or see ill-defined trend state.

# Ordering

Both components regress score on chronological index. They sort the series
with the same helper before computing, so the trend score and the trend
classification can never diverge because of input ordering.
*/
package analytics
