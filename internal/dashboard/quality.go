// FlowSense - Wellbeing Trend & Performance Analytics
// Copyright 2026 FlowSense contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsense/engine

package dashboard

import (
	"sort"
	"time"

	"github.com/flowsense/engine/internal/analytics"
)

// recentWindowDays is how far back a point may be and still count as
// "recent data".
const recentWindowDays = 3

// computeDataQuality scores the series against the expected entry volume
// for the period. entriesPerDay is the configured full-completion
// assumption; gap days accumulate wherever consecutive tracked dates are
// more than two days apart.
func computeDataQuality(points []analytics.DataPoint, period analytics.Period, entriesPerDay int, now time.Time) DataQuality {
	// No data means no reliability, not a perfect gap-free record.
	if len(points) == 0 {
		return DataQuality{Recommendation: qualityRecommendation(0)}
	}

	periodDays := period.Days()
	expected := periodDays * entriesPerDay

	actual := 0
	for _, p := range points {
		actual += p.EntryCount
	}

	completeness := 0.0
	if expected > 0 {
		completeness = float64(actual) / float64(expected)
	}

	gapDays := countGapDays(points)
	reliability := analytics.Clamp(1-float64(gapDays)/float64(periodDays), 0, 1)

	quality := DataQuality{
		Completeness:  completeness,
		Reliability:   reliability,
		HasRecentData: hasRecentData(points, now),
		GapDays:       gapDays,
		OverallScore:  analytics.Clamp(0.6*completeness+0.4*reliability, 0, 1),
	}
	quality.Recommendation = qualityRecommendation(quality.OverallScore)
	return quality
}

// countGapDays sums the missing days inside every gap of more than two days
// between consecutive distinct tracked dates.
func countGapDays(points []analytics.DataPoint) int {
	if len(points) < 2 {
		return 0
	}

	seen := map[string]time.Time{}
	for _, p := range points {
		day := p.Date.Format("2006-01-02")
		if _, ok := seen[day]; !ok {
			seen[day] = p.Date
		}
	}
	dates := make([]time.Time, 0, len(seen))
	for _, d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	gapDays := 0
	for i := 1; i < len(dates); i++ {
		gap := int(dates[i].Sub(dates[i-1]).Hours() / 24)
		if gap > 2 {
			gapDays += gap - 1
		}
	}
	return gapDays
}

func hasRecentData(points []analytics.DataPoint, now time.Time) bool {
	cutoff := now.AddDate(0, 0, -recentWindowDays)
	for _, p := range points {
		if p.Date.After(cutoff) {
			return true
		}
	}
	return false
}

func qualityRecommendation(overall float64) string {
	switch {
	case overall >= 0.8:
		return "Excellent data coverage: insights are highly reliable."
	case overall >= 0.6:
		return "Good data coverage: insights are reliable."
	case overall >= 0.4:
		return "Fair data coverage: log more regularly to sharpen insights."
	default:
		return "Limited data: insights are rough estimates until you log more entries."
	}
}
