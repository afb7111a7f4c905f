// FlowSense - Wellbeing Trend & Performance Analytics
// Copyright 2026 FlowSense contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowsense/engine

package analytics

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// PatternList carries the pattern union over the wire. Each element is
// marshaled with a "kind" discriminator, and unmarshaling dispatches on it
// to rebuild the concrete variant.
type PatternList []Pattern

// MarshalJSON implements json.Marshaler for WeeklyPattern, adding the kind
// discriminator.
func (p WeeklyPattern) MarshalJSON() ([]byte, error) {
	type alias WeeklyPattern
	return json.Marshal(struct {
		Kind PatternKind `json:"kind"`
		alias
	}{Kind: PatternWeekly, alias: alias(p)})
}

// MarshalJSON implements json.Marshaler for StreakPattern, adding the kind
// discriminator.
func (p StreakPattern) MarshalJSON() ([]byte, error) {
	type alias StreakPattern
	return json.Marshal(struct {
		Kind PatternKind `json:"kind"`
		alias
	}{Kind: PatternStreak, alias: alias(p)})
}

// UnmarshalJSON implements json.Unmarshaler, dispatching each element on
// its kind field. An unknown kind is an error, not a silent drop.
func (l *PatternList) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}

	out := make(PatternList, 0, len(raws))
	for _, raw := range raws {
		var head struct {
			Kind PatternKind `json:"kind"`
		}
		if err := json.Unmarshal(raw, &head); err != nil {
			return err
		}

		switch head.Kind {
		case PatternWeekly:
			var p WeeklyPattern
			if err := json.Unmarshal(raw, &p); err != nil {
				return err
			}
			out = append(out, p)
		case PatternStreak:
			var p StreakPattern
			if err := json.Unmarshal(raw, &p); err != nil {
				return err
			}
			out = append(out, p)
		default:
			return fmt.Errorf("unknown pattern kind %q", head.Kind)
		}
	}
	*l = out
	return nil
}
