// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package curate builds the curated table: an inner join of the activity and
// obesity measure tables on the composite key, with the activity/obesity gap
// derived per row.
package curate

import "github.com/pdiddy/health-etl/pkg/types"

// unmatchedSampleLimit caps the unmatched-key sample carried in Stats.
const unmatchedSampleLimit = 10

// Stats summarizes one merge.
type Stats struct {
	// Matched is the number of curated rows produced.
	Matched int `yaml:"matched"`

	// UnmatchedActivity counts activity keys with no obesity counterpart.
	// The dataset is expected to have none; a non-zero count is reported,
	// not fatal, since the inner join drops these rows by design.
	UnmatchedActivity int `yaml:"unmatched_activity"`

	// UnmatchedSample holds up to ten unmatched activity keys.
	UnmatchedSample []types.Key `yaml:"unmatched_sample,omitempty"`
}

// Merge inner-joins activity and obesity on the composite key. Row order
// follows the activity table, which makes the output deterministic for a
// given pair of inputs. Both tables must already have validated-unique keys,
// so the join is at most one-to-one and needs no tie-breaking.
func Merge(activity, obesity *types.MeasureTable) ([]types.CuratedRow, Stats) {
	obesityIdx := obesity.Index()

	rows := make([]types.CuratedRow, 0, activity.Len())
	var stats Stats

	for _, a := range activity.Rows {
		oi, ok := obesityIdx[a.Key]
		if !ok {
			stats.UnmatchedActivity++
			if len(stats.UnmatchedSample) < unmatchedSampleLimit {
				stats.UnmatchedSample = append(stats.UnmatchedSample, a.Key)
			}
			continue
		}
		o := obesity.Rows[oi]

		row := types.CuratedRow{
			Country:     a.Country,
			Age:         int32(a.Age),
			Sex:         string(a.Sex),
			Year:        int32(a.Year),
			ActivityVal: a.Value,
			ObesityVal:  o.Value,
		}
		if a.Value != nil && o.Value != nil {
			row.GapPP = types.Float64(*a.Value - *o.Value)
		}
		rows = append(rows, row)
	}

	stats.Matched = len(rows)
	return rows, stats
}
