// Package pipeline runs the rent-map transformation: load boundaries
// and rent series, merge them by ZIP, and write the processed outputs.
package pipeline

import (
	"go.uber.org/zap"

	"github.com/benxu001/NYC-Rent-Map/internal/boundary"
	"github.com/benxu001/NYC-Rent-Map/internal/zori"
)

// MergeStats counts how many boundary features found rent data.
type MergeStats struct {
	Matched   int `json:"matched"`
	Unmatched int `json:"unmatched"`
}

// Merge annotates every boundary feature in place with its derived
// zipcode, the rent at the latest available date (avg_rent, nullable),
// and its yearly averages (yearly_avg, possibly empty). The join is a
// left join: every feature appears exactly once, in input order; rent
// rows with no boundary are simply never looked up here.
func Merge(fc *boundary.FeatureCollection, rents map[string]zori.TimeSeries, dates []string, keyFields []string) MergeStats {
	if len(keyFields) == 0 {
		keyFields = boundary.DefaultKeyFields
	}

	var latest string
	if len(dates) > 0 {
		latest = dates[len(dates)-1]
	}

	var stats MergeStats
	for _, feat := range fc.Features {
		if feat.Properties == nil {
			feat.Properties = map[string]any{}
		}

		zip := boundary.DeriveKey(feat.Properties, keyFields)
		feat.Properties["zipcode"] = zip

		series := rents[zip]
		if len(series) == 0 {
			feat.Properties["avg_rent"] = nil
			feat.Properties["yearly_avg"] = map[string]float64{}
			stats.Unmatched++
			continue
		}

		// avg_rent is the value at the globally latest date, not the
		// key's own latest; a ZIP missing that month shows as null.
		if v, ok := series[latest]; ok {
			feat.Properties["avg_rent"] = v
		} else {
			feat.Properties["avg_rent"] = nil
		}
		feat.Properties["yearly_avg"] = zori.YearlyAverages(series)
		stats.Matched++
	}

	zap.L().Info("merged rent data into boundaries",
		zap.Int("matched", stats.Matched),
		zap.Int("unmatched", stats.Unmatched),
	)
	return stats
}
