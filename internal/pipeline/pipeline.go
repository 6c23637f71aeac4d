package pipeline

import (
	"time"

	"github.com/benxu001/NYC-Rent-Map/internal/boundary"
	"github.com/benxu001/NYC-Rent-Map/internal/zori"
)

// Options configures one pipeline run.
type Options struct {
	GeoJSONPath       string
	ZORIPath          string
	OutGeoJSONPath    string
	OutTimeseriesPath string
	Filter            zori.Filter
	KeyFields         []string
}

// Result summarizes a completed run.
type Result struct {
	Features        int           `json:"features"`
	Keys            int           `json:"keys"`
	Matched         int           `json:"matched"`
	Unmatched       int           `json:"unmatched"`
	Dates           int           `json:"dates"`
	FirstDate       string        `json:"first_date,omitempty"`
	LastDate        string        `json:"last_date,omitempty"`
	GeoJSONBytes    int64         `json:"geojson_bytes"`
	TimeseriesBytes int64         `json:"timeseries_bytes"`
	Duration        time.Duration `json:"duration"`
}

// Run executes the four pipeline stages in order: load, filter and
// build series, merge, save. Each stage consumes the prior stage's
// output once; outputs are only written after every stage succeeds.
func Run(opts Options) (*Result, error) {
	start := time.Now()

	fc, err := boundary.LoadGeoJSON(opts.GeoJSONPath)
	if err != nil {
		return nil, err
	}

	rents, dates, summary, err := zori.LoadTimeSeries(opts.ZORIPath, opts.Filter)
	if err != nil {
		return nil, err
	}

	stats := Merge(fc, rents, dates, opts.KeyFields)

	sizes, err := Save(opts.OutGeoJSONPath, opts.OutTimeseriesPath, fc, rents, dates)
	if err != nil {
		return nil, err
	}

	return &Result{
		Features:        len(fc.Features),
		Keys:            summary.Keys,
		Matched:         stats.Matched,
		Unmatched:       stats.Unmatched,
		Dates:           len(dates),
		FirstDate:       summary.FirstDate,
		LastDate:        summary.LastDate,
		GeoJSONBytes:    sizes.GeoJSONBytes,
		TimeseriesBytes: sizes.TimeseriesBytes,
		Duration:        time.Since(start),
	}, nil
}
