package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/benxu001/NYC-Rent-Map/internal/boundary"
	"github.com/benxu001/NYC-Rent-Map/internal/zori"
)

// TimeseriesDoc is the raw per-ZIP series output, independent of
// geography, for date-slider lookups in the front end.
type TimeseriesDoc struct {
	Dates []string                   `json:"dates"`
	Data  map[string]zori.TimeSeries `json:"data"`
}

// OutputSizes reports the bytes written for each output document.
type OutputSizes struct {
	GeoJSONBytes    int64 `json:"geojson_bytes"`
	TimeseriesBytes int64 `json:"timeseries_bytes"`
}

// Save serializes the merged feature collection and the raw time
// series. Both documents are marshaled before anything touches disk so
// a failed run never leaves output that looks complete.
func Save(geoPath, tsPath string, fc *boundary.FeatureCollection, rents map[string]zori.TimeSeries, dates []string) (*OutputSizes, error) {
	if dates == nil {
		dates = []string{}
	}
	if rents == nil {
		rents = map[string]zori.TimeSeries{}
	}

	geoData, err := json.Marshal(fc)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: marshal merged geojson")
	}

	tsData, err := json.Marshal(TimeseriesDoc{Dates: dates, Data: rents})
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: marshal timeseries")
	}

	if err := writeFile(geoPath, geoData); err != nil {
		return nil, err
	}
	if err := writeFile(tsPath, tsData); err != nil {
		return nil, err
	}

	sizes := &OutputSizes{
		GeoJSONBytes:    int64(len(geoData)),
		TimeseriesBytes: int64(len(tsData)),
	}

	zap.L().Info("saved processed outputs",
		zap.String("geojson", geoPath),
		zap.Int64("geojson_bytes", sizes.GeoJSONBytes),
		zap.String("timeseries", tsPath),
		zap.Int64("timeseries_bytes", sizes.TimeseriesBytes),
	)
	return sizes, nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "pipeline: create %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "pipeline: write %s", path)
	}
	return nil
}
