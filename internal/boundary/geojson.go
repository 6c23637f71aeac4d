// Package boundary loads ZIP-code boundary geometries and derives the
// ZIP key that joins them to rent data.
package boundary

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrNoFeatures is returned when the boundary document lacks the
// expected top-level feature collection.
var ErrNoFeatures = eris.New("boundary: document has no features collection")

// Feature is one geographic area. The geometry is opaque to the
// pipeline and passed through to the output unmodified.
type Feature struct {
	Type       string          `json:"type"`
	ID         any             `json:"id,omitempty"`
	Properties map[string]any  `json:"properties"`
	Geometry   json.RawMessage `json:"geometry"`
}

// FeatureCollection is an ordered sequence of boundary features.
type FeatureCollection struct {
	Type     string          `json:"type"`
	Name     string          `json:"name,omitempty"`
	CRS      json.RawMessage `json:"crs,omitempty"`
	Features []*Feature      `json:"features"`
}

// DefaultKeyFields is the property lookup order used when none is
// configured.
var DefaultKeyFields = []string{"postalCode", "ZIPCODE", "ZCTA5CE10"}

// LoadGeoJSON parses a GeoJSON boundary file into a FeatureCollection.
func LoadGeoJSON(path string) (*FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "boundary: read %s", path)
	}

	var fc FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrapf(err, "boundary: parse %s", path)
	}

	if fc.Features == nil {
		return nil, eris.Wrapf(ErrNoFeatures, "boundary: %s", path)
	}

	zap.L().Info("loaded boundary polygons",
		zap.String("path", path),
		zap.Int("features", len(fc.Features)),
	)
	return &fc, nil
}

// DeriveKey returns the ZIP key for a feature's properties, trying the
// candidate field names in order. The first field PRESENT wins, even
// when its value is an empty string: an empty postalCode shadows a
// populated ZIPCODE. That matches the historical merge behavior and is
// preserved deliberately.
func DeriveKey(props map[string]any, candidates []string) string {
	for _, name := range candidates {
		if v, ok := props[name]; ok {
			return stringify(v)
		}
	}
	return ""
}

// stringify renders a property value the way it should appear as a ZIP
// key. JSON numbers arrive as float64; ZCTA codes are whole numbers.
func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		if x == math.Trunc(x) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
