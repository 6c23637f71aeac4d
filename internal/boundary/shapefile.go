package boundary

import (
	"encoding/json"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// zctaFieldCandidates are the attribute names Census uses for the ZCTA
// code across TIGER vintages.
var zctaFieldCandidates = []string{"ZCTA5CE10", "ZCTA5CE20", "GEOID10", "GEOID20"}

// ConvertZCTA reads a Census ZCTA shapefile and produces a
// FeatureCollection compatible with the GeoJSON boundary input. Each
// feature carries a ZCTA5CE10 property so the merge key derivation
// works unchanged.
func ConvertZCTA(shpPath string) (*FeatureCollection, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "boundary: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	codeIdx := -1
	for _, name := range zctaFieldCandidates {
		if codeIdx = fieldIndex(reader, name); codeIdx >= 0 {
			break
		}
	}
	if codeIdx < 0 {
		return nil, eris.Errorf("boundary: no ZCTA code field found in %s", shpPath)
	}

	log := zap.L().With(zap.String("component", "boundary.shapefile"))

	fc := &FeatureCollection{Type: "FeatureCollection", Features: []*Feature{}}
	var skipped int

	for reader.Next() {
		_, shape := reader.Shape()

		code := strings.TrimSpace(reader.Attribute(codeIdx))
		if code == "" {
			skipped++
			continue
		}

		g := shapeToGeom(shape)
		if g == nil {
			skipped++
			continue
		}

		rawGeom, err := geojson.Marshal(g)
		if err != nil {
			log.Warn("skipping unencodable geometry", zap.String("zcta", code), zap.Error(err))
			skipped++
			continue
		}

		fc.Features = append(fc.Features, &Feature{
			Type:       "Feature",
			Properties: map[string]any{"ZCTA5CE10": code},
			Geometry:   json.RawMessage(rawGeom),
		})
	}

	log.Info("converted ZCTA shapefile",
		zap.String("path", shpPath),
		zap.Int("features", len(fc.Features)),
		zap.Int("skipped", skipped),
	)
	return fc, nil
}

// fieldIndex returns the index of a named field in the shapefile, or -1 if not found.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}

// shapeToGeom converts a shapefile shape to a go-geom geometry.
// Returns nil for unsupported or empty shapes.
func shapeToGeom(s shp.Shape) geom.T {
	p, ok := s.(*shp.Polygon)
	if !ok {
		return nil
	}
	return polygonToMultiPolygon(p)
}

// polygonToMultiPolygon converts a shapefile Polygon to a geom.MultiPolygon.
func polygonToMultiPolygon(p *shp.Polygon) geom.T {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY)

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		var end int32
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		} else {
			end = int32(len(p.Points))
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			zap.L().Debug("boundary: skipping malformed polygon ring", zap.Int32("part", i), zap.Error(err))
			continue
		}

		if err := mp.Push(poly); err != nil {
			zap.L().Debug("boundary: skipping malformed polygon part", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}
