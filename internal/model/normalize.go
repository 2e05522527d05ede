package model

import (
	"math"
	"sort"
	"time"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
)

// FromFeatureCollection normalizes a GeoJSON FeatureCollection into a Dataset.
// Features without point geometry or with non-finite coordinates are dropped
// and counted rather than aborting the whole fetch. GeoJSON coordinate order
// is [lon, lat].
func FromFeatureCollection(fc *geojson.FeatureCollection) *Dataset {
	ds := &Dataset{FetchedAt: time.Now()}
	cols := make(map[string]struct{})

	for _, f := range fc.Features {
		rec, ok := fromFeature(f)
		if !ok {
			ds.Dropped++
			continue
		}
		for k := range rec.Properties {
			cols[k] = struct{}{}
		}
		ds.Records = append(ds.Records, rec)
	}

	ds.Columns = make([]string, 0, len(cols)+2)
	for k := range cols {
		ds.Columns = append(ds.Columns, k)
	}
	sort.Strings(ds.Columns)
	ds.Columns = append(ds.Columns, ColLat, ColLon)

	if ds.Dropped > 0 {
		zap.L().Debug("dropped malformed features during normalization",
			zap.Int("dropped", ds.Dropped),
			zap.Int("kept", len(ds.Records)),
		)
	}
	return ds
}

func fromFeature(f *geojson.Feature) (TreeRecord, bool) {
	if f == nil || f.Geometry == nil {
		return TreeRecord{}, false
	}
	pt, ok := f.Geometry.(*geom.Point)
	if !ok || pt.Empty() {
		return TreeRecord{}, false
	}
	lon, lat := pt.X(), pt.Y()
	if !finite(lat) || !finite(lon) {
		return TreeRecord{}, false
	}

	props := f.Properties
	if props == nil {
		props = map[string]any{}
	}
	return TreeRecord{
		CommonName: stringProp(props, PropCommon),
		Height:     numberProp(props, PropHeight),
		Diameter:   numberProp(props, PropDiameter),
		Lat:        lat,
		Lon:        lon,
		Properties: props,
	}, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func stringProp(props map[string]any, key string) string {
	s, _ := props[key].(string)
	return s
}

// numberProp reads a numeric property. JSON decoding yields float64; the
// ArcGIS feed occasionally serves integers, which decode the same way.
func numberProp(props map[string]any, key string) *float64 {
	switch v := props[key].(type) {
	case float64:
		if !finite(v) {
			return nil
		}
		return &v
	case int:
		f := float64(v)
		return &f
	default:
		return nil
	}
}
