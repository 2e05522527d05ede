// Package viz reshapes a filtered subset into the payload handed to the map
// rendering surface.
package viz

import (
	"fmt"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/treemap/internal/model"
)

// Mode selects the map rendering style.
type Mode int

const (
	ModeMarkers Mode = iota
	ModeMarkerCluster
	ModeHeatmap
)

// String returns the wire token for the mode.
func (m Mode) String() string {
	switch m {
	case ModeMarkers:
		return "markers"
	case ModeMarkerCluster:
		return "cluster"
	case ModeHeatmap:
		return "heatmap"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the mode as its wire token.
func (m Mode) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(m.String())), nil
}

// ParseMode maps a wire token to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "markers", "":
		return ModeMarkers, nil
	case "cluster":
		return ModeMarkerCluster, nil
	case "heatmap":
		return ModeHeatmap, nil
	default:
		return 0, eris.Errorf("viz: unknown mode %q", s)
	}
}

// Rendering surface defaults: fixed map framing and heatmap shape.
const (
	MapZoom       = 12
	MapTiles      = "CartoDB Positron"
	MarkerColor   = "#023F02"
	HeatmapRadius = 15
	HeatmapBlur   = 10
)

// MapCenter is the fixed map center (lat, lon).
var MapCenter = [2]float64{45.523, -122.676}

// Point is one map entry. Tooltip is empty in heatmap mode.
type Point struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Tooltip string  `json:"tooltip,omitempty"`
}

// Payload is the mode-tagged structure handed to the rendering surface.
// Markers and clustered markers share shape and differ only in the Cluster
// instruction; heatmap points carry no tooltip and a radius/blur pair.
type Payload struct {
	Mode    Mode    `json:"mode"`
	Cluster bool    `json:"cluster"`
	Points  []Point `json:"points"`
	Radius  int     `json:"radius,omitempty"`
	Blur    int     `json:"blur,omitempty"`
}

// Build dispatches on mode. Adding a mode means one new variant in Mode and
// one new builder here.
func Build(sub model.Subset, mode Mode) Payload {
	switch mode {
	case ModeMarkerCluster:
		return buildMarkers(sub, true)
	case ModeHeatmap:
		return buildHeatmap(sub)
	default:
		return buildMarkers(sub, false)
	}
}

func buildMarkers(sub model.Subset, cluster bool) Payload {
	p := Payload{Mode: ModeMarkers, Cluster: cluster, Points: make([]Point, 0, sub.Len())}
	if cluster {
		p.Mode = ModeMarkerCluster
	}
	for _, rec := range sub.Records {
		p.Points = append(p.Points, Point{
			Lat:     rec.Lat,
			Lon:     rec.Lon,
			Tooltip: Tooltip(rec),
		})
	}
	return p
}

func buildHeatmap(sub model.Subset) Payload {
	p := Payload{
		Mode:   ModeHeatmap,
		Points: make([]Point, 0, sub.Len()),
		Radius: HeatmapRadius,
		Blur:   HeatmapBlur,
	}
	for _, rec := range sub.Records {
		p.Points = append(p.Points, Point{Lat: rec.Lat, Lon: rec.Lon})
	}
	return p
}

// Tooltip composes the marker hover text. Markers and clustered markers use
// this identically.
func Tooltip(rec model.TreeRecord) string {
	return fmt.Sprintf("<b>%s</b><br>Height: %s ft<br>Diameter: %s in",
		rec.CommonName, measure(rec.Height), measure(rec.Diameter))
}

func measure(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
