package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/treemap/internal/export"
	"github.com/sells-group/treemap/internal/filter"
	"github.com/sells-group/treemap/internal/model"
	"github.com/sells-group/treemap/internal/stats"
	"github.com/sells-group/treemap/internal/viz"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// metaResponse drives the widget layer: select options, slider bounds, and
// the map framing for the rendering surface.
type metaResponse struct {
	Title     string       `json:"title"`
	Species   []string     `json:"species"`
	Height    filter.Range `json:"height"`
	Diameter  filter.Range `json:"diameter"`
	Records   int          `json:"records"`
	Dropped   int          `json:"dropped"`
	FetchedAt time.Time    `json:"fetched_at"`
	Map       mapConfig    `json:"map"`
}

type mapConfig struct {
	Center      [2]float64 `json:"center"`
	Zoom        int        `json:"zoom"`
	Tiles       string     `json:"tiles"`
	MarkerColor string     `json:"marker_color"`
}

func (s *Server) handleMeta(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}

	resp := metaResponse{
		Title:     DashboardTitle,
		Species:   ds.Species(),
		Records:   len(ds.Records),
		Dropped:   ds.Dropped,
		FetchedAt: ds.FetchedAt,
		Map: mapConfig{
			Center:      viz.MapCenter,
			Zoom:        viz.MapZoom,
			Tiles:       viz.MapTiles,
			MarkerColor: viz.MarkerColor,
		},
	}
	if min, max, ok := ds.HeightBounds(); ok {
		resp.Height = filter.Range{Min: min, Max: max}
	}
	if min, max, ok := ds.DiameterBounds(); ok {
		resp.Diameter = filter.Range{Min: min, Max: max}
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	criteria, err := criteriaFromQuery(r, ds)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	sub := filter.Apply(ds, criteria)
	respondJSON(w, http.StatusOK, stats.Summarize(sub))
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	criteria, err := criteriaFromQuery(r, ds)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	mode, err := viz.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	sub := filter.Apply(ds, criteria)
	respondJSON(w, http.StatusOK, viz.Build(sub, mode))
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	s.handleExport(w, r, export.CSVFilename, export.CSVMIME, export.CSVBytes)
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	s.handleExport(w, r, export.XLSXFilename, export.XLSXMIME, export.XLSXBytes)
}

func (s *Server) handleExportShapefile(w http.ResponseWriter, r *http.Request) {
	s.handleExport(w, r, export.ShapefileZipFilename, export.ShapefileZipMIME, export.ShapefileZip)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, filename, mime string, serialize func(model.Subset) ([]byte, error)) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}
	criteria, err := criteriaFromQuery(r, ds)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	sub := filter.Apply(ds, criteria)
	data, err := serialize(sub)
	if err != nil {
		zap.L().Error("export failed", zap.String("filename", filename), zap.Error(err))
		respondError(w, http.StatusInternalServerError, eris.New("export failed"))
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck
}

// dataset resolves the cached dataset. A fetch failure is the one degraded
// state: the handler answers 503 with a retry hint and nothing else runs.
func (s *Server) dataset(w http.ResponseWriter, r *http.Request) (*model.Dataset, bool) {
	ds, err := s.data.Get(r.Context())
	if err != nil {
		zap.L().Error("dataset unavailable", zap.Error(err))
		respondJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error": "could not load dataset from source",
			"retry": true,
		})
		return nil, false
	}
	return ds, true
}

// criteriaFromQuery builds filter criteria from query parameters. Absent
// numeric parameters default to the observed bounds; present ones are clamped
// to them.
func criteriaFromQuery(r *http.Request, ds *model.Dataset) (filter.Criteria, error) {
	c := filter.Default(ds)

	if species := r.URL.Query().Get("species"); species != "" {
		c.Species = species
	}

	var err error
	if c.Height.Min, err = floatParam(r, "height_min", c.Height.Min); err != nil {
		return c, err
	}
	if c.Height.Max, err = floatParam(r, "height_max", c.Height.Max); err != nil {
		return c, err
	}
	if c.Diameter.Min, err = floatParam(r, "diameter_min", c.Diameter.Min); err != nil {
		return c, err
	}
	if c.Diameter.Max, err = floatParam(r, "diameter_max", c.Diameter.Max); err != nil {
		return c, err
	}

	return c.Clamp(ds), nil
}

func floatParam(r *http.Request, name string, def float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, eris.Errorf("invalid %s: %q", name, raw)
	}
	return v, nil
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, map[string]string{"error": err.Error()})
}
