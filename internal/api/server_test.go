package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/treemap/internal/cache"
	"github.com/sells-group/treemap/internal/model"
)

func fptr(v float64) *float64 { return &v }

func testDataset() *model.Dataset {
	rec := func(common string, h, d float64, lat, lon float64) model.TreeRecord {
		return model.TreeRecord{
			CommonName: common, Height: fptr(h), Diameter: fptr(d),
			Lat: lat, Lon: lon,
			Properties: map[string]any{"COMMON": common, "HEIGHT": h, "DIAMETER": d},
		}
	}
	return &model.Dataset{
		Records: []model.TreeRecord{
			rec("Oak", 50, 20, 45.5, -122.6),
			rec("Pine", 80, 30, 45.52, -122.65),
			rec("Oak", 60, 25, 45.51, -122.64),
		},
		Columns:   []string{"COMMON", "DIAMETER", "HEIGHT", "lat", "lon"},
		Dropped:   1,
		FetchedAt: time.Unix(1700000000, 0),
	}
}

func newTestServer() *Server {
	ds := testDataset()
	c := cache.New(time.Hour, func(ctx context.Context) (*model.Dataset, error) {
		return ds, nil
	})
	return NewServer(c, nil)
}

func newFailingServer() *Server {
	c := cache.New(time.Hour, func(ctx context.Context) (*model.Dataset, error) {
		return nil, errors.New("connection refused")
	})
	return NewServer(c, nil)
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	return rr
}

func TestHealth(t *testing.T) {
	rr := get(t, newTestServer(), "/health")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestMeta(t *testing.T) {
	rr := get(t, newTestServer(), "/api/meta")
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Title    string   `json:"title"`
		Species  []string `json:"species"`
		Height   struct{ Min, Max float64 }
		Diameter struct{ Min, Max float64 }
		Records  int `json:"records"`
		Dropped  int `json:"dropped"`
		Map      struct {
			Center      [2]float64 `json:"center"`
			Zoom        int        `json:"zoom"`
			Tiles       string     `json:"tiles"`
			MarkerColor string     `json:"marker_color"`
		} `json:"map"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))

	assert.Equal(t, "Portland Heritage Trees", body.Title)
	assert.Equal(t, []string{"Oak", "Pine"}, body.Species)
	assert.InDelta(t, 50.0, body.Height.Min, 1e-9)
	assert.InDelta(t, 80.0, body.Height.Max, 1e-9)
	assert.Equal(t, 3, body.Records)
	assert.Equal(t, 1, body.Dropped)
	assert.Equal(t, 12, body.Map.Zoom)
	assert.Equal(t, "CartoDB Positron", body.Map.Tiles)
	assert.Equal(t, "#023F02", body.Map.MarkerColor)
	assert.InDelta(t, 45.523, body.Map.Center[0], 1e-9)
}

func TestStats_Filtered(t *testing.T) {
	rr := get(t, newTestServer(), "/api/stats?species=Oak&height_min=0&height_max=100&diameter_min=0&diameter_max=100")
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Count           int      `json:"count"`
		DistinctSpecies int      `json:"distinct_species"`
		MeanHeight      *float64 `json:"mean_height"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, 1, body.DistinctSpecies)
	require.NotNil(t, body.MeanHeight)
	assert.InDelta(t, 55.0, *body.MeanHeight, 1e-9)
}

func TestStats_EmptyResultIsValid(t *testing.T) {
	rr := get(t, newTestServer(), "/api/stats?height_min=200&height_max=300")
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Count      int      `json:"count"`
		MeanHeight *float64 `json:"mean_height"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, 0, body.Count)
	assert.Nil(t, body.MeanHeight)
}

func TestStats_InvalidParam(t *testing.T) {
	rr := get(t, newTestServer(), "/api/stats?height_min=tall")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMap_Modes(t *testing.T) {
	s := newTestServer()

	for _, tc := range []struct {
		mode    string
		cluster bool
		tooltip bool
	}{
		{"markers", false, true},
		{"cluster", true, true},
		{"heatmap", false, false},
	} {
		rr := get(t, s, "/api/map?mode="+tc.mode)
		require.Equal(t, http.StatusOK, rr.Code, "mode %s", tc.mode)

		var body struct {
			Mode    string `json:"mode"`
			Cluster bool   `json:"cluster"`
			Points  []struct {
				Lat     float64 `json:"lat"`
				Lon     float64 `json:"lon"`
				Tooltip string  `json:"tooltip"`
			} `json:"points"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, tc.mode, body.Mode)
		assert.Equal(t, tc.cluster, body.Cluster)
		require.Len(t, body.Points, 3)
		if tc.tooltip {
			assert.Contains(t, body.Points[0].Tooltip, "Oak")
		} else {
			assert.Empty(t, body.Points[0].Tooltip)
		}
	}
}

func TestMap_UnknownMode(t *testing.T) {
	rr := get(t, newTestServer(), "/api/map?mode=choropleth")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestExportCSV(t *testing.T) {
	rr := get(t, newTestServer(), "/api/export.csv?species=Oak")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "portland_trees_filtered.csv")

	lines := rr.Body.String()
	assert.Contains(t, lines, "COMMON,DIAMETER,HEIGHT,lat,lon")
	assert.Contains(t, lines, "Oak")
	assert.NotContains(t, lines, "Pine")
}

func TestExportCSV_EmptySubsetHeaderOnly(t *testing.T) {
	rr := get(t, newTestServer(), "/api/export.csv?height_min=200&height_max=300")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "COMMON,DIAMETER,HEIGHT,lat,lon\n", rr.Body.String())
}

func TestExportXLSX(t *testing.T) {
	rr := get(t, newTestServer(), "/api/export.xlsx")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "spreadsheetml")
	assert.NotEmpty(t, rr.Body.Bytes())
}

func TestExportShapefile(t *testing.T) {
	rr := get(t, newTestServer(), "/api/export.shp")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/zip", rr.Header().Get("Content-Type"))
	assert.NotEmpty(t, rr.Body.Bytes())
}

func TestFetchFailureIsDegradedState(t *testing.T) {
	s := newFailingServer()

	for _, path := range []string{"/api/meta", "/api/stats", "/api/map", "/api/export.csv"} {
		rr := get(t, s, path)
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code, "path %s", path)

		var body struct {
			Error string `json:"error"`
			Retry bool   `json:"retry"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.True(t, body.Retry)
		assert.NotEmpty(t, body.Error)
	}
}
