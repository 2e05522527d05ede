package stats

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/treemap/internal/model"
)

func fptr(v float64) *float64 { return &v }

func TestSummarize(t *testing.T) {
	sub := model.Subset{Records: []model.TreeRecord{
		{CommonName: "Oak", Height: fptr(50), Diameter: fptr(20)},
		{CommonName: "Oak", Height: fptr(60), Diameter: fptr(25)},
	}}

	s := Summarize(sub)
	assert.Equal(t, 2, s.Count)
	assert.Equal(t, 1, s.DistinctSpecies)
	assert.InDelta(t, 55.0, s.MeanHeight, 1e-9)
	assert.InDelta(t, 22.5, s.MeanDiameter, 1e-9)
}

func TestSummarize_MissingValuesExcludedFromMeans(t *testing.T) {
	sub := model.Subset{Records: []model.TreeRecord{
		{CommonName: "Oak", Height: fptr(50), Diameter: fptr(20)},
		{CommonName: "Pine"}, // no measurements, no effect on means
		{CommonName: ""},     // missing species not counted as distinct
	}}

	s := Summarize(sub)
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 2, s.DistinctSpecies)
	assert.InDelta(t, 50.0, s.MeanHeight, 1e-9)
	assert.InDelta(t, 20.0, s.MeanDiameter, 1e-9)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(model.Subset{})
	assert.Equal(t, 0, s.Count)
	assert.Equal(t, 0, s.DistinctSpecies)
	assert.True(t, math.IsNaN(s.MeanHeight))
	assert.True(t, math.IsNaN(s.MeanDiameter))
}

func TestSummarize_DistinctNeverExceedsCount(t *testing.T) {
	sub := model.Subset{Records: []model.TreeRecord{
		{CommonName: "Oak"}, {CommonName: "Pine"}, {CommonName: "Fir"},
	}}
	s := Summarize(sub)
	assert.LessOrEqual(t, s.DistinctSpecies, s.Count)
}

func TestStats_MarshalJSON_NaNBecomesNull(t *testing.T) {
	data, err := json.Marshal(Summarize(model.Subset{}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":0,"distinct_species":0,"mean_height":null,"mean_diameter":null}`, string(data))
}

func TestStats_MarshalJSON_Values(t *testing.T) {
	sub := model.Subset{Records: []model.TreeRecord{
		{CommonName: "Oak", Height: fptr(50), Diameter: fptr(20)},
	}}
	data, err := json.Marshal(Summarize(sub))
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":1,"distinct_species":1,"mean_height":50,"mean_diameter":20}`, string(data))
}
