// Package stats computes summary statistics over a filtered subset.
package stats

import (
	"encoding/json"
	"math"

	"github.com/sells-group/treemap/internal/model"
)

// Stats summarizes a subset. Means are arithmetic means over present values
// only; when a subset carries no values the mean is NaN, which callers render
// as a dash (JSON null).
type Stats struct {
	Count           int
	DistinctSpecies int
	MeanHeight      float64
	MeanDiameter    float64
}

// Summarize computes the statistics for a subset. An empty subset yields
// zero counts and NaN means, never a division by zero.
func Summarize(sub model.Subset) Stats {
	s := Stats{Count: sub.Len()}

	species := make(map[string]struct{})
	var heightSum, diameterSum float64
	var heightN, diameterN int

	for _, rec := range sub.Records {
		if rec.CommonName != "" {
			species[rec.CommonName] = struct{}{}
		}
		if rec.Height != nil {
			heightSum += *rec.Height
			heightN++
		}
		if rec.Diameter != nil {
			diameterSum += *rec.Diameter
			diameterN++
		}
	}

	s.DistinctSpecies = len(species)
	s.MeanHeight = mean(heightSum, heightN)
	s.MeanDiameter = mean(diameterSum, diameterN)
	return s
}

func mean(sum float64, n int) float64 {
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// MarshalJSON maps NaN means to null so the degraded value survives JSON
// encoding.
func (s Stats) MarshalJSON() ([]byte, error) {
	type dto struct {
		Count           int      `json:"count"`
		DistinctSpecies int      `json:"distinct_species"`
		MeanHeight      *float64 `json:"mean_height"`
		MeanDiameter    *float64 `json:"mean_diameter"`
	}
	d := dto{Count: s.Count, DistinctSpecies: s.DistinctSpecies}
	if !math.IsNaN(s.MeanHeight) {
		d.MeanHeight = &s.MeanHeight
	}
	if !math.IsNaN(s.MeanDiameter) {
		d.MeanDiameter = &s.MeanDiameter
	}
	return json.Marshal(d)
}
