// Package model defines the normalized heritage tree dataset and its views.
package model

import (
	"math"
	"sort"
	"time"
)

// Source property names used for typed field extraction.
const (
	PropCommon   = "COMMON"
	PropHeight   = "HEIGHT"
	PropDiameter = "DIAMETER"

	// Coordinate columns appended to the property columns.
	ColLat = "lat"
	ColLon = "lon"
)

// TreeRecord is one normalized row of the tree inventory.
type TreeRecord struct {
	CommonName string   // "" when the source value is missing
	Height     *float64 // feet; nil when missing
	Diameter   *float64 // inches; nil when missing
	Lat        float64
	Lon        float64
	Properties map[string]any // raw source attributes, passed through to exports
}

// Dataset is the full normalized table for one fetch. It is immutable after
// construction; cache refresh replaces the whole value.
type Dataset struct {
	Records   []TreeRecord
	Columns   []string // deterministic export order: sorted property keys, then lat, lon
	Dropped   int      // features excluded during normalization (missing or non-finite geometry)
	FetchedAt time.Time
}

// Subset is an ordered view over a Dataset produced by filtering. It shares
// the parent's column schema and never mutates the parent.
type Subset struct {
	Records []TreeRecord
	Columns []string
}

// Len returns the row count.
func (s Subset) Len() int { return len(s.Records) }

// All returns the whole dataset as a subset.
func (d *Dataset) All() Subset {
	return Subset{Records: d.Records, Columns: d.Columns}
}

// Species returns the sorted distinct non-missing common names. This drives
// the species select control.
func (d *Dataset) Species() []string {
	seen := make(map[string]struct{})
	for _, r := range d.Records {
		if r.CommonName != "" {
			seen[r.CommonName] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// HeightBounds returns the observed min/max height over present values.
// ok is false when no record carries a height.
func (d *Dataset) HeightBounds() (min, max float64, ok bool) {
	return bounds(d.Records, func(r TreeRecord) *float64 { return r.Height })
}

// DiameterBounds returns the observed min/max diameter over present values.
func (d *Dataset) DiameterBounds() (min, max float64, ok bool) {
	return bounds(d.Records, func(r TreeRecord) *float64 { return r.Diameter })
}

func bounds(records []TreeRecord, field func(TreeRecord) *float64) (float64, float64, bool) {
	min, max := math.Inf(1), math.Inf(-1)
	found := false
	for _, r := range records {
		v := field(r)
		if v == nil {
			continue
		}
		found = true
		if *v < min {
			min = *v
		}
		if *v > max {
			max = *v
		}
	}
	if !found {
		return 0, 0, false
	}
	return min, max, true
}
