// Package filter applies user-selected criteria to the dataset.
package filter

import (
	"github.com/sells-group/treemap/internal/model"
)

// SpeciesAll is the sentinel meaning no species filter.
const SpeciesAll = "All"

// Range is an inclusive numeric interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether v lies within the range, inclusive on both ends.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Criteria holds one filter selection. Species matches exactly (case
// sensitive) unless it is SpeciesAll. Ranges are inclusive.
type Criteria struct {
	Species  string
	Height   Range
	Diameter Range
}

// Default returns criteria that pass every record with present measurements:
// no species filter and both ranges spanning the observed bounds.
func Default(ds *model.Dataset) Criteria {
	c := Criteria{Species: SpeciesAll}
	if min, max, ok := ds.HeightBounds(); ok {
		c.Height = Range{Min: min, Max: max}
	}
	if min, max, ok := ds.DiameterBounds(); ok {
		c.Diameter = Range{Min: min, Max: max}
	}
	return c
}

// Clamp intersects both ranges with the dataset's observed bounds, mirroring
// how the slider controls bound their values. A selection entirely outside
// the data stays empty after clamping: it filters to zero rows rather than
// widening back into the data.
func (c Criteria) Clamp(ds *model.Dataset) Criteria {
	if min, max, ok := ds.HeightBounds(); ok {
		c.Height = clampRange(c.Height, min, max)
	}
	if min, max, ok := ds.DiameterBounds(); ok {
		c.Diameter = clampRange(c.Diameter, min, max)
	}
	return c
}

func clampRange(r Range, lo, hi float64) Range {
	if r.Min < lo {
		r.Min = lo
	}
	if r.Max > hi {
		r.Max = hi
	}
	return r
}

// Apply returns the subset of records matching the criteria. It is pure:
// input order is preserved and the dataset is never mutated. Records with a
// missing height or diameter are excluded by the corresponding range
// predicate.
func Apply(ds *model.Dataset, c Criteria) model.Subset {
	out := model.Subset{Columns: ds.Columns}
	for _, rec := range ds.Records {
		if !matches(rec, c) {
			continue
		}
		out.Records = append(out.Records, rec)
	}
	return out
}

func matches(rec model.TreeRecord, c Criteria) bool {
	if c.Species != SpeciesAll && rec.CommonName != c.Species {
		return false
	}
	if rec.Height == nil || !c.Height.Contains(*rec.Height) {
		return false
	}
	if rec.Diameter == nil || !c.Diameter.Contains(*rec.Diameter) {
		return false
	}
	return true
}
