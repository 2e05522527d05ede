package main

import (
	"math"

	"github.com/spf13/cobra"

	"github.com/sells-group/treemap/internal/filter"
	"github.com/sells-group/treemap/internal/model"
)

// filterFlags holds the shared filter flag values for stats and export.
type filterFlags struct {
	species     string
	heightMin   float64
	heightMax   float64
	diameterMin float64
	diameterMax float64
}

// register adds the filter flags to a command. Numeric flags default to NaN,
// meaning "use the dataset's observed bound".
func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.species, "species", filter.SpeciesAll, "exact species match (default: all species)")
	cmd.Flags().Float64Var(&f.heightMin, "height-min", math.NaN(), "minimum height in feet (default: observed minimum)")
	cmd.Flags().Float64Var(&f.heightMax, "height-max", math.NaN(), "maximum height in feet (default: observed maximum)")
	cmd.Flags().Float64Var(&f.diameterMin, "diameter-min", math.NaN(), "minimum diameter in inches (default: observed minimum)")
	cmd.Flags().Float64Var(&f.diameterMax, "diameter-max", math.NaN(), "maximum diameter in inches (default: observed maximum)")
}

// criteria resolves the flags against the dataset's observed bounds.
func (f *filterFlags) criteria(ds *model.Dataset) filter.Criteria {
	c := filter.Default(ds)
	c.Species = f.species
	if !math.IsNaN(f.heightMin) {
		c.Height.Min = f.heightMin
	}
	if !math.IsNaN(f.heightMax) {
		c.Height.Max = f.heightMax
	}
	if !math.IsNaN(f.diameterMin) {
		c.Diameter.Min = f.diameterMin
	}
	if !math.IsNaN(f.diameterMax) {
		c.Diameter.Max = f.diameterMax
	}
	return c.Clamp(ds)
}
