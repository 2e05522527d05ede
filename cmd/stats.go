package main

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/treemap/internal/filter"
	"github.com/sells-group/treemap/internal/stats"
)

var statsFlags filterFlags

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print summary statistics for the filtered inventory",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := newDatasetCache().Get(cmd.Context())
		if err != nil {
			return err
		}

		sub := filter.Apply(ds, statsFlags.criteria(ds))
		formatStats(os.Stdout, stats.Summarize(sub))
		return nil
	},
}

// formatStats writes the summary block to w. Undefined means render as a dash.
func formatStats(w io.Writer, s stats.Stats) {
	fmt.Fprintf(w, "Total Trees:   %d\n", s.Count)
	fmt.Fprintf(w, "Species Count: %d\n", s.DistinctSpecies)
	fmt.Fprintf(w, "Avg Height:    %s\n", formatMean(s.MeanHeight, "ft"))
	fmt.Fprintf(w, "Avg Diameter:  %s\n", formatMean(s.MeanDiameter, "in"))
}

func formatMean(v float64, unit string) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.1f %s", v, unit)
}

func init() {
	statsFlags.register(statsCmd)
	rootCmd.AddCommand(statsCmd)
}
