package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/treemap/internal/model"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the tree inventory and print a load summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := newDatasetCache().Get(cmd.Context())
		if err != nil {
			return err
		}

		formatLoadSummary(os.Stdout, ds)
		return nil
	},
}

// formatLoadSummary writes the fetch result overview to w.
func formatLoadSummary(w io.Writer, ds *model.Dataset) {
	fmt.Fprintf(w, "Records:  %d\n", len(ds.Records))
	fmt.Fprintf(w, "Dropped:  %d malformed feature(s)\n", ds.Dropped)
	fmt.Fprintf(w, "Species:  %d distinct\n", len(ds.Species()))
	if min, max, ok := ds.HeightBounds(); ok {
		fmt.Fprintf(w, "Height:   %.0f-%.0f ft\n", min, max)
	}
	if min, max, ok := ds.DiameterBounds(); ok {
		fmt.Fprintf(w, "Diameter: %.0f-%.0f in\n", min, max)
	}
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
