package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/treemap/internal/export"
	"github.com/sells-group/treemap/internal/filter"
	"github.com/sells-group/treemap/internal/model"
)

var (
	exportFlags  filterFlags
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the filtered inventory to a tabular file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := newDatasetCache().Get(cmd.Context())
		if err != nil {
			return err
		}

		sub := filter.Apply(ds, exportFlags.criteria(ds))

		data, defaultName, err := serializeSubset(sub, exportFormat)
		if err != nil {
			return err
		}

		out := exportOut
		if out == "" {
			out = defaultName
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return eris.Wrapf(err, "export: write %s", out)
		}

		zap.L().Info("export written",
			zap.String("path", out),
			zap.Int("rows", sub.Len()),
			zap.String("format", exportFormat),
		)
		fmt.Printf("Wrote %d row(s) to %s\n", sub.Len(), out)
		return nil
	},
}

func serializeSubset(sub model.Subset, format string) ([]byte, string, error) {
	switch format {
	case "csv":
		data, err := export.CSVBytes(sub)
		return data, export.CSVFilename, err
	case "xlsx":
		data, err := export.XLSXBytes(sub)
		return data, export.XLSXFilename, err
	case "shp":
		data, err := export.ShapefileZip(sub)
		return data, export.ShapefileZipFilename, err
	default:
		return nil, "", eris.Errorf("export: unknown format %q (want csv, xlsx, or shp)", format)
	}
}

func init() {
	exportFlags.register(exportCmd)
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "output format: csv, xlsx, or shp")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output path (default: format-specific filename)")
	rootCmd.AddCommand(exportCmd)
}
