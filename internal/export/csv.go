// Package export serializes a filtered subset to portable tabular formats.
package export

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/treemap/internal/model"
)

// Download metadata for the CSV export.
const (
	CSVFilename = "portland_trees_filtered.csv"
	CSVMIME     = "text/csv"
)

// CSVBytes serializes the subset as UTF-8 CSV with a header row. Column order
// follows the subset's schema. An empty subset produces header-only output.
func CSVBytes(sub model.Subset) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(sub.Columns); err != nil {
		return nil, eris.Wrap(err, "export: write csv header")
	}
	for _, rec := range sub.Records {
		if err := w.Write(row(sub.Columns, rec)); err != nil {
			return nil, eris.Wrap(err, "export: write csv row")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, eris.Wrap(err, "export: flush csv")
	}
	return buf.Bytes(), nil
}

func row(columns []string, rec model.TreeRecord) []string {
	out := make([]string, len(columns))
	for i, col := range columns {
		out[i] = cell(col, rec)
	}
	return out
}

func cell(col string, rec model.TreeRecord) string {
	switch col {
	case model.ColLat:
		return formatFloat(rec.Lat)
	case model.ColLon:
		return formatFloat(rec.Lon)
	}
	switch v := rec.Properties[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return formatFloat(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
