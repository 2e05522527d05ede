package export

import (
	"bytes"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/treemap/internal/model"
)

// Download metadata for the XLSX export.
const (
	XLSXFilename = "portland_trees_filtered.xlsx"
	XLSXMIME     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// XLSXBytes serializes the subset as a single-sheet workbook with the same
// column order as the CSV export.
func XLSXBytes(sub model.Subset) ([]byte, error) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Trees")
	if err != nil {
		return nil, eris.Wrap(err, "export: add xlsx sheet")
	}

	header := sheet.AddRow()
	for _, col := range sub.Columns {
		header.AddCell().Value = col
	}
	for _, rec := range sub.Records {
		r := sheet.AddRow()
		for _, col := range sub.Columns {
			r.AddCell().Value = cell(col, rec)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, eris.Wrap(err, "export: write xlsx")
	}
	return buf.Bytes(), nil
}
