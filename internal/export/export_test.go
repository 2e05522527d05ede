package export

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/treemap/internal/model"
)

func fptr(v float64) *float64 { return &v }

func testSubset() model.Subset {
	return model.Subset{
		Columns: []string{"COMMON", "DIAMETER", "HEIGHT", "lat", "lon"},
		Records: []model.TreeRecord{
			{
				CommonName: "Oak", Height: fptr(50), Diameter: fptr(20),
				Lat: 45.5, Lon: -122.6,
				Properties: map[string]any{"COMMON": "Oak", "HEIGHT": 50.0, "DIAMETER": 20.0},
			},
			{
				CommonName: "Pine", Height: fptr(80), Diameter: fptr(30),
				Lat: 45.52, Lon: -122.65,
				Properties: map[string]any{"COMMON": "Pine", "HEIGHT": 80.0, "DIAMETER": 30.0},
			},
		},
	}
}

func TestCSVBytes(t *testing.T) {
	data, err := CSVBytes(testSubset())
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"COMMON", "DIAMETER", "HEIGHT", "lat", "lon"}, rows[0])
	assert.Equal(t, []string{"Oak", "20", "50", "45.5", "-122.6"}, rows[1])
	assert.Equal(t, []string{"Pine", "30", "80", "45.52", "-122.65"}, rows[2])
}

func TestCSVBytes_EmptySubsetIsHeaderOnly(t *testing.T) {
	sub := model.Subset{Columns: []string{"COMMON", "lat", "lon"}}
	data, err := CSVBytes(sub)
	require.NoError(t, err)
	assert.Equal(t, "COMMON,lat,lon\n", string(data))
}

func TestCSVBytes_MissingPropertyIsEmptyCell(t *testing.T) {
	sub := model.Subset{
		Columns: []string{"COMMON", "NOTES", "lat", "lon"},
		Records: []model.TreeRecord{{
			CommonName: "Oak", Lat: 45.5, Lon: -122.6,
			Properties: map[string]any{"COMMON": "Oak"},
		}},
	}
	data, err := CSVBytes(sub)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"Oak", "", "45.5", "-122.6"}, rows[1])
}

func TestXLSXBytes(t *testing.T) {
	data, err := XLSXBytes(testSubset())
	require.NoError(t, err)

	f, err := xlsx.OpenBinary(data)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)

	sheet := f.Sheets[0]
	assert.Equal(t, "Trees", sheet.Name)
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, "COMMON", sheet.Rows[0].Cells[0].Value)
	assert.Equal(t, "Oak", sheet.Rows[1].Cells[0].Value)
	assert.Equal(t, "Pine", sheet.Rows[2].Cells[0].Value)
}

func TestXLSXBytes_EmptySubset(t *testing.T) {
	sub := model.Subset{Columns: []string{"COMMON", "lat", "lon"}}
	data, err := XLSXBytes(sub)
	require.NoError(t, err)

	f, err := xlsx.OpenBinary(data)
	require.NoError(t, err)
	require.Len(t, f.Sheets[0].Rows, 1)
}

func TestShapefileZip(t *testing.T) {
	data, err := ShapefileZip(testSubset())
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	names := make(map[string]bool)
	dir := t.TempDir()
	for _, f := range zr.File {
		names[f.Name] = true
		rc, err := f.Open()
		require.NoError(t, err)
		out, err := os.Create(filepath.Join(dir, f.Name))
		require.NoError(t, err)
		_, err = out.ReadFrom(rc)
		require.NoError(t, err)
		require.NoError(t, out.Close())
		require.NoError(t, rc.Close())
	}
	for _, ext := range []string{".shp", ".shx", ".dbf"} {
		assert.True(t, names[shapefileBase+ext], "archive missing %s part", ext)
	}

	// Read the staged shapefile back and verify geometry plus attributes.
	r, err := shp.Open(filepath.Join(dir, shapefileBase+".shp"))
	require.NoError(t, err)
	defer r.Close()

	var commons []string
	for r.Next() {
		_, shape := r.Shape()
		pt, ok := shape.(*shp.Point)
		require.True(t, ok)
		assert.NotZero(t, pt.X)
		commons = append(commons, strings.TrimRight(r.Attribute(0), "\x00"))
	}
	assert.Equal(t, []string{"Oak", "Pine"}, commons)
}

func TestShapefileZip_EmptySubset(t *testing.T) {
	data, err := ShapefileZip(model.Subset{Columns: []string{"lat", "lon"}})
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Len(t, zr.File, 3)
}
