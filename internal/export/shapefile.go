package export

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"

	"github.com/sells-group/treemap/internal/model"
)

// Download metadata for the shapefile export.
const (
	ShapefileZipFilename = "portland_trees_filtered_shp.zip"
	ShapefileZipMIME     = "application/zip"

	shapefileBase = "portland_trees_filtered"
)

// shapefileFields is the fixed DBF attribute schema. DBF columns are typed
// and length-limited, so only the core attributes travel with the geometry;
// the full property set is available through the CSV and XLSX exports.
func shapefileFields() []shp.Field {
	return []shp.Field{
		shp.StringField("COMMON", 64),
		shp.FloatField("HEIGHT", 13, 2),
		shp.FloatField("DIAMETER", 13, 2),
	}
}

// ShapefileZip serializes the subset as a point shapefile (.shp/.shx/.dbf)
// packaged in a zip archive. go-shp writes to the filesystem, so the parts
// are staged in a temp directory and zipped from there.
func ShapefileZip(sub model.Subset) ([]byte, error) {
	dir, err := os.MkdirTemp("", "treemap-shp-")
	if err != nil {
		return nil, eris.Wrap(err, "export: create temp dir")
	}
	defer os.RemoveAll(dir) //nolint:errcheck

	base := filepath.Join(dir, shapefileBase)
	if err := writeShapefile(base+".shp", sub); err != nil {
		return nil, err
	}
	// go-shp stages the DBF at base+"dbf", without the extension dot.
	if err := os.Rename(base+"dbf", base+".dbf"); err != nil {
		return nil, eris.Wrap(err, "export: stage dbf part")
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, ext := range []string{".shp", ".shx", ".dbf"} {
		if err := addZipEntry(zw, base+ext, shapefileBase+ext); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, eris.Wrap(err, "export: close zip")
	}
	return buf.Bytes(), nil
}

func writeShapefile(path string, sub model.Subset) error {
	w, err := shp.Create(path, shp.POINT)
	if err != nil {
		return eris.Wrap(err, "export: create shapefile")
	}
	defer w.Close() //nolint:errcheck

	if err := w.SetFields(shapefileFields()); err != nil {
		return eris.Wrap(err, "export: set shapefile fields")
	}

	for i, rec := range sub.Records {
		w.Write(&shp.Point{X: rec.Lon, Y: rec.Lat})
		if err := w.WriteAttribute(i, 0, rec.CommonName); err != nil {
			return eris.Wrap(err, "export: write shapefile attribute")
		}
		if err := w.WriteAttribute(i, 1, deref(rec.Height)); err != nil {
			return eris.Wrap(err, "export: write shapefile attribute")
		}
		if err := w.WriteAttribute(i, 2, deref(rec.Diameter)); err != nil {
			return eris.Wrap(err, "export: write shapefile attribute")
		}
	}
	return nil
}

// deref unwraps a measurement for DBF storage, which has no null; missing
// values are stored as zero.
func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func addZipEntry(zw *zip.Writer, path, name string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "export: read shapefile part %s", name)
	}
	f, err := zw.Create(name)
	if err != nil {
		return eris.Wrapf(err, "export: create zip entry %s", name)
	}
	if _, err := f.Write(data); err != nil {
		return eris.Wrapf(err, "export: write zip entry %s", name)
	}
	return nil
}
