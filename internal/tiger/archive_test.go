package tiger

import (
	"archive/zip"
	"bytes"
	"compress/flate"
	"hash/crc32"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
)

type entry struct {
	name string
	data []byte
}

// buildZip writes entries, in order, into an in-memory zip.
func buildZip(t *testing.T, entries ...entry) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: zip.Deflate})
		if err != nil {
			t.Fatalf("create %s: %v", e.name, err)
		}
		if _, err := w.Write(e.data); err != nil {
			t.Fatalf("write %s: %v", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

// rawZip stores one deflated member whose header declares size bytes
// regardless of how long payload really is.
func rawZip(t *testing.T, name string, payload []byte, size uint64) []byte {
	t.Helper()

	var comp bytes.Buffer
	fw, err := flate.NewWriter(&comp, flate.DefaultCompression)
	if err != nil {
		t.Fatalf("flate: %v", err)
	}
	fw.Write(payload)
	fw.Close()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.CreateRaw(&zip.FileHeader{
		Name:               name,
		Method:             zip.Deflate,
		CRC32:              crc32.ChecksumIEEE(payload),
		CompressedSize64:   uint64(comp.Len()),
		UncompressedSize64: size,
	})
	if err != nil {
		t.Fatalf("create raw %s: %v", name, err)
	}
	if _, err := w.Write(comp.Bytes()); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func openZip(t *testing.T, data []byte) *zip.Reader {
	t.Helper()
	zr, err := OpenArchive(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	return zr
}

type district struct {
	name  string
	geoid string
	parts [][]shp.Point
}

func box(minX, minY, maxX, maxY float64) []shp.Point {
	// clockwise, closed
	return []shp.Point{{X: minX, Y: minY}, {X: minX, Y: maxY}, {X: maxX, Y: maxY}, {X: maxX, Y: minY}, {X: minX, Y: minY}}
}

func hole(minX, minY, maxX, maxY float64) []shp.Point {
	// counter-clockwise, closed
	return []shp.Point{{X: minX, Y: minY}, {X: maxX, Y: minY}, {X: maxX, Y: maxY}, {X: minX, Y: maxY}, {X: minX, Y: minY}}
}

// writeShapefile writes districts with go-shp and returns the bytes of the
// .shp, .shx and .dbf files keyed by extension.
func writeShapefile(t *testing.T, districts []district) map[string][]byte {
	t.Helper()

	dir := t.TempDir()
	base := filepath.Join(dir, "tl_test.shp")
	w, err := shp.Create(base, shp.POLYGON)
	if err != nil {
		t.Fatalf("shp.Create: %v", err)
	}
	if err := w.SetFields([]shp.Field{
		shp.StringField("NAMELSAD", 40),
		shp.StringField("GEOID", 8),
		shp.NumberField("SEATS", 4),
	}); err != nil {
		t.Fatalf("SetFields: %v", err)
	}
	for i, d := range districts {
		poly := shp.Polygon(*shp.NewPolyLine(d.parts))
		n := int(w.Write(&poly))
		if err := w.WriteAttribute(n, 0, d.name); err != nil {
			t.Fatalf("write name %d: %v", i, err)
		}
		if err := w.WriteAttribute(n, 1, d.geoid); err != nil {
			t.Fatalf("write geoid %d: %v", i, err)
		}
		if err := w.WriteAttribute(n, 2, i+1); err != nil {
			t.Fatalf("write seats %d: %v", i, err)
		}
	}
	w.Close()

	// go-shp v0.1.1 names the attribute file "<base>dbf", without the dot.
	names := map[string]string{
		"shp": "tl_test.shp",
		"shx": "tl_test.shx",
		"dbf": "tl_testdbf",
	}
	out := map[string][]byte{}
	for ext, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("read %s: %v", ext, err)
		}
		out[ext] = data
	}
	return out
}

// tigerZip packages shapefile bytes the way Census does, including the
// metadata members that must be ignored.
func tigerZip(t *testing.T, files map[string][]byte, cpg string) []byte {
	t.Helper()
	entries := []entry{
		{"tl_test.dbf", files["dbf"]},
		{"tl_test.prj", []byte(`GEOGCS["GCS_North_American_1983"]`)},
		{"tl_test.shp", files["shp"]},
		{"tl_test.shx", files["shx"]},
		{"tl_test.shp.ea.iso.xml", []byte("<xml/>")},
		{"tl_test.shp.iso.xml", []byte("<xml/>")},
	}
	if cpg != "" {
		entries = append([]entry{{"tl_test.cpg", []byte(cpg)}}, entries...)
	}
	return buildZip(t, entries...)
}
