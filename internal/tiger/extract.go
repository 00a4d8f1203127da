package tiger

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"math"
	"strings"
)

// maxPrealloc caps the buffer reserved up front for one member.
const maxPrealloc = 64 << 20

// Member is the fully decompressed contents of one archive member. It
// supports Read, Seek and ReadAt, which the shapefile decoder needs and
// a zip member stream cannot offer.
type Member struct {
	Name string
	*bytes.Reader
}

// Close drops the buffered contents.
func (m *Member) Close() error {
	if m != nil && m.Reader != nil {
		m.Reader.Reset(nil)
	}
	return nil
}

// Bundle holds the three materialized shapefile members plus the declared
// code page, if the archive had one.
type Bundle struct {
	Geometry   *Member
	Attributes *Member
	Index      *Member
	CodePage   string
}

// Close releases every member of the bundle.
func (b *Bundle) Close() error {
	if b == nil {
		return nil
	}
	b.Geometry.Close()
	b.Attributes.Close()
	b.Index.Close()
	return nil
}

// OpenArchive reads the zip central directory from r.
func OpenArchive(r io.ReaderAt, size int64) (*zip.Reader, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, &ExtractionError{Err: err}
	}
	return zr, nil
}

// MemberNames lists the archive entries in directory order.
func MemberNames(zr *zip.Reader) []string {
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names
}

func findFile(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name && !f.FileInfo().IsDir() {
			return f
		}
	}
	return nil
}

// Materialize decompresses the named member into memory and returns it
// positioned at offset zero.
func Materialize(zr *zip.Reader, name string) (*Member, error) {
	f := findFile(zr, name)
	if f == nil {
		return nil, &ExtractionError{Member: name, Err: fs.ErrNotExist}
	}

	rc, err := f.Open()
	if err != nil {
		return nil, &ExtractionError{Member: name, Err: err}
	}
	defer rc.Close()

	want := f.UncompressedSize64
	if want > math.MaxInt64-1 {
		return nil, &ExtractionError{Member: name, Err: fmt.Errorf("declared size %d is out of range", want)}
	}

	// The declared size is only a hint until the copy confirms it.
	buf := bytes.NewBuffer(make([]byte, 0, min(want, maxPrealloc)))
	n, err := io.Copy(buf, io.LimitReader(rc, int64(want)+1))
	if err != nil {
		return nil, &ExtractionError{Member: name, Err: err}
	}
	if uint64(n) != want {
		return nil, &ExtractionError{
			Member: name,
			Err:    fmt.Errorf("read %d bytes, header declares %d: %w", n, want, io.ErrUnexpectedEOF),
		}
	}

	return &Member{Name: name, Reader: bytes.NewReader(buf.Bytes())}, nil
}

// ExtractBundle materializes the geometry, attribute and index members of
// m, in that order, and returns the first failure without a partial bundle.
func ExtractBundle(zr *zip.Reader, m Manifest) (*Bundle, error) {
	shp, err := Materialize(zr, m.Geometry)
	if err != nil {
		return nil, err
	}
	dbf, err := Materialize(zr, m.Attributes)
	if err != nil {
		shp.Close()
		return nil, err
	}
	shx, err := Materialize(zr, m.Index)
	if err != nil {
		shp.Close()
		dbf.Close()
		return nil, err
	}

	b := &Bundle{Geometry: shp, Attributes: dbf, Index: shx}
	if m.CodePage != "" {
		cpg, err := Materialize(zr, m.CodePage)
		if err != nil {
			b.Close()
			return nil, err
		}
		defer cpg.Close()
		raw, err := io.ReadAll(cpg)
		if err != nil {
			b.Close()
			return nil, &ExtractionError{Member: m.CodePage, Err: err}
		}
		b.CodePage = strings.TrimSpace(string(raw))
	}
	return b, nil
}
