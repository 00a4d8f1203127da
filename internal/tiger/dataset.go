package tiger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/EmpoweredVote/civicsearch/internal/geo"
	"github.com/EmpoweredVote/civicsearch/internal/logging"
)

// Dataset is a decoded boundary archive.
type Dataset struct {
	Name     string
	Manifest Manifest
	Features []geo.Feature
}

// Open reads a TIGER .zip from disk. The dataset name defaults to the file
// name without its extension, e.g. "tl_2019_25_sldl".
func Open(path string, rep logging.Reporter) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat archive: %w", err)
	}

	base := filepath.Base(path)
	return Load(f, info.Size(), base[:len(base)-len(filepath.Ext(base))], rep)
}

// Load resolves, extracts and decodes the archive readable through r.
// Nothing from the archive is retained once the features are decoded.
func Load(r io.ReaderAt, size int64, name string, rep logging.Reporter) (*Dataset, error) {
	rep = logging.OrDiscard(rep)
	start := time.Now()

	zr, err := OpenArchive(r, size)
	if err != nil {
		return nil, err
	}

	rep.Infof("Checking for files in archive %s", name)
	m, err := ResolveManifest(MemberNames(zr))
	if err != nil {
		return nil, err
	}
	rep.Debugf("shp=%s shx=%s dbf=%s cpg=%q", m.Geometry, m.Index, m.Attributes, m.CodePage)

	b, err := ExtractBundle(zr, m)
	if err != nil {
		return nil, err
	}
	defer b.Close()
	rep.Debugf("extracted %d+%d+%d bytes", b.Geometry.Size(), b.Attributes.Size(), b.Index.Size())

	features, err := Decode(b)
	if err != nil {
		return nil, err
	}

	rep.Infof("decoded %d regions from %s", len(features), name)
	logging.LogDuration(rep, "load "+name, start)

	return &Dataset{Name: name, Manifest: m, Features: features}, nil
}
