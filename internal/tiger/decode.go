package tiger

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/EmpoweredVote/civicsearch/internal/geo"
	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
)

const (
	shxHeaderSize = 100
	shxRecordSize = 8
	shxFileCode   = 9994
)

// indexRecordCount validates the .shx header against the member size and
// returns the number of records it indexes.
func indexRecordCount(idx *Member) (int, error) {
	var hdr [shxHeaderSize]byte
	if _, err := idx.ReadAt(hdr[:], 0); err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	if code := binary.BigEndian.Uint32(hdr[0:4]); code != shxFileCode {
		return 0, fmt.Errorf("bad file code %d", code)
	}

	// file length is counted in 16-bit words
	declared := int64(binary.BigEndian.Uint32(hdr[24:28])) * 2
	if declared != idx.Size() {
		return 0, fmt.Errorf("header declares %d bytes, member has %d", declared, idx.Size())
	}
	body := idx.Size() - shxHeaderSize
	if body%shxRecordSize != 0 {
		return 0, fmt.Errorf("truncated record in %d byte index", idx.Size())
	}
	return int(body / shxRecordSize), nil
}

// Decode hands the bundle to the shapefile reader and converts each record
// into a feature. Null shapes decode to empty regions, which match nothing.
func Decode(b *Bundle) (features []geo.Feature, err error) {
	// go-shp panics on some malformed records instead of returning an error.
	defer func() {
		if r := recover(); r != nil {
			features = nil
			err = &DecodeError{Err: fmt.Errorf("shapefile reader: %v", r)}
		}
	}()

	want, err := indexRecordCount(b.Index)
	if err != nil {
		return nil, &DecodeError{Err: fmt.Errorf("%s: %w", b.Index.Name, err)}
	}
	text := textDecoder(b.CodePage)

	sr := shp.SequentialReaderFromExt(io.NopCloser(b.Geometry), io.NopCloser(b.Attributes))
	defer sr.Close()

	features = make([]geo.Feature, 0, want)
	var fields []shp.Field
	for sr.Next() {
		if fields == nil {
			fields = sr.Fields()
		}
		n, shape := sr.Shape()
		region, err := regionOf(shape)
		if err != nil {
			return nil, &DecodeError{Err: fmt.Errorf("record %d: %w", n, err)}
		}

		attrs := make(geo.Attributes, len(fields))
		for i, f := range fields {
			attrs[f.String()] = fieldValue(f, text(sr.Attribute(i)))
		}
		features = append(features, geo.Feature{Region: region, Attributes: attrs})
	}
	if err := sr.Err(); err != nil && !errors.Is(err, io.EOF) {
		return nil, &DecodeError{Err: err}
	}
	if len(features) != want {
		return nil, &DecodeError{Err: fmt.Errorf("index lists %d records, geometry has %d", want, len(features))}
	}

	return features, nil
}

func regionOf(shape shp.Shape) (*geo.Region, error) {
	switch s := shape.(type) {
	case nil, *shp.Null:
		return geo.NewRegion(nil), nil
	case *shp.Polygon:
		return buildRegion(s.Parts, s.Points)
	case *shp.PolygonZ:
		return buildRegion(s.Parts, s.Points)
	case *shp.PolygonM:
		return buildRegion(s.Parts, s.Points)
	default:
		return nil, fmt.Errorf("unsupported shape type %T", shape)
	}
}

func buildRegion(parts []int32, points []shp.Point) (*geo.Region, error) {
	rings := make([]orb.Ring, 0, len(parts))
	for i, start := range parts {
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || start > end || int(end) > len(points) {
			return nil, fmt.Errorf("part %d spans [%d,%d) of %d points", i, start, end, len(points))
		}

		ring := make(orb.Ring, 0, end-start)
		for _, p := range points[start:end] {
			ring = append(ring, orb.Point{p.X, p.Y})
		}
		rings = append(rings, ring)
	}
	return geo.NewRegion(geo.RingsFromParts(rings)), nil
}

// fieldValue types a raw .dbf cell according to its column type.
func fieldValue(f shp.Field, raw string) any {
	raw = strings.TrimSpace(strings.Trim(raw, "\x00"))
	if raw == "" {
		return nil
	}
	switch f.Fieldtype {
	case 'N', 'F':
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil
		}
		return v
	case 'L':
		switch raw {
		case "T", "t", "Y", "y":
			return true
		case "F", "f", "N", "n":
			return false
		}
		return nil
	default:
		return raw
	}
}
