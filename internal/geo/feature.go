package geo

import (
	"strings"

	"github.com/paulmach/orb"
)

// Attributes is one record of the attribute table: field name to value.
// Text fields hold a string, numeric fields a float64, blank fields nil.
type Attributes map[string]any

// Text returns a non-empty text value for field.
func (a Attributes) Text(field string) (string, bool) {
	s, ok := a[field].(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// Feature is a decoded region together with its attribute record.
type Feature struct {
	Region     *Region
	Attributes Attributes
}

// Name returns the display name stored in field. A missing field, a blank
// value or a non-text value all mean the name is unavailable.
func (f Feature) Name(field string) (string, bool) {
	if field == "" {
		field = DefaultNameField
	}
	return f.Attributes.Text(field)
}

// RingsFromParts tags shapefile rings by winding order. Clockwise rings are
// outer boundaries and counter-clockwise rings are holes; rings with no
// area are kept as outer rings so their edges still match.
func RingsFromParts(parts []orb.Ring) []TaggedRing {
	out := make([]TaggedRing, 0, len(parts))
	for _, r := range parts {
		if len(r) == 0 {
			continue
		}
		out = append(out, TaggedRing{Ring: r, Hole: r.Orientation() == orb.CCW})
	}
	return out
}
