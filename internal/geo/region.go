// Package geo holds district geometry and the point-in-region test.
//
// A Region is built once from the decoder's rings and then queried many
// times, so the ring grouping work happens in NewRegion and not per point.
package geo

import (
	"github.com/paulmach/orb"
)

// DefaultNameField is the TIGER attribute holding the district display name.
const DefaultNameField = "NAMELSAD"

// TaggedRing is one ring as handed over by a decoder.
type TaggedRing struct {
	Ring orb.Ring
	Hole bool
}

// Outer tags r as an outer boundary.
func Outer(r orb.Ring) TaggedRing { return TaggedRing{Ring: r} }

// Hole tags r as a hole.
func Hole(r orb.Ring) TaggedRing { return TaggedRing{Ring: r, Hole: true} }

// Region is one district's area: the union of its outer rings minus the
// holes assigned to each of them.
type Region struct {
	polys  orb.MultiPolygon
	bounds []orb.Bound
}

// NewRegion groups rings into polygons. Each hole goes to the first outer
// ring that contains its first vertex; a hole no outer ring claims is
// attached to the outer ring preceding it, which is where shapefiles place
// it anyway. Such a hole with no preceding outer ring is dropped.
func NewRegion(rings []TaggedRing) *Region {
	var polys orb.MultiPolygon
	prevOuter := make([]int, len(rings))
	for i, tr := range rings {
		if len(tr.Ring) == 0 {
			continue
		}
		if tr.Hole {
			prevOuter[i] = len(polys) - 1
			continue
		}
		polys = append(polys, orb.Polygon{tr.Ring})
	}

	for i, tr := range rings {
		if !tr.Hole || len(tr.Ring) == 0 {
			continue
		}
		owner := prevOuter[i]
		for j, p := range polys {
			if locate(p[0], tr.Ring[0]) != outside {
				owner = j
				break
			}
		}
		if owner < 0 {
			continue
		}
		polys[owner] = append(polys[owner], tr.Ring)
	}

	return FromMultiPolygon(polys)
}

// FromMultiPolygon wraps polygons whose first ring is the outer boundary
// and whose remaining rings are holes.
func FromMultiPolygon(mp orb.MultiPolygon) *Region {
	r := &Region{polys: mp, bounds: make([]orb.Bound, len(mp))}
	for i, p := range mp {
		if len(p) > 0 {
			r.bounds[i] = p[0].Bound()
		}
	}
	return r
}

// MultiPolygon exposes the grouped rings. Callers must not modify it.
func (r *Region) MultiPolygon() orb.MultiPolygon {
	if r == nil {
		return nil
	}
	return r.polys
}

// Empty reports whether the region covers no area at all.
func (r *Region) Empty() bool {
	return r == nil || len(r.polys) == 0
}

// Bound is the bounding box of all outer rings.
func (r *Region) Bound() orb.Bound {
	if r.Empty() {
		return orb.Bound{}
	}
	b := r.bounds[0]
	for _, o := range r.bounds[1:] {
		b = b.Union(o)
	}
	return b
}
