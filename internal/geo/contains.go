package geo

import "github.com/paulmach/orb"

type location int

const (
	outside location = iota
	boundary
	inside
)

// locate classifies p against ring r using even-odd ray casting, after an
// exact on-edge check. The ring may or may not repeat its first vertex.
func locate(r orb.Ring, p orb.Point) location {
	n := len(r)
	if n == 0 {
		return outside
	}

	in := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := r[i], r[j]
		if onSegment(p, a, b) {
			return boundary
		}
		if (a[1] > p[1]) != (b[1] > p[1]) &&
			p[0] < (b[0]-a[0])*(p[1]-a[1])/(b[1]-a[1])+a[0] {
			in = !in
		}
	}

	if in {
		return inside
	}
	return outside
}

func onSegment(p, a, b orb.Point) bool {
	cross := (b[0]-a[0])*(p[1]-a[1]) - (b[1]-a[1])*(p[0]-a[0])
	if cross != 0 {
		return false
	}
	return p[0] >= min(a[0], b[0]) && p[0] <= max(a[0], b[0]) &&
		p[1] >= min(a[1], b[1]) && p[1] <= max(a[1], b[1])
}

// RingContains reports whether p lies inside r or on one of its edges.
func RingContains(r orb.Ring, p orb.Point) bool {
	return locate(r, p) != outside
}

// Contains reports whether p lies in the region. Points on any edge,
// including the edge of a hole, count as inside: a point on the line
// shared by two districts belongs to both.
func (r *Region) Contains(p orb.Point) bool {
	if r == nil {
		return false
	}
	for i, poly := range r.polys {
		if len(poly) == 0 || !r.bounds[i].Contains(p) {
			continue
		}
		if locate(poly[0], p) == outside {
			continue
		}
		if !inHole(poly[1:], p) {
			return true
		}
	}
	return false
}

func inHole(holes []orb.Ring, p orb.Point) bool {
	for _, h := range holes {
		if locate(h, p) == inside {
			return true
		}
	}
	return false
}
