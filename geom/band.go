package geom

import (
	"github.com/pkg/errors"
)

// Area is a closed polygon boundary: an ordered ring of points, implicitly
// closed (last point connects back to the first). Areas back both Lot
// prototypes (§4.2.6) and Intersection polygons (§4.2.3).
type Area struct {
	Ring []Point
}

// SignedArea2D returns twice the signed area of the ring (positive for
// counter-clockwise rings); the compiler hashes its magnitude into an
// intersection prototype's id.
func (a Area) SignedArea2D() float64 {
	if len(a.Ring) < 3 {
		return 0
	}
	sum := 0.0
	for i := range a.Ring {
		p := a.Ring[i]
		q := a.Ring[(i+1)%len(a.Ring)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return sum
}

// Band builds the thick outline (a closed Area) around a path, width wide
// on each side, extended by `extend` units past each endpoint -- this is
// the road-outline band used for intersection-polygon clipping (§4.2.3).
func Band(path Path, width, extend float64) (Area, error) {
	if path.Length() < MinStartToEnd {
		return Area{}, errors.Wrap(ErrDegenerate, "band: zero-length path")
	}
	left, err := path.ShiftOrthogonal(width)
	if err != nil {
		return Area{}, errors.Wrap(err, "band: left shift")
	}
	right, err := path.ShiftOrthogonal(-width)
	if err != nil {
		return Area{}, errors.Wrap(err, "band: right shift")
	}

	startDir := path.DirectionAt(0)
	endDir := path.DirectionAt(path.Length())

	startCapL := left.Start().Sub(startDir.Scale(extend))
	startCapR := right.Start().Sub(startDir.Scale(extend))
	endCapL := left.End().Add(endDir.Scale(extend))
	endCapR := right.End().Add(endDir.Scale(extend))

	ring := append([]Point{startCapR, startCapL}, samplePath(left, 8)...)
	ring = append(ring, endCapL, endCapR)
	rightSamples := samplePath(right, 8)
	for i := len(rightSamples) - 1; i >= 0; i-- {
		ring = append(ring, rightSamples[i])
	}
	return Area{Ring: ring}, nil
}

// samplePath returns at least n+1 evenly arclength-spaced points along
// path, including both endpoints; when the path holds arcs it raises the
// count until consecutive samples on every arc are at most
// CurveLinearizationMaxAngle apart, flattening arcs into polygon vertices
// for the polygon clipper (which operates on straight-edged rings).
func samplePath(path Path, n int) []Point {
	if n < 1 {
		n = 1
	}
	for _, s := range path.Segments {
		if arc, ok := s.(Arc); ok && arc.Radius > 0 {
			if need := int(path.Length()/(CurveLinearizationMaxAngle*arc.Radius)) + 1; need > n {
				n = need
			}
		}
	}
	pts := make([]Point, 0, n+1)
	for i := 0; i <= n; i++ {
		d := path.Length() * float64(i) / float64(n)
		pts = append(pts, path.PointAt(d))
	}
	return pts
}

// ContainsPoint reports whether p lies inside the area using the standard
// ray-casting even-odd rule.
func (a Area) ContainsPoint(p Point) bool {
	inside := false
	n := len(a.Ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := a.Ring[i], a.Ring[j]
		if ((pi.Y > p.Y) != (pj.Y > p.Y)) &&
			(p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X) {
			inside = !inside
		}
	}
	return inside
}

// Centroid returns the arithmetic mean of the ring's vertices, used as a
// representative_position for Intersection/Lot prototypes.
func (a Area) Centroid() Point {
	if len(a.Ring) == 0 {
		return Point{}
	}
	sum := Point{}
	for _, p := range a.Ring {
		sum = sum.Add(p)
	}
	return sum.Scale(1 / float64(len(a.Ring)))
}

// Intersections returns the arclength distances along path at which it
// crosses the area's boundary, used by lane-trimming (§4.2.4).
func (a Area) Intersections(path Path) []float64 {
	var hits []float64
	n := len(a.Ring)
	cursor := 0.0
	for _, seg := range path.Segments {
		samples := sampleSegment(seg, 12)
		for k := 0; k < len(samples)-1; k++ {
			p1, p2 := samples[k].pt, samples[k+1].pt
			for i, j := 0, n-1; i < n; j, i = i, i+1 {
				if t, ok := segmentIntersect(p1, p2, a.Ring[j], a.Ring[i]); ok {
					hits = append(hits, cursor+samples[k].d+t*(samples[k+1].d-samples[k].d))
				}
			}
		}
		cursor += seg.Length()
	}
	return hits
}

type sampledPoint struct {
	pt Point
	d  float64
}

func sampleSegment(s Segment, n int) []sampledPoint {
	out := make([]sampledPoint, 0, n+1)
	for i := 0; i <= n; i++ {
		d := s.Length() * float64(i) / float64(n)
		out = append(out, sampledPoint{pt: s.PointAt(d), d: d})
	}
	return out
}

// segmentIntersect returns the parametric t along [p1,p2] where it crosses
// [p3,p4], if any.
func segmentIntersect(p1, p2, p3, p4 Point) (float64, bool) {
	d1 := p2.Sub(p1)
	d2 := p4.Sub(p3)
	denom := d1.Cross2D(d2)
	if denom == 0 {
		return 0, false
	}
	diff := p3.Sub(p1)
	t := diff.Cross2D(d2) / denom
	u := diff.Cross2D(d1) / denom
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return 0, false
	}
	return t, true
}
