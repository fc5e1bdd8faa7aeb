// Package geom is the geometry kernel: points, line/arc segments, paths,
// bands and areas, plus the operations the prototype compiler needs
// (orthogonal shift, subsection, projection, intersection, clipping).
package geom

import (
	"math"

	"github.com/golang/geo/r3"
)

// Point is a 2D point in plan space, represented with an r3.Vector whose Z
// is always zero so the kernel can reuse r3's vector algebra (Add, Sub,
// Norm, dot/cross via r3.Vector methods) instead of hand-rolling it.
type Point struct {
	r3.Vector
}

// Pt builds a Point from plain x, y coordinates.
func Pt(x, y float64) Point {
	return Point{r3.Vector{X: x, Y: y, Z: 0}}
}

// MinStartToEnd is the minimum length a path segment may have before it is
// treated as degenerate and omitted (spec §7).
const MinStartToEnd = 1e-3

func (p Point) Add(o Point) Point { return Point{p.Vector.Add(o.Vector)} }
func (p Point) Sub(o Point) Point { return Point{p.Vector.Sub(o.Vector)} }
func (p Point) Scale(s float64) Point {
	return Point{p.Vector.Mul(s)}
}

// Dist returns the Euclidean distance between p and o.
func (p Point) Dist(o Point) float64 {
	return p.Sub(o).Norm()
}

// Norm2D is the 2D length of the point treated as a vector.
func (p Point) Norm2D() float64 {
	return math.Hypot(p.X, p.Y)
}

// Normalize2D returns p scaled to unit length; the zero vector is returned
// unchanged (callers must guard degenerate directions themselves).
func (p Point) Normalize2D() Point {
	n := p.Norm2D()
	if n < MinStartToEnd {
		return p
	}
	return p.Scale(1 / n)
}

// Dot2D is the 2D dot product, ignoring Z.
func (p Point) Dot2D(o Point) float64 {
	return p.X*o.X + p.Y*o.Y
}

// Cross2D is the scalar 2D cross product (z-component of the 3D cross
// product), positive when o is counter-clockwise from p.
func (p Point) Cross2D(o Point) float64 {
	return p.X*o.Y - p.Y*o.X
}

// Orthogonal returns the vector rotated +90 degrees (counter-clockwise),
// used throughout the compiler to shift a path sideways by a lane offset.
func (p Point) Orthogonal() Point {
	return Pt(-p.Y, p.X)
}

// Lerp linearly interpolates between p and o at parameter t in [0,1].
func (p Point) Lerp(o Point, t float64) Point {
	return p.Add(o.Sub(p).Scale(t))
}

// Angle returns the direction of p as an angle in radians.
func (p Point) Angle() float64 {
	return math.Atan2(p.Y, p.X)
}

// AlmostEqual reports whether p and o are within the connection tolerance
// used for lane-interaction matching (spec §4.4, CONNECTION_TOLERANCE).
func (p Point) AlmostEqual(o Point, tolerance float64) bool {
	return p.Dist(o) <= tolerance
}
