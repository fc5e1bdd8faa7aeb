package geom

import (
	"math"

	"github.com/pkg/errors"
)

// ErrDegenerate is returned (wrapped) whenever an operation would produce a
// segment shorter than MinStartToEnd; callers in the compiler treat this as
// "omit the prototype, don't panic" per spec §7.
var ErrDegenerate = errors.New("geom: degenerate segment")

// Segment is either a straight Line or a circular Arc. Both support the
// same query surface so Path can treat them uniformly.
type Segment interface {
	Length() float64
	// PointAt returns the point at arclength distance d from the segment
	// start, clamped to [0, Length()].
	PointAt(d float64) Point
	// DirectionAt returns the unit tangent direction at arclength d.
	DirectionAt(d float64) Point
	Start() Point
	End() Point
	// Project returns the arclength distance along the segment of the
	// closest point to p, and that closest point.
	Project(p Point) (dist float64, closest Point)
}

// Line is a straight segment between two points.
type Line struct {
	A, B Point
}

// NewLine constructs a Line, returning ErrDegenerate if the endpoints are
// closer than MinStartToEnd.
func NewLine(a, b Point) (Line, error) {
	if a.Dist(b) < MinStartToEnd {
		return Line{}, errors.Wrapf(ErrDegenerate, "line endpoints within %.g", MinStartToEnd)
	}
	return Line{A: a, B: b}, nil
}

func (l Line) Length() float64 { return l.A.Dist(l.B) }

func (l Line) Start() Point { return l.A }
func (l Line) End() Point   { return l.B }

func (l Line) direction() Point {
	return l.B.Sub(l.A).Normalize2D()
}

func (l Line) PointAt(d float64) Point {
	length := l.Length()
	t := clamp(d, 0, length)
	return l.A.Add(l.direction().Scale(t))
}

func (l Line) DirectionAt(float64) Point {
	return l.direction()
}

func (l Line) Project(p Point) (float64, Point) {
	dir := l.direction()
	toP := p.Sub(l.A)
	t := clamp(toP.Dot2D(dir), 0, l.Length())
	return t, l.A.Add(dir.Scale(t))
}

// Arc is a circular arc given by center, radius and the start/end angles
// (radians, measured the same way as Point.Angle), traveled from
// AngleStart to AngleEnd counter-clockwise when CCW is true and clockwise
// when it is false.
type Arc struct {
	Center       Point
	Radius       float64
	AngleStart   float64
	AngleEnd     float64
	CCW          bool
}

// NewArcThroughCorner builds the arc that rounds the corner between the
// segment before->corner and the segment corner->after: it is tangent to
// both segments at the points `setback` back from the corner along each,
// so when before and after themselves lie `setback` from the corner the
// arc runs exactly from before to after. Its radius follows from the turn
// angle (setback / tan(turn/2)), and its center lies perpendicular to the
// incoming direction on the side the path turns toward -- the same
// tangent-circle construction the teacher's Dubins path solver uses
// (motionplan.Dubins.findCenter).
func NewArcThroughCorner(before, corner, after Point, setback float64) (Arc, error) {
	inDir := corner.Sub(before).Normalize2D()
	outDir := after.Sub(corner).Normalize2D()
	if inDir.Norm2D() < MinStartToEnd || outDir.Norm2D() < MinStartToEnd {
		return Arc{}, errors.Wrap(ErrDegenerate, "arc: zero-length adjoining segment")
	}
	turn := inDir.Cross2D(outDir)
	if math.Abs(turn) < 1e-9 {
		return Arc{}, errors.Wrap(ErrDegenerate, "arc: colinear corner, zero extent")
	}
	ccw := turn > 0
	// the circle touching both segments `setback` from the corner has
	// radius setback/tan(deflection/2), centered that far from the incoming
	// tangent point, perpendicular to the incoming direction
	deflection := math.Acos(math.Max(-1, math.Min(1, inDir.Dot2D(outDir))))
	radius := setback / math.Tan(deflection/2)
	tanIn := corner.Sub(inDir.Scale(setback))
	tanOut := corner.Add(outDir.Scale(setback))
	normal := inDir.Orthogonal()
	if !ccw {
		normal = normal.Scale(-1)
	}
	center := tanIn.Add(normal.Scale(radius))

	startAngle := tanIn.Sub(center).Angle()
	endAngle := tanOut.Sub(center).Angle()
	return Arc{Center: center, Radius: radius, AngleStart: startAngle, AngleEnd: endAngle, CCW: ccw}, nil
}

func (a Arc) sweep() float64 {
	d := a.AngleEnd - a.AngleStart
	if a.CCW {
		for d < 0 {
			d += 2 * math.Pi
		}
	} else {
		for d > 0 {
			d -= 2 * math.Pi
		}
	}
	return d
}

func (a Arc) Length() float64 {
	return math.Abs(a.sweep()) * a.Radius
}

func (a Arc) angleAt(d float64) float64 {
	if a.Radius < MinStartToEnd {
		return a.AngleStart
	}
	frac := clamp(d, 0, a.Length()) / a.Radius
	if !a.CCW {
		frac = -frac
	}
	return a.AngleStart + frac
}

func (a Arc) PointAt(d float64) Point {
	theta := a.angleAt(d)
	return a.Center.Add(Pt(math.Cos(theta), math.Sin(theta)).Scale(a.Radius))
}

func (a Arc) Start() Point { return a.PointAt(0) }
func (a Arc) End() Point   { return a.PointAt(a.Length()) }

func (a Arc) DirectionAt(d float64) Point {
	theta := a.angleAt(d)
	tangent := Pt(-math.Sin(theta), math.Cos(theta))
	if !a.CCW {
		tangent = tangent.Scale(-1)
	}
	return tangent
}

func (a Arc) Project(p Point) (float64, Point) {
	rel := p.Sub(a.Center)
	theta := rel.Angle()
	// clamp theta into [AngleStart, AngleStart+sweep] along the arc's travel direction
	sweep := a.sweep()
	delta := theta - a.AngleStart
	if a.CCW {
		for delta < 0 {
			delta += 2 * math.Pi
		}
		for delta > 2*math.Pi {
			delta -= 2 * math.Pi
		}
	} else {
		for delta > 0 {
			delta -= 2 * math.Pi
		}
		for delta < -2*math.Pi {
			delta += 2 * math.Pi
		}
	}
	d := clamp(delta, min0(sweep), max0(sweep)) * a.Radius
	if !a.CCW {
		d = -d
	}
	d = clamp(d, 0, a.Length())
	return d, a.PointAt(d)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func min0(v float64) float64 {
	if v < 0 {
		return v
	}
	return 0
}

func max0(v float64) float64 {
	if v > 0 {
		return v
	}
	return 0
}
