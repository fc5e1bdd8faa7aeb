package geom

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestLineBasics(t *testing.T) {
	l, err := NewLine(Pt(0, 0), Pt(10, 0))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, l.Length(), test.ShouldAlmostEqual, 10.0)
	mid := l.PointAt(5)
	test.That(t, mid.X, test.ShouldAlmostEqual, 5.0)
	test.That(t, mid.Y, test.ShouldAlmostEqual, 0.0)
}

func TestLineDegenerate(t *testing.T) {
	_, err := NewLine(Pt(0, 0), Pt(0, 0))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestArcThroughCornerRightAngle(t *testing.T) {
	before := Pt(-10, 0)
	corner := Pt(0, 0)
	after := Pt(0, 10)
	arc, err := NewArcThroughCorner(before, corner, after, 2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, arc.Length(), test.ShouldBeGreaterThan, 0.0)
	start := arc.Start()
	end := arc.End()
	test.That(t, start.Dist(corner), test.ShouldBeLessThan, 3.0)
	test.That(t, end.Dist(corner), test.ShouldBeLessThan, 3.0)
}

func TestPathSubsection(t *testing.T) {
	l1, _ := NewLine(Pt(0, 0), Pt(10, 0))
	l2, _ := NewLine(Pt(10, 0), Pt(20, 0))
	p, err := NewPath([]Segment{l1, l2})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.Length(), test.ShouldAlmostEqual, 20.0)

	sub, err := p.Subsection(5, 15)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sub.Length(), test.ShouldAlmostEqual, 10.0)
	test.That(t, sub.Start().X, test.ShouldAlmostEqual, 5.0)
	test.That(t, sub.End().X, test.ShouldAlmostEqual, 15.0)
}

func TestShiftOrthogonal(t *testing.T) {
	l, _ := NewLine(Pt(0, 0), Pt(10, 0))
	p, err := NewPath([]Segment{l})
	test.That(t, err, test.ShouldBeNil)
	shifted, err := p.ShiftOrthogonal(2.4)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, shifted.Start().Y, test.ShouldAlmostEqual, 2.4)
}

func TestBandAndClip(t *testing.T) {
	l1, _ := NewLine(Pt(0, 0), Pt(100, 0))
	p1, _ := NewPath([]Segment{l1})
	band1, err := Band(p1, 5, 10)
	test.That(t, err, test.ShouldBeNil)

	l2, _ := NewLine(Pt(50, -50), Pt(50, 50))
	p2, _ := NewPath([]Segment{l2})
	band2, err := Band(p2, 5, 10)
	test.That(t, err, test.ShouldBeNil)

	pieces := Clip(band1, band2)
	test.That(t, len(pieces), test.ShouldBeGreaterThan, 0)
}

func TestAreaSignedArea(t *testing.T) {
	ccw := Area{Ring: []Point{Pt(0, 0), Pt(10, 0), Pt(10, 10), Pt(0, 10)}}
	test.That(t, ccw.SignedArea2D() > 0, test.ShouldBeTrue)
}

func TestPointOrthogonalIsPerpendicular(t *testing.T) {
	p := Pt(3, 4)
	o := p.Orthogonal()
	test.That(t, math.Abs(p.Dot2D(o)), test.ShouldBeLessThan, 1e-9)
}
