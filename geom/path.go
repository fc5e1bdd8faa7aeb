package geom

import (
	"github.com/pkg/errors"
)

// Path is an ordered, contiguous chain of Segments: Segments[i].End() must
// coincide with Segments[i+1].Start() within MinStartToEnd. It is the
// output type of road-gesture smoothing (§4.2.1) and of every lane offset
// and trim operation downstream of it.
type Path struct {
	Segments []Segment
	length   float64
}

// NewPath validates contiguity and precomputes total length.
func NewPath(segments []Segment) (Path, error) {
	if len(segments) == 0 {
		return Path{}, errors.Wrap(ErrDegenerate, "path: no segments")
	}
	total := 0.0
	for i, s := range segments {
		if i > 0 {
			prevEnd := segments[i-1].End()
			if !prevEnd.AlmostEqual(s.Start(), 1e-2) {
				return Path{}, errors.Errorf("path: discontinuity between segment %d and %d", i-1, i)
			}
		}
		total += s.Length()
	}
	if total < MinStartToEnd {
		return Path{}, errors.Wrap(ErrDegenerate, "path: zero length")
	}
	return Path{Segments: segments, length: total}, nil
}

func (p Path) Length() float64 { return p.length }

func (p Path) Start() Point { return p.Segments[0].Start() }
func (p Path) End() Point   { return p.Segments[len(p.Segments)-1].End() }

// locate finds the segment index and within-segment offset for an
// arclength distance d along the path, clamping d to [0, Length()].
func (p Path) locate(d float64) (idx int, within float64) {
	d = clamp(d, 0, p.length)
	for i, s := range p.Segments {
		l := s.Length()
		if d <= l || i == len(p.Segments)-1 {
			return i, clamp(d, 0, l)
		}
		d -= l
	}
	return len(p.Segments) - 1, p.Segments[len(p.Segments)-1].Length()
}

func (p Path) PointAt(d float64) Point {
	idx, within := p.locate(d)
	return p.Segments[idx].PointAt(within)
}

func (p Path) DirectionAt(d float64) Point {
	idx, within := p.locate(d)
	return p.Segments[idx].DirectionAt(within)
}

// Reversed returns the path traveled in the opposite direction, used to
// build backward-direction lanes from a forward-smoothed road centerline
// (spec §4.2.2).
func (p Path) Reversed() Path {
	segs := make([]Segment, len(p.Segments))
	for i, s := range p.Segments {
		segs[len(p.Segments)-1-i] = reverseSegment(s)
	}
	return Path{Segments: segs, length: p.length}
}

func reverseSegment(s Segment) Segment {
	switch v := s.(type) {
	case Line:
		return Line{A: v.B, B: v.A}
	case Arc:
		return Arc{Center: v.Center, Radius: v.Radius, AngleStart: v.AngleEnd, AngleEnd: v.AngleStart, CCW: !v.CCW}
	default:
		return s
	}
}

// Subsection returns the portion of the path between arclength distances
// start and end (start < end), trimming the first and last segments and
// dropping any wholly-outside segments. Returns ErrDegenerate if the
// resulting length is below MinStartToEnd.
func (p Path) Subsection(start, end float64) (Path, error) {
	start = clamp(start, 0, p.length)
	end = clamp(end, 0, p.length)
	if end-start < MinStartToEnd {
		return Path{}, errors.Wrap(ErrDegenerate, "subsection: empty range")
	}

	var segs []Segment
	cursor := 0.0
	for _, s := range p.Segments {
		segStart, segEnd := cursor, cursor+s.Length()
		cursor = segEnd
		lo, hi := max(start, segStart), min(end, segEnd)
		if hi-lo < MinStartToEnd {
			continue
		}
		segs = append(segs, trimSegment(s, lo-segStart, hi-segStart))
	}
	if len(segs) == 0 {
		return Path{}, errors.Wrap(ErrDegenerate, "subsection: no surviving segments")
	}
	return NewPath(segs)
}

func trimSegment(s Segment, from, to float64) Segment {
	switch v := s.(type) {
	case Line:
		return Line{A: v.PointAt(from), B: v.PointAt(to)}
	case Arc:
		newStart := v.angleAt(from)
		newEnd := v.angleAt(to)
		return Arc{Center: v.Center, Radius: v.Radius, AngleStart: newStart, AngleEnd: newEnd, CCW: v.CCW}
	default:
		return s
	}
}

// Project finds the arclength distance along the whole path closest to p.
func (p Path) Project(pt Point) (dist float64, closest Point) {
	best := -1.0
	bestDist := 0.0
	bestPt := Point{}
	cursor := 0.0
	for _, s := range p.Segments {
		d, cp := s.Project(pt)
		total := cursor + d
		dd := cp.Dist(pt)
		if best < 0 || dd < bestDist {
			best, bestDist, bestPt = total, dd, cp
		}
		cursor += s.Length()
	}
	return best, bestPt
}

// ShiftOrthogonal offsets every point of the path perpendicular to its
// local direction by `offset` (positive = left of travel direction),
// resampling each segment kind appropriately: a Line shifts to a parallel
// Line, an Arc shifts to a concentric Arc with adjusted radius.
func (p Path) ShiftOrthogonal(offset float64) (Path, error) {
	var segs []Segment
	for _, s := range p.Segments {
		shifted, err := shiftSegment(s, offset)
		if err != nil {
			continue // degenerate sub-segment: drop it, mirrors §7 silent omission
		}
		segs = append(segs, shifted)
	}
	if len(segs) == 0 {
		return Path{}, errors.Wrap(ErrDegenerate, "shift: all segments degenerate")
	}
	return NewPath(segs)
}

func shiftSegment(s Segment, offset float64) (Segment, error) {
	switch v := s.(type) {
	case Line:
		n := v.direction().Orthogonal()
		return NewLine(v.A.Add(n.Scale(offset)), v.B.Add(n.Scale(offset)))
	case Arc:
		newRadius := v.Radius
		if v.CCW {
			newRadius -= offset
		} else {
			newRadius += offset
		}
		if newRadius <= MinStartToEnd {
			return nil, errors.Wrap(ErrDegenerate, "shift: arc collapsed")
		}
		return Arc{Center: v.Center, Radius: newRadius, AngleStart: v.AngleStart, AngleEnd: v.AngleEnd, CCW: v.CCW}, nil
	default:
		return nil, errors.Errorf("shift: unknown segment type %T", s)
	}
}

