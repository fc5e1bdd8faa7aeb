package prototype

import (
	"github.com/cityplan/simcore/geom"
)

// smoothRoadPath implements spec §4.2.1: corners are rounded by inserting
// an arc at each interior corner tangent to both adjoining segments, with
// skirt points offset inward by the smaller of the two adjoining
// half-segment-lengths so adjacent roundings never overlap.
func smoothRoadPath(corners []geom.Point) (geom.Path, bool) {
	if len(corners) < 2 {
		return geom.Path{}, false
	}
	n := len(corners)
	segLen := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		segLen[i] = corners[i].Dist(corners[i+1])
	}

	// endOffset[i] / startOffset[i] are the inward skirt offsets for
	// segment i, near its first and second corner respectively.
	endOffset := make([]float64, n-1)
	startOffset := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		if i == 0 {
			endOffset[i] = 0
		} else {
			endOffset[i] = min(segLen[i-1], segLen[i]) / 2
		}
		if i == n-2 {
			startOffset[i] = 0
		} else {
			startOffset[i] = min(segLen[i], segLen[i+1]) / 2
		}
	}

	var segments []geom.Segment
	prevStart := corners[0] // START of the (nonexistent) previous segment == first corner
	for i := 0; i < n-1; i++ {
		dir := corners[i+1].Sub(corners[i]).Normalize2D()
		endPt := corners[i].Add(dir.Scale(endOffset[i]))
		startPt := corners[i+1].Sub(dir.Scale(startOffset[i]))

		if i > 0 {
			if arc, err := geom.NewArcThroughCorner(prevStart, corners[i], endPt, endOffset[i]); err == nil && arc.Length() > geom.MinStartToEnd {
				segments = append(segments, arc)
			} else if line, err := geom.NewLine(prevStart, endPt); err == nil {
				// zero-extent arc (tie-break): the corner is a straight
				// pass-through, joined by a line from skirt point to skirt
				// point.
				segments = append(segments, line)
			}
		}

		if line, err := geom.NewLine(endPt, startPt); err == nil {
			segments = append(segments, line)
		}
		// degenerate line (tie-break): arc already carries the corner,
		// nothing more to add for this segment.

		prevStart = startPt
	}

	if len(segments) == 0 {
		return geom.Path{}, false
	}
	path, err := geom.NewPath(segments)
	if err != nil {
		return geom.Path{}, false
	}
	return path, true
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
