package prototype

import (
	"sort"

	"github.com/cityplan/simcore/geom"
)

// connector is one lane's attachment point to an intersection polygon: a
// stub lane ending at (incoming) or starting from (outgoing) the
// intersection boundary, carrying enough geometry to classify its turn
// and role (§4.2.5).
type connector struct {
	incoming bool // true: traffic flows INTO the intersection here
	lane     candidateLane
	atDist   float64 // arclength distance on the original candidate lane
	point    geom.Point
	dir      geom.Point
}

// lateralOffset is the signed distance of the connector's point from the
// intersection centroid projected onto the perpendicular of dir --
// approximates "signed lateral offset relative to direction" used to sort
// connector groups inner-to-outer (§4.2.5).
func (c connector) lateralOffset(centroid geom.Point) float64 {
	toPoint := c.point.Sub(centroid)
	return toPoint.Cross2D(c.dir)
}

// trimLaneAgainstIntersections implements §4.2.4: find every crossing of a
// candidate lane with every intersection polygon, record connectors, and
// compute the cut distances that the lane must be split at.
func trimLaneAgainstIntersections(lane candidateLane, intersections []geom.Area) (cuts []float64, conns []struct {
	intersectionIdx int
	conn            connector
}) {
	for idx, area := range intersections {
		hits := area.Intersections(lane.path)
		if len(hits) == 0 {
			continue
		}
		sort.Float64s(hits)
		switch {
		case len(hits) >= 2:
			entry, exit := hits[0], hits[len(hits)-1]
			cuts = append(cuts, entry, exit)
			conns = append(conns, struct {
				intersectionIdx int
				conn            connector
			}{idx, connector{incoming: true, lane: lane, atDist: entry, point: lane.path.PointAt(entry), dir: lane.path.DirectionAt(entry)}})
			conns = append(conns, struct {
				intersectionIdx int
				conn            connector
			}{idx, connector{incoming: false, lane: lane, atDist: exit, point: lane.path.PointAt(exit), dir: lane.path.DirectionAt(exit)}})
		case len(hits) == 1:
			cut := hits[0]
			cuts = append(cuts, cut)
			startInside := area.ContainsPoint(lane.path.Start())
			if startInside {
				// lane starts inside, exits through this boundary: an
				// outgoing connector.
				conns = append(conns, struct {
					intersectionIdx int
					conn            connector
				}{idx, connector{incoming: false, lane: lane, atDist: cut, point: lane.path.PointAt(cut), dir: lane.path.DirectionAt(cut)}})
			} else {
				// lane ends inside: an incoming connector.
				conns = append(conns, struct {
					intersectionIdx int
					conn            connector
				}{idx, connector{incoming: true, lane: lane, atDist: cut, point: lane.path.PointAt(cut), dir: lane.path.DirectionAt(cut)}})
			}
		}
	}
	return cuts, conns
}

// segmentsFromCuts sorts cuts, prepends/appends the path-boundary
// sentinels, and returns the non-degenerate sub-paths between consecutive
// cuts (§4.2.4 final step).
func segmentsFromCuts(path geom.Path, cuts []float64) []geom.Path {
	sort.Float64s(cuts)
	deduped := cuts[:0]
	for i, c := range cuts {
		if i == 0 || c-deduped[len(deduped)-1] > geom.MinStartToEnd {
			deduped = append(deduped, c)
		}
	}
	bounds := append([]float64{-1}, deduped...)
	bounds = append(bounds, path.Length()+1)

	var out []geom.Path
	for i := 0; i < len(bounds)-1; i++ {
		lo, hi := bounds[i], bounds[i+1]
		lo = clampf(lo, 0, path.Length())
		hi = clampf(hi, 0, path.Length())
		if hi-lo < geom.MinStartToEnd {
			continue
		}
		sub, err := path.Subsection(lo, hi)
		if err != nil {
			continue
		}
		out = append(out, sub)
	}
	return out
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
