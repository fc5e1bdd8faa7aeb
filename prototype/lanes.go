package prototype

import (
	"github.com/cityplan/simcore/geom"
)

// candidateLane is a lane path produced straight from gesture offsetting,
// before intersection trimming (§4.2.4). gestureIdx/side/laneIdx identify
// which gesture and logical lane it came from, for deterministic id
// hashing and for grouping during intersection connector-role assignment.
type candidateLane struct {
	gestureIdx int
	forward    bool
	laneIdx    int
	path       geom.Path
}

// extractCandidateLanes implements §4.2.2: offset the smoothed centerline
// orthogonally by ±(CENTER_LANE_DISTANCE/2 + k*LANE_DISTANCE) for each
// forward/backward lane index k.
func extractCandidateLanes(gestureIdx int, center geom.Path, forward, backward uint8) []candidateLane {
	var out []candidateLane
	for k := 0; k < int(forward); k++ {
		offset := CenterLaneDistance/2 + float64(k)*LaneDistance
		if shifted, err := center.ShiftOrthogonal(offset); err == nil {
			out = append(out, candidateLane{gestureIdx: gestureIdx, forward: true, laneIdx: k, path: shifted})
		}
	}
	reversed := center.Reversed()
	for k := 0; k < int(backward); k++ {
		offset := CenterLaneDistance/2 + float64(k)*LaneDistance
		if shifted, err := reversed.ShiftOrthogonal(offset); err == nil {
			out = append(out, candidateLane{gestureIdx: gestureIdx, forward: false, laneIdx: k, path: shifted})
		}
	}
	return out
}

// roadHalfWidth is the half-width of a road's thick outline used for
// intersection banding (§4.2.3): CENTER_LANE_DISTANCE/2 plus the lane
// count's worth of LANE_DISTANCE, padded by bandSlack of one more lane.
func roadHalfWidth(lanes uint8) float64 {
	return CenterLaneDistance/2 + float64(lanes)*LaneDistance + bandSlack*LaneDistance
}

func laneIDOf(gesturePath geom.Path, c candidateLane) ID {
	ih := newInfluenceHasher("lane")
	ih.str(boolStr(c.forward))
	ih.uint(uint64(c.laneIdx))
	ih.point(c.path.Start())
	ih.point(c.path.End())
	ih.float(c.path.Length())
	return ih.id()
}

func boolStr(b bool) string {
	if b {
		return "forward"
	}
	return "backward"
}
