package prototype

import (
	"math"
	"sort"

	"github.com/cityplan/simcore/geom"
)

// turnKind classifies a connecting-lane relationship between an incoming
// and an outgoing connector group (§4.2.5).
type turnKind int

const (
	turnStraight turnKind = iota
	turnOuter
	turnInner
	turnU
)

// groupKey identifies one connector group: all lanes of one gesture side
// meeting one intersection.
type groupKey struct {
	gestureIdx int
	forward    bool
}

// connectorGroup is a sorted (inner-to-outer) set of same-side connectors.
type connectorGroup struct {
	key        groupKey
	incoming   bool
	connectors []connector
}

// representativeDir is the direction of the group's middle connector, used
// to classify turns against other groups.
func (g connectorGroup) representativeDir() geom.Point {
	return g.connectors[len(g.connectors)/2].dir
}

func (g connectorGroup) representativePoint() geom.Point {
	return g.connectors[len(g.connectors)/2].point
}

// groupConnectors partitions an intersection's connectors into sorted
// incoming/outgoing groups (§4.2.5: "sort incoming and outgoing connector
// groups by their signed lateral offset ... inner-to-outer").
func groupConnectors(centroid geom.Point, conns []connector) (incoming, outgoing []connectorGroup) {
	byKey := map[groupKey]*connectorGroup{}
	var order []groupKey
	for _, c := range conns {
		k := groupKey{gestureIdx: c.lane.gestureIdx, forward: c.lane.forward}
		g, ok := byKey[k]
		if !ok {
			g = &connectorGroup{key: k, incoming: c.incoming}
			byKey[k] = g
			order = append(order, k)
		}
		g.connectors = append(g.connectors, c)
	}
	for _, k := range order {
		g := byKey[k]
		sort.Slice(g.connectors, func(i, j int) bool {
			return g.connectors[i].lateralOffset(centroid) < g.connectors[j].lateralOffset(centroid)
		})
		if g.incoming {
			incoming = append(incoming, *g)
		} else {
			outgoing = append(outgoing, *g)
		}
	}
	return incoming, outgoing
}

// classifyTurn implements §4.2.5's angle-based classification.
func classifyTurn(in, out connectorGroup) turnKind {
	inDir := in.representativeDir()
	outDir := out.representativeDir()
	angle := angleBetween(inDir, outDir)

	if nearCoincidentReverse(in, out) {
		return turnU
	}
	if angle <= math.Pi/6 {
		return turnStraight
	}
	// cross product sign: positive means out is CCW (left) of in -- a
	// right turn in a right-handed, y-up plane is then the *negative*
	// cross product side.
	cross := inDir.Cross2D(outDir)
	if cross < 0 {
		return turnOuter // right turn
	}
	return turnInner // left turn
}

func angleBetween(a, b geom.Point) float64 {
	cos := clampUnit(a.Dot2D(b))
	return math.Acos(cos)
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

func nearCoincidentReverse(in, out connectorGroup) bool {
	pos := in.representativePoint().Dist(out.representativePoint())
	opposite := in.representativeDir().Dot2D(out.representativeDir()) < -0.98
	return pos < 2.0 && opposite
}

// roleCounts implements the §4.2.5 role-assignment table: given how many
// of {inner,straight,outer} turn kinds are available out of an incoming
// group of size n, how many of its lanes (inner-to-outer) carry the inner
// and outer role bits (the remainder carry straight).
func roleCounts(hasInner, hasStraight, hasOuter bool, n int) (innerCount, outerCount int) {
	switch {
	case hasInner && hasStraight && hasOuter:
		return ceilDiv(n, 4), ceilDiv(n, 4)
	case !hasInner && hasStraight && hasOuter:
		return 0, ceilDiv(n, 3)
	case hasInner && hasStraight && !hasOuter:
		return ceilDiv(n, 3), 0
	case !hasInner && !hasOuter:
		return 0, 0
	case hasInner && !hasStraight && !hasOuter:
		return n, 0
	case !hasInner && !hasStraight && hasOuter:
		return 0, n
	case hasInner && !hasStraight && hasOuter:
		return ceilDiv(n, 2), ceilDiv(n, 2)
	default:
		return 0, 0
	}
}

func ceilDiv(n, d int) int {
	return (n + d - 1) / d
}

// laneRole is the §4.2.5 role-bit assignment for a single connector within
// an inner-to-outer sorted group: which turn kind(s) it is allowed to
// serve.
type laneRole struct{ Inner, Straight, Outer, U bool }

// laneRoles returns, for each lane index (0=innermost) in a group of size
// n, whether it carries the inner_turn/straight/outer_turn bits, following
// §4.2.5: the innermost inner lane also carries u_turn; middle lanes carry
// straight when n<3 or they sit between the inner and outer bands.
func laneRoles(n int, hasInner, hasStraight, hasOuter bool) []laneRole {
	innerCount, outerCount := roleCounts(hasInner, hasStraight, hasOuter, n)
	roles := make([]laneRole, n)
	for i := 0; i < n; i++ {
		r := &roles[i]
		if i < innerCount {
			r.Inner = true
			if i == 0 {
				r.U = true
			}
		}
		if i >= n-outerCount {
			r.Outer = true
		}
		if !r.Inner && !r.Outer {
			r.Straight = true
		} else if n < 3 {
			r.Straight = true
		}
	}
	return roles
}

// roleMatches reports whether a connector's assigned role permits it to
// serve a connection of the given turn kind.
func roleMatches(r laneRole, kind turnKind) bool {
	switch kind {
	case turnStraight:
		return r.Straight
	case turnInner:
		return r.Inner
	case turnOuter:
		return r.Outer
	case turnU:
		return r.U
	default:
		return false
	}
}

// roleIndices returns, in inner-to-outer order, the connector indices
// within a group whose assigned role matches kind -- the role-compatible
// subset §4.2.5 requires pairing within, rather than every connector in
// the group.
func roleIndices(roles []laneRole, kind turnKind) []int {
	var idxs []int
	for i, r := range roles {
		if roleMatches(r, kind) {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

// reachableKinds aggregates, over every other group self could connect to
// within the intersection, which turn kinds self actually reaches -- the
// laneRoles input describing the group as a whole (§4.2.5), not a single
// (in,out) pair. isIncoming selects self's position in classifyTurn's
// (in, out) argument order.
func reachableKinds(self connectorGroup, others []connectorGroup, isIncoming bool) (hasInner, hasStraight, hasOuter bool) {
	for _, other := range others {
		if self.key == other.key {
			continue
		}
		var kind turnKind
		if isIncoming {
			kind = classifyTurn(self, other)
		} else {
			kind = classifyTurn(other, self)
		}
		switch kind {
		case turnStraight:
			hasStraight = true
		case turnInner:
			hasInner = true
		case turnOuter:
			hasOuter = true
		case turnU:
			hasInner = true // the u-turn bit rides on the reserved innermost lane
		}
	}
	return hasInner, hasStraight, hasOuter
}

// connectingLane builds the bi-arc-ish path joining one incoming connector
// to one outgoing connector: two corners bridged through a control point
// found by intersecting the connectors' tangent rays, then smoothed with
// the same corner-rounding construction road centerlines use (§4.2.1),
// reused here rather than re-derived.
func connectingLane(in, out connector) (geom.Path, bool) {
	mid, ok := rayIntersect(in.point, in.dir, out.point, out.dir.Scale(-1))
	if !ok {
		mid = in.point.Lerp(out.point, 0.5)
	}
	return smoothRoadPath([]geom.Point{in.point, mid, out.point})
}

// rayIntersect finds the intersection of ray (p1,d1) and ray (p2,d2),
// treated as infinite lines; ok is false for (near-)parallel rays.
func rayIntersect(p1, d1, p2, d2 geom.Point) (geom.Point, bool) {
	denom := d1.Cross2D(d2)
	if math.Abs(denom) < 1e-6 {
		return geom.Point{}, false
	}
	diff := p2.Sub(p1)
	t := diff.Cross2D(d2) / denom
	return p1.Add(d1.Scale(t)), true
}
