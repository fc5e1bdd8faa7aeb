package prototype

import (
	"sort"

	"github.com/cityplan/simcore/geom"
)

// bundle is one connecting lane awaiting signal-phase assignment.
type bundle struct {
	path     geom.Path
	straight bool
}

func pathsShare(a, b geom.Point) bool {
	return a.AlmostEqual(b, 1e-2)
}

// pathsIntersect reports whether two flattened paths cross, sampling each
// into line segments the same way geom.Area.Intersections does.
func pathsIntersect(a, b geom.Path) bool {
	as := flatten(a, 10)
	bs := flatten(b, 10)
	for i := 0; i < len(as)-1; i++ {
		for j := 0; j < len(bs)-1; j++ {
			if _, ok := segmentIntersect2(as[i], as[i+1], bs[j], bs[j+1]); ok {
				return true
			}
		}
	}
	return false
}

func flatten(p geom.Path, n int) []geom.Point {
	out := make([]geom.Point, 0, n+1)
	for i := 0; i <= n; i++ {
		out = append(out, p.PointAt(p.Length()*float64(i)/float64(n)))
	}
	return out
}

// segmentIntersect2 mirrors geom's internal line-segment intersection test
// (kept local since geom doesn't export it).
func segmentIntersect2(p1, p2, p3, p4 geom.Point) (float64, bool) {
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

// bundlesCompatible implements §4.2.5: bundles whose paths share a start,
// or share no intersection point and no shared end, may run concurrently.
func bundlesCompatible(a, b bundle) bool {
	if pathsShare(a.path.Start(), b.path.Start()) {
		return true
	}
	return !pathsIntersect(a.path, b.path) && !pathsShare(a.path.End(), b.path.End())
}

// buildPhases implements the greedy maximal-compatible-set fill alternating
// straight-priority and turn-priority passes (§4.2.5/§9): each pass orders
// not-yet-admitted bundles by priority and greedily adds any that stay
// mutually compatible with everything already in the phase, continuing
// until every bundle has been admitted to at least one phase.
func buildPhases(bundles []bundle) [][]int {
	remaining := make([]int, len(bundles))
	for i := range bundles {
		remaining[i] = i
	}
	var phases [][]int
	straightFirst := true
	for len(remaining) > 0 {
		order := append([]int{}, remaining...)
		sort.SliceStable(order, func(i, j int) bool {
			bi, bj := bundles[order[i]], bundles[order[j]]
			if straightFirst {
				return bi.straight && !bj.straight
			}
			return !bi.straight && bj.straight
		})

		var phase []int
		for _, idx := range order {
			ok := true
			for _, j := range phase {
				if !bundlesCompatible(bundles[idx], bundles[j]) {
					ok = false
					break
				}
			}
			if ok {
				phase = append(phase, idx)
			}
		}
		if len(phase) == 0 {
			// Every remaining bundle conflicts with an empty phase seed
			// being impossible, but guard against infinite loop anyway.
			phase = []int{remaining[0]}
		}
		phases = append(phases, phase)
		remaining = subtractInts(remaining, phase)
		straightFirst = !straightFirst
	}
	return phases
}

func subtractInts(all, remove []int) []int {
	removed := map[int]bool{}
	for _, r := range remove {
		removed[r] = true
	}
	var out []int
	for _, v := range all {
		if !removed[v] {
			out = append(out, v)
		}
	}
	return out
}

// timingsFor concatenates one fixed-duration boolean slot per phase for
// each bundle (§4.2.5).
func timingsFor(bundles []bundle, phases [][]int) [][]bool {
	timings := make([][]bool, len(bundles))
	for i := range timings {
		timings[i] = make([]bool, len(phases))
	}
	for p, phase := range phases {
		for _, idx := range phase {
			timings[idx][p] = true
		}
	}
	return timings
}
