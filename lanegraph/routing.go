package lanegraph

import (
	"math"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// buildDirected builds the forward and reverse weighted graphs over live
// lanes: an edge lane->partner for every Next/Switch interaction, weighted
// by the source lane's length (the cost of traversing it).
func (g *Graph) buildDirected() (fwd, rev *simple.WeightedDirectedGraph) {
	fwd = simple.NewWeightedDirectedGraph(0, math.Inf(1))
	rev = simple.NewWeightedDirectedGraph(0, math.Inf(1))
	for id := range g.lanes {
		fwd.AddNode(simple.Node(id))
		rev.AddNode(simple.Node(id))
	}
	for id, lane := range g.lanes {
		for _, inter := range lane.Interactions {
			if inter.Kind != Next && inter.Kind != Switch {
				continue
			}
			w := lane.Length
			if w <= 0 {
				w = 1
			}
			fwd.SetWeightedEdge(fwd.NewWeightedEdge(simple.Node(id), simple.Node(inter.Partner), w))
			rev.SetWeightedEdge(rev.NewWeightedEdge(simple.Node(inter.Partner), simple.Node(id), w))
		}
	}
	return fwd, rev
}

// RefreshRouting recomputes every lane's landmark routing table (spec
// §4.4): for each landmark, run Dijkstra from it over the reverse graph,
// which yields -- for every other lane -- the shortest-path distance and
// first hop *toward* the landmark in the forward graph. This is the
// concrete implementation of "every lane learns the shortest path to
// every landmark," run on the PATHFINDING_THROTTLING cadence by the
// caller (microtraffic), not by this package.
func (g *Graph) RefreshRouting() {
	_, rev := g.buildDirected()

	for _, lm := range g.landmarks() {
		shortest := path.DijkstraFrom(simple.Node(lm), rev)
		for id, lane := range g.lanes {
			if id == lm {
				continue
			}
			w := shortest.WeightTo(int64(id))
			if math.IsInf(w, 1) {
				continue
			}
			hop := firstHopToward(lane, shortest, int64(id))
			lane.LandmarkRoutes[lm] = RoutingInfo{OutgoingInteractionIdx: hop, Distance: w}
		}
	}

	for _, lane := range g.lanes {
		lane.NearestLandmark, _ = nearestLandmark(lane)
	}
}

func nearestLandmark(lane *Lane) (LaneID, bool) {
	best := LaneID(0)
	bestDist := math.Inf(1)
	found := false
	for lm, info := range lane.LandmarkRoutes {
		if info.Distance < bestDist {
			bestDist = info.Distance
			best = lm
			found = true
		}
	}
	return best, found
}

func firstHopToward(lane *Lane, shortest path.Shortest, to int64) int {
	nodes, _ := shortest.To(to)
	if len(nodes) < 2 {
		return -1
	}
	nextHop := LaneID(nodes[len(nodes)-2].ID())
	for i, inter := range lane.Interactions {
		if inter.Partner == nextHop {
			return i
		}
	}
	return -1
}

// landmarks returns every currently-elected landmark lane id.
func (g *Graph) landmarks() []LaneID {
	var out []LaneID
	for id, lane := range g.lanes {
		if lane.IsLandmark {
			out = append(out, id)
		}
	}
	return out
}

// RegisterDestination computes an exact routing-table entry toward dest
// on every lane that can reach it, by running Dijkstra from dest.Lane over
// the reverse graph exactly as RefreshRouting does for landmarks -- the
// "specific entry" spec §4.4 says lookup checks before falling back to the
// landmark entry.
func (g *Graph) RegisterDestination(dest PreciseLocation) {
	if _, ok := g.lanes[dest.Lane]; !ok {
		return
	}
	_, rev := g.buildDirected()
	shortest := path.DijkstraFrom(simple.Node(dest.Lane), rev)
	for id, lane := range g.lanes {
		if id == dest.Lane {
			lane.Routing[dest] = RoutingInfo{OutgoingInteractionIdx: -1, Distance: dest.Offset}
			continue
		}
		w := shortest.WeightTo(int64(id))
		if math.IsInf(w, 1) {
			continue
		}
		hop := firstHopToward(lane, shortest, int64(id))
		lane.Routing[dest] = RoutingInfo{OutgoingInteractionIdx: hop, Distance: w + dest.Offset}
	}
}

// UnregisterDestination drops a destination's exact routing entries once
// its trips have all finished, so the per-lane Routing maps don't grow
// without bound.
func (g *Graph) UnregisterDestination(dest PreciseLocation) {
	for _, lane := range g.lanes {
		delete(lane.Routing, dest)
	}
}

// RouteToward resolves the next hop for a car on lane heading to dest:
// exact entry first, then the destination lane's nearest landmark entry
// (spec §4.4).
func (g *Graph) RouteToward(lane *Lane, dest PreciseLocation) (RoutingInfo, bool) {
	if info, ok := lane.Routing[dest]; ok {
		return info, true
	}
	destLane, ok := g.lanes[dest.Lane]
	if !ok {
		return RoutingInfo{}, false
	}
	lm := destLane.NearestLandmark
	if destLane.IsLandmark {
		lm = destLane.ID
	}
	if lane.ID == lm {
		return RoutingInfo{OutgoingInteractionIdx: -1, Distance: dest.Offset}, true
	}
	if info, ok := lane.LandmarkRoutes[lm]; ok {
		return info, true
	}
	return RoutingInfo{}, false
}
