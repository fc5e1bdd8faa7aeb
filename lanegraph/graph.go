package lanegraph

import (
	"github.com/cityplan/simcore/geom"
	"github.com/cityplan/simcore/prototype"
)

// ConnectionTolerance mirrors the system-boundary constant of the same
// name in prototype/const.go -- kept here too since lanegraph is the
// package that actually performs endpoint matching.
const ConnectionTolerance = prototype.ConnectionTolerance

// Graph is the registry of live Lane entities, the concrete home for the
// teacher's resource.Graph idiom repurposed to this domain
// (SPEC_FULL.md §3.1): lanes are nodes, Interactions are edges, and
// Destruct walks those edges to find every partner that must confirm a
// disconnect before the lane is actually removed.
type Graph struct {
	lanes         map[LaneID]*Lane
	creationOrder []LaneID
	landmarkStride int
}

// NewGraph returns an empty Graph. landmarkStride controls how many lanes
// elect one landmark (SPEC_FULL.md §9: periodic stride sampling).
func NewGraph(landmarkStride int) *Graph {
	if landmarkStride < 1 {
		landmarkStride = 1
	}
	return &Graph{lanes: map[LaneID]*Lane{}, landmarkStride: landmarkStride}
}

// Lane looks up a live lane by id.
func (g *Graph) Lane(id LaneID) (*Lane, bool) {
	l, ok := g.lanes[id]
	return l, ok
}

// Lanes returns every live lane, for iteration by the microtraffic tick
// and construction driver.
func (g *Graph) Lanes() map[LaneID]*Lane {
	return g.lanes
}

// Construct creates a Lane entity from a regular (non-switch) prototype
// and broadcasts connect(start, end, length) to every existing lane,
// recording Next/Previous interactions where endpoints match within
// ConnectionTolerance (spec §4.4).
func (g *Graph) Construct(id LaneID, path geom.Path, timings []bool) *Lane {
	lane := newLane(id, path, timings, false)
	g.insert(lane)
	g.broadcastConnect(lane)
	return lane
}

// ConstructSwitch creates a switch lane weaving between from and to over
// the window [start, end] of from's local coordinates, registering the
// explicit Switch interactions spec §4.4 describes ("Switch lanes connect
// to the two parallel lanes they weave between").
func (g *Graph) ConstructSwitch(id LaneID, path geom.Path, from, to LaneID, start, end float64) *Lane {
	lane := newLane(id, path, nil, true)
	g.insert(lane)

	if partner, ok := g.lanes[from]; ok {
		partner.Interactions = append(partner.Interactions, Interaction{Kind: Switch, Partner: id, Via: id, Start: start, End: end})
	}
	if partner, ok := g.lanes[to]; ok {
		lane.Interactions = append(lane.Interactions, Interaction{Kind: Switch, Partner: to, Via: to, Start: start, End: end})
	}
	g.broadcastConnect(lane)
	return lane
}

func (g *Graph) insert(lane *Lane) {
	g.lanes[lane.ID] = lane
	g.creationOrder = append(g.creationOrder, lane.ID)
	g.electLandmarks()
}

func (g *Graph) broadcastConnect(lane *Lane) {
	start, end := lane.Path.Start(), lane.Path.End()
	for id, other := range g.lanes {
		if id == lane.ID {
			continue
		}
		otherStart, otherEnd := other.Path.Start(), other.Path.End()
		if end.AlmostEqual(otherStart, ConnectionTolerance) {
			lane.Interactions = append(lane.Interactions, Interaction{Kind: Next, Partner: other.ID})
			other.Interactions = append(other.Interactions, Interaction{Kind: Previous, Partner: lane.ID, PreviousLength: lane.Length})
		}
		if otherEnd.AlmostEqual(start, ConnectionTolerance) {
			other.Interactions = append(other.Interactions, Interaction{Kind: Next, Partner: lane.ID})
			lane.Interactions = append(lane.Interactions, Interaction{Kind: Previous, Partner: other.ID, PreviousLength: other.Length})
		}
	}
}

// electLandmarks re-derives which lanes are landmarks from creation order:
// every landmarkStride-th lane, deterministic and stable across calls as
// long as no intervening lane was destructed.
func (g *Graph) electLandmarks() {
	for i, id := range g.creationOrder {
		lane, ok := g.lanes[id]
		if !ok {
			continue
		}
		lane.IsLandmark = i%g.landmarkStride == 0
	}
}

// Destruct begins (or continues) tearing down a lane: it broadcasts
// disconnect to every partner still referencing it and removes those
// back-references immediately (this repo's in-process scheduler makes
// partner confirmation synchronous; see DESIGN.md). Returns true once the
// lane has actually been removed ("unbuilt"), matching spec §4.6's
// two-phase destruct.
func (g *Graph) Destruct(id LaneID) bool {
	lane, ok := g.lanes[id]
	if !ok {
		return true
	}
	partners := partnersOf(lane)
	lane.pendingDisconnects = len(partners)
	for _, pid := range partners {
		if partner, ok := g.lanes[pid]; ok {
			removeInteractionsTo(partner, id)
		}
		lane.pendingDisconnects--
	}
	if lane.pendingDisconnects > 0 {
		return false
	}
	delete(g.lanes, id)
	g.pruneCreationOrder(id)
	g.electLandmarks()
	return true
}

// MorphInPlace updates an existing lane's geometry without rebuilding its
// connectivity -- the construction driver only calls this once it has
// confirmed the new prototype is MorphableFrom the old one (spec §4.6).
// newID replaces the lane's content-addressed id (morphing almost always
// changes it, since the geometry moved); every other lane's Interactions
// pointing at oldID are rewritten to point at newID so connectivity
// survives the rename.
func (g *Graph) MorphInPlace(oldID, newID LaneID, path geom.Path, timings []bool) bool {
	lane, ok := g.lanes[oldID]
	if !ok {
		return false
	}
	lane.Path = path
	lane.Length = path.Length()
	if timings != nil {
		lane.Timings = timings
	}
	if newID == oldID {
		return true
	}
	lane.ID = newID
	delete(g.lanes, oldID)
	g.lanes[newID] = lane
	for i, cid := range g.creationOrder {
		if cid == oldID {
			g.creationOrder[i] = newID
			break
		}
	}
	for _, other := range g.lanes {
		for i := range other.Interactions {
			if other.Interactions[i].Partner == oldID {
				other.Interactions[i].Partner = newID
			}
			if other.Interactions[i].Via == oldID {
				other.Interactions[i].Via = newID
			}
		}
	}
	return true
}

func partnersOf(lane *Lane) []LaneID {
	seen := map[LaneID]bool{}
	var out []LaneID
	for _, inter := range lane.Interactions {
		if !seen[inter.Partner] {
			seen[inter.Partner] = true
			out = append(out, inter.Partner)
		}
	}
	return out
}

func removeInteractionsTo(lane *Lane, target LaneID) {
	kept := lane.Interactions[:0]
	for _, inter := range lane.Interactions {
		if inter.Partner != target {
			kept = append(kept, inter)
		}
	}
	lane.Interactions = kept
}

func (g *Graph) pruneCreationOrder(id LaneID) {
	for i, cid := range g.creationOrder {
		if cid == id {
			g.creationOrder = append(g.creationOrder[:i], g.creationOrder[i+1:]...)
			return
		}
	}
}
