package prototype

import (
	"github.com/cityplan/simcore/geom"
	"github.com/cityplan/simcore/plan"
)

// ConnectorKey identifies an (incoming, outgoing) connector-group pair
// within an Intersection.
type ConnectorKey struct {
	In, Out int
}

// Intersection is the Kind payload for an intersection prototype: its
// polygon, the connecting lane prototypes keyed by (incoming, outgoing)
// connector group index, and the per-connecting-lane signal timings.
type Intersection struct {
	Polygon         geom.Area
	ConnectingLanes map[ConnectorKey][]LanePrototype
	// Timings holds one boolean phase vector per connecting lane, in the
	// order Compile builds them: ascending incoming group index, then
	// outgoing group index, then position within that key's slice.
	Timings [][]bool
}

// LanePrototype is embedded geometry for a single lane path, shared by
// Lane, SwitchLane and intersection connecting lanes.
type LanePrototype struct {
	Path geom.Path
}

// Lot is the Kind payload for a zone prototype (spec §4.2.6, out of the
// core microtraffic scope but carried through the compiler unchanged).
type Lot struct {
	Area        geom.Area
	ZoneConfigs plan.ZoneIntent
	Occupancy   float64
}

// Kind is the tagged union of what a Prototype represents.
type Kind struct {
	Lane         *LanePrototype
	SwitchLane   *LanePrototype
	Intersection *Intersection
	Lot          *Lot
}

func (k Kind) kindTag() string {
	switch {
	case k.Lane != nil:
		return "lane"
	case k.SwitchLane != nil:
		return "switch_lane"
	case k.Intersection != nil:
		return "intersection"
	case k.Lot != nil:
		return "lot"
	default:
		return "unknown"
	}
}

// Prototype is the compiled, content-addressed geometric object the
// simulation consumes (spec §3).
type Prototype struct {
	ID                   ID
	Kind                 Kind
	RepresentativePosition geom.Point
}

// MorphableFrom reports whether `p` is a semantically-equivalent update of
// `old` whose live entity can be mutated in place rather than rebuilt --
// e.g. an intersection whose polygon is unchanged but whose signal timings
// differ (spec §3, §4.3 step 2).
func (p Prototype) MorphableFrom(old Prototype) bool {
	switch {
	case p.Kind.Lane != nil && old.Kind.Lane != nil:
		return pathsAlmostEqual(p.Kind.Lane.Path, old.Kind.Lane.Path)
	case p.Kind.SwitchLane != nil && old.Kind.SwitchLane != nil:
		return pathsAlmostEqual(p.Kind.SwitchLane.Path, old.Kind.SwitchLane.Path)
	case p.Kind.Intersection != nil && old.Kind.Intersection != nil:
		return areasAlmostEqual(p.Kind.Intersection.Polygon, old.Kind.Intersection.Polygon)
	case p.Kind.Lot != nil && old.Kind.Lot != nil:
		return areasAlmostEqual(p.Kind.Lot.Area, old.Kind.Lot.Area)
	default:
		return false
	}
}

func pathsAlmostEqual(a, b geom.Path) bool {
	if len(a.Segments) != len(b.Segments) {
		return false
	}
	return a.Start().AlmostEqual(b.Start(), 1e-2) && a.End().AlmostEqual(b.End(), 1e-2) &&
		abs(a.Length()-b.Length()) < 1e-2
}

func areasAlmostEqual(a, b geom.Area) bool {
	if len(a.Ring) != len(b.Ring) {
		return false
	}
	return a.Centroid().AlmostEqual(b.Centroid(), 1e-2)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// PlanResult is the output of a compilation pass: every live prototype
// plus the spatial grid indexing their representative positions (spec
// §3).
type PlanResult struct {
	Prototypes map[ID]Prototype
	Grid       *SpatialGrid
}

// NewPlanResult builds a PlanResult (and its grid) from a flat prototype
// list, silently deduplicating by id (content-addressing means two
// recomputations of the same geometry collide on purpose).
func NewPlanResult(prototypes []Prototype) PlanResult {
	grid := NewSpatialGrid(GridCellSize)
	byID := make(map[ID]Prototype, len(prototypes))
	for _, p := range prototypes {
		if _, exists := byID[p.ID]; exists {
			continue
		}
		byID[p.ID] = p
		grid.Add(p.ID, p.RepresentativePosition)
	}
	return PlanResult{Prototypes: byID, Grid: grid}
}

// Empty returns an empty PlanResult, used when compilation must report
// failure (spec §7: "the compiler returns an empty PlanResult").
func Empty() PlanResult {
	return PlanResult{Prototypes: map[ID]Prototype{}, Grid: NewSpatialGrid(GridCellSize)}
}
