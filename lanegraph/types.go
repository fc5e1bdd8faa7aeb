// Package lanegraph holds the live Lane/SwitchLane entities the
// construction driver builds from prototypes, their Interactions, and the
// landmark-compressed routing tables pathfinding refreshes periodically
// (spec §3, §4.4). Grounded on the teacher's resource.Graph idiom (a
// registry of named entities with edges and dependency-aware teardown),
// repurposed here from component-startup ordering to lane connectivity
// and destruct confirmation (SPEC_FULL.md §3.1).
package lanegraph

import (
	"github.com/cityplan/simcore/geom"
	"github.com/cityplan/simcore/prototype"
)

// LaneID identifies a live Lane entity. A lane built from a Lane or
// SwitchLane prototype takes that prototype's content-addressed id; an
// intersection's connecting lanes get ids hashed from the intersection's
// id, their connector key and their index (construction.connectingLaneID).
type LaneID = prototype.ID

// CarID identifies a car independent of which lane currently carries it.
type CarID string

// InteractionKind tags the five interaction shapes spec §3 names.
type InteractionKind int

const (
	// Next: this lane flows into Partner when its signal permits.
	Next InteractionKind = iota
	// Previous: Partner flows into this lane.
	Previous
	// Conflicting: Partner's traffic crosses this lane's path within a
	// shared window; Start/End/PartnerStart/CanWeave describe the overlap.
	Conflicting
	// Switch: a switch lane weaves between this lane and Via.
	Switch
	// Overlap: two lanes share ground (e.g. coincident geometry) without
	// a directed flow relationship.
	Overlap
)

// Interaction is a directed coupling from a Lane to Partner (spec §3).
type Interaction struct {
	Kind    InteractionKind
	Partner LaneID

	// Previous
	PreviousLength float64

	// Conflicting: the shared window [Start, End] on this lane overlaps
	// PartnerStart on the partner.
	Start, End, PartnerStart float64
	CanWeave                 bool

	// Switch: [Start, End] is this lane's window during which a car may
	// hand off onto Via.
	Via LaneID
}

// PreciseLocation addresses an exact point on a lane (spec §3).
type PreciseLocation struct {
	Lane   LaneID
	Offset float64
}

// RoutingInfo is one routing-table entry: which outgoing interaction to
// take and the remaining distance along that route (spec §4.4).
type RoutingInfo struct {
	OutgoingInteractionIdx int
	Distance               float64
}

// SwitchState is the extra per-car state carried only while a car is on a
// switch lane (spec §4.5).
type SwitchState struct {
	Position     float64
	Velocity     float64
	Acceleration float64
	Cancelling   bool
}

// Car is a live vehicle on exactly one lane at a time (spec §3, §4.5).
type Car struct {
	ID                 CarID
	Position           float64
	Velocity           float64
	Acceleration       float64
	MaxVelocity        float64
	Destination        PreciseLocation
	NextHopInteraction int // index into the owning Lane's Interactions, -1 if none
	Switch             *SwitchState
}

// Obstacle is a car reinterpreted for a neighbouring lane, or a virtual
// stop obstacle (e.g. a red signal) -- it carries only what downstream IDM
// math needs (spec §4.5).
type Obstacle struct {
	Position float64
	Velocity float64
}

// Lane is a live entity created from a Lane or SwitchLane prototype (spec
// §3). Its state is owned exclusively by the Graph that holds it; no
// other entity mutates it directly (spec §5).
type Lane struct {
	ID                   LaneID
	Path                 geom.Path
	Length               float64
	ConstructionProgress float64
	IsSwitch             bool

	Interactions []Interaction

	// Signal state (spec §4.5); Timings is the prototype's phase vector.
	Timings       []bool
	Green         bool
	YellowToGreen bool
	YellowToRed   bool

	// Routing (spec §4.4).
	Routing        map[PreciseLocation]RoutingInfo
	LandmarkRoutes map[LaneID]RoutingInfo
	IsLandmark     bool
	NearestLandmark LaneID

	// Microtraffic state (spec §3, §4.5).
	Cars      []*Car
	Obstacles []Obstacle

	pendingDisconnects int
}

func newLane(id LaneID, path geom.Path, timings []bool, isSwitch bool) *Lane {
	return &Lane{
		ID:             id,
		Path:           path,
		Length:         path.Length(),
		Timings:        timings,
		IsSwitch:       isSwitch,
		Routing:        map[PreciseLocation]RoutingInfo{},
		LandmarkRoutes: map[LaneID]RoutingInfo{},
	}
}
