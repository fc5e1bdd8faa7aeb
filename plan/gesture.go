package plan

import "github.com/cityplan/simcore/geom"

// LandUse enumerates the zone kinds a Zone gesture can declare. The
// household/market subsystem that actually interprets these is a Non-goal
// collaborator; the planning model only needs to carry the value through.
type LandUse string

const (
	LandUseResidential LandUse = "residential"
	LandUseCommercial  LandUse = "commercial"
	LandUseIndustrial  LandUse = "industrial"
	LandUseOffice      LandUse = "office"
)

// Intent is the tagged union of what a Gesture describes: either a Road
// (with forward/backward lane counts) or a Zone (land use plus optional
// height/setback limits).
type Intent struct {
	Road *RoadIntent
	Zone *ZoneIntent
}

type RoadIntent struct {
	LanesForward  uint8
	LanesBackward uint8
}

type ZoneIntent struct {
	LandUse  LandUse
	MaxHeight *float64
	SetBack   *float64
}

func RoadGesture(forward, backward uint8) Intent {
	return Intent{Road: &RoadIntent{LanesForward: forward, LanesBackward: backward}}
}

func ZoneGesture(use LandUse) Intent {
	return Intent{Zone: &ZoneIntent{LandUse: use}}
}

// IsRoad/IsZone are the usual tagged-union predicates.
func (i Intent) IsRoad() bool { return i.Road != nil }
func (i Intent) IsZone() bool { return i.Zone != nil }

// Gesture is an intent plus an ordered list of control points. A Road's
// shape is an open polyline of corners; a Zone's shape is a closed
// polyline. Gestures are immutable once constructed -- every mutating
// editor operation in §6 produces a new Gesture value rather than editing
// one in place.
type Gesture struct {
	Intent  Intent
	Corners []geom.Point
}

// NewGesture builds a Gesture; corners may be added incrementally by the
// editor via WithCorner before the gesture is committed into a Plan.
func NewGesture(intent Intent, corners ...geom.Point) Gesture {
	cs := make([]geom.Point, len(corners))
	copy(cs, corners)
	return Gesture{Intent: intent, Corners: cs}
}

// WithCorner returns a copy of g with a new control point appended (or
// prepended if addToEnd is false), matching the editor operation
// add_control_point(..., add_to_end, ...) of spec §6.
func (g Gesture) WithCorner(p geom.Point, addToEnd bool) Gesture {
	cs := make([]geom.Point, 0, len(g.Corners)+1)
	if addToEnd {
		cs = append(cs, g.Corners...)
		cs = append(cs, p)
	} else {
		cs = append(cs, p)
		cs = append(cs, g.Corners...)
	}
	return Gesture{Intent: g.Intent, Corners: cs}
}

// WithMovedCorner returns a copy of g with the control point at index
// replaced, matching move_control_point(...).
func (g Gesture) WithMovedCorner(index int, p geom.Point) Gesture {
	cs := make([]geom.Point, len(g.Corners))
	copy(cs, g.Corners)
	if index >= 0 && index < len(cs) {
		cs[index] = p
	}
	return Gesture{Intent: g.Intent, Corners: cs}
}

// WithIntent returns a copy of g with its intent replaced, matching
// set_intent(...).
func (g Gesture) WithIntent(intent Intent) Gesture {
	cs := make([]geom.Point, len(g.Corners))
	copy(cs, g.Corners)
	return Gesture{Intent: intent, Corners: cs}
}

// Clone returns a deep copy, used when a Gesture needs to be stored in more
// than one map without aliasing its corner slice.
func (g Gesture) Clone() Gesture {
	return g.WithIntent(g.Intent)
}
