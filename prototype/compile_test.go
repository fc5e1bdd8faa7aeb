package prototype

import (
	"testing"

	"go.viam.com/test"

	"github.com/cityplan/simcore/geom"
	"github.com/cityplan/simcore/logging"
	"github.com/cityplan/simcore/plan"
)

// straightRoadPlan builds a single two-lane straight-road gesture (scenario
// S1 of spec §8): one forward lane, one backward lane, three collinear
// control points.
func straightRoadPlan() plan.PlanHistory {
	mgr := plan.NewManager()
	project := mgr.StartNewProject()
	id := plan.NewGestureID()
	mgr.StartNewGesture(project, id, plan.RoadGesture(1, 1))
	mgr.AddControlPoint(project, id, geom.Pt(0, 0), true, false)
	mgr.AddControlPoint(project, id, geom.Pt(100, 0), true, false)
	mgr.AddControlPoint(project, id, geom.Pt(200, 0), true, true)
	mgr.Implement(project)
	return mgr.Master
}

func TestCompileStraightRoadProducesLanePrototypesOnly(t *testing.T) {
	logger := logging.NewTestLogger(t)
	result := Compile(logger, straightRoadPlan())

	test.That(t, len(result.Prototypes), test.ShouldBeGreaterThanOrEqualTo, 2)
	for _, p := range result.Prototypes {
		test.That(t, p.Kind.Lane, test.ShouldNotBeNil)
		test.That(t, p.Kind.Intersection, test.ShouldBeNil)
		test.That(t, p.Kind.Lot, test.ShouldBeNil)
	}
}

func TestCompileStraightRoadIsDeterministic(t *testing.T) {
	logger := logging.NewTestLogger(t)
	history := straightRoadPlan()

	a := Compile(logger, history)
	b := Compile(logger, history)

	test.That(t, len(a.Prototypes), test.ShouldEqual, len(b.Prototypes))
	for id := range a.Prototypes {
		_, ok := b.Prototypes[id]
		test.That(t, ok, test.ShouldBeTrue)
	}
}

// tJunctionPlan builds a T-junction (scenario S2 of spec §8): two straight
// roads sharing an endpoint at a right angle, so their thickened bands
// overlap and the compiler must emit an Intersection prototype.
func tJunctionPlan() plan.PlanHistory {
	mgr := plan.NewManager()
	project := mgr.StartNewProject()

	eastWest := plan.NewGestureID()
	mgr.StartNewGesture(project, eastWest, plan.RoadGesture(1, 1))
	mgr.AddControlPoint(project, eastWest, geom.Pt(-100, 0), true, false)
	mgr.AddControlPoint(project, eastWest, geom.Pt(0, 0), true, false)
	mgr.AddControlPoint(project, eastWest, geom.Pt(100, 0), true, true)

	north := plan.NewGestureID()
	mgr.StartNewGesture(project, north, plan.RoadGesture(1, 1))
	mgr.AddControlPoint(project, north, geom.Pt(0, 0), true, false)
	mgr.AddControlPoint(project, north, geom.Pt(0, 100), true, true)

	mgr.Implement(project)
	return mgr.Master
}

// TestCompileTJunctionProducesOneIntersection checks scenario S2's own
// trimmed-lane count (spec §8: "6 trimmed lane prototypes (A-left, A-right
// split each side of the intersection, plus B-incoming and B-outgoing
// stubs)") rather than a loose non-zero bound: the through road's forward
// and backward lanes each split into a west and east piece (4), and the
// branch road's forward and backward lanes each stop at the junction
// unsplit (2).
func TestCompileTJunctionProducesOneIntersection(t *testing.T) {
	logger := logging.NewTestLogger(t)
	result := Compile(logger, tJunctionPlan())

	var intersections, lanes int
	for _, p := range result.Prototypes {
		switch {
		case p.Kind.Intersection != nil:
			intersections++
		case p.Kind.Lane != nil:
			lanes++
		}
	}
	test.That(t, intersections, test.ShouldEqual, 1)
	test.That(t, lanes, test.ShouldEqual, 6)
}

// TestCompileTJunctionIntersectionHasConnectingLanesAndTimings checks
// scenario S2's own connecting-lane and phase-count bounds (spec §8:
// "≥2 connecting-lane bundles; traffic timings with at least 2 phases")
// instead of a loose non-zero bound, so a role-pairing regression that
// silently changes the connecting-lane count away from a role-correct
// compile is more likely to be caught.
func TestCompileTJunctionIntersectionHasConnectingLanesAndTimings(t *testing.T) {
	logger := logging.NewTestLogger(t)
	result := Compile(logger, tJunctionPlan())

	var found *Intersection
	for _, p := range result.Prototypes {
		if p.Kind.Intersection != nil {
			found = p.Kind.Intersection
		}
	}
	test.That(t, found, test.ShouldNotBeNil)
	test.That(t, len(found.ConnectingLanes), test.ShouldBeGreaterThanOrEqualTo, 2)

	totalBundles := 0
	for _, lanes := range found.ConnectingLanes {
		totalBundles += len(lanes)
	}
	test.That(t, totalBundles, test.ShouldBeGreaterThanOrEqualTo, 2)
	test.That(t, len(found.Timings), test.ShouldEqual, totalBundles)

	// Every connecting lane's phase vector is the same length: one boolean
	// per signal phase, and S2 expects at least 2 phases.
	test.That(t, len(found.Timings), test.ShouldBeGreaterThan, 0)
	phaseCount := len(found.Timings[0])
	test.That(t, phaseCount, test.ShouldBeGreaterThanOrEqualTo, 2)
	for _, slots := range found.Timings {
		test.That(t, len(slots), test.ShouldEqual, phaseCount)
	}
}

func TestCompileDegenerateRoadIsOmittedNotPanicking(t *testing.T) {
	logger := logging.NewTestLogger(t)
	mgr := plan.NewManager()
	project := mgr.StartNewProject()
	id := plan.NewGestureID()
	mgr.StartNewGesture(project, id, plan.RoadGesture(1, 0))
	// A single control point can't smooth into a path; the compiler must
	// log and omit it rather than panic (spec §7).
	mgr.AddControlPoint(project, id, geom.Pt(0, 0), true, true)
	mgr.Implement(project)

	result := Compile(logger, mgr.Master)
	test.That(t, len(result.Prototypes), test.ShouldEqual, 0)
}

func TestCompileZoneProducesLotPrototype(t *testing.T) {
	logger := logging.NewTestLogger(t)
	mgr := plan.NewManager()
	project := mgr.StartNewProject()
	id := plan.NewGestureID()
	mgr.StartNewGesture(project, id, plan.ZoneGesture(plan.LandUseResidential))
	mgr.AddControlPoint(project, id, geom.Pt(0, 0), true, false)
	mgr.AddControlPoint(project, id, geom.Pt(10, 0), true, false)
	mgr.AddControlPoint(project, id, geom.Pt(10, 10), true, false)
	mgr.AddControlPoint(project, id, geom.Pt(0, 10), true, true)
	mgr.Implement(project)

	result := Compile(logger, mgr.Master)
	test.That(t, len(result.Prototypes), test.ShouldEqual, 1)
	for _, p := range result.Prototypes {
		test.That(t, p.Kind.Lot, test.ShouldNotBeNil)
		test.That(t, p.Kind.Lot.ZoneConfigs.LandUse, test.ShouldEqual, plan.LandUseResidential)
	}
}
