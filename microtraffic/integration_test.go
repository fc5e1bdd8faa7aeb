package microtraffic

import (
	"testing"

	"go.viam.com/test"

	"github.com/cityplan/simcore/construction"
	"github.com/cityplan/simcore/diff"
	"github.com/cityplan/simcore/geom"
	"github.com/cityplan/simcore/lanegraph"
	"github.com/cityplan/simcore/logging"
	"github.com/cityplan/simcore/plan"
	"github.com/cityplan/simcore/prototype"
)

// tJunctionPlan builds the same T-junction fixture as the compiler's own
// tests: two straight roads sharing an endpoint at a right angle, forcing
// an Intersection prototype with connecting lanes and phase timings.
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

// TestRedConnectingLaneStopsApproachCarAgainstCompiledIntersection is
// scenario S4 exercised end to end: prototype.Compile -> construction.Driver
// -> Simulation, over a real T-junction rather than a hand-wired pair of
// lanes. Every connecting lane the compiler produced is held permanently
// red; the car approaching the intersection on a plain lane upstream of one
// must stop at its end rather than crossing into it, which only holds if
// the stop check gates on the downstream lane's signal instead of its own
// (plain approach lanes never carry Timings and are otherwise always green).
func TestRedConnectingLaneStopsApproachCarAgainstCompiledIntersection(t *testing.T) {
	logger := logging.NewTestLogger(t)
	result := prototype.Compile(logger, tJunctionPlan())

	graph := lanegraph.NewGraph(10)
	driver := construction.NewDriver(graph, logger)
	before := prototype.Empty()
	groups := diff.ActionsTo(before, result)
	test.That(t, driver.Apply(groups, before, result), test.ShouldBeNil)

	// Hold every connecting lane the compiler produced permanently red.
	var connectingIDs []lanegraph.LaneID
	for id, lane := range graph.Lanes() {
		if len(lane.Timings) > 0 {
			lane.Timings = []bool{false}
			connectingIDs = append(connectingIDs, id)
		}
	}
	test.That(t, len(connectingIDs) > 0, test.ShouldBeTrue)

	// Find a plain approach lane whose Next interaction leads into one of
	// those connecting lanes -- the upstream lane the red signal must gate.
	var approachID lanegraph.LaneID
	var partnerID lanegraph.LaneID
	for id, lane := range graph.Lanes() {
		if len(lane.Timings) > 0 {
			continue
		}
		for _, inter := range lane.Interactions {
			if inter.Kind != lanegraph.Next {
				continue
			}
			if partner, ok := graph.Lane(inter.Partner); ok && len(partner.Timings) > 0 {
				approachID = id
				partnerID = inter.Partner
				break
			}
		}
		if approachID != 0 {
			break
		}
	}
	test.That(t, approachID, test.ShouldNotEqual, lanegraph.LaneID(0))

	approach, ok := graph.Lane(approachID)
	test.That(t, ok, test.ShouldBeTrue)
	partner, ok := graph.Lane(partnerID)
	test.That(t, ok, test.ShouldBeTrue)

	sim := NewSimulation(graph, logger, nil)
	spawned := sim.SpawnCar("car1", lanegraph.PreciseLocation{Lane: approachID, Offset: 0},
		lanegraph.PreciseLocation{Lane: partnerID, Offset: partner.Length}, 15)
	test.That(t, spawned, test.ShouldBeTrue)
	car := approach.Cars[0]

	for i := 0; i < 3000; i++ {
		sim.Step(1.0)
		if len(approach.Cars) == 0 {
			break // handed off into the red connecting lane, which would be a bug
		}
	}
	test.That(t, len(approach.Cars), test.ShouldEqual, 1)
	test.That(t, car.Position, test.ShouldBeLessThan, approach.Length+2.01)
}
