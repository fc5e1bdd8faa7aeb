package construction

import (
	"testing"

	"go.viam.com/test"

	"github.com/cityplan/simcore/diff"
	"github.com/cityplan/simcore/geom"
	"github.com/cityplan/simcore/lanegraph"
	"github.com/cityplan/simcore/logging"
	"github.com/cityplan/simcore/prototype"
)

func mustPath(t *testing.T, a, b geom.Point) geom.Path {
	t.Helper()
	line, err := geom.NewLine(a, b)
	test.That(t, err, test.ShouldBeNil)
	path, err := geom.NewPath([]geom.Segment{line})
	test.That(t, err, test.ShouldBeNil)
	return path
}

func lanePrototype(t *testing.T, id prototype.ID, a, b geom.Point) prototype.Prototype {
	path := mustPath(t, a, b)
	return prototype.Prototype{
		ID:                     id,
		Kind:                   prototype.Kind{Lane: &prototype.LanePrototype{Path: path}},
		RepresentativePosition: path.PointAt(path.Length() / 2),
	}
}

func TestApplyConstructsLane(t *testing.T) {
	before := prototype.Empty()
	laneProto := lanePrototype(t, 1, geom.Pt(0, 0), geom.Pt(10, 0))
	after := prototype.NewPlanResult([]prototype.Prototype{laneProto})

	graph := lanegraph.NewGraph(10)
	driver := NewDriver(graph, logging.NewTestLogger(t))

	groups := diff.ActionsTo(before, after)
	test.That(t, len(groups.Constructs), test.ShouldEqual, 1)
	test.That(t, driver.Apply(groups, before, after), test.ShouldBeNil)

	lane, ok := graph.Lane(1)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, lane.Length, test.ShouldAlmostEqual, 10.0)
}

func TestApplyDestructsRemovedLane(t *testing.T) {
	laneProto := lanePrototype(t, 1, geom.Pt(0, 0), geom.Pt(10, 0))
	before := prototype.NewPlanResult([]prototype.Prototype{laneProto})
	after := prototype.Empty()

	graph := lanegraph.NewGraph(10)
	driver := NewDriver(graph, logging.NewTestLogger(t))
	graph.Construct(1, laneProto.Kind.Lane.Path, nil)

	groups := diff.ActionsTo(before, after)
	test.That(t, len(groups.Destructs), test.ShouldEqual, 1)
	test.That(t, driver.Apply(groups, before, after), test.ShouldBeNil)

	_, ok := graph.Lane(1)
	test.That(t, ok, test.ShouldBeFalse)
}

func TestApplyMorphsCompatibleLane(t *testing.T) {
	oldPath := mustPath(t, geom.Pt(0, 0), geom.Pt(10, 0))
	newPath := mustPath(t, geom.Pt(0, 0.001), geom.Pt(10, 0.001))

	oldProto := prototype.Prototype{ID: 1, Kind: prototype.Kind{Lane: &prototype.LanePrototype{Path: oldPath}}, RepresentativePosition: oldPath.Start()}
	newProto := prototype.Prototype{ID: 2, Kind: prototype.Kind{Lane: &prototype.LanePrototype{Path: newPath}}, RepresentativePosition: newPath.Start()}
	test.That(t, newProto.MorphableFrom(oldProto), test.ShouldBeTrue)

	before := prototype.NewPlanResult([]prototype.Prototype{oldProto})
	after := prototype.NewPlanResult([]prototype.Prototype{newProto})

	graph := lanegraph.NewGraph(10)
	graph.Construct(1, oldPath, nil)
	driver := NewDriver(graph, logging.NewTestLogger(t))

	groups := diff.ActionsTo(before, after)
	test.That(t, len(groups.Morphs), test.ShouldEqual, 1)
	test.That(t, len(groups.Destructs), test.ShouldEqual, 0)
	test.That(t, len(groups.Constructs), test.ShouldEqual, 0)

	test.That(t, driver.Apply(groups, before, after), test.ShouldBeNil)

	_, stillOld := graph.Lane(1)
	test.That(t, stillOld, test.ShouldBeFalse)
	lane, ok := graph.Lane(2)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, lane.Length, test.ShouldAlmostEqual, newPath.Length())
}

func TestApplyDecomposesIntersectionIntoConnectingLanes(t *testing.T) {
	conn1 := mustPath(t, geom.Pt(0, 0), geom.Pt(10, 10))
	conn2 := mustPath(t, geom.Pt(0, 0), geom.Pt(-10, 10))
	intersection := &prototype.Intersection{
		Polygon: geom.Area{Ring: []geom.Point{geom.Pt(-5, -5), geom.Pt(5, -5), geom.Pt(5, 5), geom.Pt(-5, 5)}},
		ConnectingLanes: map[prototype.ConnectorKey][]prototype.LanePrototype{
			{In: 0, Out: 1}: {{Path: conn1}},
			{In: 1, Out: 0}: {{Path: conn2}},
		},
		Timings: [][]bool{{true, false}, {false, true}},
	}
	proto := prototype.Prototype{ID: 100, Kind: prototype.Kind{Intersection: intersection}, RepresentativePosition: geom.Pt(0, 0)}

	before := prototype.Empty()
	after := prototype.NewPlanResult([]prototype.Prototype{proto})

	graph := lanegraph.NewGraph(10)
	driver := NewDriver(graph, logging.NewTestLogger(t))

	groups := diff.ActionsTo(before, after)
	test.That(t, driver.Apply(groups, before, after), test.ShouldBeNil)

	test.That(t, len(graph.Lanes()), test.ShouldEqual, 2)
}

func TestApplyReportsErrorForUnknownPrototype(t *testing.T) {
	graph := lanegraph.NewGraph(10)
	driver := NewDriver(graph, logging.NewTestLogger(t))

	groups := diff.ActionGroups{Constructs: diff.IndependentActions{{Kind: diff.Construct, ID: 999}}}
	err := driver.Apply(groups, prototype.Empty(), prototype.Empty())
	test.That(t, err, test.ShouldNotBeNil)
}
