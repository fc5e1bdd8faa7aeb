package lanegraph

import (
	"testing"

	"go.viam.com/test"

	"github.com/cityplan/simcore/geom"
)

func straightPath(t *testing.T, a, b geom.Point) geom.Path {
	t.Helper()
	line, err := geom.NewLine(a, b)
	test.That(t, err, test.ShouldBeNil)
	p, err := geom.NewPath([]geom.Segment{line})
	test.That(t, err, test.ShouldBeNil)
	return p
}

func TestConstructConnectsAdjacentLanes(t *testing.T) {
	g := NewGraph(4)
	a := g.Construct(1, straightPath(t, geom.Pt(0, 0), geom.Pt(100, 0)), nil)
	b := g.Construct(2, straightPath(t, geom.Pt(100, 0), geom.Pt(200, 0)), nil)

	test.That(t, len(a.Interactions), test.ShouldEqual, 1)
	test.That(t, a.Interactions[0].Kind, test.ShouldEqual, Next)
	test.That(t, a.Interactions[0].Partner, test.ShouldEqual, LaneID(2))

	test.That(t, len(b.Interactions), test.ShouldEqual, 1)
	test.That(t, b.Interactions[0].Kind, test.ShouldEqual, Previous)
	test.That(t, b.Interactions[0].Partner, test.ShouldEqual, LaneID(1))
}

func TestDestructDisconnectsPartners(t *testing.T) {
	g := NewGraph(4)
	g.Construct(1, straightPath(t, geom.Pt(0, 0), geom.Pt(100, 0)), nil)
	b := g.Construct(2, straightPath(t, geom.Pt(100, 0), geom.Pt(200, 0)), nil)

	unbuilt := g.Destruct(1)
	test.That(t, unbuilt, test.ShouldBeTrue)
	_, stillThere := g.Lane(1)
	test.That(t, stillThere, test.ShouldBeFalse)
	test.That(t, len(b.Interactions), test.ShouldEqual, 0)
}

func TestRefreshRoutingSkipsUnreachableLandmark(t *testing.T) {
	g := NewGraph(3) // every 3rd lane is a landmark by creation order
	g.Construct(1, straightPath(t, geom.Pt(0, 0), geom.Pt(100, 0)), nil)
	g.Construct(2, straightPath(t, geom.Pt(100, 0), geom.Pt(200, 0)), nil)
	g.Construct(3, straightPath(t, geom.Pt(200, 0), geom.Pt(300, 0)), nil)

	l1, _ := g.Lane(1)
	test.That(t, l1.IsLandmark, test.ShouldBeTrue) // index 0

	g.RefreshRouting()

	l2, _ := g.Lane(2)
	info, ok := l2.LandmarkRoutes[LaneID(1)]
	test.That(t, ok, test.ShouldBeFalse) // lane 2 can't reach lane 1 (one-directional road)

	l3, _ := g.Lane(3)
	_, ok = l3.LandmarkRoutes[LaneID(1)]
	test.That(t, ok, test.ShouldBeFalse)
	_ = info
}

func TestRegisterDestinationAndRouteToward(t *testing.T) {
	g := NewGraph(10)
	g.Construct(1, straightPath(t, geom.Pt(0, 0), geom.Pt(100, 0)), nil)
	g.Construct(2, straightPath(t, geom.Pt(100, 0), geom.Pt(200, 0)), nil)
	l3 := g.Construct(3, straightPath(t, geom.Pt(200, 0), geom.Pt(300, 0)), nil)

	dest := PreciseLocation{Lane: 3, Offset: 50}
	g.RegisterDestination(dest)

	l1, _ := g.Lane(1)
	info, ok := g.RouteToward(l1, dest)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, l1.Interactions[info.OutgoingInteractionIdx].Partner, test.ShouldEqual, LaneID(2))

	infoAtDest, ok := g.RouteToward(l3, dest)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, infoAtDest.Distance, test.ShouldEqual, 50.0)

	g.UnregisterDestination(dest)
	_, ok = l1.Routing[dest]
	test.That(t, ok, test.ShouldBeFalse)
}
