package trip

import (
	"testing"

	"go.viam.com/test"

	"github.com/cityplan/simcore/geom"
	"github.com/cityplan/simcore/lanegraph"
	"github.com/cityplan/simcore/logging"
	"github.com/cityplan/simcore/microtraffic"
)

type recordingObserver struct {
	results map[ID]microtraffic.TripResult
}

func (r *recordingObserver) FinishTrip(id ID, _ lanegraph.PreciseLocation, result microtraffic.TripResult) {
	if r.results == nil {
		r.results = map[ID]microtraffic.TripResult{}
	}
	r.results[id] = result
}

func singleLaneGraph(t *testing.T) (*lanegraph.Graph, *lanegraph.Lane) {
	t.Helper()
	graph := lanegraph.NewGraph(10)
	line, err := geom.NewLine(geom.Pt(0, 0), geom.Pt(50, 0))
	test.That(t, err, test.ShouldBeNil)
	path, err := geom.NewPath([]geom.Segment{line})
	test.That(t, err, test.ShouldBeNil)
	lane := graph.Construct(1, path, nil)
	return graph, lane
}

func TestSpawnTripReportsSuccessToObserver(t *testing.T) {
	graph, _ := singleLaneGraph(t)
	observer := &recordingObserver{}
	boundary := NewBoundary(observer)
	sim := microtraffic.NewSimulation(graph, logging.NewTestLogger(t), boundary)
	boundary.Attach(sim)

	ok := boundary.SpawnTrip("trip1", lanegraph.PreciseLocation{Lane: 1, Offset: 0}, lanegraph.PreciseLocation{Lane: 1, Offset: 40}, 15)
	test.That(t, ok, test.ShouldBeTrue)

	for i := 0; i < 5000; i++ {
		sim.Step(1.0)
	}

	result, ok := observer.results["trip1"]
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, result.Fate, test.ShouldEqual, microtraffic.FateSuccess)
}

func TestForceStopReportsForceStopped(t *testing.T) {
	graph, _ := singleLaneGraph(t)
	observer := &recordingObserver{}
	boundary := NewBoundary(observer)
	sim := microtraffic.NewSimulation(graph, logging.NewTestLogger(t), boundary)
	boundary.Attach(sim)

	ok := boundary.SpawnTrip("trip1", lanegraph.PreciseLocation{Lane: 1, Offset: 0}, lanegraph.PreciseLocation{Lane: 1, Offset: 49}, 5)
	test.That(t, ok, test.ShouldBeTrue)

	boundary.ForceStop("trip1")
	sim.Step(1.0)

	result, ok := observer.results["trip1"]
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, result.Fate, test.ShouldEqual, microtraffic.FateForceStopped)
}

func TestSpawnTripUnknownLaneFails(t *testing.T) {
	graph, _ := singleLaneGraph(t)
	boundary := NewBoundary(nil)
	sim := microtraffic.NewSimulation(graph, logging.NewTestLogger(t), boundary)
	boundary.Attach(sim)

	ok := boundary.SpawnTrip("trip1", lanegraph.PreciseLocation{Lane: 99, Offset: 0}, lanegraph.PreciseLocation{Lane: 1, Offset: 10}, 15)
	test.That(t, ok, test.ShouldBeFalse)
}
