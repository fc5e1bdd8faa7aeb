// Package trip is the external boundary named in spec §4.7: the
// household economy's decision logic lives outside this repo and is
// modelled here only as a narrow collaborator interface, mirroring the
// teacher's narrow registry-style capability interfaces (e.g.
// resource.Dependencies) rather than a concrete scheduler.
package trip

import (
	"github.com/cityplan/simcore/lanegraph"
	"github.com/cityplan/simcore/microtraffic"
)

// ID identifies a trip independent of the car that carries it.
type ID = lanegraph.CarID

// Observer is the external collaborator notified when a trip this
// Boundary spawned finishes. A real deployment's household-economy
// decision logic implements this; tests can use a recording stub.
type Observer interface {
	FinishTrip(id ID, location lanegraph.PreciseLocation, result microtraffic.TripResult)
}

// Boundary is the spawn_trip/finish_trip interface spec §4.7 describes:
// producers call SpawnTrip, and the core calls back through Observer
// when a trip ends. It implements microtraffic.TripSink itself, so the
// usual construction order is NewBoundary, then
// microtraffic.NewSimulation(graph, logger, boundary), then Attach --
// mirroring the teacher's pattern of wiring a capability interface into
// a component that is only fully constructed one step later.
type Boundary struct {
	sim      *microtraffic.Simulation
	observer Observer
}

// NewBoundary returns a Boundary forwarding completions to observer
// (may be nil to discard them). Call Attach once the Simulation that
// will use this Boundary as its TripSink exists.
func NewBoundary(observer Observer) *Boundary {
	return &Boundary{observer: observer}
}

// Attach binds the Simulation that SpawnTrip/ForceStop act on.
func (b *Boundary) Attach(sim *microtraffic.Simulation) {
	b.sim = sim
}

// SpawnTrip adds a car at source.Lane/source.Offset bound for
// destination, with maxVelocity sampled by the caller per spec §4.7
// ("a per-trip constant" -- this repo leaves sampling to the producer,
// since the distribution it should be drawn from is household-economy
// logic out of scope here). Returns false if source does not name a
// live lane.
func (b *Boundary) SpawnTrip(id ID, source, destination lanegraph.PreciseLocation, maxVelocity float64) bool {
	return b.sim.SpawnCar(id, source, destination, maxVelocity)
}

// ForceStop force-stops a trip; the microtraffic engine removes the car
// and reports ForceStopped on its next tick (spec §4.7).
func (b *Boundary) ForceStop(id ID) {
	b.sim.ForceStop(id)
}

// FinishTrip implements microtraffic.TripSink, forwarding every
// completion to the configured Observer.
func (b *Boundary) FinishTrip(id ID, location lanegraph.PreciseLocation, result microtraffic.TripResult) {
	if b.observer != nil {
		b.observer.FinishTrip(id, location, result)
	}
}
