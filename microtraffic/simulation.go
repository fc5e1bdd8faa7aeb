package microtraffic

import (
	"math"
	"sort"

	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/cityplan/simcore/lanegraph"
	"github.com/cityplan/simcore/logging"
)

// defaultWorkers is the shard count Step uses when the caller hasn't set
// Workers explicitly.
const defaultWorkers = 4

// TripFate is the outcome a finished trip is reported with (spec §4.7).
type TripFate int

const (
	FateSuccess TripFate = iota
	FateNoRoute
	FateForceStopped
)

// TripResult is delivered to a TripSink when a car's journey ends.
type TripResult struct {
	Tick int64
	Fate TripFate
}

// TripSink is the external collaborator notified when a trip finishes
// (spec §4.7's finish_trip boundary); the trip package implements it.
type TripSink interface {
	FinishTrip(id lanegraph.CarID, location lanegraph.PreciseLocation, result TripResult)
}

// Simulation runs the per-tick IDM/signal/hand-off loop over a
// lanegraph.Graph (spec §4.5). It owns the only globally-mutable
// structure in the system alongside the construction driver: the live
// car locations. carLane records each live car's current lane on spawn
// and hand-off and drops it on finish; ForceStop and trip completion do
// not read it, they act on a car when its own lane is processed.
type Simulation struct {
	graph  *lanegraph.Graph
	logger logging.Logger
	sink   TripSink

	tick *atomic.Int64

	// Workers shards the per-tick compute phase (IDM/integration, after
	// signal timing has already been settled serially) across goroutines
	// supervised by golang.org/x/sync/errgroup, sharded
	// by lane id modulo Workers (spec §5's "sharded single-threaded-executor
	// model"). The hand-off/completion/obstacle-push phase that follows
	// touches partner lanes across shard boundaries, so it always runs
	// single-threaded after every shard's compute phase has finished --
	// mirrors the teacher's pattern of parallelizing the embarrassingly
	// parallel part of a per-tick pass and serializing the coupling part.
	Workers int

	carLane      map[lanegraph.CarID]lanegraph.LaneID
	forceStopped map[lanegraph.CarID]bool
}

// NewSimulation returns a Simulation driving graph, reporting trip
// outcomes to sink (may be nil to discard them, e.g. in tests).
func NewSimulation(graph *lanegraph.Graph, logger logging.Logger, sink TripSink) *Simulation {
	return &Simulation{
		graph:        graph,
		logger:       logger,
		sink:         sink,
		tick:         atomic.NewInt64(0),
		Workers:      defaultWorkers,
		carLane:      map[lanegraph.CarID]lanegraph.LaneID{},
		forceStopped: map[lanegraph.CarID]bool{},
	}
}

// Tick returns the current simulated tick count.
func (s *Simulation) Tick() int64 { return s.tick.Load() }

// SpawnCar adds a car at source with the given max velocity and
// destination, per spec §4.7's spawn_trip.
func (s *Simulation) SpawnCar(id lanegraph.CarID, source, destination lanegraph.PreciseLocation, maxVelocity float64) bool {
	lane, ok := s.graph.Lane(source.Lane)
	if !ok {
		return false
	}
	car := &lanegraph.Car{
		ID:                 id,
		Position:           source.Offset,
		MaxVelocity:        maxVelocity,
		Destination:        destination,
		NextHopInteraction: -1,
	}
	if lane.IsSwitch {
		car.Switch = &lanegraph.SwitchState{}
	}
	insertSorted(lane, car)
	s.carLane[id] = source.Lane
	s.graph.RegisterDestination(destination)
	s.recomputeNextHop(lane, car)
	return true
}

// ForceStop marks a car to be removed and reported ForceStopped on its
// next tick (spec §5: "observed by the microtraffic on its next tick").
func (s *Simulation) ForceStop(id lanegraph.CarID) {
	s.forceStopped[id] = true
}

// Step advances the whole graph by one tick of wall-clock duration dt.
// Signal timing is settled serially first, since a car's stop check reads
// its downstream partner's Green rather than its own (spec §4.5(c)) and
// that partner can sit in a different shard. The staggered lanes' compute
// phase (IDM acceleration, integration) then runs concurrently across
// Workers shards; the coupling phase (hand-off, trip completion, obstacle
// hand-down to partners) runs afterward on the calling goroutine, since it
// mutates lanes outside a shard's own partition.
func (s *Simulation) Step(dt float64) {
	tick := s.tick.Inc()
	dtSim := dt / Slowdown

	if tick%PathfindingThrottling == 0 {
		s.graph.RefreshRouting()
	}

	lanes := s.graph.Lanes()
	var active []*lanegraph.Lane
	for id, lane := range lanes {
		if staggered(id, tick, TrafficLogicThrottling) {
			active = append(active, lane)
		}
	}

	// Signal state is updated serially, before the parallel compute phase
	// dispatches: accelerateCars reads a car's *downstream* partner lane's
	// Green (spec §4.5(c)), which may belong to a different shard, so every
	// lane's signal must already be settled before any shard starts reading
	// across that boundary.
	for _, lane := range active {
		s.updateSignal(lane, tick)
	}

	workers := s.Workers
	if workers < 1 {
		workers = 1
	}
	shards := make([][]*lanegraph.Lane, workers)
	for _, lane := range active {
		w := int(lane.ID % lanegraph.LaneID(workers))
		shards[w] = append(shards[w], lane)
	}

	var g errgroup.Group
	for _, shard := range shards {
		shard := shard
		g.Go(func() error {
			for _, lane := range shard {
				s.computeLane(lane, tick, dtSim)
			}
			return nil
		})
	}
	_ = g.Wait() // computeLane never returns an error; kept for the errgroup shape.

	// Only the obstacles the compute phase just read are consumed; whatever
	// a partner pushes during the coupling loop stays queued for the next
	// cycle, whichever order the lanes couple in.
	consumed := make(map[*lanegraph.Lane]int, len(active))
	for _, lane := range active {
		consumed[lane] = len(lane.Obstacles)
	}
	for _, lane := range active {
		s.coupleLane(lane, tick, consumed[lane])
	}
}

func staggered(id lanegraph.LaneID, tick int64, throttle int64) bool {
	return tick%throttle == int64(id)%throttle
}

func insertSorted(lane *lanegraph.Lane, car *lanegraph.Car) {
	idx := sort.Search(len(lane.Cars), func(i int) bool { return lane.Cars[i].Position >= car.Position })
	lane.Cars = append(lane.Cars, nil)
	copy(lane.Cars[idx+1:], lane.Cars[idx:])
	lane.Cars[idx] = car
}

// computeLane runs the part of a lane's tick that only ever writes that
// lane's own Cars/Obstacles slices, safe to run concurrently with every
// other lane's computeLane call; signal state for every lane, including a
// car's downstream partner, has already been settled by Step before this
// phase starts, so reading another lane's Green here is race-free.
func (s *Simulation) computeLane(lane *lanegraph.Lane, tick int64, dtSim float64) {
	sort.Slice(lane.Obstacles, func(i, j int) bool { return lane.Obstacles[i].Position < lane.Obstacles[j].Position })

	s.accelerateCars(lane)
	s.integrate(lane, dtSim)
	repairMonotonicity(lane)
}

// coupleLane runs the part of a lane's tick that reaches into partner
// lanes (hand-off, obstacle hand-down) -- always called single-threaded,
// after every shard's computeLane pass has completed.
func (s *Simulation) coupleLane(lane *lanegraph.Lane, tick int64, consumed int) {
	s.handOff(lane)
	s.completeArrivals(lane, tick)
	s.pushObstaclesToPartners(lane)

	lane.Obstacles = append(lane.Obstacles[:0], lane.Obstacles[consumed:]...)
}

func (s *Simulation) updateSignal(lane *lanegraph.Lane, tick int64) {
	if len(lane.Timings) == 0 {
		lane.Green = true
		return
	}
	n := int64(len(lane.Timings))
	p := (tick / 30) % n
	pYellow := ((tick + 100) / 30) % n
	lane.Green = lane.Timings[p]
	lane.YellowToGreen = lane.Timings[pYellow]
	lane.YellowToRed = !lane.YellowToGreen
}

// nextHopGreen reports whether a car may proceed through a Next
// interaction: not the current lane's own signal (plain approach lanes
// never carry Timings and so are permanently green), but the signal of
// the lane the interaction leads into -- the connecting lane that was
// actually compiled with phase timings (spec §4.5(c)). Resolved live off
// the graph each tick rather than cached on the Interaction, since this
// is a single in-process graph and the partner lane is always reachable.
func (s *Simulation) nextHopGreen(inter lanegraph.Interaction) bool {
	partner, ok := s.graph.Lane(inter.Partner)
	if !ok {
		return true
	}
	return partner.Green
}

func (s *Simulation) accelerateCars(lane *lanegraph.Lane) {
	for i, car := range lane.Cars {
		accel := math.Inf(1)

		if i+1 < len(lane.Cars) {
			ahead := lane.Cars[i+1]
			g := gap(car.Position, ahead.Position)
			accel = math.Min(accel, idmAccel(car.Velocity, car.MaxVelocity, g, car.Velocity-ahead.Velocity, idmS0))
		}
		if ob, ok := firstObstacleAhead(lane.Obstacles, car.Position); ok {
			g := gap(car.Position, ob.Position)
			accel = math.Min(accel, idmAccel(car.Velocity, car.MaxVelocity, g, car.Velocity-ob.Velocity, gapToObstacleAhead))
		}
		if car.NextHopInteraction >= 0 && car.NextHopInteraction < len(lane.Interactions) {
			if inter := lane.Interactions[car.NextHopInteraction]; inter.Kind == lanegraph.Next && !s.nextHopGreen(inter) {
				g := gap(car.Position, lane.Length+stopLineOffset)
				accel = math.Min(accel, idmAccel(car.Velocity, car.MaxVelocity, g, car.Velocity, idmS0))
			}
		}
		if math.IsInf(accel, 1) {
			accel = idmA * (1 - math.Pow(car.Velocity/car.MaxVelocity, idmDelta))
		}
		car.Acceleration = accel
	}
}

func firstObstacleAhead(obstacles []lanegraph.Obstacle, pos float64) (lanegraph.Obstacle, bool) {
	for _, ob := range obstacles {
		if ob.Position >= pos {
			return ob, true
		}
	}
	return lanegraph.Obstacle{}, false
}

func (s *Simulation) integrate(lane *lanegraph.Lane, dtSim float64) {
	for _, car := range lane.Cars {
		car.Position += dtSim * car.Velocity
		car.Velocity = clamp(car.Velocity+dtSim*car.Acceleration, 0, car.MaxVelocity)
	}
	for i := range lane.Obstacles {
		lane.Obstacles[i].Position += dtSim * lane.Obstacles[i].Velocity
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func repairMonotonicity(lane *lanegraph.Lane) {
	for i := len(lane.Cars) - 2; i >= 0; i-- {
		if lane.Cars[i].Position > lane.Cars[i+1].Position {
			lane.Cars[i].Position = lane.Cars[i+1].Position
		}
	}
}

func (s *Simulation) handOff(lane *lanegraph.Lane) {
	for i := len(lane.Cars) - 1; i >= 0; i-- {
		car := lane.Cars[i]
		if car.NextHopInteraction < 0 || car.NextHopInteraction >= len(lane.Interactions) {
			continue
		}
		inter := lane.Interactions[car.NextHopInteraction]
		switch inter.Kind {
		case lanegraph.Switch:
			if car.Position > inter.Start && car.Position > inter.End-300 {
				s.moveCar(lane, i, inter.Via, car.Position-inter.Start)
			}
		case lanegraph.Next:
			if car.Position > lane.Length {
				s.moveCar(lane, i, inter.Partner, car.Position-lane.Length)
			}
		}
	}
}

// moveCar removes the car at idx from fromLane and inserts it on toID,
// recomputing its routing decision there -- the removal and insertion
// happen within the same Step call, so the car is never visible on both
// lanes within one tick (spec §5).
func (s *Simulation) moveCar(fromLane *lanegraph.Lane, idx int, toID lanegraph.LaneID, newPos float64) {
	car := fromLane.Cars[idx]
	fromLane.Cars = append(fromLane.Cars[:idx], fromLane.Cars[idx+1:]...)

	toLane, ok := s.graph.Lane(toID)
	if !ok {
		s.finish(car, lanegraph.PreciseLocation{Lane: toID, Offset: newPos}, FateNoRoute)
		return
	}
	car.Position = newPos
	insertSorted(toLane, car)
	s.carLane[car.ID] = toID
	s.recomputeNextHop(toLane, car)
}

// recomputeNextHop resolves the next outgoing interaction a car should
// take from lane toward its destination, finishing the trip NoRoute if
// none exists (spec §4.5 hand-off: "if no route exists, the trip finishes
// with NoRoute").
func (s *Simulation) recomputeNextHop(lane *lanegraph.Lane, car *lanegraph.Car) {
	if lane.ID == car.Destination.Lane {
		car.NextHopInteraction = -1
		return
	}
	info, ok := s.graph.RouteToward(lane, car.Destination)
	if !ok {
		s.finish(car, lanegraph.PreciseLocation{Lane: lane.ID, Offset: car.Position}, FateNoRoute)
		return
	}
	car.NextHopInteraction = info.OutgoingInteractionIdx
}

func (s *Simulation) completeArrivals(lane *lanegraph.Lane, tick int64) {
	remaining := lane.Cars[:0]
	for _, car := range lane.Cars {
		if s.forceStopped[car.ID] {
			s.finish(car, lanegraph.PreciseLocation{Lane: lane.ID, Offset: car.Position}, FateForceStopped)
			delete(s.forceStopped, car.ID)
			continue
		}
		if car.Destination.Lane == lane.ID && car.Position >= car.Destination.Offset {
			s.finish(car, lanegraph.PreciseLocation{Lane: lane.ID, Offset: car.Position}, FateSuccess)
			continue
		}
		remaining = append(remaining, car)
	}
	lane.Cars = remaining
}

func (s *Simulation) finish(car *lanegraph.Car, location lanegraph.PreciseLocation, fate TripFate) {
	delete(s.carLane, car.ID)
	s.graph.UnregisterDestination(car.Destination)
	if s.sink != nil {
		s.sink.FinishTrip(car.ID, location, TripResult{Tick: s.tick.Load(), Fate: fate})
	}
}

// pushObstaclesToPartners synthesizes the obstacle view each of lane's
// interaction partners should see (spec §4.5's Conflicting/Switch/Previous
// formulas) and appends it to the partner's obstacle list for its next
// processing cycle.
func (s *Simulation) pushObstaclesToPartners(lane *lanegraph.Lane) {
	for _, inter := range lane.Interactions {
		partner, ok := s.graph.Lane(inter.Partner)
		if !ok {
			continue
		}
		switch inter.Kind {
		case lanegraph.Next:
			if ob, ok := nearEndObstacle(lane); ok {
				ob.Position -= lane.Length
				if ob.Position >= -2 {
					partner.Obstacles = append(partner.Obstacles, ob)
				}
			}
		case lanegraph.Conflicting:
			if inter.CanWeave {
				for _, c := range lane.Cars {
					if c.Position >= inter.Start && c.Position <= inter.End {
						partner.Obstacles = append(partner.Obstacles, lanegraph.Obstacle{
							Position: c.Position - inter.Start + inter.PartnerStart,
							Velocity: c.Velocity,
						})
					}
				}
			} else if overlapOccupied(lane, inter) {
				partner.Obstacles = append(partner.Obstacles, lanegraph.Obstacle{Position: inter.PartnerStart, Velocity: 0})
			}
		case lanegraph.Switch:
			for _, c := range lane.Cars {
				if c.Position >= inter.Start && c.Position <= inter.End {
					partner.Obstacles = append(partner.Obstacles, lanegraph.Obstacle{Position: c.Position, Velocity: c.Velocity})
				}
			}
		}
	}
}

// nearEndObstacle returns the car or obstacle closest to lane's end --
// the "first car or external obstacle" the successor lane perceives,
// expressed in lane's own local coordinates before the caller offsets it
// by lane.Length (spec §4.5's Previous{previous_length} formula).
func nearEndObstacle(lane *lanegraph.Lane) (lanegraph.Obstacle, bool) {
	if n := len(lane.Cars); n > 0 {
		last := lane.Cars[n-1]
		return lanegraph.Obstacle{Position: last.Position, Velocity: last.Velocity}, true
	}
	if n := len(lane.Obstacles); n > 0 {
		return lane.Obstacles[n-1], true
	}
	return lanegraph.Obstacle{}, false
}

func overlapOccupied(lane *lanegraph.Lane, inter lanegraph.Interaction) bool {
	for _, c := range lane.Cars {
		predicted := c.Position + c.Velocity
		if predicted >= inter.Start && predicted <= inter.End {
			return true
		}
	}
	return false
}
