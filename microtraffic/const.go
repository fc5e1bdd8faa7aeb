// Package microtraffic runs the per-tick Intelligent-Driver-Model
// car-following simulation over a lanegraph.Graph: signal evaluation,
// acceleration, integration, lane hand-off, and trip completion (spec
// §4.5). Grounded on the teacher's control package (control.basicPID,
// TrapezoidVelocityProfile): a per-entity, per-tick "compute correction
// from current + target state" control block, the same shape idmAccel
// takes here.
package microtraffic

// Constants reserved bit-exact at the system boundary (spec §6).
const (
	Slowdown               = 6.0
	TrafficLogicThrottling = 10
	PathfindingThrottling  = 10

	idmA          = 5.0
	idmB          = 4.0
	idmMaxDecel   = 14.0
	idmMaxGapV    = 20.0
	idmT          = 1.2
	idmS0         = 2.0
	idmDelta      = 4.0
	carLength     = 4.0

	// gapToObstacleAhead is the minimum-spacing parameter idmAccel uses
	// against an external obstacle; idmS0 covers the car-ahead case.
	gapToObstacleAhead = 3.0
	stopLineOffset     = 2.0 // virtual stop obstacle at length + 2
)
