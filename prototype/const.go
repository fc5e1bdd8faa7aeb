// Package prototype compiles a plan.PlanHistory into content-addressed
// Prototypes (lanes, intersections, lots) plus a spatial index, per spec
// §4.2.
package prototype

// Constants reserved bit-exact at the system boundary (spec §6).
const (
	LaneWidth           = 6.0
	LaneDistance        = 4.8
	CenterLaneDistance  = 4.8
	GridCellSize        = 100.0
	ConnectionTolerance = 1e-3

	// CurveLinearizationMaxAngle bounds arc flattening before polygon
	// clipping (spec §9 design notes); see geom.CurveLinearizationMaxAngle.
	CurveLinearizationMaxAngle = 0.1

	// intersectionPadding extends a road's thick outline past its
	// endpoints before clipping (spec §4.2.3).
	intersectionPadding = 10.0

	// bandSlack is the extra half-width (in multiples of LaneDistance)
	// added to a road's lane-count-derived half-width before banding.
	bandSlack = 0.4
)
