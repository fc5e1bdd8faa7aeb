package microtraffic

import "math"

// idmAccel is the Intelligent Driver Model acceleration of a car with
// velocity v and free-flow speed vMax approaching an obstacle at gap s
// (bumper-to-bumper distance) with closing rate deltaV = v - vObstacle,
// using minimum spacing s0 (spec §4.5 calls for s0=2 against a leading car
// and s0=3 against an external obstacle). Pure function of state in,
// scalar out, clamped below at -idmMaxDecel -- the same "compute
// correction from current + target state" shape as the teacher's
// control.basicPID block.
func idmAccel(v, vMax, s, deltaV, s0 float64) float64 {
	if s <= 0 {
		return -idmMaxDecel
	}
	sStar := s0 + math.Max(0, v*idmT+v*deltaV/(2*math.Sqrt(idmA*idmB)))
	a := idmA * (1 - math.Pow(v/vMax, idmDelta) - math.Pow(sStar/s, 2))
	return math.Max(a, -idmMaxDecel)
}

// gap converts a car's position and a leading obstacle's position into the
// bumper-to-bumper spacing idmAccel expects: s = x_o - x_car - car_length.
func gap(carPos, obstaclePos float64) float64 {
	return obstaclePos - carPos - carLength
}
