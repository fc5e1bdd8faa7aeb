package prototype

import (
	"github.com/cityplan/simcore/geom"
	"github.com/cityplan/simcore/logging"
	"github.com/cityplan/simcore/plan"
)

// roadGestureView pairs a gesture's corners/intent with its index, the unit
// this compiler pipeline threads through every planning-step function.
type roadGestureView struct {
	idx     int
	corners []geom.Point
	forward uint8
	backward uint8
}

// Compile runs the full §4.2 pipeline over a plan history and returns the
// resulting PlanResult. It never panics on malformed geometry: individual
// degenerate prototypes are logged and omitted (§7).
func Compile(logger logging.Logger, history plan.PlanHistory) PlanResult {
	gestures := history.Gestures()

	var roads []roadGestureView
	var zones []plan.Gesture
	idx := 0
	for _, g := range gestures {
		if g.Intent.IsRoad() {
			roads = append(roads, roadGestureView{
				idx:      idx,
				corners:  g.Corners,
				forward:  g.Intent.Road.LanesForward,
				backward: g.Intent.Road.LanesBackward,
			})
			idx++
		} else if g.Intent.IsZone() {
			zones = append(zones, g)
		}
	}

	centers := make([]geom.Path, len(roads))
	ok := make([]bool, len(roads))
	for i, r := range roads {
		centers[i], ok[i] = smoothRoadPath(r.corners)
		if !ok[i] {
			logger.Warnw("road smoothing produced degenerate path, omitting", "gestureIndex", r.idx)
		}
	}

	var candidates []candidateLane
	var bands []roadBand
	for i, r := range roads {
		if !ok[i] {
			continue
		}
		candidates = append(candidates, extractCandidateLanes(r.idx, centers[i], r.forward, r.backward)...)
		totalLanes := r.forward + r.backward
		if band, err := geom.Band(centers[i], roadHalfWidth(totalLanes), intersectionPadding); err == nil {
			bands = append(bands, roadBand{gestureIdx: r.idx, area: band})
		} else {
			logger.Warnw("road band construction failed, skipping for intersection clipping", "gestureIndex", r.idx)
		}
	}

	intersectionAreas := buildIntersectionPolygons(bands)

	var prototypes []Prototype

	// Per-lane accumulated cuts and connectors across every intersection.
	laneCuts := make(map[int][]float64, len(candidates))
	type laneConnRec struct {
		intersectionIdx int
		conn            connector
	}
	laneConns := make(map[int][]laneConnRec, len(candidates))

	for li, c := range candidates {
		cuts, conns := trimLaneAgainstIntersections(c, intersectionAreas)
		laneCuts[li] = cuts
		for _, rec := range conns {
			laneConns[li] = append(laneConns[li], laneConnRec{intersectionIdx: rec.intersectionIdx, conn: rec.conn})
		}
	}

	for li, c := range candidates {
		subpaths := segmentsFromCuts(c.path, laneCuts[li])
		for _, sp := range subpaths {
			lp := LanePrototype{Path: sp}
			ih := newInfluenceHasher("lane")
			ih.str(boolStr(c.forward))
			ih.uint(uint64(c.laneIdx))
			ih.point(sp.Start())
			ih.point(sp.End())
			ih.float(sp.Length())
			prototypes = append(prototypes, Prototype{
				ID:                     ih.id(),
				Kind:                   Kind{Lane: &lp},
				RepresentativePosition: sp.PointAt(sp.Length() / 2),
			})
		}
	}

	// Build one Intersection prototype per polygon, with connecting lanes
	// and signal timings (§4.2.5).
	for ii, area := range intersectionAreas {
		var conns []connector
		for li := range candidates {
			for _, rec := range laneConns[li] {
				if rec.intersectionIdx == ii {
					conns = append(conns, rec.conn)
				}
			}
		}
		if len(conns) == 0 {
			continue
		}
		centroid := area.Centroid()
		incomingGroups, outgoingGroups := groupConnectors(centroid, conns)

		// Each group's lanes are assigned roles once, from every turn kind
		// that group can actually reach across the whole intersection (not
		// per (in,out) pair) -- §4.2.5's role table is a property of the
		// approach/exit as a whole, not of one bundle.
		inRoles := make([][]laneRole, len(incomingGroups))
		for i, in := range incomingGroups {
			hasInner, hasStraight, hasOuter := reachableKinds(in, outgoingGroups, true)
			inRoles[i] = laneRoles(len(in.connectors), hasInner, hasStraight, hasOuter)
		}
		outRoles := make([][]laneRole, len(outgoingGroups))
		for j, out := range outgoingGroups {
			hasInner, hasStraight, hasOuter := reachableKinds(out, incomingGroups, false)
			outRoles[j] = laneRoles(len(out.connectors), hasInner, hasStraight, hasOuter)
		}

		connecting := map[ConnectorKey][]LanePrototype{}
		var bundles []bundle
		var keysPerBundle []ConnectorKey
		for inIdx, in := range incomingGroups {
			for outIdx, out := range outgoingGroups {
				if in.key == out.key {
					continue // no direct U-shaped same-side connection
				}
				kind := classifyTurn(in, out)

				// Only role-compatible connectors on each side may pair for
				// this turn kind (§4.2.5: "pairing matched role-compatible
				// connectors"), not every connector in the group.
				inIdxs := roleIndices(inRoles[inIdx], kind)
				outIdxs := roleIndices(outRoles[outIdx], kind)
				m := len(inIdxs)
				if len(outIdxs) < m {
					m = len(outIdxs)
				}
				var lanes []LanePrototype
				for k := 0; k < m; k++ {
					path, built := connectingLane(in.connectors[inIdxs[k]], out.connectors[outIdxs[k]])
					if !built {
						continue
					}
					lanes = append(lanes, LanePrototype{Path: path})
					bundles = append(bundles, bundle{path: path, straight: kind == turnStraight})
					keysPerBundle = append(keysPerBundle, ConnectorKey{In: inIdx, Out: outIdx})
				}
				if len(lanes) > 0 {
					connecting[ConnectorKey{In: inIdx, Out: outIdx}] = lanes
				}
			}
		}

		phases := buildPhases(bundles)
		flatTimings := timingsFor(bundles, phases)

		intersection := Intersection{
			Polygon:         area,
			ConnectingLanes: connecting,
			Timings:         flatTimings,
		}
		ih := intersectionID(area)
		prototypes = append(prototypes, Prototype{
			ID:                     ih,
			Kind:                   Kind{Intersection: &intersection},
			RepresentativePosition: centroid,
		})
	}

	for _, z := range zones {
		if len(z.Corners) < 3 {
			continue
		}
		area := geom.Area{Ring: z.Corners}
		lot := Lot{Area: area, ZoneConfigs: *z.Intent.Zone, Occupancy: 0}
		ih := newInfluenceHasher("lot")
		ih.points(area.Ring)
		prototypes = append(prototypes, Prototype{
			ID:                     ih.id(),
			Kind:                   Kind{Lot: &lot},
			RepresentativePosition: area.Centroid(),
		})
	}

	return NewPlanResult(prototypes)
}
