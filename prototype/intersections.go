package prototype

import (
	"math"

	"github.com/cityplan/simcore/geom"
)

// roadBand is a road gesture's thick outline, used for §4.2.3.
type roadBand struct {
	gestureIdx int
	area       geom.Area
}

// buildIntersectionPolygons implements §4.2.3: clip every pair of road
// bands, then repeatedly union overlapping pieces to a fixed point. Each
// resulting polygon becomes one intersection.
func buildIntersectionPolygons(bands []roadBand) []geom.Area {
	var pieces []geom.Area
	for i := 0; i < len(bands); i++ {
		for j := i + 1; j < len(bands); j++ {
			clipped := geom.Clip(bands[i].area, bands[j].area)
			pieces = append(pieces, clipped...)
		}
	}
	return unionToFixedPoint(pieces)
}

// unionToFixedPoint repeatedly merges overlapping areas until no two
// remaining areas overlap (§4.2.3: "repeatedly union overlapping
// intersection polygons until fixed point").
func unionToFixedPoint(areas []geom.Area) []geom.Area {
	changed := true
	for changed {
		changed = false
		for i := 0; i < len(areas); i++ {
			for j := i + 1; j < len(areas); j++ {
				if !geom.Overlaps(areas[i], areas[j]) {
					continue
				}
				merged := geom.Union(areas[i], areas[j])
				if len(merged) == 0 {
					continue
				}
				// Replace i with the (first) merged piece, drop j, append
				// any additional merged fragments.
				areas[i] = merged[0]
				areas = append(areas[:j], areas[j+1:]...)
				areas = append(areas, merged[1:]...)
				changed = true
				break
			}
			if changed {
				break
			}
		}
	}
	return areas
}

func intersectionID(area geom.Area) ID {
	ih := newInfluenceHasher("intersection")
	ih.point(area.Centroid())
	ih.uint(uint64(len(area.Ring)))
	ih.float(math.Abs(area.SignedArea2D()))
	return ih.id()
}
