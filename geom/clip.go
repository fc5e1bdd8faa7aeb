package geom

import (
	polyclip "github.com/akavel/polyclip-go"
)

// CurveLinearizationMaxAngle bounds the angular step used when flattening
// an Arc into polygon vertices before handing a ring to the clipper (spec
// §9 design notes): samplePath in band.go raises its sample count until no
// step along an arc exceeds it.
const CurveLinearizationMaxAngle = 0.1

func toPolyclip(a Area) polyclip.Polygon {
	contour := make(polyclip.Contour, 0, len(a.Ring))
	for _, p := range a.Ring {
		contour = append(contour, polyclip.Point{X: p.X, Y: p.Y})
	}
	return polyclip.Polygon{contour}
}

func fromPolyclip(p polyclip.Polygon) []Area {
	areas := make([]Area, 0, len(p))
	for _, contour := range p {
		ring := make([]Point, 0, len(contour))
		for _, pt := range contour {
			ring = append(ring, Pt(pt.X, pt.Y))
		}
		if len(ring) >= 3 {
			areas = append(areas, Area{Ring: ring})
		}
	}
	return areas
}

// Clip returns the boolean intersection of two areas (possibly empty, or
// split into several disjoint pieces), wrapping the third-party
// Vatti/Greiner-Hormann-class clipper the rest of the compiler never
// imports directly (spec §9 design notes ask for exactly this: adopt an
// established boolean-area library behind a narrow interface).
func Clip(a, b Area) []Area {
	result := toPolyclip(a).Construct(polyclip.INTERSECTION, toPolyclip(b))
	return fromPolyclip(result)
}

// Union returns the boolean union of two areas; used to repeatedly merge
// overlapping intersection polygons to a fixed point (§4.2.3).
func Union(a, b Area) []Area {
	result := toPolyclip(a).Construct(polyclip.UNION, toPolyclip(b))
	return fromPolyclip(result)
}

// Overlaps reports whether two areas share any region, a cheap guard before
// running the full clip/union pass.
func Overlaps(a, b Area) bool {
	return len(Clip(a, b)) > 0
}
