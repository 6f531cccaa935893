package geometry

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
)

// Distance returns the haversine distance between two points in meters.
func Distance(a, b orb.Point) float64 {
	return geo.Distance(a, b)
}

// PolylineLength returns the length of a polyline in meters.
func PolylineLength(line orb.LineString) float64 {
	var total float64
	for i := 0; i < len(line)-1; i++ {
		total += geo.Distance(line[i], line[i+1])
	}
	return total
}

// BoundAround returns a bounding box with the given radius (meters) around a point.
func BoundAround(p orb.Point, radiusMeters float64) orb.Bound {
	return geo.NewBoundAroundPoint(p, radiusMeters)
}

// Contains reports whether the point lies inside the geometry. Only polygonal
// geometries can contain a point; everything else reports false.
func Contains(g orb.Geometry, p orb.Point) bool {
	switch geom := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(geom, p)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(geom, p)
	case orb.Bound:
		return geom.Contains(p)
	default:
		return false
	}
}

// SampleAlong returns points sampled along the polyline at fixed arc-length
// steps, always including the first and last vertex. The result is fully
// determined by the polyline and the step, so repeated calls for the same
// edge yield identical samples.
func SampleAlong(line orb.LineString, stepMeters float64) []orb.Point {
	if len(line) == 0 {
		return nil
	}
	if len(line) == 1 || stepMeters <= 0 {
		return []orb.Point{line[0]}
	}

	samples := []orb.Point{line[0]}
	carried := 0.0 // distance along the current segment already consumed

	for i := 0; i < len(line)-1; i++ {
		a, b := line[i], line[i+1]
		segLen := geo.Distance(a, b)
		if segLen == 0 {
			continue
		}
		for d := stepMeters - carried; d < segLen; d += stepMeters {
			t := d / segLen
			samples = append(samples, orb.Point{
				a[0] + (b[0]-a[0])*t,
				a[1] + (b[1]-a[1])*t,
			})
		}
		carried = remainderAfterSteps(carried+segLen, stepMeters)
	}

	last := line[len(line)-1]
	if samples[len(samples)-1] != last {
		samples = append(samples, last)
	}
	return samples
}

func remainderAfterSteps(total, step float64) float64 {
	for total >= step {
		total -= step
	}
	return total
}
