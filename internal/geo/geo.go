// Package geo implements the geographic primitives: haversine distance,
// a straight-line travel-time estimate, and bounding-diameter computation
// (spec §4.1). It hand-rolls the trigonometry the way the teacher's
// fairness-first router does for bearing math, rather than pulling in a
// geo library that nothing in the retrieved corpus depends on.
package geo

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	earthRadiusMiles = 3958.8

	// assumedAverageSpeedMPH approximates ground speed for the straight-line
	// travel-time estimate. A time oracle with access to a routing service
	// (internal/timeoracle) may refine this via an external matrix behind
	// the same interface.
	assumedAverageSpeedMPH = 35.0
)

// Point is a minimal WGS-84 coordinate used by the geo primitives. Callers
// pass their own coordinate types in by converting to Point at the call
// site, keeping this package free of a dependency on models.
type Point struct {
	Lat float64
	Lng float64
}

// DistanceMiles returns the great-circle (haversine) distance between two
// points in statute miles. Symmetric and satisfies the triangle inequality.
// Coincident points (including distinct sites sharing coordinates, per
// spec §9 open question 4) return exactly 0.
func DistanceMiles(a, b Point) float64 {
	if a.Lat == b.Lat && a.Lng == b.Lng {
		return 0
	}

	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	sinDLat := math.Sin(dLat / 2)
	sinDLng := math.Sin(dLng / 2)

	h := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLng*sinDLng
	h = math.Min(1, math.Max(0, h))

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusMiles * c
}

// TravelMinutes estimates travel time as a monotone non-decreasing function
// of distance: straight-line miles divided by an assumed average ground
// speed. Symmetric because DistanceMiles is symmetric.
func TravelMinutes(a, b Point) float64 {
	miles := DistanceMiles(a, b)
	return miles / assumedAverageSpeedMPH * 60
}

// BoundingDiameter returns the maximum pairwise distance among points. For
// small sets (<= exactDiameterThreshold) it computes the exact value; for
// larger sets it uses a farthest-point approximation that is cheap and
// never underestimates the true diameter by more than a small factor,
// matching spec §4.1's allowance for an approximation on large sets.
func BoundingDiameter(points []Point) float64 {
	n := len(points)
	if n < 2 {
		return 0
	}
	if n <= exactDiameterThreshold {
		return exactDiameter(points)
	}
	return approximateDiameter(points)
}

const exactDiameterThreshold = 200

func exactDiameter(points []Point) float64 {
	max := 0.0
	for i := 0; i < len(points); i++ {
		for j := i + 1; j < len(points); j++ {
			if d := DistanceMiles(points[i], points[j]); d > max {
				max = d
			}
		}
	}
	return max
}

// approximateDiameter picks an arbitrary start point, finds the farthest
// point from it, then the farthest point from that — the classic
// two-pass farthest-point heuristic for diameter estimation.
func approximateDiameter(points []Point) float64 {
	a := farthestFrom(points[0], points)
	b := farthestFrom(a, points)
	return DistanceMiles(a, b)
}

func farthestFrom(from Point, points []Point) Point {
	best := points[0]
	bestDist := -1.0
	for _, p := range points {
		if d := DistanceMiles(from, p); d > bestDist {
			bestDist = d
			best = p
		}
	}
	return best
}

// Centroid returns the unweighted mean of the given points' coordinates,
// using gonum's stat.Mean the way the statistics-heavy repos in the
// retrieved corpus compute per-dimension means.
func Centroid(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}
	lats := make([]float64, len(points))
	lngs := make([]float64, len(points))
	for i, p := range points {
		lats[i] = p.Lat
		lngs[i] = p.Lng
	}
	return Point{Lat: stat.Mean(lats, nil), Lng: stat.Mean(lngs, nil)}
}

// Variance returns the sample variance (divisor n-1) of values, used by the
// VRP tie-break rule ("smaller variance across routes", spec §4.3).
func Variance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.Variance(values, nil)
}
