package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceMilesCoincidentPointsIsZero(t *testing.T) {
	p := Point{Lat: 38.9072, Lng: -77.0369}
	assert.Equal(t, 0.0, DistanceMiles(p, p))
}

func TestDistanceMilesIsSymmetric(t *testing.T) {
	a := Point{Lat: 30.4515, Lng: -91.1871} // Baton Rouge
	b := Point{Lat: 35.2271, Lng: -80.8431} // Charlotte

	assert.InDelta(t, DistanceMiles(a, b), DistanceMiles(b, a), 1e-9)
}

func TestDistanceMilesKnownApproximation(t *testing.T) {
	// Baton Rouge, LA to Charlotte, NC is roughly 650-700 miles as the
	// crow flies.
	a := Point{Lat: 30.4515, Lng: -91.1871}
	b := Point{Lat: 35.2271, Lng: -80.8431}

	d := DistanceMiles(a, b)
	assert.Greater(t, d, 600.0)
	assert.Less(t, d, 750.0)
}

func TestDistanceMilesSatisfiesTriangleInequality(t *testing.T) {
	a := Point{Lat: 30.4515, Lng: -91.1871}
	b := Point{Lat: 35.2271, Lng: -80.8431}
	c := Point{Lat: 38.9072, Lng: -77.0369}

	assert.LessOrEqual(t, DistanceMiles(a, c), DistanceMiles(a, b)+DistanceMiles(b, c)+1e-6)
}

func TestTravelMinutesMonotoneInDistance(t *testing.T) {
	origin := Point{Lat: 30.0, Lng: -90.0}
	near := Point{Lat: 30.1, Lng: -90.0}
	far := Point{Lat: 31.0, Lng: -90.0}

	assert.Less(t, TravelMinutes(origin, near), TravelMinutes(origin, far))
}

func TestBoundingDiameterSmallSet(t *testing.T) {
	points := []Point{
		{Lat: 30.0, Lng: -90.0},
		{Lat: 30.5, Lng: -90.0},
		{Lat: 31.0, Lng: -90.0},
	}

	d := BoundingDiameter(points)
	expected := DistanceMiles(points[0], points[2])
	assert.InDelta(t, expected, d, 1e-9)
}

func TestBoundingDiameterSinglePointIsZero(t *testing.T) {
	assert.Equal(t, 0.0, BoundingDiameter([]Point{{Lat: 1, Lng: 1}}))
}

func TestCentroidAverages(t *testing.T) {
	points := []Point{{Lat: 0, Lng: 0}, {Lat: 2, Lng: 4}}
	c := Centroid(points)

	assert.Equal(t, 1.0, c.Lat)
	assert.Equal(t, 2.0, c.Lng)
}

func TestVarianceOfIdenticalValuesIsZero(t *testing.T) {
	assert.Equal(t, 0.0, Variance([]float64{5, 5, 5}))
}
