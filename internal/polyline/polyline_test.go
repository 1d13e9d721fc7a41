package polyline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	gopolyline "github.com/twpayne/go-polyline"

	"fieldplanner/internal/geo"
)

func TestEncodeRoundTripsThroughLibraryDecode(t *testing.T) {
	points := []geo.Point{
		{Lat: 40.0, Lng: -75.0},
		{Lat: 40.001, Lng: -75.001},
		{Lat: 40.002, Lng: -74.999},
	}

	encoded := Encode(points)
	assert.NotEmpty(t, encoded)

	coords, _, err := gopolyline.DecodeCoords([]byte(encoded))
	assert.NoError(t, err)
	assert.Len(t, coords, len(points))
	for i, c := range coords {
		assert.InDelta(t, points[i].Lat, c[0], 1e-4)
		assert.InDelta(t, points[i].Lng, c[1], 1e-4)
	}
}

func TestEncodeEmptyPointsReturnsEmptyString(t *testing.T) {
	assert.Equal(t, "", Encode(nil))
	assert.Equal(t, "", Encode([]geo.Point{}))
}

func TestEncodeSinglePoint(t *testing.T) {
	encoded := Encode([]geo.Point{{Lat: 40.0, Lng: -75.0}})
	assert.NotEmpty(t, encoded)

	coords, _, err := gopolyline.DecodeCoords([]byte(encoded))
	assert.NoError(t, err)
	assert.Len(t, coords, 1)
}
