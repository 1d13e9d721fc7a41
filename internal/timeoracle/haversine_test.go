package timeoracle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldplanner/internal/geo"
)

func TestHaversineOracleTravel(t *testing.T) {
	o := NewHaversineOracle()
	a := geo.Point{Lat: 30.4515, Lng: -91.1871}
	b := geo.Point{Lat: 35.2271, Lng: -80.8431}

	r, err := o.Travel(context.Background(), a, b)
	require.NoError(t, err)
	assert.Greater(t, r.Miles, 0.0)
	assert.Greater(t, r.Minutes, 0.0)
}

func TestHaversineOracleMatrixDiagonalIsZero(t *testing.T) {
	o := NewHaversineOracle()
	points := []geo.Point{{Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}, {Lat: 3, Lng: 3}}

	matrix, err := o.Matrix(context.Background(), points)
	require.NoError(t, err)

	for i := range points {
		assert.Equal(t, 0.0, matrix[i][i].Miles)
	}
	assert.Equal(t, matrix[0][1].Miles, matrix[1][0].Miles)
}

func TestHaversineOraclePrewarmNoop(t *testing.T) {
	o := NewHaversineOracle()
	assert.NoError(t, o.Prewarm(context.Background(), nil))
}
