package timeoracle

import (
	"context"

	"fieldplanner/internal/geo"
)

// HaversineOracle implements Oracle using straight-line distance divided
// by an assumed average ground speed (spec §4.1). It always satisfies
// the contract exactly — no network dependency, no cache required, since
// haversine computation is cheap enough to repeat.
type HaversineOracle struct{}

// NewHaversineOracle constructs a HaversineOracle.
func NewHaversineOracle() *HaversineOracle {
	return &HaversineOracle{}
}

// Travel implements Oracle.
func (o *HaversineOracle) Travel(_ context.Context, a, b geo.Point) (Result, error) {
	return Result{
		Miles:   geo.DistanceMiles(a, b),
		Minutes: geo.TravelMinutes(a, b),
	}, nil
}

// Matrix implements Oracle.
func (o *HaversineOracle) Matrix(ctx context.Context, points []geo.Point) ([][]Result, error) {
	n := len(points)
	matrix := make([][]Result, n)
	for i := range matrix {
		matrix[i] = make([]Result, n)
		for j := range matrix[i] {
			if i == j {
				continue
			}
			r, _ := o.Travel(ctx, points[i], points[j])
			matrix[i][j] = r
		}
	}
	return matrix, nil
}

// Prewarm is a no-op: HaversineOracle has nothing worth precomputing.
func (o *HaversineOracle) Prewarm(_ context.Context, _ []geo.Point) error {
	return nil
}
