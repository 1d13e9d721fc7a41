package vrp

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldplanner/internal/geo"
	"fieldplanner/internal/timeoracle"
)

// mockOracle is a deterministic stand-in for a time oracle, styled after
// the teacher's mockDistanceCalculator (internal/routing/greedy_test.go):
// travel time is a configurable lookup with a sane default when unset.
type mockOracle struct {
	minutes map[string]float64
}

func newMockOracle() *mockOracle {
	return &mockOracle{minutes: make(map[string]float64)}
}

func pointKey(a, b geo.Point) string {
	return fmt.Sprintf("%.6f,%.6f->%.6f,%.6f", a.Lat, a.Lng, b.Lat, b.Lng)
}

func (m *mockOracle) setMinutes(a, b geo.Point, minutes float64) {
	m.minutes[pointKey(a, b)] = minutes
	m.minutes[pointKey(b, a)] = minutes
}

func (m *mockOracle) Travel(_ context.Context, a, b geo.Point) (timeoracle.Result, error) {
	if a == b {
		return timeoracle.Result{}, nil
	}
	if v, ok := m.minutes[pointKey(a, b)]; ok {
		return timeoracle.Result{Miles: v, Minutes: v}, nil
	}
	return timeoracle.Result{Miles: 10, Minutes: 10}, nil
}

func (m *mockOracle) Matrix(ctx context.Context, points []geo.Point) ([][]timeoracle.Result, error) {
	matrix := make([][]timeoracle.Result, len(points))
	for i := range points {
		matrix[i] = make([]timeoracle.Result, len(points))
		for j := range points {
			r, _ := m.Travel(ctx, points[i], points[j])
			matrix[i][j] = r
		}
	}
	return matrix, nil
}

func (m *mockOracle) Prewarm(context.Context, []geo.Point) error { return nil }

func TestGreedySolverAssignsAllSitesWithinVehicleCount(t *testing.T) {
	oracle := newMockOracle()
	solver := NewGreedySolver()

	sites := []Site{
		{ID: "a", Coords: geo.Point{Lat: 40.0, Lng: -75.0}, ServiceMinutes: 30},
		{ID: "b", Coords: geo.Point{Lat: 40.01, Lng: -75.0}, ServiceMinutes: 30},
		{ID: "c", Coords: geo.Point{Lat: 40.02, Lng: -75.0}, ServiceMinutes: 30},
	}

	solution, err := solver.Solve(context.Background(), sites, oracle, Constraints{
		VehicleCount:  1,
		BudgetMinutes: 480,
		StopCap:       8,
	})

	require.NoError(t, err)
	assert.Equal(t, 0, solution.Unassigned)
	require.Len(t, solution.Routes, 1)
	assert.Len(t, solution.Routes[0].SiteIDs, 3)
}

func TestGreedySolverRespectsBudget(t *testing.T) {
	oracle := newMockOracle()
	solver := NewGreedySolver()

	a := geo.Point{Lat: 40.0, Lng: -75.0}
	b := geo.Point{Lat: 41.0, Lng: -75.0}
	oracle.setMinutes(a, b, 300)

	sites := []Site{
		{ID: "a", Coords: a, ServiceMinutes: 100},
		{ID: "b", Coords: b, ServiceMinutes: 100},
	}

	solution, err := solver.Solve(context.Background(), sites, oracle, Constraints{
		VehicleCount:  1,
		BudgetMinutes: 480,
		StopCap:       8,
	})

	require.NoError(t, err)
	require.Len(t, solution.Routes, 1)
	assert.LessOrEqual(t, solution.Routes[0].RouteMinutes, 480)
}

func TestGreedySolverSurfacesUnassignedWhenVehiclesInsufficient(t *testing.T) {
	oracle := newMockOracle()
	solver := NewGreedySolver()

	sites := []Site{
		{ID: "a", Coords: geo.Point{Lat: 10, Lng: 10}, ServiceMinutes: 10},
		{ID: "b", Coords: geo.Point{Lat: 50, Lng: 50}, ServiceMinutes: 10},
		{ID: "c", Coords: geo.Point{Lat: -10, Lng: -10}, ServiceMinutes: 10},
	}

	solution, err := solver.Solve(context.Background(), sites, oracle, Constraints{
		VehicleCount:  1,
		BudgetMinutes: 5, // shorter than any single site's 10 service minutes
		StopCap:       8,
	})

	require.NoError(t, err)
	assert.Greater(t, solution.Unassigned, 0)
	assert.Len(t, solution.Routes, 1)
}

func TestGreedySolverEmptySites(t *testing.T) {
	oracle := newMockOracle()
	solver := NewGreedySolver()

	solution, err := solver.Solve(context.Background(), nil, oracle, Constraints{VehicleCount: 3, BudgetMinutes: 480, StopCap: 8})

	require.NoError(t, err)
	assert.Len(t, solution.Routes, 3)
	assert.Equal(t, 0, solution.Unassigned)
}

func TestGreedySolverRespectsStopCap(t *testing.T) {
	oracle := newMockOracle()
	solver := NewGreedySolver()

	sites := []Site{
		{ID: "a", Coords: geo.Point{Lat: 40.0, Lng: -75.0}, ServiceMinutes: 5},
		{ID: "b", Coords: geo.Point{Lat: 40.01, Lng: -75.0}, ServiceMinutes: 5},
		{ID: "c", Coords: geo.Point{Lat: 40.02, Lng: -75.0}, ServiceMinutes: 5},
	}

	solution, err := solver.Solve(context.Background(), sites, oracle, Constraints{
		VehicleCount:  1,
		BudgetMinutes: 480,
		StopCap:       2,
	})

	require.NoError(t, err)
	require.Len(t, solution.Routes, 1)
	assert.LessOrEqual(t, len(solution.Routes[0].SiteIDs), 2)
	assert.Equal(t, 1, solution.Unassigned)
}
