package vrp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldplanner/internal/geo"
)

func TestFullSolverNeverWorseThanSeed(t *testing.T) {
	oracle := newMockOracle()
	fast := NewGreedySolver()
	full := NewFullSolver(200 * time.Millisecond)

	sites := []Site{
		{ID: "a", Coords: geo.Point{Lat: 40.0, Lng: -75.0}, ServiceMinutes: 20},
		{ID: "b", Coords: geo.Point{Lat: 40.05, Lng: -75.0}, ServiceMinutes: 20},
		{ID: "c", Coords: geo.Point{Lat: 41.0, Lng: -75.0}, ServiceMinutes: 20},
		{ID: "d", Coords: geo.Point{Lat: 41.05, Lng: -75.0}, ServiceMinutes: 20},
	}

	constraints := Constraints{VehicleCount: 2, BudgetMinutes: 480, StopCap: 8}

	fastSolution, err := fast.Solve(context.Background(), sites, oracle, constraints)
	require.NoError(t, err)

	fullSolution, err := full.Solve(context.Background(), sites, oracle, constraints)
	require.NoError(t, err)

	assert.False(t, Better(fastSolution, fullSolution), "full mode must not be worse than its own fast-mode seed")
	assert.Equal(t, fastSolution.Unassigned, fullSolution.Unassigned)
}

func TestFullSolverRespectsContextCancellation(t *testing.T) {
	oracle := newMockOracle()
	full := NewFullSolver(time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sites := []Site{
		{ID: "a", Coords: geo.Point{Lat: 40.0, Lng: -75.0}, ServiceMinutes: 20},
		{ID: "b", Coords: geo.Point{Lat: 40.05, Lng: -75.0}, ServiceMinutes: 20},
	}

	solution, err := full.Solve(ctx, sites, oracle, Constraints{VehicleCount: 1, BudgetMinutes: 480, StopCap: 8})
	require.NoError(t, err)
	assert.Equal(t, 0, solution.Unassigned)
}

func TestFullSolverEmptySites(t *testing.T) {
	oracle := newMockOracle()
	full := NewFullSolver(0)

	solution, err := full.Solve(context.Background(), nil, oracle, Constraints{VehicleCount: 2, BudgetMinutes: 480, StopCap: 8})
	require.NoError(t, err)
	assert.Len(t, solution.Routes, 2)
}
