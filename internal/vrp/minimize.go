package vrp

import (
	"context"
	"log"

	"fieldplanner/internal/timeoracle"
)

// SolveMinimizingCrews implements the minimize_crews contract (spec §4.3 /
// §9 open question 3): solve with K = 1, 2, ..., maxVehicles crews in turn
// and return the first K that assigns every site, or — if none does — the
// maxVehicles solution with whatever residual Unassigned it has. Mirrors
// the teacher's balanced_router.go pattern of retrying a bounded-iteration
// optimization under an increasing resource budget.
func SolveMinimizingCrews(ctx context.Context, solver SingleDaySolver, sites []Site, oracle timeoracle.Oracle, c Constraints) (Solution, error) {
	if c.VehicleCount < 1 {
		c.VehicleCount = 1
	}

	var last Solution
	for k := 1; k <= c.VehicleCount; k++ {
		trial := c
		trial.VehicleCount = k

		solution, err := solver.Solve(ctx, sites, oracle, trial)
		if err != nil {
			return Solution{}, err
		}

		log.Printf("[MinimizeCrews] k=%d unassigned=%d", k, solution.Unassigned)

		last = solution
		if solution.Unassigned == 0 {
			return solution, nil
		}
	}

	return last, nil
}
