// Package vrp implements the single-day VRP solver (spec §4.3): building
// time-optimal tours for K vehicles over N sites under route-time,
// service-time, and per-vehicle site-count caps. Two solvers share the
// SingleDaySolver capability — fast (greedy+2-opt) and full (constraint
// search with a wall-clock budget) — so higher layers depend on the
// capability, not the variant (spec §9 "Polymorphism over solver
// implementations").
package vrp

import (
	"context"

	"fieldplanner/internal/geo"
	"fieldplanner/internal/timeoracle"
)

// Site is the solver's view of a site to schedule today.
type Site struct {
	ID             string
	Coords         geo.Point
	ServiceMinutes int
}

// Route is one vehicle's ordered tour. There is no depot — the route
// starts and ends at the first and last visited sites respectively (spec
// §4.3), reflecting field crews who stage from the first stop.
type Route struct {
	SiteIDs        []string
	ServiceMinutes int
	RouteMinutes   int // service + travel
}

// TravelMinutes returns the travel-only portion of RouteMinutes.
func (r Route) TravelMinutes() int {
	return r.RouteMinutes - r.ServiceMinutes
}

// Solution is the solver's output: K routes (possibly empty) plus the
// count of sites that could not be placed.
type Solution struct {
	Routes            []Route
	Unassigned        int
	UnassignedSiteIDs []string
}

// Constraints bounds a single-day solve.
type Constraints struct {
	VehicleCount int
	BudgetMinutes int // max_route_minutes, further capped by workday_minutes - break_minutes (spec §3, invariant 4)
	StopCap       int // max_sites_per_crew_per_day
}

// SingleDaySolver is the capability both the fast and full solvers share
// (spec §4.3 contract). Never returns an error for infeasibility — it
// surfaces it via Solution.Unassigned; only internal/numerical/time-oracle
// errors escape as an error.
type SingleDaySolver interface {
	Solve(ctx context.Context, sites []Site, oracle timeoracle.Oracle, constraints Constraints) (Solution, error)
}

// travelMinutesBetween is the shared helper both solvers use to look up
// travel time from the oracle for a given pair of sites.
func travelMinutesBetween(ctx context.Context, oracle timeoracle.Oracle, a, b Site) (float64, error) {
	r, err := oracle.Travel(ctx, a.Coords, b.Coords)
	if err != nil {
		return 0, err
	}
	return r.Minutes, nil
}

// travelIndex precomputes the full pairwise travel-minutes matrix for a
// day's sites via a single oracle.Matrix call (one round trip against the
// backing oracle regardless of how many times solvers then probe it),
// mirroring the teacher's PrewarmCache-then-read-from-cache pattern.
type travelIndex struct {
	order    map[string]int
	minutesM [][]float64
}

func buildTravelIndex(ctx context.Context, sites []Site, oracle timeoracle.Oracle) (*travelIndex, error) {
	points := make([]geo.Point, len(sites))
	order := make(map[string]int, len(sites))
	for i, s := range sites {
		points[i] = s.Coords
		order[s.ID] = i
	}

	matrix, err := oracle.Matrix(ctx, points)
	if err != nil {
		return nil, err
	}

	minutesM := make([][]float64, len(sites))
	for i, row := range matrix {
		minutesM[i] = make([]float64, len(row))
		for j, r := range row {
			minutesM[i][j] = r.Minutes
		}
	}

	return &travelIndex{order: order, minutesM: minutesM}, nil
}

func (t *travelIndex) minutes(a, b string) float64 {
	i, ok1 := t.order[a]
	j, ok2 := t.order[b]
	if !ok1 || !ok2 {
		return 0
	}
	return t.minutesM[i][j]
}
