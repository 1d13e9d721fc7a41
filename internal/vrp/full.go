package vrp

import (
	"context"
	"log"
	"time"

	"fieldplanner/internal/timeoracle"
)

// DefaultFullModeBudget is the wall-clock budget full mode spends searching
// past the fast-mode seed before returning its incumbent (spec §4.3 "full
// optimization mode ... within a wall-clock time budget").
const DefaultFullModeBudget = 60 * time.Second

// FullSolver searches for a better multi-route assignment than the fast
// mode's single greedy+2-opt pass, within a wall-clock budget. It never
// returns worse than the fast-mode seed: the seed is the incumbent, and any
// move that fails to improve per the §4.3 tie-break order (vrp.Better) is
// rejected. Structured like the teacher's bounded-iteration optimizers
// (internal/routing/balanced_router.go's minMaxOptimize): seed, loop with a
// deadline check, keep only improving moves, stop when the budget elapses
// or no improving move is found.
type FullSolver struct {
	seed   SingleDaySolver
	budget time.Duration
}

// NewFullSolver builds a FullSolver. A zero budget uses DefaultFullModeBudget.
func NewFullSolver(budget time.Duration) *FullSolver {
	if budget <= 0 {
		budget = DefaultFullModeBudget
	}
	return &FullSolver{seed: NewGreedySolver(), budget: budget}
}

// Solve implements SingleDaySolver.
func (s *FullSolver) Solve(ctx context.Context, sites []Site, oracle timeoracle.Oracle, c Constraints) (Solution, error) {
	best, err := s.seed.Solve(ctx, sites, oracle, c)
	if err != nil {
		return Solution{}, err
	}

	if len(sites) == 0 {
		return best, nil
	}

	byID := make(map[string]Site, len(sites))
	for _, site := range sites {
		byID[site.ID] = site
	}

	travel, err := buildTravelIndex(ctx, sites, oracle)
	if err != nil {
		return Solution{}, err
	}

	deadline := time.Now().Add(s.budget)
	log.Printf("[FullSolver] seeded max=%dmin unassigned=%d, searching until %s", maxRouteMinutes(best), best.Unassigned, deadline.Format(time.RFC3339))

	rounds := 0
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return best, nil
		default:
		}

		improved, ok := bestInterRouteMove(best, byID, travel, c)
		if !ok {
			break
		}
		best = improved
		rounds++
	}

	log.Printf("[FullSolver] finished after %d improving rounds: max=%dmin unassigned=%d", rounds, maxRouteMinutes(best), best.Unassigned)
	return best, nil
}

// bestInterRouteMove tries relocating each site to every other route (and
// to an empty slot) and returns the best resulting solution if it improves
// on current per vrp.Better, along with whether any improving move exists.
func bestInterRouteMove(current Solution, byID map[string]Site, travel *travelIndex, c Constraints) (Solution, bool) {
	var (
		bestCandidate Solution
		found         bool
	)

	for fromIdx, from := range current.Routes {
		for pos, siteID := range from.SiteIDs {
			for toIdx := range current.Routes {
				if toIdx == fromIdx {
					continue
				}
				candidate, ok := relocate(current, fromIdx, pos, toIdx, byID, travel, c)
				if !ok {
					continue
				}
				if !found || Better(candidate, bestCandidate) {
					bestCandidate, found = candidate, true
				}
			}
			_ = siteID
		}
	}

	if found && Better(bestCandidate, current) {
		return bestCandidate, true
	}
	return current, false
}

// relocate moves the site at from.SiteIDs[pos] to the end of the "to"
// route, returning the resulting solution if it respects budget/stop-cap.
func relocate(s Solution, fromIdx, pos, toIdx int, byID map[string]Site, travel *travelIndex, c Constraints) (Solution, bool) {
	from := s.Routes[fromIdx]
	to := s.Routes[toIdx]

	siteID := from.SiteIDs[pos]
	newFromIDs := append(append([]string{}, from.SiteIDs[:pos]...), from.SiteIDs[pos+1:]...)
	newToIDs := append(append([]string{}, to.SiteIDs...), siteID)

	if len(newToIDs) > c.StopCap {
		return Solution{}, false
	}

	newToMinutes := routeDuration(newToIDs, byID, travel)
	if newToMinutes > c.BudgetMinutes {
		return Solution{}, false
	}

	newFromMinutes := routeDuration(newFromIDs, byID, travel)

	routes := make([]Route, len(s.Routes))
	copy(routes, s.Routes)
	routes[fromIdx] = Route{SiteIDs: newFromIDs, ServiceMinutes: serviceSum(newFromIDs, byID), RouteMinutes: newFromMinutes}
	routes[toIdx] = Route{SiteIDs: newToIDs, ServiceMinutes: serviceSum(newToIDs, byID), RouteMinutes: newToMinutes}

	return Solution{Routes: routes, Unassigned: s.Unassigned, UnassignedSiteIDs: s.UnassignedSiteIDs}, true
}

func serviceSum(ids []string, byID map[string]Site) int {
	total := 0
	for _, id := range ids {
		total += byID[id].ServiceMinutes
	}
	return total
}
