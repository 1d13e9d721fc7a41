package vrp

import (
	"context"
	"log"
	"sort"

	"fieldplanner/internal/geo"
	"fieldplanner/internal/timeoracle"
)

// GreedySolver is the fast mode: savings-style construction followed by a
// per-route 2-opt pass (spec §4.3). Deterministic given inputs. Adapted
// from the teacher's phase-structured solvers (internal/routing/greedy.go's
// seed-then-fill shape, internal/routing/distance_minimizer.go's per-route
// twoOpt). Since field routes have no depot, the classic Clarke-Wright
// savings formula's depot term is taken to be the centroid of today's
// sites — a virtual reference point used only to rank candidate merges,
// never appearing in the output route.
type GreedySolver struct{}

// NewGreedySolver constructs a GreedySolver.
func NewGreedySolver() *GreedySolver {
	return &GreedySolver{}
}

type greedyRoute struct {
	siteIDs        []string
	serviceMinutes int
	routeMinutes   int
}

// Solve implements SingleDaySolver.
func (s *GreedySolver) Solve(ctx context.Context, sites []Site, oracle timeoracle.Oracle, c Constraints) (Solution, error) {
	log.Printf("[Greedy] starting: sites=%d vehicles=%d budget=%dmin cap=%d", len(sites), c.VehicleCount, c.BudgetMinutes, c.StopCap)

	if len(sites) == 0 {
		return Solution{Routes: make([]Route, c.VehicleCount)}, nil
	}

	byID := make(map[string]Site, len(sites))
	for _, s := range sites {
		byID[s.ID] = s
	}

	travel, err := buildTravelIndex(ctx, sites, oracle)
	if err != nil {
		return Solution{}, err
	}

	routes := seedRoutes(sites)
	routeOf := make(map[string]int, len(sites))
	for i, r := range routes {
		routeOf[r.siteIDs[0]] = i
	}

	savings := computeSavings(sites, travel)

	s.mergePhase(routes, routeOf, savings, byID, travel, c)
	activeRoutes := compactRoutes(routes)

	for i := range activeRoutes {
		twoOpt(&activeRoutes[i], byID, travel)
	}

	// A single site whose service time alone exceeds the budget cannot be
	// routed at all; it is reported as unassigned.
	var overBudget []string
	feasible := activeRoutes[:0]
	for _, r := range activeRoutes {
		if r.routeMinutes > c.BudgetMinutes {
			overBudget = append(overBudget, r.siteIDs...)
			continue
		}
		feasible = append(feasible, r)
	}

	solution := selectWithinVehicleCount(feasible, c.VehicleCount)
	solution.UnassignedSiteIDs = append(solution.UnassignedSiteIDs, overBudget...)
	solution.Unassigned = len(solution.UnassignedSiteIDs)
	return solution, nil
}

func seedRoutes(sites []Site) []*greedyRoute {
	routes := make([]*greedyRoute, len(sites))
	for i, s := range sites {
		routes[i] = &greedyRoute{siteIDs: []string{s.ID}, serviceMinutes: s.ServiceMinutes, routeMinutes: s.ServiceMinutes}
	}
	return routes
}

type savingsPair struct {
	i, j   string
	saving float64
}

// computeSavings computes s(i,j) = t(i,depot)+t(depot,j)-t(i,j) for every
// distinct site pair, using the virtual centroid depot (spec §4.3 step 2,
// adapted for the no-depot contract per this file's doc comment).
func computeSavings(sites []Site, travel *travelIndex) []savingsPair {
	points := make([]geo.Point, len(sites))
	for i, s := range sites {
		points[i] = s.Coords
	}
	depot := geo.Centroid(points)

	toDepot := make(map[string]float64, len(sites))
	for _, s := range sites {
		toDepot[s.ID] = geo.TravelMinutes(s.Coords, depot)
	}

	var pairs []savingsPair
	for i := 0; i < len(sites); i++ {
		for j := i + 1; j < len(sites); j++ {
			a, b := sites[i], sites[j]
			saving := toDepot[a.ID] + toDepot[b.ID] - travel.minutes(a.ID, b.ID)
			pairs = append(pairs, savingsPair{i: a.ID, j: b.ID, saving: saving})
		}
	}

	sort.SliceStable(pairs, func(x, y int) bool { return pairs[x].saving > pairs[y].saving })
	return pairs
}

// mergePhase performs the classical savings merge: walk the sorted pairs
// once, merging route endpoints when doing so keeps the combined route
// within budget and stop cap (spec §4.3 step 3).
func (s *GreedySolver) mergePhase(routes []*greedyRoute, routeOf map[string]int, savings []savingsPair, byID map[string]Site, travel *travelIndex, c Constraints) {
	for _, pair := range savings {
		ri, rj := routeOf[pair.i], routeOf[pair.j]
		if ri == rj || routes[ri] == nil || routes[rj] == nil {
			continue
		}

		a, b := routes[ri], routes[rj]
		if !isEndpoint(a, pair.i) || !isEndpoint(b, pair.j) {
			continue
		}

		merged, ok := tryMerge(a, b, pair.i, pair.j, byID, travel, c)
		if !ok {
			continue
		}

		routes[ri] = merged
		routes[rj] = nil
		for _, id := range merged.siteIDs {
			routeOf[id] = ri
		}
	}
}

func isEndpoint(r *greedyRoute, siteID string) bool {
	if len(r.siteIDs) == 0 {
		return false
	}
	return r.siteIDs[0] == siteID || r.siteIDs[len(r.siteIDs)-1] == siteID
}

// tryMerge joins a and b at the endpoints named by atA/atB, orienting each
// route so the named endpoint becomes adjacent to the other route, and
// verifies the result fits budget and stop cap.
func tryMerge(a, b *greedyRoute, atA, atB string, byID map[string]Site, travel *travelIndex, c Constraints) (*greedyRoute, bool) {
	orientedA := orientEndpointLast(a.siteIDs, atA)
	orientedB := orientEndpointFirst(b.siteIDs, atB)

	combined := append(append([]string{}, orientedA...), orientedB...)
	if len(combined) > c.StopCap {
		return nil, false
	}

	routeMinutes := routeDuration(combined, byID, travel)
	if routeMinutes > c.BudgetMinutes {
		return nil, false
	}

	return &greedyRoute{
		siteIDs:        combined,
		serviceMinutes: a.serviceMinutes + b.serviceMinutes,
		routeMinutes:   routeMinutes,
	}, true
}

func orientEndpointLast(ids []string, endpoint string) []string {
	if ids[len(ids)-1] == endpoint {
		return ids
	}
	return reverseIDs(ids)
}

func orientEndpointFirst(ids []string, endpoint string) []string {
	if ids[0] == endpoint {
		return ids
	}
	return reverseIDs(ids)
}

func reverseIDs(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[len(ids)-1-i] = id
	}
	return out
}

func routeDuration(ids []string, byID map[string]Site, travel *travelIndex) int {
	total := 0.0
	for _, id := range ids {
		total += float64(byID[id].ServiceMinutes)
	}
	for i := 0; i+1 < len(ids); i++ {
		total += travel.minutes(ids[i], ids[i+1])
	}
	return int(total + 0.5)
}

func compactRoutes(routes []*greedyRoute) []greedyRoute {
	var out []greedyRoute
	for _, r := range routes {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

// twoOpt reverses sub-sequences while the route's total time decreases
// (spec §4.3 fast-mode step 4), mirroring distance_minimizer.go's per-route
// twoOpt pass.
func twoOpt(r *greedyRoute, byID map[string]Site, travel *travelIndex) {
	improved := true
	for improved {
		improved = false
		for i := 0; i < len(r.siteIDs)-1; i++ {
			for j := i + 1; j < len(r.siteIDs); j++ {
				candidate := append(append([]string{}, r.siteIDs[:i]...), reverseIDs(r.siteIDs[i:j+1])...)
				candidate = append(candidate, r.siteIDs[j+1:]...)

				newDuration := routeDuration(candidate, byID, travel)
				if newDuration < r.routeMinutes {
					r.siteIDs = candidate
					r.routeMinutes = newDuration
					improved = true
				}
			}
		}
	}
}

// selectWithinVehicleCount keeps at most VehicleCount routes, preferring
// the routes with the most sites so total assigned sites is maximized when
// the savings merge leaves more routes than vehicles; the rest are
// surfaced as unassigned (spec §4.3: "never throws for infeasibility").
func selectWithinVehicleCount(routes []greedyRoute, vehicleCount int) Solution {
	sort.SliceStable(routes, func(i, j int) bool { return len(routes[i].siteIDs) > len(routes[j].siteIDs) })

	kept := routes
	var dropped []greedyRoute
	if len(routes) > vehicleCount {
		kept = routes[:vehicleCount]
		dropped = routes[vehicleCount:]
	}

	out := make([]Route, vehicleCount)
	for i := 0; i < vehicleCount; i++ {
		if i < len(kept) {
			out[i] = Route{SiteIDs: kept[i].siteIDs, ServiceMinutes: kept[i].serviceMinutes, RouteMinutes: kept[i].routeMinutes}
		}
	}

	var unassigned []string
	for _, r := range dropped {
		unassigned = append(unassigned, r.siteIDs...)
	}

	return Solution{Routes: out, Unassigned: len(unassigned), UnassignedSiteIDs: unassigned}
}
