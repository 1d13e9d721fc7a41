package scheduler

import (
	"context"
	"log"
	"sort"

	"fieldplanner/internal/calendarutil"
	"fieldplanner/internal/planerr"
	"fieldplanner/internal/vrp"
)

// ClusteredSite is a Site with a fixed cluster assignment (spec §4.5: fixed-
// crew mode with clustering enabled).
type ClusteredSite struct {
	Site
	ClusterID int
}

// RunSequentialCluster guarantees every site is scheduled even when
// crews < clusters by moving free crews to the cluster with the most
// remaining work each day (spec §4.5). Crews never split a day across two
// clusters; across days they may switch freely.
func RunSequentialCluster(ctx context.Context, sites []ClusteredSite, startDate calendarutil.Date, opts Options) (MultiDayPlan, error) {
	log.Printf("[SeqCluster] starting: sites=%d teams=%d start=%s", len(sites), opts.Teams, startDate)

	byID := make(map[string]Site, len(sites))
	remainingByCluster := make(map[int][]string)
	for _, s := range sites {
		byID[s.ID] = s.Site
		remainingByCluster[s.ClusterID] = append(remainingByCluster[s.ClusterID], s.ID)
	}

	currentCluster := make([]int, opts.Teams)
	for i := range currentCluster {
		currentCluster[i] = -1 // none
	}

	var teamDays []TeamDay
	stall := 0
	date := startDate
	dayIndex := 0

	for !allClustersEmpty(remainingByCluster) {
		if opts.MaxDays > 0 && dayIndex >= opts.MaxDays {
			break
		}
		if !date.IsWorkday(opts.Holidays) {
			date = date.AddDays(1)
			continue
		}

		assignFreeCrews(currentCluster, remainingByCluster)
		placed, err := planClusterDay(ctx, currentCluster, remainingByCluster, byID, date, &teamDays, opts)
		if err != nil {
			return MultiDayPlan{}, err
		}

		log.Printf("[SeqCluster] date=%s placed=%d", date, placed)

		if placed == 0 {
			stall++
			if stall > stallThreshold {
				remaining := flattenRemaining(remainingByCluster)
				return MultiDayPlan{}, planerr.ProgressFailure(planerr.ProgressFailureContext{
					SitesRemaining:      len(remaining),
					SitesScheduledToday: 0,
					Unassigned:          len(remaining),
					ConsecutiveDays:     stall,
					Crews:               opts.Teams,
				})
			}
		} else {
			stall = 0
		}

		date = date.AddDays(1)
		dayIndex++
	}

	return MultiDayPlan{TeamDays: teamDays, Unassigned: flattenRemaining(remainingByCluster)}, nil
}

func allClustersEmpty(remaining map[int][]string) bool {
	for _, ids := range remaining {
		if len(ids) > 0 {
			return false
		}
	}
	return true
}

// assignFreeCrews reassigns crews whose current cluster is none or
// depleted to the cluster with the most remaining work among clusters no
// other crew holds, ties broken by smallest cluster id (spec §4.5 steps
// 1-2). When every non-empty cluster is already held, the free crew shares
// the cluster with the most remaining work.
func assignFreeCrews(currentCluster []int, remaining map[int][]string) {
	clusterIDs := sortedClusterIDs(remaining)

	held := make(map[int]bool)
	for _, c := range currentCluster {
		if c != -1 && len(remaining[c]) > 0 {
			held[c] = true
		}
	}

	for k := range currentCluster {
		c := currentCluster[k]
		if c != -1 && len(remaining[c]) > 0 {
			continue // still has work, stays put
		}

		best, shared := -1, -1
		bestRemaining, sharedRemaining := -1, -1
		for _, cid := range clusterIDs {
			n := len(remaining[cid])
			if n == 0 {
				continue
			}
			if n > sharedRemaining {
				shared, sharedRemaining = cid, n
			}
			if !held[cid] && n > bestRemaining {
				best, bestRemaining = cid, n
			}
		}
		if best == -1 {
			best = shared
		}
		currentCluster[k] = best
		if best != -1 {
			held[best] = true
		}
	}
}

func sortedClusterIDs(remaining map[int][]string) []int {
	ids := make([]int, 0, len(remaining))
	for cid := range remaining {
		ids = append(ids, cid)
	}
	sort.Ints(ids)
	return ids
}

// planClusterDay partitions today's crew roster by current cluster and
// invokes the single-day solver once per cluster with K = crews assigned
// to it (spec §4.5 step 3).
func planClusterDay(ctx context.Context, currentCluster []int, remaining map[int][]string, byID map[string]Site, date calendarutil.Date, teamDays *[]TeamDay, opts Options) (int, error) {
	crewsByCluster := make(map[int][]int)
	for k, c := range currentCluster {
		if c == -1 {
			continue
		}
		crewsByCluster[c] = append(crewsByCluster[c], k)
	}

	placed := 0
	for cid, crewIndices := range crewsByCluster {
		batch := selectBatch(remaining[cid], byID, len(crewIndices)*opts.MaxSitesPerCrewPerDay)

		constraints := opts.Constraints
		constraints.VehicleCount = len(crewIndices)

		solution, err := opts.Solver.Solve(ctx, toVRPSites(batch, byID), opts.Oracle, constraints)
		if err != nil {
			return 0, err
		}

		placedToday := appendClusterTeamDays(teamDays, solution, crewIndices, cid, date)
		remaining[cid] = subtract(remaining[cid], placedSiteIDs(solution))
		placed += placedToday
	}
	return placed, nil
}

// appendClusterTeamDays records cid on every emitted TeamDay, preserving the
// cluster-purity invariant (spec §8 property 7) in the output.
func appendClusterTeamDays(teamDays *[]TeamDay, solution vrp.Solution, crewIndices []int, cid int, date calendarutil.Date) int {
	placed := 0
	for i, r := range solution.Routes {
		if len(r.SiteIDs) == 0 || i >= len(crewIndices) {
			continue
		}
		clusterID := cid
		*teamDays = append(*teamDays, TeamDay{
			TeamID:         crewIndices[i],
			Date:           date,
			ClusterID:      &clusterID,
			OrderedSiteIDs: r.SiteIDs,
			ServiceMinutes: r.ServiceMinutes,
			RouteMinutes:   r.RouteMinutes,
		})
		placed += len(r.SiteIDs)
	}
	return placed
}

func flattenRemaining(remaining map[int][]string) []string {
	var out []string
	for _, ids := range remaining {
		out = append(out, ids...)
	}
	return out
}
