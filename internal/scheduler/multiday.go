// Package scheduler drives the single-day VRP solver across a work
// calendar (spec §4.4), a fixed-crew roster across clusters (§4.5), and a
// fixed-calendar crew-count search (§4.6). Structured like the teacher's
// balanced_router.go: phase functions with `[TAG]` log lines and a bounded
// retry loop, generalized from single-day driver routing to a multi-day
// site backlog.
package scheduler

import (
	"context"
	"log"
	"sort"

	"fieldplanner/internal/calendarutil"
	"fieldplanner/internal/geo"
	"fieldplanner/internal/planerr"
	"fieldplanner/internal/timeoracle"
	"fieldplanner/internal/vrp"
)

// stallThreshold bounds consecutive zero-progress days: a progress-failure
// is raised once the count exceeds it, i.e. on the sixth such day (spec
// §4.4 step 3: "e.g., 5 consecutive days").
const stallThreshold = 5

// Site is the scheduler's view of a site awaiting assignment across days.
type Site struct {
	ID             string
	Coords         geo.Point
	ServiceMinutes int
}

// TeamDay is one crew's assignment for one date.
type TeamDay struct {
	TeamID         int
	Date           calendarutil.Date
	ClusterID      *int // set only by RunSequentialCluster (spec §4.5 cluster purity)
	OrderedSiteIDs []string
	ServiceMinutes int
	RouteMinutes   int
}

// MultiDayPlan is the scheduler's output: every TeamDay it placed, plus any
// sites that remain unassigned if it terminates (a caller in fixed-calendar
// mode treats a non-empty residual as infeasibility, per §4.6 step 5).
type MultiDayPlan struct {
	TeamDays   []TeamDay
	Unassigned []string
}

// Options configures one multi-day run.
type Options struct {
	Teams                 int
	MaxSitesPerCrewPerDay int
	Constraints           vrp.Constraints
	Solver                vrp.SingleDaySolver
	Oracle                timeoracle.Oracle
	Holidays              map[calendarutil.Date]struct{}
	// MaxDays bounds the work-day sequence for fixed-calendar callers; zero
	// means open-ended (fixed-crew mode, spec §4.4 "Work-day generation").
	MaxDays int
}

// Run drives the single-day solver across successive work days until every
// site in sites is placed, or a progress-failure / calendar exhaustion
// halts the loop (spec §4.4).
func Run(ctx context.Context, sites []Site, startDate calendarutil.Date, opts Options) (MultiDayPlan, error) {
	log.Printf("[MultiDay] starting: sites=%d teams=%d start=%s", len(sites), opts.Teams, startDate)

	byID := make(map[string]Site, len(sites))
	remaining := make([]string, 0, len(sites))
	for _, s := range sites {
		byID[s.ID] = s
		remaining = append(remaining, s.ID)
	}

	var teamDays []TeamDay
	stall := 0
	date := startDate
	dayIndex := 0

	for len(remaining) > 0 {
		if opts.MaxDays > 0 && dayIndex >= opts.MaxDays {
			break
		}
		if !date.IsWorkday(opts.Holidays) {
			date = date.AddDays(1)
			continue
		}

		batch := selectBatch(remaining, byID, opts.Teams*opts.MaxSitesPerCrewPerDay)
		solution, err := opts.Solver.Solve(ctx, toVRPSites(batch, byID), opts.Oracle, opts.Constraints)
		if err != nil {
			return MultiDayPlan{}, err
		}

		placed := appendTeamDays(&teamDays, solution, date)
		remaining = subtract(remaining, placedSiteIDs(solution))

		log.Printf("[MultiDay] date=%s placed=%d remaining=%d", date, placed, len(remaining))

		if placed == 0 {
			stall++
			if stall > stallThreshold {
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

	return MultiDayPlan{TeamDays: teamDays, Unassigned: remaining}, nil
}

// selectBatch picks up to limit sites from remaining using a nearest-
// cluster-centroid greedy strategy: seed from the first remaining site and
// repeatedly take the closest not-yet-picked site to the running centroid
// (spec §4.4 step 1).
func selectBatch(remaining []string, byID map[string]Site, limit int) []string {
	if limit <= 0 || limit >= len(remaining) {
		return append([]string{}, remaining...)
	}

	picked := make([]string, 0, limit)
	pickedSet := make(map[string]struct{}, limit)
	centroid := byID[remaining[0]].Coords

	for len(picked) < limit {
		bestID := ""
		bestDist := -1.0
		for _, id := range remaining {
			if _, ok := pickedSet[id]; ok {
				continue
			}
			d := geo.DistanceMiles(byID[id].Coords, centroid)
			if bestID == "" || d < bestDist {
				bestID, bestDist = id, d
			}
		}
		picked = append(picked, bestID)
		pickedSet[bestID] = struct{}{}

		points := make([]geo.Point, len(picked))
		for i, id := range picked {
			points[i] = byID[id].Coords
		}
		centroid = geo.Centroid(points)
	}

	sort.Strings(picked)
	return picked
}

func toVRPSites(ids []string, byID map[string]Site) []vrp.Site {
	out := make([]vrp.Site, len(ids))
	for i, id := range ids {
		s := byID[id]
		out[i] = vrp.Site{ID: s.ID, Coords: s.Coords, ServiceMinutes: s.ServiceMinutes}
	}
	return out
}

// appendTeamDays converts a single-day vrp.Solution into TeamDay records
// for date and appends them, returning the count of sites actually placed.
func appendTeamDays(teamDays *[]TeamDay, solution vrp.Solution, date calendarutil.Date) int {
	placed := 0
	for i, r := range solution.Routes {
		if len(r.SiteIDs) == 0 {
			continue
		}
		*teamDays = append(*teamDays, TeamDay{
			TeamID:         i,
			Date:           date,
			OrderedSiteIDs: r.SiteIDs,
			ServiceMinutes: r.ServiceMinutes,
			RouteMinutes:   r.RouteMinutes,
		})
		placed += len(r.SiteIDs)
	}
	return placed
}

func placedSiteIDs(solution vrp.Solution) map[string]struct{} {
	placed := make(map[string]struct{})
	for _, r := range solution.Routes {
		for _, id := range r.SiteIDs {
			placed[id] = struct{}{}
		}
	}
	return placed
}

func subtract(ids []string, remove map[string]struct{}) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := remove[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
