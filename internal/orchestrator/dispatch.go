package orchestrator

import (
	"context"
	"sort"

	"fieldplanner/internal/calendarutil"
	"fieldplanner/internal/geo"
	"fieldplanner/internal/models"
	"fieldplanner/internal/planerr"
	"fieldplanner/internal/polyline"
	"fieldplanner/internal/scheduler"
	"fieldplanner/internal/vrp"
)

func (p *Planner) planCalendar(ctx context.Context, req models.PlanRequest, solver vrp.SingleDaySolver, constraints vrp.Constraints, holidays map[calendarutil.Date]struct{}) (models.PlanResult, error) {
	plan, err := scheduler.RunCalendar(
		ctx,
		toSchedulerSites(req.Sites),
		*req.StartDate,
		*req.EndDate,
		holidays,
		vrp.NewGreedySolver(),
		solver,
		p.Oracle,
		req.EffectiveMaxSitesPerCrewPerDay(),
		constraints,
	)
	if err != nil {
		return models.PlanResult{}, err
	}
	return toPlanResult(plan, req.Sites, *req.StartDate, *req.EndDate), nil
}

func (p *Planner) planSequentialCluster(ctx context.Context, req models.PlanRequest, solver vrp.SingleDaySolver, constraints vrp.Constraints, holidays map[calendarutil.Date]struct{}) (models.PlanResult, error) {
	start := defaultToday()
	if req.StartDate != nil {
		start = *req.StartDate
	}

	plan, err := scheduler.RunSequentialCluster(ctx, toClusteredSites(req.Sites), start, scheduler.Options{
		Teams:                 req.TeamConfig.Teams,
		MaxSitesPerCrewPerDay: req.EffectiveMaxSitesPerCrewPerDay(),
		Constraints:           constraints,
		Solver:                solver,
		Oracle:                p.Oracle,
		Holidays:              holidays,
	})
	if err != nil {
		return models.PlanResult{}, err
	}
	return toPlanResult(plan, req.Sites, start, lastDate(plan, start)), nil
}

func (p *Planner) planMultiDay(ctx context.Context, req models.PlanRequest, solver vrp.SingleDaySolver, constraints vrp.Constraints, holidays map[calendarutil.Date]struct{}, start calendarutil.Date) (models.PlanResult, error) {
	plan, err := scheduler.Run(ctx, toSchedulerSites(req.Sites), start, scheduler.Options{
		Teams:                 req.TeamConfig.Teams,
		MaxSitesPerCrewPerDay: req.EffectiveMaxSitesPerCrewPerDay(),
		Constraints:           constraints,
		Solver:                solver,
		Oracle:                p.Oracle,
		Holidays:              holidays,
	})
	if err != nil {
		return models.PlanResult{}, err
	}
	return toPlanResult(plan, req.Sites, start, lastDate(plan, start)), nil
}

func (p *Planner) planSingleDay(ctx context.Context, req models.PlanRequest, solver vrp.SingleDaySolver, constraints vrp.Constraints) (models.PlanResult, error) {
	today := defaultToday()
	if req.StartDate != nil {
		today = *req.StartDate
	}

	var solution vrp.Solution
	var err error
	if req.MinimizeCrews {
		solution, err = vrp.SolveMinimizingCrews(ctx, solver, toVRPSites(req.Sites), p.Oracle, constraints)
	} else {
		solution, err = solver.Solve(ctx, toVRPSites(req.Sites), p.Oracle, constraints)
	}
	if err != nil {
		return models.PlanResult{}, planerr.SolverError("single-day solve failed", err)
	}

	teamDays := make([]models.TeamDay, 0, len(solution.Routes))
	for i, r := range solution.Routes {
		if len(r.SiteIDs) == 0 {
			continue
		}
		teamDays = append(teamDays, models.TeamDay{
			TeamID:         teamLabel(i),
			Date:           today,
			OrderedSiteIDs: r.SiteIDs,
			ServiceMinutes: r.ServiceMinutes,
			RouteMinutes:   r.RouteMinutes,
			Polyline:       polyline.Encode(siteCoords(r.SiteIDs, req.Sites)),
		})
	}
	sort.Slice(teamDays, func(i, j int) bool { return models.TeamDayLess(teamDays[i], teamDays[j]) })

	return models.PlanResult{
		TeamDays:   teamDays,
		Unassigned: solution.Unassigned,
		StartDate:  today,
		EndDate:    today,
	}, nil
}

func toSchedulerSites(sites []models.Site) []scheduler.Site {
	out := make([]scheduler.Site, len(sites))
	for i, s := range sites {
		out[i] = scheduler.Site{ID: s.ID, Coords: toGeoPoint(s), ServiceMinutes: s.ServiceMinutes}
	}
	return out
}

func toPlanResult(plan scheduler.MultiDayPlan, sites []models.Site, start, end calendarutil.Date) models.PlanResult {
	teamDays := make([]models.TeamDay, len(plan.TeamDays))
	for i, td := range plan.TeamDays {
		teamDays[i] = models.TeamDay{
			TeamID:         teamLabel(td.TeamID),
			Date:           td.Date,
			ClusterID:      td.ClusterID,
			OrderedSiteIDs: td.OrderedSiteIDs,
			ServiceMinutes: td.ServiceMinutes,
			RouteMinutes:   td.RouteMinutes,
			Polyline:       polyline.Encode(siteCoords(td.OrderedSiteIDs, sites)),
		}
	}
	sort.Slice(teamDays, func(i, j int) bool { return models.TeamDayLess(teamDays[i], teamDays[j]) })

	return models.PlanResult{
		TeamDays:   teamDays,
		Unassigned: len(plan.Unassigned),
		StartDate:  start,
		EndDate:    end,
	}
}

// siteCoords resolves an ordered list of site IDs to their coordinates for
// polyline encoding (spec §6). Unknown IDs are skipped rather than erroring;
// the polyline is a convenience field, not load-bearing output.
func siteCoords(siteIDs []string, sites []models.Site) []geo.Point {
	byID := make(map[string]models.Site, len(sites))
	for _, s := range sites {
		byID[s.ID] = s
	}
	points := make([]geo.Point, 0, len(siteIDs))
	for _, id := range siteIDs {
		if s, ok := byID[id]; ok {
			points = append(points, toGeoPoint(s))
		}
	}
	return points
}

func lastDate(plan scheduler.MultiDayPlan, fallback calendarutil.Date) calendarutil.Date {
	last := fallback
	for _, td := range plan.TeamDays {
		if td.Date.After(last) {
			last = td.Date
		}
	}
	return last
}
