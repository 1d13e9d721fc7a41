// Package orchestrator implements the single planning entry point (spec
// §4.7): Plan(ctx, request) dispatches to the calendar planner, sequential
// cluster planner, multi-day scheduler, or single-day VRP solver depending
// on which fields the request carries. Grounded on cmd/server/main.go's
// run() wiring function — the teacher constructs its collaborators once and
// dispatches incoming requests to a handler; here the same construction
// dispatches to a planning strategy instead of an HTTP handler.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"time"

	"fieldplanner/internal/calendarutil"
	"fieldplanner/internal/cluster"
	"fieldplanner/internal/geo"
	"fieldplanner/internal/models"
	"fieldplanner/internal/planerr"
	"fieldplanner/internal/scheduler"
	"fieldplanner/internal/timeoracle"
	"fieldplanner/internal/vrp"
)

// Planner wires the oracle and solvers a plan needs and exposes Plan as its
// single capability (spec §4.7 "Single entry plan(request) -> PlanResult").
type Planner struct {
	Oracle     timeoracle.Oracle
	FullBudget time.Duration
}

// NewPlanner constructs a Planner over oracle, using fullBudget for full
// optimization mode (zero selects vrp.DefaultFullModeBudget).
func NewPlanner(oracle timeoracle.Oracle, fullBudget time.Duration) *Planner {
	return &Planner{Oracle: oracle, FullBudget: fullBudget}
}

// Plan implements the spec §4.7 decision tree:
//  1. end_date set -> calendar planner.
//  2. use_clusters and every site carries cluster_id -> sequential cluster planner.
//  3. start_date set -> multi-day scheduler.
//  4. otherwise -> single-day VRP, start_date defaulted to today.
func (p *Planner) Plan(ctx context.Context, req models.PlanRequest) (models.PlanResult, error) {
	if err := validate(req); err != nil {
		return models.PlanResult{}, err
	}

	if req.ServiceMinutesPerSite > 0 {
		sites := make([]models.Site, len(req.Sites))
		for i, s := range req.Sites {
			if s.ServiceMinutes == 0 {
				s.ServiceMinutes = req.ServiceMinutesPerSite
			}
			sites[i] = s
		}
		req.Sites = sites
	}

	if req.UseClusters && !allSitesClustered(req.Sites) {
		req.Sites = autoCluster(req.Sites)
	}

	solver := p.solverFor(req)
	constraints := vrp.Constraints{
		VehicleCount:  req.TeamConfig.Teams,
		BudgetMinutes: req.EffectiveBudgetMinutes(),
		StopCap:       req.EffectiveMaxSitesPerCrewPerDay(),
	}
	holidays := req.HolidaySet()

	switch {
	case req.IsFixedCalendar():
		log.Printf("[Orchestrator] dispatch=calendar sites=%d", len(req.Sites))
		return p.planCalendar(ctx, req, solver, constraints, holidays)

	case req.UseClusters && allSitesClustered(req.Sites):
		log.Printf("[Orchestrator] dispatch=sequential_cluster sites=%d", len(req.Sites))
		return p.planSequentialCluster(ctx, req, solver, constraints, holidays)

	case req.StartDate != nil:
		log.Printf("[Orchestrator] dispatch=multi_day sites=%d", len(req.Sites))
		return p.planMultiDay(ctx, req, solver, constraints, holidays, *req.StartDate)

	default:
		log.Printf("[Orchestrator] dispatch=single_day sites=%d", len(req.Sites))
		return p.planSingleDay(ctx, req, solver, constraints)
	}
}

func (p *Planner) solverFor(req models.PlanRequest) vrp.SingleDaySolver {
	if req.FastMode {
		return vrp.NewGreedySolver()
	}
	return vrp.NewFullSolver(p.FullBudget)
}

// clusterableSite adapts models.Site to cluster.Sited.
type clusterableSite struct{ models.Site }

func (s clusterableSite) SiteID() string  { return s.ID }
func (s clusterableSite) Coords() geo.Point { return toGeoPoint(s.Site) }

// autoCluster assigns cluster_id to every site that lacks one, using the
// normal diameter preset (spec §4.2). A caller that wants a different
// preset clusters sites itself before calling Plan; this is a convenience
// default for use_clusters=true requests that arrive unclustered.
func autoCluster(sites []models.Site) []models.Site {
	sited := make([]cluster.Sited, len(sites))
	for i, s := range sites {
		sited[i] = clusterableSite{s}
	}

	clusters := cluster.Partition(sited, cluster.PresetNormal)

	clusterOf := make(map[string]int, len(sites))
	for _, c := range clusters {
		for _, id := range c.SiteIDs {
			clusterOf[id] = c.ID
		}
	}

	out := make([]models.Site, len(sites))
	for i, s := range sites {
		cid := clusterOf[s.ID]
		s.ClusterID = &cid
		out[i] = s
	}
	return out
}

func allSitesClustered(sites []models.Site) bool {
	for _, s := range sites {
		if !s.HasCluster() {
			return false
		}
	}
	return len(sites) > 0
}

func validate(req models.PlanRequest) error {
	if len(req.Sites) == 0 {
		return planerr.InvalidRequest("sites must not be empty")
	}
	if req.TeamConfig.Teams <= 0 {
		return planerr.InvalidRequest("team_config.teams must be positive")
	}
	workdaySet := req.TeamConfig.Workday.StartMinute != 0 || req.TeamConfig.Workday.EndMinute != 0
	if workdaySet && req.TeamConfig.Workday.EndMinute <= req.TeamConfig.Workday.StartMinute {
		return planerr.InvalidRequest("team_config.workday end_minute must be after start_minute")
	}
	if req.MaxRouteMinutes < 0 {
		return planerr.InvalidRequest("max_route_minutes must not be negative")
	}
	if req.BreakMinutes < 0 {
		return planerr.InvalidRequest("break_minutes must not be negative")
	}
	for _, s := range req.Sites {
		if s.ServiceMinutes < 0 {
			return planerr.InvalidRequest(fmt.Sprintf("site %q: service_minutes must not be negative", s.ID))
		}
		if s.ClusterID != nil && *s.ClusterID < 0 {
			return planerr.InvalidRequest(fmt.Sprintf("site %q: cluster_id must not be negative", s.ID))
		}
	}
	if req.EndDate != nil && req.StartDate == nil {
		return planerr.InvalidRequest("end_date requires start_date", "set start_date")
	}
	if req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return planerr.InvalidRequest("end_date must not precede start_date")
	}
	return nil
}

func toClusteredSites(sites []models.Site) []scheduler.ClusteredSite {
	out := make([]scheduler.ClusteredSite, len(sites))
	for i, s := range sites {
		out[i] = scheduler.ClusteredSite{
			Site:      scheduler.Site{ID: s.ID, Coords: toGeoPoint(s), ServiceMinutes: s.ServiceMinutes},
			ClusterID: *s.ClusterID,
		}
	}
	return out
}

func toVRPSites(sites []models.Site) []vrp.Site {
	out := make([]vrp.Site, len(sites))
	for i, s := range sites {
		out[i] = vrp.Site{ID: s.ID, Coords: toGeoPoint(s), ServiceMinutes: s.ServiceMinutes}
	}
	return out
}

func toGeoPoint(s models.Site) geo.Point {
	return geo.Point{Lat: s.Lat, Lng: s.Lng}
}

func teamLabel(i int) string {
	return fmt.Sprintf("T%d", i+1)
}

func defaultToday() calendarutil.Date {
	now := time.Now()
	return calendarutil.NewDate(now.Year(), now.Month(), now.Day())
}
