// Package models holds the value types exchanged between the planner's
// components: sites, team configuration, requests, and the per-team-per-day
// output. All types are immutable value types created per request; nothing
// here holds a database connection or network handle.
package models

import "fieldplanner/internal/calendarutil"

// Coordinates represents a geographic point in WGS-84 degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Site is a geocoded service location to visit once.
type Site struct {
	ID             string  `json:"site_id"`
	Lat            float64 `json:"lat"`
	Lng            float64 `json:"lng"`
	ServiceMinutes int     `json:"service_minutes"`
	ClusterID      *int    `json:"cluster_id,omitempty"`
	Name           string  `json:"name,omitempty"`
	Street         string  `json:"street,omitempty"`
	City           string  `json:"city,omitempty"`
	State          string  `json:"state,omitempty"`
	Zip            string  `json:"zip,omitempty"`
}

// Coords returns the site's coordinates.
func (s Site) Coords() Coordinates {
	return Coordinates{Lat: s.Lat, Lng: s.Lng}
}

// HasCluster reports whether the site carries a cluster assignment.
func (s Site) HasCluster() bool {
	return s.ClusterID != nil
}

// Workday is the (start, end) time-of-day window a crew may work.
type Workday struct {
	StartMinute int `json:"start_minute"`
	EndMinute   int `json:"end_minute"`
}

// Minutes returns the size of the working window in minutes.
func (w Workday) Minutes() int {
	return w.EndMinute - w.StartMinute
}

// TeamConfig describes the crews available to a plan.
type TeamConfig struct {
	Teams   int     `json:"teams"`
	Workday Workday `json:"workday"`
}

// PlanRequest is the aggregated planner input (spec §3).
type PlanRequest struct {
	Sites                  []Site                `json:"sites"`
	TeamConfig             TeamConfig            `json:"team_config"`
	UseClusters            bool                  `json:"use_clusters"`
	StartDate              *calendarutil.Date    `json:"start_date,omitempty"`
	EndDate                *calendarutil.Date    `json:"end_date,omitempty"`
	Holidays               []calendarutil.Date   `json:"holidays,omitempty"`
	MaxRouteMinutes        int                   `json:"max_route_minutes"`
	ServiceMinutesPerSite  int                   `json:"service_minutes_per_site"`
	BreakMinutes           int                   `json:"break_minutes"`
	FastMode               bool                  `json:"fast_mode"`
	MaxSitesPerCrewPerDay  int                   `json:"max_sites_per_crew_per_day"`
	MinimizeCrews          bool                  `json:"minimize_crews"`
}

// DefaultMaxRouteMinutes is applied when PlanRequest.MaxRouteMinutes is zero.
const DefaultMaxRouteMinutes = 480

// DefaultMaxSitesPerCrewPerDay is applied when PlanRequest.MaxSitesPerCrewPerDay is zero.
const DefaultMaxSitesPerCrewPerDay = 8

// IsFixedCalendar reports whether the request carries an end date, selecting
// fixed-calendar mode per the orchestrator's decision tree (spec §4.7).
func (r PlanRequest) IsFixedCalendar() bool {
	return r.EndDate != nil
}

// EffectiveMaxRouteMinutes returns MaxRouteMinutes with the default applied.
func (r PlanRequest) EffectiveMaxRouteMinutes() int {
	if r.MaxRouteMinutes > 0 {
		return r.MaxRouteMinutes
	}
	return DefaultMaxRouteMinutes
}

// EffectiveBudgetMinutes returns the per-day route budget actually enforced
// by the solver: EffectiveMaxRouteMinutes(), further capped by the workday
// window minus break time when a workday is configured (spec §3 "break_minutes
// is subtracted from the per-day budget", invariant 4:
// service_minutes <= workday_minutes - break_minutes).
func (r PlanRequest) EffectiveBudgetMinutes() int {
	budget := r.EffectiveMaxRouteMinutes()
	if workdayBudget := r.TeamConfig.Workday.Minutes() - r.BreakMinutes; r.TeamConfig.Workday.Minutes() > 0 && workdayBudget < budget {
		budget = workdayBudget
	}
	if budget < 0 {
		return 0
	}
	return budget
}

// EffectiveMaxSitesPerCrewPerDay returns MaxSitesPerCrewPerDay with the default applied.
func (r PlanRequest) EffectiveMaxSitesPerCrewPerDay() int {
	if r.MaxSitesPerCrewPerDay > 0 {
		return r.MaxSitesPerCrewPerDay
	}
	return DefaultMaxSitesPerCrewPerDay
}

// HolidaySet returns the request's holidays as a lookup set.
func (r PlanRequest) HolidaySet() map[calendarutil.Date]struct{} {
	set := make(map[calendarutil.Date]struct{}, len(r.Holidays))
	for _, d := range r.Holidays {
		set[d] = struct{}{}
	}
	return set
}

// TeamDay is the (team, date) output unit: one route.
type TeamDay struct {
	TeamID         string           `json:"team_id"`
	Date           calendarutil.Date `json:"date"`
	ClusterID      *int             `json:"cluster_id,omitempty"`
	OrderedSiteIDs []string         `json:"site_ids"`
	ServiceMinutes int              `json:"service_minutes"`
	RouteMinutes   int              `json:"route_minutes"`
	Polyline       string           `json:"polyline,omitempty"`
}

// TravelMinutes returns the portion of RouteMinutes spent traveling.
func (t TeamDay) TravelMinutes() int {
	return t.RouteMinutes - t.ServiceMinutes
}

// PlanResult is the planner's output (spec §3).
type PlanResult struct {
	TeamDays   []TeamDay         `json:"team_days"`
	Unassigned int               `json:"unassigned"`
	StartDate  calendarutil.Date `json:"start_date"`
	EndDate    calendarutil.Date `json:"end_date"`
}

// TeamDayLess orders TeamDays by (date, team_id) ascending, per spec §5's
// ordering guarantee.
func TeamDayLess(a, b TeamDay) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	return a.TeamID < b.TeamID
}
