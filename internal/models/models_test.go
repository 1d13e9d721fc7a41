package models

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fieldplanner/internal/calendarutil"
)

func TestSiteCoords(t *testing.T) {
	s := Site{Lat: 40.7128, Lng: -74.0060}

	coords := s.Coords()

	assert.Equal(t, 40.7128, coords.Lat)
	assert.Equal(t, -74.0060, coords.Lng)
}

func TestSiteHasCluster(t *testing.T) {
	plain := Site{ID: "a"}
	assert.False(t, plain.HasCluster())

	cid := 3
	clustered := Site{ID: "b", ClusterID: &cid}
	assert.True(t, clustered.HasCluster())
}

func TestWorkdayMinutes(t *testing.T) {
	w := Workday{StartMinute: 8 * 60, EndMinute: 16 * 60}
	assert.Equal(t, 480, w.Minutes())
}

func TestPlanRequestDefaults(t *testing.T) {
	r := PlanRequest{}

	assert.Equal(t, DefaultMaxRouteMinutes, r.EffectiveMaxRouteMinutes())
	assert.Equal(t, DefaultMaxSitesPerCrewPerDay, r.EffectiveMaxSitesPerCrewPerDay())
	assert.False(t, r.IsFixedCalendar())

	end := calendarutil.NewDate(2026, 3, 2)
	r.EndDate = &end
	assert.True(t, r.IsFixedCalendar())
}

func TestEffectiveBudgetMinutesWithoutWorkdayUsesMaxRouteMinutes(t *testing.T) {
	r := PlanRequest{MaxRouteMinutes: 300}
	assert.Equal(t, 300, r.EffectiveBudgetMinutes())
}

func TestEffectiveBudgetMinutesSubtractsBreakFromWorkday(t *testing.T) {
	r := PlanRequest{
		MaxRouteMinutes: 600,
		BreakMinutes:    30,
		TeamConfig:      TeamConfig{Workday: Workday{StartMinute: 0, EndMinute: 480}},
	}
	// workday 480 - break 30 = 450, which is tighter than max_route_minutes=600.
	assert.Equal(t, 450, r.EffectiveBudgetMinutes())
}

func TestEffectiveBudgetMinutesKeepsMaxRouteMinutesWhenTighterThanWorkday(t *testing.T) {
	r := PlanRequest{
		MaxRouteMinutes: 200,
		BreakMinutes:    30,
		TeamConfig:      TeamConfig{Workday: Workday{StartMinute: 0, EndMinute: 480}},
	}
	assert.Equal(t, 200, r.EffectiveBudgetMinutes())
}

func TestEffectiveBudgetMinutesNeverNegative(t *testing.T) {
	r := PlanRequest{
		MaxRouteMinutes: 600,
		BreakMinutes:    500,
		TeamConfig:      TeamConfig{Workday: Workday{StartMinute: 0, EndMinute: 480}},
	}
	assert.Equal(t, 0, r.EffectiveBudgetMinutes())
}

func TestPlanRequestHolidaySet(t *testing.T) {
	h1 := calendarutil.NewDate(2025, 1, 6)
	r := PlanRequest{Holidays: []calendarutil.Date{h1}}

	set := r.HolidaySet()

	_, ok := set[h1]
	assert.True(t, ok)
	assert.Len(t, set, 1)
}

func TestTeamDayTravelMinutes(t *testing.T) {
	td := TeamDay{ServiceMinutes: 180, RouteMinutes: 260}
	assert.Equal(t, 80, td.TravelMinutes())
}

func TestTeamDayLessOrdersByDateThenTeam(t *testing.T) {
	day1 := calendarutil.NewDate(2026, 2, 2)
	day2 := calendarutil.NewDate(2026, 2, 3)

	a := TeamDay{TeamID: "team-2", Date: day1}
	b := TeamDay{TeamID: "team-1", Date: day1}
	c := TeamDay{TeamID: "team-1", Date: day2}

	assert.True(t, TeamDayLess(b, a))
	assert.True(t, TeamDayLess(a, c))
	assert.False(t, TeamDayLess(c, a))
}
