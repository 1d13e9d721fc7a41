package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldplanner/internal/calendarutil"
	"fieldplanner/internal/geo"
	"fieldplanner/internal/planerr"
	"fieldplanner/internal/timeoracle"
	"fieldplanner/internal/vrp"
)

func TestRunPlacesAllSitesAcrossDays(t *testing.T) {
	oracle := timeoracle.NewHaversineOracle()
	solver := vrp.NewGreedySolver()

	sites := make([]Site, 0, 12)
	for i := 0; i < 12; i++ {
		sites = append(sites, Site{
			ID:             string(rune('a' + i)),
			Coords:         geo.Point{Lat: 40.0 + float64(i)*0.001, Lng: -75.0},
			ServiceMinutes: 30,
		})
	}

	start := calendarutil.NewDate(2026, 8, 3) // a Monday

	plan, err := Run(context.Background(), sites, start, Options{
		Teams:                 1,
		MaxSitesPerCrewPerDay: 4,
		Constraints:           vrp.Constraints{VehicleCount: 1, BudgetMinutes: 480, StopCap: 4},
		Solver:                solver,
		Oracle:                oracle,
	})

	require.NoError(t, err)
	assert.Empty(t, plan.Unassigned)

	placed := map[string]bool{}
	for _, td := range plan.TeamDays {
		for _, id := range td.OrderedSiteIDs {
			placed[id] = true
		}
	}
	assert.Len(t, placed, 12)
}

func TestRunSkipsWeekendsAndHolidays(t *testing.T) {
	oracle := timeoracle.NewHaversineOracle()
	solver := vrp.NewGreedySolver()

	friday := calendarutil.NewDate(2026, 8, 7)
	monday := calendarutil.NewDate(2026, 8, 10)
	holidays := map[calendarutil.Date]struct{}{monday: {}}

	sites := []Site{
		{ID: "a", Coords: geo.Point{Lat: 40.0, Lng: -75.0}, ServiceMinutes: 30},
		{ID: "b", Coords: geo.Point{Lat: 40.001, Lng: -75.0}, ServiceMinutes: 30},
	}

	plan, err := Run(context.Background(), sites, friday, Options{
		Teams:                 1,
		MaxSitesPerCrewPerDay: 4,
		Constraints:           vrp.Constraints{VehicleCount: 1, BudgetMinutes: 480, StopCap: 4},
		Solver:                solver,
		Oracle:                oracle,
		Holidays:              holidays,
	})

	require.NoError(t, err)
	assert.Empty(t, plan.Unassigned)
	require.Len(t, plan.TeamDays, 1)
	assert.Equal(t, friday, plan.TeamDays[0].Date)
}

func TestRunReturnsProgressFailureAfterStallThreshold(t *testing.T) {
	oracle := timeoracle.NewHaversineOracle()
	solver := vrp.NewGreedySolver()

	sites := []Site{
		{ID: "a", Coords: geo.Point{Lat: 40.0, Lng: -75.0}, ServiceMinutes: 1000},
	}

	start := calendarutil.NewDate(2026, 8, 3)

	_, err := Run(context.Background(), sites, start, Options{
		Teams:                 1,
		MaxSitesPerCrewPerDay: 4,
		Constraints:           vrp.Constraints{VehicleCount: 1, BudgetMinutes: 480, StopCap: 4},
		Solver:                solver,
		Oracle:                oracle,
	})

	require.Error(t, err)
	assert.True(t, planerr.IsKind(err, planerr.KindProgressFailure))
}
