package planerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressFailureCarriesContext(t *testing.T) {
	err := ProgressFailure(ProgressFailureContext{
		SitesRemaining:      12,
		SitesScheduledToday: 0,
		Unassigned:          12,
		ConsecutiveDays:     5,
		Crews:               1,
	})

	assert.Equal(t, KindProgressFailure, err.Kind)
	assert.Equal(t, 12, err.Context["sites_remaining"])
	assert.Equal(t, 5, err.Context["consecutive_days"])
	assert.NotEmpty(t, err.Recommendations)
}

func TestCalendarInfeasibleWrapsProgressFailure(t *testing.T) {
	pf := ProgressFailure(ProgressFailureContext{SitesRemaining: 3, ConsecutiveDays: 5, Crews: 4})
	ce := CalendarInfeasible("exhausted crew buffer", pf)

	assert.Equal(t, KindCalendarInfeasible, ce.Kind)
	assert.True(t, errors.Is(ce, pf) || errors.Unwrap(ce) == error(pf))
}

func TestIsKind(t *testing.T) {
	err := InvalidRequest("end_date before start_date")

	assert.True(t, IsKind(err, KindInvalidRequest))
	assert.False(t, IsKind(err, KindSolverError))
	assert.False(t, IsKind(errors.New("plain"), KindInvalidRequest))
}
