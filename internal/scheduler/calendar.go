package scheduler

import (
	"context"
	"errors"
	"log"
	"math"

	"fieldplanner/internal/calendarutil"
	"fieldplanner/internal/planerr"
	"fieldplanner/internal/timeoracle"
	"fieldplanner/internal/vrp"
)

// MaxCrewBuffer bounds how many crews the calendar planner adds past its
// initial estimate before giving up (spec §4.6 step 3: "e.g., +5").
const MaxCrewBuffer = 5

// minCrewSafetyFloor keeps the initial estimate from ever proposing zero
// crews for a non-empty workload.
const minCrewSafetyFloor = 1

// RunCalendar plans sites into [startDate, endDate] inclusive, searching
// for the smallest crew count that both fits the calendar and leaves no
// site unassigned (spec §4.6). The feasibility probe always runs in fast
// mode regardless of actualSolver, per the spec's rationale that a
// fast-mode pass that succeeds can still fail under full optimization's
// tighter structural constraints.
func RunCalendar(
	ctx context.Context,
	sites []Site,
	startDate, endDate calendarutil.Date,
	holidays map[calendarutil.Date]struct{},
	fastSolver, actualSolver vrp.SingleDaySolver,
	oracle timeoracle.Oracle,
	maxSitesPerCrewPerDay int,
	constraints vrp.Constraints,
) (MultiDayPlan, error) {
	workDays := calendarutil.WorkdaysBetween(startDate, endDate, holidays)
	if len(workDays) == 0 {
		return MultiDayPlan{}, planerr.InvalidRequest("start_date..end_date contains no work days")
	}

	k0 := estimateMinCrews(sites, len(workDays), constraints.BudgetMinutes)
	log.Printf("[Calendar] workdays=%d k0=%d", len(workDays), k0)

	var lastProgressFailure *planerr.PlannerError

	for k := k0; k <= k0+MaxCrewBuffer; k++ {
		log.Printf("[Calendar] attempt k=%d", k)
		if pe, failed := probeFeasibility(ctx, sites, startDate, holidays, fastSolver, oracle, maxSitesPerCrewPerDay, constraints, k, len(workDays)); failed {
			if pe == nil {
				return MultiDayPlan{}, errors.New("scheduler: feasibility probe failed with a non-progress-failure error")
			}
			lastProgressFailure = pe
			continue
		}

		log.Printf("[Calendar] feasibility probe succeeded at k=%d", k)

		plan, err := planAndValidate(ctx, sites, startDate, endDate, holidays, actualSolver, oracle, maxSitesPerCrewPerDay, constraints, k, len(workDays))
		if err == nil {
			return plan, nil
		}

		var pe *planerr.PlannerError
		if errors.As(err, &pe) && pe.Kind == planerr.KindProgressFailure {
			lastProgressFailure = pe
			continue
		}
		return MultiDayPlan{}, err
	}

	return MultiDayPlan{}, planerr.CalendarInfeasible(
		"no crew count up to the buffer limit scheduled every site within the calendar window",
		lastProgressFailure,
	)
}

// probeFeasibility runs the multi-day scheduler in fast mode with k crews
// over the calendar window and reports whether it failed to make progress
// (spec §4.6 step 3). A non-progress-failure error is surfaced via the
// returned pe being nil alongside failed=true, which the caller treats as
// fatal.
func probeFeasibility(ctx context.Context, sites []Site, startDate calendarutil.Date, holidays map[calendarutil.Date]struct{}, fastSolver vrp.SingleDaySolver, oracle timeoracle.Oracle, maxSitesPerCrewPerDay int, constraints vrp.Constraints, k, maxDays int) (pe *planerr.PlannerError, failed bool) {
	probeConstraints := constraints
	probeConstraints.VehicleCount = k

	plan, err := Run(ctx, sites, startDate, Options{
		Teams:                 k,
		MaxSitesPerCrewPerDay: maxSitesPerCrewPerDay,
		Constraints:           probeConstraints,
		Solver:                fastSolver,
		Oracle:                oracle,
		Holidays:              holidays,
		MaxDays:               maxDays,
	})
	if err != nil {
		var asPlannerErr *planerr.PlannerError
		if errors.As(err, &asPlannerErr) && asPlannerErr.Kind == planerr.KindProgressFailure {
			return asPlannerErr, true
		}
		return nil, true
	}

	if len(plan.Unassigned) > 0 {
		return planerr.ProgressFailure(planerr.ProgressFailureContext{
			SitesRemaining: len(plan.Unassigned),
			Crews:          k,
		}), true
	}

	return nil, false
}

// planAndValidate runs the actual planner at k crews and re-validates its
// output per spec §4.6 step 5: zero unassigned and every TeamDay within
// end_date.
func planAndValidate(ctx context.Context, sites []Site, startDate, endDate calendarutil.Date, holidays map[calendarutil.Date]struct{}, solver vrp.SingleDaySolver, oracle timeoracle.Oracle, maxSitesPerCrewPerDay int, constraints vrp.Constraints, k, maxDays int) (MultiDayPlan, error) {
	actualConstraints := constraints
	actualConstraints.VehicleCount = k

	plan, err := Run(ctx, sites, startDate, Options{
		Teams:                 k,
		MaxSitesPerCrewPerDay: maxSitesPerCrewPerDay,
		Constraints:           actualConstraints,
		Solver:                solver,
		Oracle:                oracle,
		Holidays:              holidays,
		MaxDays:               maxDays,
	})
	if err != nil {
		return MultiDayPlan{}, err
	}

	if len(plan.Unassigned) > 0 {
		return MultiDayPlan{}, planerr.ProgressFailure(planerr.ProgressFailureContext{
			SitesRemaining: len(plan.Unassigned),
			Crews:          k,
		})
	}

	for _, td := range plan.TeamDays {
		if td.Date.After(endDate) {
			return MultiDayPlan{}, planerr.ProgressFailure(planerr.ProgressFailureContext{
				SitesRemaining: len(plan.Unassigned),
				Crews:          k,
			})
		}
	}

	return plan, nil
}

// estimateMinCrews computes K0 = ceil(total_service_and_travel / (D *
// effective_workday)) with a small safety floor (spec §4.6 step 2). Travel
// is approximated as 20% of total service time, a heuristic padding since
// the true travel total depends on an assignment this estimate precedes.
func estimateMinCrews(sites []Site, workDays, effectiveWorkdayMinutes int) int {
	if workDays == 0 || effectiveWorkdayMinutes == 0 {
		return minCrewSafetyFloor
	}

	totalService := 0
	for _, s := range sites {
		totalService += s.ServiceMinutes
	}
	estimatedTravel := float64(totalService) * 0.2
	totalWork := float64(totalService) + estimatedTravel

	k0 := int(math.Ceil(totalWork / (float64(workDays) * float64(effectiveWorkdayMinutes))))
	if k0 < minCrewSafetyFloor {
		k0 = minCrewSafetyFloor
	}
	return k0
}
