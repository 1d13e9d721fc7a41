// Package planerr defines the planner's tagged error kinds (spec §7). The
// teacher's routing package signals infeasibility through a single struct
// error, ErrRoutingFailed, carrying structured context rather than a bare
// string; this package generalizes that shape into the full taxonomy the
// multi-day scheduler and calendar planner need to pattern-match on for
// retry.
package planerr

import "fmt"

// Kind tags a PlannerError with its taxonomy entry.
type Kind string

const (
	// KindInvalidRequest marks inputs that fail validation (spec §7).
	KindInvalidRequest Kind = "InvalidRequest"
	// KindSolverError marks an internal solver failure, treated as retryable.
	KindSolverError Kind = "SolverError"
	// KindProgressFailure marks a multi-day loop stall (spec §4.4).
	KindProgressFailure Kind = "ProgressFailure"
	// KindCalendarInfeasible marks exhaustion of the calendar planner's
	// crew-buffer retries (spec §4.6).
	KindCalendarInfeasible Kind = "CalendarInfeasible"
	// KindPartialPlan marks a result, not an error, that is returned rather
	// than thrown when minimize_crews leaves sites unassigned (spec §7).
	KindPartialPlan Kind = "PartialPlan"
)

// PlannerError is the planner's structured error type. The calendar
// planner catches KindProgressFailure for its crew-count retry; the
// multi-day and sequential-cluster paths return it to the caller, and the
// single-day path wraps solver failures as KindSolverError.
type PlannerError struct {
	Kind            Kind
	Message         string
	Context         map[string]any
	Recommendations []string
	Cause           error
}

func (e *PlannerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return string(e.Kind)
}

// Unwrap exposes Cause for errors.Is/errors.As chains, e.g. a
// CalendarInfeasible wrapping the ProgressFailure that triggered it.
func (e *PlannerError) Unwrap() error {
	return e.Cause
}

// InvalidRequest builds a KindInvalidRequest error.
func InvalidRequest(message string, recommendations ...string) *PlannerError {
	return &PlannerError{
		Kind:            KindInvalidRequest,
		Message:         message,
		Recommendations: recommendations,
	}
}

// SolverError builds a KindSolverError error wrapping cause.
func SolverError(message string, cause error) *PlannerError {
	return &PlannerError{
		Kind:    KindSolverError,
		Message: message,
		Cause:   cause,
	}
}

// ProgressFailureContext carries the fields spec §7 requires on a
// ProgressFailure: sites_remaining, sites_scheduled_today, unassigned,
// consecutive_days, crews.
type ProgressFailureContext struct {
	SitesRemaining      int
	SitesScheduledToday int
	Unassigned          int
	ConsecutiveDays     int
	Crews               int
}

// ProgressFailure builds a KindProgressFailure error from ctx.
func ProgressFailure(ctx ProgressFailureContext) *PlannerError {
	return &PlannerError{
		Kind: KindProgressFailure,
		Message: fmt.Sprintf(
			"no sites scheduled for %d consecutive days with %d crews (%d sites remaining)",
			ctx.ConsecutiveDays, ctx.Crews, ctx.SitesRemaining,
		),
		Context: map[string]any{
			"sites_remaining":       ctx.SitesRemaining,
			"sites_scheduled_today": ctx.SitesScheduledToday,
			"unassigned":            ctx.Unassigned,
			"consecutive_days":      ctx.ConsecutiveDays,
			"crews":                 ctx.Crews,
		},
		Recommendations: []string{
			"increase max_route_minutes",
			"disable fast mode",
			"add a crew",
			"enable clustering",
		},
	}
}

// CalendarInfeasible builds a KindCalendarInfeasible error wrapping the
// last ProgressFailure encountered by the crew-buffer retry loop (spec §4.6
// step 5).
func CalendarInfeasible(message string, lastProgressFailure *PlannerError) *PlannerError {
	return &PlannerError{
		Kind:    KindCalendarInfeasible,
		Message: message,
		Cause:   lastProgressFailure,
		Recommendations: []string{
			"extend end_date",
			"raise the crew-buffer limit",
			"disable full optimization (set fast_mode)",
		},
	}
}

// IsKind reports whether err is a *PlannerError of the given kind.
func IsKind(err error, kind Kind) bool {
	pe, ok := err.(*PlannerError)
	return ok && pe.Kind == kind
}
