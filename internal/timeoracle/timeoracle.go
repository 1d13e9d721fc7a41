// Package timeoracle provides the time/distance oracle collaborator the
// solvers depend on (spec §4.1, §9 open question 1: "the spec requires one
// oracle per invocation — the implementer picks"). Two implementations
// share the Oracle interface: a haversine-only estimate that is always
// available, and an OSRM-backed oracle (adapted from the teacher's
// internal/distance/osrm.go) for callers who want road-network-accurate
// travel times. A caller configures exactly one oracle per Plan() call.
package timeoracle

import (
	"context"

	"fieldplanner/internal/geo"
)

// Result is one pairwise travel lookup.
type Result struct {
	Miles   float64
	Minutes float64
}

// Oracle is the collaborator solvers use for travel time between sites.
type Oracle interface {
	// Travel returns the travel result between two points.
	Travel(ctx context.Context, a, b geo.Point) (Result, error)
	// Matrix returns the full pairwise matrix for points, in order.
	Matrix(ctx context.Context, points []geo.Point) ([][]Result, error)
	// Prewarm precomputes and caches the full pairwise matrix for points
	// so a later multi-day plan does not pay per-pair latency mid-solve
	// (adapted from the teacher's PrewarmCache).
	Prewarm(ctx context.Context, points []geo.Point) error
}
