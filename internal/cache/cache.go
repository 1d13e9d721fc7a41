// Package cache implements the shared distance/time-oracle cache (spec §5):
// a mapping from unordered site-coordinate pairs to cached travel minutes
// and miles. MemoryCache guards reads and writes with one mutex (Get takes
// it exclusively, since it updates recency); the SQLite and Redis backends
// rely on their stores' own concurrency control. Three backends are
// provided behind the same TimeCache interface: an in-process LRU (default),
// a durable SQLite-backed cache, and a Redis-backed cache shared across
// planner processes.
package cache

import (
	"context"
	"fmt"
	"math"

	"fieldplanner/internal/geo"
)

// Entry is one cached pairwise lookup result.
type Entry struct {
	Origin      geo.Point
	Destination geo.Point
	Miles       float64
	Minutes     float64
}

// TimeCache is the collaborator solvers use for cached travel lookups. A
// missing entry (Get returning ok=false) triggers on-demand computation by
// the caller, which then writes the result back via Set.
type TimeCache interface {
	Get(ctx context.Context, origin, dest geo.Point) (Entry, bool, error)
	Set(ctx context.Context, entry Entry) error
	SetBatch(ctx context.Context, entries []Entry) error
	Clear(ctx context.Context) error
}

// roundCoord rounds to 5 decimal places (~1m precision), matching the
// teacher's distance_cache key-rounding convention.
func roundCoord(v float64) float64 {
	return math.Round(v*100000) / 100000
}

// key builds an order-independent cache key for a coordinate pair. Travel
// time is symmetric (spec §4.1), so (a,b) and (b,a) share a key.
func key(a, b geo.Point) string {
	ra, rb := a, b
	if greater(ra, rb) {
		ra, rb = rb, ra
	}
	return fmt.Sprintf("%.5f,%.5f->%.5f,%.5f",
		roundCoord(ra.Lat), roundCoord(ra.Lng), roundCoord(rb.Lat), roundCoord(rb.Lng))
}

func greater(a, b geo.Point) bool {
	if a.Lat != b.Lat {
		return a.Lat > b.Lat
	}
	return a.Lng > b.Lng
}
