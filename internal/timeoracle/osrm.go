package timeoracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"fieldplanner/internal/cache"
	"fieldplanner/internal/geo"
)

// ErrOracleFailed marks a lookup failure surfaced as a solver-error result
// kind by callers (spec §7), adapted from the teacher's
// ErrDistanceCalculationFailed.
type ErrOracleFailed struct {
	Reason string
}

func (e *ErrOracleFailed) Error() string {
	return fmt.Sprintf("timeoracle: lookup failed: %s", e.Reason)
}

// maxOSRMCoordinates is the maximum number of coordinates the public OSRM
// table API accepts in one request.
const maxOSRMCoordinates = 80

type osrmTableResponse struct {
	Code      string      `json:"code"`
	Distances [][]float64 `json:"distances"`
	Durations [][]float64 `json:"durations"`
}

// OSRMOracle implements Oracle against the public OSRM table API, caching
// results through a cache.TimeCache. Adapted from the teacher's
// internal/distance/osrm.go: same cache-first lookup, same batched
// multi-request table API calls with a 100ms inter-batch rate limit.
type OSRMOracle struct {
	baseURL    string
	httpClient *http.Client
	cache      cache.TimeCache
}

// NewOSRMOracle constructs an OSRMOracle backed by the given cache, talking
// to the given OSRM table-API base URL (e.g. a self-hosted instance). An
// empty baseURL falls back to the public OSRM demo server.
func NewOSRMOracle(timeCache cache.TimeCache, baseURL string) *OSRMOracle {
	if baseURL == "" {
		baseURL = "https://router.project-osrm.org"
	}
	return &OSRMOracle{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cache:      timeCache,
	}
}

// Travel implements Oracle.
func (o *OSRMOracle) Travel(ctx context.Context, a, b geo.Point) (Result, error) {
	if a == b {
		return Result{}, nil
	}

	if entry, ok, err := o.cache.Get(ctx, a, b); err != nil {
		return Result{}, err
	} else if ok {
		return Result{Miles: entry.Miles, Minutes: entry.Minutes}, nil
	}

	log.Printf("[OSRM] cache miss: origin=(%.6f,%.6f) dest=(%.6f,%.6f)", a.Lat, a.Lng, b.Lat, b.Lng)

	matrix, err := o.Matrix(ctx, []geo.Point{a, b})
	if err != nil {
		return Result{}, err
	}
	return matrix[0][1], nil
}

// Matrix implements Oracle.
func (o *OSRMOracle) Matrix(ctx context.Context, points []geo.Point) ([][]Result, error) {
	n := len(points)
	if n == 0 {
		return [][]Result{}, nil
	}

	matrix := make([][]Result, n)
	for i := range matrix {
		matrix[i] = make([]Result, n)
	}

	var missing int
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			entry, ok, err := o.cache.Get(ctx, points[i], points[j])
			if err != nil {
				return nil, err
			}
			if ok {
				matrix[i][j] = Result{Miles: entry.Miles, Minutes: entry.Minutes}
			} else {
				missing++
			}
		}
	}

	if missing == 0 {
		log.Printf("[OSRM] matrix fully cached: points=%d", n)
		return matrix, nil
	}

	log.Printf("[OSRM] matrix request: points=%d missing=%d", n, missing)

	if n <= maxOSRMCoordinates {
		return o.fetchSingle(ctx, points, matrix)
	}
	return o.fetchBatched(ctx, points, matrix)
}

func (o *OSRMOracle) fetchSingle(ctx context.Context, points []geo.Point, matrix [][]Result) ([][]Result, error) {
	n := len(points)
	coords := make([]string, n)
	for i, p := range points {
		coords[i] = fmt.Sprintf("%.6f,%.6f", p.Lng, p.Lat)
	}

	resp, err := o.table(ctx, strings.Join(coords, ";"), "", "")
	if err != nil {
		return nil, err
	}

	var entries []cache.Entry
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			miles := metersToMiles(resp.Distances[i][j])
			minutes := secondsToMinutes(resp.Durations[i][j])
			matrix[i][j] = Result{Miles: miles, Minutes: minutes}
			entries = append(entries, cache.Entry{Origin: points[i], Destination: points[j], Miles: miles, Minutes: minutes})
		}
	}

	if len(entries) > 0 {
		if err := o.cache.SetBatch(ctx, entries); err != nil {
			return nil, err
		}
	}
	return matrix, nil
}

func (o *OSRMOracle) fetchBatched(ctx context.Context, points []geo.Point, matrix [][]Result) ([][]Result, error) {
	n := len(points)

	// Each request unions a source batch and a destination batch, so a
	// batch holds at most half the per-request coordinate limit.
	batchSize := maxOSRMCoordinates / 2

	var batches [][]int
	for i := 0; i < n; i += batchSize {
		end := i + batchSize
		if end > n {
			end = n
		}
		batch := make([]int, end-i)
		for j := i; j < end; j++ {
			batch[j-i] = j
		}
		batches = append(batches, batch)
	}

	log.Printf("[OSRM] batched request: points=%d batches=%d", n, len(batches))

	var allEntries []cache.Entry
	for bi, batchI := range batches {
		for bj, batchJ := range batches {
			pointSet := make(map[int]bool)
			for _, idx := range batchI {
				pointSet[idx] = true
			}
			for _, idx := range batchJ {
				pointSet[idx] = true
			}

			var batchPoints []geo.Point
			globalToLocal := make(map[int]int)
			for idx := range pointSet {
				globalToLocal[idx] = len(batchPoints)
				batchPoints = append(batchPoints, points[idx])
			}
			if len(batchPoints) == 0 {
				continue
			}

			coords := make([]string, len(batchPoints))
			for i, p := range batchPoints {
				coords[i] = fmt.Sprintf("%.6f,%.6f", p.Lng, p.Lat)
			}

			sources := indicesOf(batchI, globalToLocal)
			destinations := indicesOf(batchJ, globalToLocal)

			resp, err := o.table(ctx, strings.Join(coords, ";"), strings.Join(sources, ";"), strings.Join(destinations, ";"))
			if err != nil {
				return nil, err
			}

			for si, srcIdx := range batchI {
				for di, dstIdx := range batchJ {
					if srcIdx == dstIdx {
						continue
					}
					miles := metersToMiles(resp.Distances[si][di])
					minutes := secondsToMinutes(resp.Durations[si][di])
					matrix[srcIdx][dstIdx] = Result{Miles: miles, Minutes: minutes}
					allEntries = append(allEntries, cache.Entry{Origin: points[srcIdx], Destination: points[dstIdx], Miles: miles, Minutes: minutes})
				}
			}

			if bi < len(batches)-1 || bj < len(batches)-1 {
				time.Sleep(100 * time.Millisecond)
			}
		}
	}

	if len(allEntries) > 0 {
		if err := o.cache.SetBatch(ctx, allEntries); err != nil {
			return nil, err
		}
	}
	return matrix, nil
}

func indicesOf(global []int, globalToLocal map[int]int) []string {
	out := make([]string, len(global))
	for i, idx := range global {
		out[i] = fmt.Sprintf("%d", globalToLocal[idx])
	}
	return out
}

func (o *OSRMOracle) table(ctx context.Context, coordsStr, sources, destinations string) (*osrmTableResponse, error) {
	queryURL := fmt.Sprintf("%s/table/v1/driving/%s?annotations=distance,duration", o.baseURL, coordsStr)
	if sources != "" {
		queryURL += fmt.Sprintf("&sources=%s&destinations=%s", sources, destinations)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return nil, &ErrOracleFailed{Reason: err.Error()}
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, &ErrOracleFailed{Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &ErrOracleFailed{Reason: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(body))}
	}

	var table osrmTableResponse
	if err := json.NewDecoder(resp.Body).Decode(&table); err != nil {
		return nil, &ErrOracleFailed{Reason: err.Error()}
	}
	if table.Code != "Ok" {
		return nil, &ErrOracleFailed{Reason: fmt.Sprintf("OSRM error: %s", table.Code)}
	}
	return &table, nil
}

// Prewarm implements Oracle by fetching the full matrix once, populating
// the cache ahead of a multi-day solve (spec §10).
func (o *OSRMOracle) Prewarm(ctx context.Context, points []geo.Point) error {
	_, err := o.Matrix(ctx, points)
	return err
}

func metersToMiles(m float64) float64   { return m / 1609.344 }
func secondsToMinutes(s float64) float64 { return s / 60 }
