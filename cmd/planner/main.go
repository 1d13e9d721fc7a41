// Command planner runs a single planning request end to end: it reads a
// site CSV and a JSON PlanRequest, calls the orchestrator once, and prints
// the resulting JSON PlanResult to stdout. Adapted from cmd/server/main.go's
// run()/getEnv() wiring, converted from a long-running HTTP server to a
// one-shot process (the spec's HTTP/UI surface is an explicit non-goal).
package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"fieldplanner/internal/cache"
	"fieldplanner/internal/config"
	"fieldplanner/internal/models"
	"fieldplanner/internal/orchestrator"
	"fieldplanner/internal/planerr"
	"fieldplanner/internal/timeoracle"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	sitesPath := flag.String("sites", "", "path to a CSV file of sites (site_id,lat,lng,service_minutes[,cluster_id])")
	requestPath := flag.String("request", "", "path to a JSON PlanRequest (sites omitted; filled in from -sites)")
	flag.Parse()

	if *sitesPath == "" || *requestPath == "" {
		return fmt.Errorf("-sites and -request are both required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	sites, err := loadSitesCSV(*sitesPath)
	if err != nil {
		return fmt.Errorf("failed to load sites: %w", err)
	}
	log.Printf("[planner] loaded %d sites from %s", len(sites), *sitesPath)

	req, err := loadRequest(*requestPath)
	if err != nil {
		return fmt.Errorf("failed to load request: %w", err)
	}
	req.Sites = sites

	oracle, err := buildOracle(cfg)
	if err != nil {
		return fmt.Errorf("failed to build time oracle: %w", err)
	}

	planner := orchestrator.NewPlanner(oracle, cfg.Solver.FullModeBudget)

	log.Printf("[planner] planning %d sites across %d team(s)", len(req.Sites), req.TeamConfig.Teams)
	result, err := planner.Plan(context.Background(), req)
	if err != nil {
		return handlePlanError(err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}

	if result.Unassigned > 0 {
		log.Printf("[planner] completed with %d unassigned site(s)", result.Unassigned)
	}
	return nil
}

// handlePlanError logs the planner error and returns it unchanged; main()
// converts any returned error into a nonzero exit via log.Fatalf.
// Besides InvalidRequest and CalendarInfeasible, the orchestrator can return
// ProgressFailure (multi-day and sequential-cluster paths) and SolverError;
// only the first two get their own message prefix.
func handlePlanError(err error) error {
	if planerr.IsKind(err, planerr.KindInvalidRequest) {
		return fmt.Errorf("invalid request: %w", err)
	}
	if planerr.IsKind(err, planerr.KindCalendarInfeasible) {
		return fmt.Errorf("no feasible calendar plan: %w", err)
	}
	return fmt.Errorf("planning failed: %w", err)
}

func buildOracle(cfg *config.Config) (timeoracle.Oracle, error) {
	if cfg.Oracle.Backend != "osrm" {
		return timeoracle.NewHaversineOracle(), nil
	}

	timeCache, err := buildCache(cfg)
	if err != nil {
		return nil, err
	}
	return timeoracle.NewOSRMOracle(timeCache, cfg.Oracle.OSRMURL), nil
}

func buildCache(cfg *config.Config) (cache.TimeCache, error) {
	switch cfg.Cache.Backend {
	case "sqlite":
		return cache.NewSQLiteCache(cfg.Cache.SQLitePath)
	case "redis":
		return cache.NewRedisCache(context.Background(), cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
			PoolSize: cfg.Cache.RedisPoolSize,
			TTL:      cfg.Cache.RedisTTL,
		})
	default:
		return cache.NewMemoryCache(cfg.Cache.MemoryMaxKeys), nil
	}
}

func loadRequest(path string) (models.PlanRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.PlanRequest{}, err
	}
	defer f.Close()

	var req models.PlanRequest
	if err := json.NewDecoder(f).Decode(&req); err != nil {
		return models.PlanRequest{}, fmt.Errorf("parse request JSON: %w", err)
	}
	return req, nil
}

// csvColumns lists the expected header names; the first four are required.
var csvColumns = []string{"site_id", "lat", "lng", "service_minutes", "cluster_id"}

func loadSitesCSV(path string) ([]models.Site, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, required := range csvColumns[:4] {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}
	clusterCol, hasCluster := index["cluster_id"]

	var sites []models.Site
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		lat, err := strconv.ParseFloat(record[index["lat"]], 64)
		if err != nil {
			return nil, fmt.Errorf("parse lat for %q: %w", record[index["site_id"]], err)
		}
		lng, err := strconv.ParseFloat(record[index["lng"]], 64)
		if err != nil {
			return nil, fmt.Errorf("parse lng for %q: %w", record[index["site_id"]], err)
		}
		serviceMinutes, err := strconv.Atoi(record[index["service_minutes"]])
		if err != nil {
			return nil, fmt.Errorf("parse service_minutes for %q: %w", record[index["site_id"]], err)
		}

		site := models.Site{
			ID:             record[index["site_id"]],
			Lat:            lat,
			Lng:            lng,
			ServiceMinutes: serviceMinutes,
		}
		if hasCluster && clusterCol < len(record) && record[clusterCol] != "" {
			clusterID, err := strconv.Atoi(record[clusterCol])
			if err != nil {
				return nil, fmt.Errorf("parse cluster_id for %q: %w", site.ID, err)
			}
			site.ClusterID = &clusterID
		}

		sites = append(sites, site)
	}

	return sites, nil
}
