package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldplanner/internal/config"
)

func writeTempFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadSitesCSVParsesRequiredColumns(t *testing.T) {
	path := writeTempFile(t, "sites.csv", "site_id,lat,lng,service_minutes\na,40.0,-75.0,30\nb,40.1,-75.1,20\n")

	sites, err := loadSitesCSV(path)
	require.NoError(t, err)
	require.Len(t, sites, 2)
	assert.Equal(t, "a", sites[0].ID)
	assert.Equal(t, 40.0, sites[0].Lat)
	assert.Equal(t, 30, sites[0].ServiceMinutes)
	assert.Nil(t, sites[0].ClusterID)
}

func TestLoadSitesCSVParsesOptionalClusterColumn(t *testing.T) {
	path := writeTempFile(t, "sites.csv", "site_id,lat,lng,service_minutes,cluster_id\na,40.0,-75.0,30,2\nb,40.1,-75.1,20,\n")

	sites, err := loadSitesCSV(path)
	require.NoError(t, err)
	require.Len(t, sites, 2)
	require.NotNil(t, sites[0].ClusterID)
	assert.Equal(t, 2, *sites[0].ClusterID)
	assert.Nil(t, sites[1].ClusterID)
}

func TestLoadSitesCSVRejectsMissingRequiredColumn(t *testing.T) {
	path := writeTempFile(t, "sites.csv", "site_id,lat,lng\na,40.0,-75.0\n")

	_, err := loadSitesCSV(path)
	assert.Error(t, err)
}

func TestLoadSitesCSVRejectsMalformedNumber(t *testing.T) {
	path := writeTempFile(t, "sites.csv", "site_id,lat,lng,service_minutes\na,not-a-number,-75.0,30\n")

	_, err := loadSitesCSV(path)
	assert.Error(t, err)
}

func TestLoadRequestParsesJSON(t *testing.T) {
	path := writeTempFile(t, "request.json", `{"team_config":{"teams":2,"workday":{"start_minute":0,"end_minute":480}},"fast_mode":true}`)

	req, err := loadRequest(path)
	require.NoError(t, err)
	assert.Equal(t, 2, req.TeamConfig.Teams)
	assert.True(t, req.FastMode)
}

func TestLoadRequestRejectsMalformedJSON(t *testing.T) {
	path := writeTempFile(t, "request.json", `{not json`)

	_, err := loadRequest(path)
	assert.Error(t, err)
}

func TestBuildOracleDefaultsToHaversine(t *testing.T) {
	cfg := &config.Config{Oracle: config.OracleConfig{Backend: "haversine"}}

	oracle, err := buildOracle(cfg)
	require.NoError(t, err)
	assert.NotNil(t, oracle)
}

func TestBuildOracleSelectsOSRMWithMemoryCache(t *testing.T) {
	cfg := &config.Config{
		Oracle: config.OracleConfig{Backend: "osrm", OSRMURL: "http://localhost:5000"},
		Cache:  config.CacheConfig{Backend: "memory", MemoryMaxKeys: 10},
	}

	oracle, err := buildOracle(cfg)
	require.NoError(t, err)
	assert.NotNil(t, oracle)
}
