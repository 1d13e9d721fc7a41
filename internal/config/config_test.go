package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "haversine", cfg.Oracle.Backend)
	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, 100_000, cfg.Cache.MemoryMaxKeys)
	assert.Equal(t, 60*time.Second, cfg.Solver.FullModeBudget)
}

func TestLoadHonorsEnvironmentOverrides(t *testing.T) {
	t.Setenv("ORACLE_BACKEND", "osrm")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("SOLVER_FULL_MODE_BUDGET", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "osrm", cfg.Oracle.Backend)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, 30*time.Second, cfg.Solver.FullModeBudget)
}
