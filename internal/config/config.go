// Package config loads runtime configuration for the planner CLI: which
// time oracle and cache backend to use, and their connection settings.
// Adapted from shivamshaw23-Hintro/config/config.go's viper.SetDefault
// battery plus mapstructure-tagged struct groups, generalized from that
// repo's Postgres/Redis server settings to the planner's oracle/cache
// settings.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds every environment-driven setting the planner CLI needs.
type Config struct {
	Oracle OracleConfig
	Cache  CacheConfig
	Solver SolverConfig
}

// OracleConfig selects and configures the time oracle (spec §9 open
// question 1).
type OracleConfig struct {
	Backend string `mapstructure:"ORACLE_BACKEND"` // "haversine" or "osrm"
	OSRMURL string `mapstructure:"OSRM_BASE_URL"`
}

// CacheConfig selects and configures the distance/time cache backend
// (spec §5 "Shared cache").
type CacheConfig struct {
	Backend       string `mapstructure:"CACHE_BACKEND"` // "memory", "sqlite", or "redis"
	SQLitePath    string `mapstructure:"CACHE_SQLITE_PATH"`
	MemoryMaxKeys int    `mapstructure:"CACHE_MEMORY_MAX_KEYS"`

	RedisAddr     string        `mapstructure:"CACHE_REDIS_ADDR"`
	RedisPassword string        `mapstructure:"CACHE_REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"CACHE_REDIS_DB"`
	RedisPoolSize int           `mapstructure:"CACHE_REDIS_POOL_SIZE"`
	RedisTTL      time.Duration `mapstructure:"CACHE_REDIS_TTL"`
}

// SolverConfig configures full-optimization mode's wall-clock budget
// (spec §4.3).
type SolverConfig struct {
	FullModeBudget time.Duration `mapstructure:"SOLVER_FULL_MODE_BUDGET"`
}

// Load reads configuration from environment variables and an optional
// .env file in the working directory, applying defaults for every field
// (spec §9 "Configuration via environment").
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	viper.SetDefault("ORACLE_BACKEND", "haversine")
	viper.SetDefault("OSRM_BASE_URL", "http://localhost:5000")

	viper.SetDefault("CACHE_BACKEND", "memory")
	viper.SetDefault("CACHE_SQLITE_PATH", "fieldplanner-cache.db")
	viper.SetDefault("CACHE_MEMORY_MAX_KEYS", 100_000)
	viper.SetDefault("CACHE_REDIS_ADDR", "localhost:6379")
	viper.SetDefault("CACHE_REDIS_PASSWORD", "")
	viper.SetDefault("CACHE_REDIS_DB", 0)
	viper.SetDefault("CACHE_REDIS_POOL_SIZE", 100)
	viper.SetDefault("CACHE_REDIS_TTL", "168h")

	viper.SetDefault("SOLVER_FULL_MODE_BUDGET", "60s")

	// Absent .env is fine — env vars or defaults carry the run (matches
	// the teacher's container/non-container fallback).
	_ = viper.ReadInConfig()

	cfg := &Config{
		Oracle: OracleConfig{
			Backend: viper.GetString("ORACLE_BACKEND"),
			OSRMURL: viper.GetString("OSRM_BASE_URL"),
		},
		Cache: CacheConfig{
			Backend:       viper.GetString("CACHE_BACKEND"),
			SQLitePath:    viper.GetString("CACHE_SQLITE_PATH"),
			MemoryMaxKeys: viper.GetInt("CACHE_MEMORY_MAX_KEYS"),
			RedisAddr:     viper.GetString("CACHE_REDIS_ADDR"),
			RedisPassword: viper.GetString("CACHE_REDIS_PASSWORD"),
			RedisDB:       viper.GetInt("CACHE_REDIS_DB"),
			RedisPoolSize: viper.GetInt("CACHE_REDIS_POOL_SIZE"),
			RedisTTL:      viper.GetDuration("CACHE_REDIS_TTL"),
		},
		Solver: SolverConfig{
			FullModeBudget: viper.GetDuration("SOLVER_FULL_MODE_BUDGET"),
		},
	}

	return cfg, nil
}
