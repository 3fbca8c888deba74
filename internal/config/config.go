// Package config provides configuration management for the Theory Engine.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Engine   EngineConfig   `mapstructure:"engine" validate:"required"`
	RunStore RunStoreConfig `mapstructure:"run_store" validate:"required"`
	Metrics  MetricsConfig  `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host" validate:"required"`
	Port           int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required"`
	User           string `mapstructure:"user" validate:"required"`
	Password       string `mapstructure:"password" validate:"required"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"required,gt=0"`
}

// EngineConfig represents evaluation pipeline defaults. Per-run requests may
// override any of these.
type EngineConfig struct {
	Context              string  `mapstructure:"context" validate:"required,oneof=deployable diagnostic"`
	RollingWindow        int     `mapstructure:"rolling_window" validate:"required,gt=0"`
	ProbThreshold        float64 `mapstructure:"prob_threshold" validate:"gte=0,lte=1"`
	ConfidenceBand       float64 `mapstructure:"confidence_band" validate:"gte=0,lte=0.5"`
	MinEdgeVsImplied     float64 `mapstructure:"min_edge_vs_implied" validate:"gte=0,lte=1"`
	MaxBetsPerDay        int     `mapstructure:"max_bets_per_day" validate:"gte=0"`
	MaxBetsPerSidePerDay int     `mapstructure:"max_bets_per_side_per_day" validate:"gte=0"`
	WalkForwardTrainDays int     `mapstructure:"walk_forward_train_days" validate:"required,gt=0"`
	WalkForwardTestDays  int     `mapstructure:"walk_forward_test_days" validate:"required,gt=0"`
	WalkForwardStepDays  int     `mapstructure:"walk_forward_step_days" validate:"gte=0"`
	MonteCarloRuns       int     `mapstructure:"monte_carlo_runs" validate:"required,gt=0"`
	MonteCarloSeed       int64   `mapstructure:"monte_carlo_seed"`
}

// RunStoreConfig represents run artifact storage configuration
type RunStoreConfig struct {
	Path            string `mapstructure:"path" validate:"required"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
