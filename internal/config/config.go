// Package config loads runtime settings from the environment and CSV mapping profiles from YAML.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"trade-journal-lab/internal/domain"
)

// Config holds process settings read from the environment.
type Config struct {
	// Logging
	LogLevel  string
	LogFormat string

	// Storage
	PostgresDSN   string
	ClickHouseDSN string

	// Import
	MappingProfile      string
	AccountBalance      *float64
	DefaultRiskPerTrade *float64
	DefaultRiskReward   *float64

	// Server
	HTTPAddr         string
	MetricsNamespace string
}

// Load reads .env files (the given paths, or ./.env then ../.env) into the
// process environment and builds a Config. Missing .env files are not an error;
// variables already set in the environment take precedence over file values.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		if err := godotenv.Load(); err != nil {
			// Running from a subdirectory such as cmd/journal
			_ = godotenv.Load("../.env")
		}
	} else {
		for _, f := range envFiles {
			if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
				return nil, fmt.Errorf("load %s: %w", f, err)
			}
		}
	}

	cfg := &Config{
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
		PostgresDSN:      getEnv("POSTGRES_DSN", ""),
		ClickHouseDSN:    getEnv("CLICKHOUSE_DSN", ""),
		MappingProfile:   getEnv("MAPPING_PROFILE", ""),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		MetricsNamespace: getEnv("METRICS_NAMESPACE", "trade_journal"),
	}

	var err error
	if cfg.AccountBalance, err = getEnvAsFloat("ACCOUNT_BALANCE"); err != nil {
		return nil, err
	}
	if cfg.DefaultRiskPerTrade, err = getEnvAsFloat("DEFAULT_RISK_PER_TRADE"); err != nil {
		return nil, err
	}
	if cfg.DefaultRiskReward, err = getEnvAsFloat("DEFAULT_RISK_REWARD"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ImportDefaults returns the environment-level defaults for empty CSV cells.
func (c *Config) ImportDefaults() domain.ImportDefaults {
	return domain.ImportDefaults{
		RiskPerTrade:    c.DefaultRiskPerTrade,
		RiskRewardRatio: c.DefaultRiskReward,
		AccountBalance:  c.AccountBalance,
	}
}

// getEnv retrieves an environment variable or returns a fallback value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

// getEnvAsFloat returns nil when key is unset or blank.
func getEnvAsFloat(key string) (*float64, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return &v, nil
}
