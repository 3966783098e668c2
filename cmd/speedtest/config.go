package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config controls a speed test run.
type Config struct {
	Iterations       int
	Workers          int
	Dump             bool
	Environment      string // development | production
	MetricsNamespace string
}

// LoadConfig loads envFiles, or .env when none are named, and populates a
// Config from environment variables. A missing default .env is not an
// error; a named file that cannot be read is.
func LoadConfig(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		if len(envFiles) > 0 || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading env files: %w", err)
		}
	}

	cfg := &Config{
		Iterations:       getEnvInt("SPEEDTEST_ITERATIONS", 100000),
		Workers:          getEnvInt("SPEEDTEST_WORKERS", 1),
		Dump:             getEnvBool("SPEEDTEST_DUMP", false),
		Environment:      getEnv("ENVIRONMENT", "development"),
		MetricsNamespace: getEnv("METRICS_NAMESPACE", "acorn"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration can drive a run.
func (c *Config) Validate() error {
	if c.Iterations <= 0 {
		return fmt.Errorf("SPEEDTEST_ITERATIONS must be positive, got %d", c.Iterations)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("SPEEDTEST_WORKERS must be positive, got %d", c.Workers)
	}
	if c.Workers > c.Iterations {
		return fmt.Errorf("SPEEDTEST_WORKERS (%d) exceeds SPEEDTEST_ITERATIONS (%d)", c.Workers, c.Iterations)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
