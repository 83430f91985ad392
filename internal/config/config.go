// Package config loads the trail engine's ambient configuration from
// environment variables, in the getEnv-helper style used throughout the
// wider codebase this module was extracted from.
package config

import (
	"fmt"
	"os"
)

// Config holds the object-store location and operational knobs required to
// start the trail-writer process.
type Config struct {
	Region   string
	Bucket   string
	LogLevel string
}

// Load reads Config from the environment. TRAIL_REGION and TRAIL_BUCKET
// are required; a missing value for either is a fatal startup error.
// TRAIL_LOG_LEVEL is optional and defaults to "info".
func Load() (*Config, error) {
	cfg := &Config{
		Region:   os.Getenv("TRAIL_REGION"),
		Bucket:   os.Getenv("TRAIL_BUCKET"),
		LogLevel: getEnv("TRAIL_LOG_LEVEL", "info"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first missing required field, if any.
func (c *Config) Validate() error {
	if c.Region == "" {
		return fmt.Errorf("config: TRAIL_REGION is required")
	}
	if c.Bucket == "" {
		return fmt.Errorf("config: TRAIL_BUCKET is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
