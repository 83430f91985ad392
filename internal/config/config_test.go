package config

import "testing"

func TestLoad_RequiresRegionAndBucket(t *testing.T) {
	t.Setenv("TRAIL_REGION", "")
	t.Setenv("TRAIL_BUCKET", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when both are missing")
	}

	t.Setenv("TRAIL_REGION", "us-east-1")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when bucket is missing")
	}
}

func TestLoad_DefaultsLogLevel(t *testing.T) {
	t.Setenv("TRAIL_REGION", "us-east-1")
	t.Setenv("TRAIL_BUCKET", "trail-bucket")
	t.Setenv("TRAIL_LOG_LEVEL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("got log level %q, want info", cfg.LogLevel)
	}
}

func TestLoad_HonorsExplicitLogLevel(t *testing.T) {
	t.Setenv("TRAIL_REGION", "us-east-1")
	t.Setenv("TRAIL_BUCKET", "trail-bucket")
	t.Setenv("TRAIL_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("got log level %q, want debug", cfg.LogLevel)
	}
}
