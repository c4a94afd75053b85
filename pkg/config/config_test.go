// Copyright 2026 CICD AI Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cicd-ai-toolkit/build-tracer/pkg/config"
	"github.com/cicd-ai-toolkit/build-tracer/pkg/errors"
)

func envFrom(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func noEnv(string) (string, bool) { return "", false }

// TestDefaultConfig tests the default configuration.
func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	if cfg.Tracing.DefaultEndpoint != "localhost:5778" {
		t.Errorf("Expected default endpoint 'localhost:5778', got '%s'", cfg.Tracing.DefaultEndpoint)
	}

	if cfg.Tracing.Protocol != "http" {
		t.Errorf("Expected default protocol 'http', got '%s'", cfg.Tracing.Protocol)
	}

	if cfg.Stats.Driver != "memory" {
		t.Errorf("Expected default stats driver 'memory', got '%s'", cfg.Stats.Driver)
	}

	if cfg.Global.LogLevel != "info" {
		t.Errorf("Expected default log level 'info', got '%s'", cfg.Global.LogLevel)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}

// TestLoadFromPath tests loading config from a file.
func TestLoadFromPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	configContent := `
server:
  listen: ":9000"
  read_timeout: 30s

tracing:
  default_endpoint: "otel-collector:4317"
  protocol: grpc

stats:
  driver: sqlite
  dsn: "file:stats.db"

dispatch:
  workers: 8

global:
  log_level: debug
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := config.NewLoader().LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Listen != ":9000" {
		t.Errorf("Expected listen ':9000', got '%s'", cfg.Server.Listen)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("Expected read timeout 30s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Tracing.Protocol != "grpc" || cfg.Tracing.DefaultEndpoint != "otel-collector:4317" {
		t.Errorf("Unexpected tracing config %+v", cfg.Tracing)
	}
	if cfg.Stats.Driver != "sqlite" || cfg.Stats.DSN != "file:stats.db" {
		t.Errorf("Unexpected stats config %+v", cfg.Stats)
	}
	if cfg.Dispatch.Workers != 8 {
		t.Errorf("Expected 8 workers, got %d", cfg.Dispatch.Workers)
	}
	// untouched sections keep defaults
	if cfg.Dispatch.QueueSize != 64 {
		t.Errorf("Expected default queue size 64, got %d", cfg.Dispatch.QueueSize)
	}
	if cfg.Server.WebhookPath != "/builds/finished" {
		t.Errorf("Expected default webhook path, got '%s'", cfg.Server.WebhookPath)
	}
}

// TestLoadFromPathInvalid tests loading an invalid config file.
func TestLoadFromPathInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	configContent := `
server:
  read_timeout: not_a_duration
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err := config.NewLoader().LoadFromPath(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid config, got nil")
	}
	if !errors.IsType(err, errors.ErrConfig) {
		t.Errorf("Expected config error, got %v", err)
	}
}

// TestLoadMissingExplicitFile tests that an explicit path must exist.
func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := config.NewLoader().
		WithEnv(noEnv).
		WithPath(filepath.Join(t.TempDir(), "absent.yaml")).
		Load()
	if err == nil {
		t.Error("Expected error for missing explicit config file")
	}
}

// TestLoadProjectFile tests discovery of the project config file.
func TestLoadProjectFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := "tracing:\n  default_endpoint: \"jaeger:4318\"\n"
	if err := os.WriteFile(filepath.Join(tmpDir, config.ProjectConfigFile), []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := config.NewLoader().WithEnv(noEnv).WithProjectRoot(tmpDir).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Tracing.DefaultEndpoint != "jaeger:4318" {
		t.Errorf("Expected project endpoint, got '%s'", cfg.Tracing.DefaultEndpoint)
	}

	// no file in an empty directory: defaults
	cfg, err = config.NewLoader().WithEnv(noEnv).WithProjectRoot(t.TempDir()).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Tracing.DefaultEndpoint != "localhost:5778" {
		t.Errorf("Expected default endpoint, got '%s'", cfg.Tracing.DefaultEndpoint)
	}
}

// TestLoadWithEnvOverrides tests environment variable overrides.
func TestLoadWithEnvOverrides(t *testing.T) {
	env := envFrom(map[string]string{
		"BUILD_TRACER_TRACING__DEFAULT_ENDPOINT": "collector:4318",
		"BUILD_TRACER_TRACING__INSECURE":         "false",
		"BUILD_TRACER_GLOBAL__LOG_LEVEL":         "warn",
		"BUILD_TRACER_DISPATCH__WORKERS":         "2",
		"BUILD_TRACER_STREAM__RECONNECT_DELAY":   "1s",
		"BUILD_TRACER_SERVER__WEBHOOK_SECRET":    "s3cret",
	})

	cfg, err := config.NewLoader().WithEnv(env).WithProjectRoot(t.TempDir()).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Tracing.DefaultEndpoint != "collector:4318" {
		t.Errorf("Expected env endpoint, got '%s'", cfg.Tracing.DefaultEndpoint)
	}
	if cfg.Tracing.Insecure {
		t.Error("Expected insecure=false from env")
	}
	if cfg.Global.LogLevel != "warn" {
		t.Errorf("Expected log level 'warn', got '%s'", cfg.Global.LogLevel)
	}
	if cfg.Dispatch.Workers != 2 {
		t.Errorf("Expected 2 workers, got %d", cfg.Dispatch.Workers)
	}
	if cfg.Stream.ReconnectDelay != time.Second {
		t.Errorf("Expected reconnect delay 1s, got %v", cfg.Stream.ReconnectDelay)
	}
	if cfg.Server.WebhookSecret != "s3cret" {
		t.Errorf("Expected webhook secret from env, got '%s'", cfg.Server.WebhookSecret)
	}
}

// TestLoadWithInvalidEnv tests malformed environment values.
func TestLoadWithInvalidEnv(t *testing.T) {
	for _, key := range []string{
		"BUILD_TRACER_DISPATCH__WORKERS",
		"BUILD_TRACER_SERVER__READ_TIMEOUT",
		"BUILD_TRACER_TRACING__INSECURE",
	} {
		t.Run(key, func(t *testing.T) {
			env := envFrom(map[string]string{key: "garbage"})
			_, err := config.NewLoader().WithEnv(env).WithProjectRoot(t.TempDir()).Load()
			if !errors.IsType(err, errors.ErrConfig) {
				t.Errorf("Expected config error, got %v", err)
			}
		})
	}
}

// TestValidate tests validation failures.
func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(c *config.Config)
	}{
		{"bad protocol", func(c *config.Config) { c.Tracing.Protocol = "thrift" }},
		{"endpoint without port", func(c *config.Config) { c.Tracing.DefaultEndpoint = "localhost" }},
		{"sqlite without dsn", func(c *config.Config) { c.Stats.Driver = "sqlite" }},
		{"unknown driver", func(c *config.Config) { c.Stats.Driver = "redis" }},
		{"http stream url", func(c *config.Config) { c.Stream.URL = "http://ci/events" }},
		{"zero workers", func(c *config.Config) { c.Dispatch.Workers = 0 }},
		{"zero queue", func(c *config.Config) { c.Dispatch.QueueSize = 0 }},
		{"bad log level", func(c *config.Config) { c.Global.LogLevel = "loud" }},
		{"relative webhook path", func(c *config.Config) { c.Server.WebhookPath = "hook" }},
		{"same paths", func(c *config.Config) { c.Server.MetricsPath = c.Server.WebhookPath }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error, got nil")
			}
		})
	}

	cfg := config.DefaultConfig()
	cfg.Stream.URL = "wss://ci.example.com/app/subscriptions"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected valid stream config, got %v", err)
	}
}
