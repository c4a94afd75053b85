// Copyright 2026 CICD AI Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cicd-ai-toolkit/build-tracer/pkg/errors"
)

const (
	// EnvPrefix is the prefix for all environment variables.
	EnvPrefix = "BUILD_TRACER"
	// ProjectConfigFile is the config file looked up in the working directory.
	ProjectConfigFile = "build-tracer.yaml"
)

// Loader loads configuration from files and environment.
type Loader struct {
	path        string
	projectRoot string
	lookupEnv   func(string) (string, bool)
}

// NewLoader creates a new config loader.
func NewLoader() *Loader {
	return &Loader{lookupEnv: os.LookupEnv}
}

// WithPath sets an explicit config file. A missing explicit file is an error.
func (l *Loader) WithPath(path string) *Loader {
	l.path = path
	return l
}

// WithProjectRoot sets the directory searched for ProjectConfigFile.
func (l *Loader) WithProjectRoot(root string) *Loader {
	l.projectRoot = root
	return l
}

// WithEnv replaces the environment lookup (for tests).
func (l *Loader) WithEnv(lookup func(string) (string, bool)) *Loader {
	l.lookupEnv = lookup
	return l
}

// Load loads configuration with full precedence order:
// 1. Defaults
// 2. Explicit file, or the project file when it exists
// 3. Environment Variables (BUILD_TRACER_*)
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	path := l.path
	if path == "" {
		root := l.projectRoot
		if root == "" {
			root = "."
		}
		candidate := filepath.Join(root, ProjectConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	}

	if path != "" {
		if err := l.loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := l.applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.ConfigError("config validation failed", err)
	}

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path on top of defaults
// without environment overrides.
func (l *Loader) LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := l.loadFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.ConfigError(fmt.Sprintf("failed to read config file: %s", path), err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.ConfigError(fmt.Sprintf("failed to parse config file: %s", path), err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
// Format: BUILD_TRACER_SECTION__KEY=value
func (l *Loader) applyEnvOverrides(cfg *Config) error {
	str := func(key string, dst *string) {
		if v, ok := l.lookupEnv(EnvPrefix + "_" + key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key, field string, dst *time.Duration) error {
		v, ok := l.lookupEnv(EnvPrefix + "_" + key)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.ConfigError("invalid duration for "+field, err)
		}
		*dst = d
		return nil
	}
	num := func(key, field string, dst *int) error {
		v, ok := l.lookupEnv(EnvPrefix + "_" + key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.ConfigError("invalid integer for "+field, err)
		}
		*dst = n
		return nil
	}

	str("SERVER__LISTEN", &cfg.Server.Listen)
	str("SERVER__WEBHOOK_PATH", &cfg.Server.WebhookPath)
	str("SERVER__METRICS_PATH", &cfg.Server.MetricsPath)
	str("SERVER__WEBHOOK_SECRET", &cfg.Server.WebhookSecret)
	str("TRACING__DEFAULT_ENDPOINT", &cfg.Tracing.DefaultEndpoint)
	str("TRACING__PROTOCOL", &cfg.Tracing.Protocol)
	if v, ok := l.lookupEnv(EnvPrefix + "_TRACING__INSECURE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.ConfigError("invalid boolean for tracing.insecure", err)
		}
		cfg.Tracing.Insecure = b
	}
	str("STATS__DRIVER", &cfg.Stats.Driver)
	str("STATS__DSN", &cfg.Stats.DSN)
	str("STREAM__URL", &cfg.Stream.URL)
	str("GLOBAL__LOG_LEVEL", &cfg.Global.LogLevel)
	str("GLOBAL__LOG_FORMAT", &cfg.Global.LogFormat)

	if err := dur("SERVER__READ_TIMEOUT", "server.read_timeout", &cfg.Server.ReadTimeout); err != nil {
		return err
	}
	if err := dur("STREAM__RECONNECT_DELAY", "stream.reconnect_delay", &cfg.Stream.ReconnectDelay); err != nil {
		return err
	}
	if err := dur("DISPATCH__DEDUPE_TTL", "dispatch.dedupe_ttl", &cfg.Dispatch.DedupeTTL); err != nil {
		return err
	}
	if err := num("DISPATCH__WORKERS", "dispatch.workers", &cfg.Dispatch.Workers); err != nil {
		return err
	}
	return num("DISPATCH__QUEUE_SIZE", "dispatch.queue_size", &cfg.Dispatch.QueueSize)
}
