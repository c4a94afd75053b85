// Copyright 2026 CICD AI Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package config provides configuration management for build-tracer.
//
// Configuration Loading Order (later overrides earlier):
// 1. Defaults (hardcoded)
// 2. Config file: --config flag, or ./build-tracer.yaml when present
// 3. Environment Variables: BUILD_TRACER_*
package config

import (
	"time"
)

// Config represents the complete application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Tracing  TracingConfig  `yaml:"tracing"`
	Stats    StatsConfig    `yaml:"stats"`
	Stream   StreamConfig   `yaml:"stream"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Global   GlobalConfig   `yaml:"global"`
}

// ServerConfig contains the HTTP ingress settings.
type ServerConfig struct {
	Listen        string        `yaml:"listen"`         // e.g. ":8480"
	WebhookPath   string        `yaml:"webhook_path"`   // build-finished notifications
	WebhookSecret string        `yaml:"webhook_secret"` // HMAC-SHA256 key, "" disables verification
	MetricsPath   string        `yaml:"metrics_path"`   // Prometheus scrape path, "" disables
	ReadTimeout   time.Duration `yaml:"read_timeout"`
}

// TracingConfig contains collector settings.
type TracingConfig struct {
	DefaultEndpoint string `yaml:"default_endpoint"` // used when a build sets no reporterUrl
	Protocol        string `yaml:"protocol"`         // http or grpc
	Insecure        bool   `yaml:"insecure"`
}

// Statistics store drivers.
const (
	StatsDriverMemory = "memory"
	StatsDriverSQLite = "sqlite"
)

// StatsConfig selects where build statistics are read from when a
// notification does not carry them inline.
type StatsConfig struct {
	Driver string `yaml:"driver"` // memory or sqlite
	DSN    string `yaml:"dsn"`
}

// StreamConfig configures the optional websocket event subscription.
type StreamConfig struct {
	URL            string        `yaml:"url"` // "" disables the subscription
	ReconnectDelay time.Duration `yaml:"reconnect_delay"`
}

// DispatchConfig sizes the notification worker pool.
type DispatchConfig struct {
	Workers   int           `yaml:"workers"`
	QueueSize int           `yaml:"queue_size"`
	DedupeTTL time.Duration `yaml:"dedupe_ttl"` // 0 disables duplicate suppression
}

// GlobalConfig contains global application settings.
type GlobalConfig struct {
	LogLevel  string `yaml:"log_level"`  // trace, debug, info, warn, error
	LogFormat string `yaml:"log_format"` // json or text
}
