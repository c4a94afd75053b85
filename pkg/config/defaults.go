// Copyright 2026 CICD AI Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package config

import (
	"time"
)

// DefaultConfig returns the default configuration.
// These values are used when no config file is present.
func DefaultConfig() *Config {
	return &Config{
		Server:   DefaultServerConfig(),
		Tracing:  DefaultTracingConfig(),
		Stats:    DefaultStatsConfig(),
		Stream:   DefaultStreamConfig(),
		Dispatch: DefaultDispatchConfig(),
		Global:   DefaultGlobalConfig(),
	}
}

// DefaultServerConfig returns default HTTP ingress configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Listen:      ":8480",
		WebhookPath: "/builds/finished",
		MetricsPath: "/metrics",
		ReadTimeout: 10 * time.Second,
	}
}

// DefaultTracingConfig returns default collector configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		DefaultEndpoint: "localhost:5778",
		Protocol:        "http",
		Insecure:        true,
	}
}

// DefaultStatsConfig returns default statistics store configuration.
func DefaultStatsConfig() StatsConfig {
	return StatsConfig{
		Driver: StatsDriverMemory,
	}
}

// DefaultStreamConfig returns default stream configuration.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		ReconnectDelay: 5 * time.Second,
	}
}

// DefaultDispatchConfig returns default worker pool configuration.
func DefaultDispatchConfig() DispatchConfig {
	return DispatchConfig{
		Workers:   4,
		QueueSize: 64,
		DedupeTTL: 10 * time.Minute,
	}
}

// DefaultGlobalConfig returns default global configuration.
func DefaultGlobalConfig() GlobalConfig {
	return GlobalConfig{
		LogLevel:  "info",
		LogFormat: "json",
	}
}
