// Package config handles configuration loading and validation
package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

const (
	// MaxWorkers is the maximum allowed dispatch worker count
	MaxWorkers = 256
)

var (
	validProtocols  = map[string]bool{"http": true, "grpc": true}
	validDrivers    = map[string]bool{StatsDriverMemory: true, StatsDriverSQLite: true}
	validLogLevels  = map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	validLogFormats = map[string]bool{"json": true, "text": true}
)

// Validate validates the configuration
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}

	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := c.Tracing.Validate(); err != nil {
		return fmt.Errorf("tracing config: %w", err)
	}
	if err := c.Stats.Validate(); err != nil {
		return fmt.Errorf("stats config: %w", err)
	}
	if err := c.Stream.Validate(); err != nil {
		return fmt.Errorf("stream config: %w", err)
	}
	if err := c.Dispatch.Validate(); err != nil {
		return fmt.Errorf("dispatch config: %w", err)
	}
	if err := c.Global.Validate(); err != nil {
		return fmt.Errorf("global config: %w", err)
	}

	return nil
}

// Validate validates the HTTP ingress configuration
func (s *ServerConfig) Validate() error {
	if s.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	if !strings.HasPrefix(s.WebhookPath, "/") {
		return fmt.Errorf("webhook_path must start with '/', got %q", s.WebhookPath)
	}
	if s.MetricsPath != "" && !strings.HasPrefix(s.MetricsPath, "/") {
		return fmt.Errorf("metrics_path must start with '/', got %q", s.MetricsPath)
	}
	if s.MetricsPath == s.WebhookPath {
		return fmt.Errorf("metrics_path and webhook_path must differ")
	}
	if s.ReadTimeout < 0 {
		return fmt.Errorf("read_timeout must be non-negative")
	}
	return nil
}

// Validate validates the collector configuration
func (t *TracingConfig) Validate() error {
	if !validProtocols[strings.ToLower(t.Protocol)] {
		return fmt.Errorf("invalid protocol %q (must be http or grpc)", t.Protocol)
	}
	if t.DefaultEndpoint == "" {
		return fmt.Errorf("default_endpoint is required")
	}
	if _, _, err := net.SplitHostPort(t.DefaultEndpoint); err != nil {
		return fmt.Errorf("default_endpoint must be host:port: %w", err)
	}
	return nil
}

// Validate validates the statistics store configuration
func (s *StatsConfig) Validate() error {
	if !validDrivers[s.Driver] {
		return fmt.Errorf("invalid driver %q (must be memory or sqlite)", s.Driver)
	}
	if s.Driver == StatsDriverSQLite && s.DSN == "" {
		return fmt.Errorf("dsn is required for the sqlite driver")
	}
	return nil
}

// Validate validates the stream configuration
func (s *StreamConfig) Validate() error {
	if s.URL == "" {
		return nil
	}
	u, err := url.Parse(s.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("url scheme must be ws or wss, got %q", u.Scheme)
	}
	if s.ReconnectDelay <= 0 {
		return fmt.Errorf("reconnect_delay must be positive")
	}
	return nil
}

// Validate validates the worker pool configuration
func (d *DispatchConfig) Validate() error {
	if d.Workers < 1 || d.Workers > MaxWorkers {
		return fmt.Errorf("workers must be between 1 and %d, got %d", MaxWorkers, d.Workers)
	}
	if d.QueueSize < 1 {
		return fmt.Errorf("queue_size must be positive, got %d", d.QueueSize)
	}
	if d.DedupeTTL < 0 {
		return fmt.Errorf("dedupe_ttl must be non-negative")
	}
	return nil
}

// Validate validates the global configuration
func (g *GlobalConfig) Validate() error {
	if !validLogLevels[strings.ToLower(g.LogLevel)] {
		return fmt.Errorf("invalid log_level %q", g.LogLevel)
	}
	if !validLogFormats[strings.ToLower(g.LogFormat)] {
		return fmt.Errorf("invalid log_format %q (must be json or text)", g.LogFormat)
	}
	return nil
}
