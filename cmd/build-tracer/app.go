// Package main provides the build-tracer CLI application.
package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cicd-ai-toolkit/build-tracer/pkg/config"
	"github.com/cicd-ai-toolkit/build-tracer/pkg/listener"
	"github.com/cicd-ai-toolkit/build-tracer/pkg/observability"
	"github.com/cicd-ai-toolkit/build-tracer/pkg/stats"
	"github.com/cicd-ai-toolkit/build-tracer/pkg/tracing"
)

// app holds the components shared by the commands.
type app struct {
	cfg      *config.Config
	logger   observability.Logger
	metrics  *observability.Metrics
	registry *tracing.Registry
	store    stats.Store
	closers  []func() error
}

// loadConfig loads the configuration selected by the persistent flags.
func loadConfig() (*config.Config, error) {
	loader := config.NewLoader()
	if rootOpts.config != "" {
		loader = loader.WithPath(rootOpts.config)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}
	if rootOpts.logLevel != "" {
		cfg.Global.LogLevel = rootOpts.logLevel
	}
	return cfg, nil
}

// newApp wires the logger, metrics, statistics store and tracer registry.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{
		cfg: cfg,
		logger: observability.NewLogger(observability.LoggerOptions{
			Name:   "build-tracer",
			Level:  cfg.Global.LogLevel,
			Format: cfg.Global.LogFormat,
		}),
		metrics: observability.NewMetrics(),
	}

	factory := tracing.OTLPFactory(tracing.ExporterOptions{
		Protocol: cfg.Tracing.Protocol,
		Insecure: cfg.Tracing.Insecure,
	})
	a.registry = tracing.NewRegistry(factory, tracing.WithDefaultEndpoint(cfg.Tracing.DefaultEndpoint))

	switch cfg.Stats.Driver {
	case config.StatsDriverSQLite:
		store, err := stats.OpenSQLite(ctx, cfg.Stats.DSN)
		if err != nil {
			return nil, err
		}
		a.store = store
		a.closers = append(a.closers, store.Close)
	default:
		a.store = stats.NewMemoryStore()
	}

	return a, nil
}

// listener builds the notification listener.
func (a *app) listener() *listener.Listener {
	return listener.New(a.registry,
		listener.WithStats(a.store),
		listener.WithLogger(a.logger.With(observability.String("component", "listener"))),
		listener.WithMetrics(a.metrics),
	)
}

// close flushes every tracer and releases the statistics store.
func (a *app) close(ctx context.Context) error {
	if endpoints := a.registry.Endpoints(); len(endpoints) > 0 {
		a.logger.Info("flushing tracers", observability.String("endpoints", strings.Join(endpoints, ",")))
	}
	errs := []error{a.registry.Shutdown(ctx)}
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
