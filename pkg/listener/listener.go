// Copyright 2026 CICD AI Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package listener turns build-finished notifications into traces.
package listener

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/cicd-ai-toolkit/build-tracer/pkg/build"
	"github.com/cicd-ai-toolkit/build-tracer/pkg/feature"
	"github.com/cicd-ai-toolkit/build-tracer/pkg/observability"
	"github.com/cicd-ai-toolkit/build-tracer/pkg/stats"
	"github.com/cicd-ai-toolkit/build-tracer/pkg/timeline"
	"github.com/cicd-ai-toolkit/build-tracer/pkg/tracing"
)

// Listener handles build-finished notifications. It is safe for concurrent
// use; each notification is processed synchronously on the caller's
// goroutine.
type Listener struct {
	registry *tracing.Registry
	stats    stats.Store
	logger   observability.Logger
	metrics  *observability.Metrics
	now      func() time.Time
}

// Option configures a Listener.
type Option func(*Listener)

// WithStats sets the store consulted when a notification carries no
// statistics of its own.
func WithStats(s stats.Store) Option {
	return func(l *Listener) { l.stats = s }
}

// WithLogger sets the logger.
func WithLogger(logger observability.Logger) Option {
	return func(l *Listener) { l.logger = logger }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *observability.Metrics) Option {
	return func(l *Listener) { l.metrics = m }
}

// WithClock overrides the clock used for builds without a finish time.
func WithClock(now func() time.Time) Option {
	return func(l *Listener) { l.now = now }
}

// New creates a listener that obtains tracers from registry.
func New(registry *tracing.Registry, opts ...Option) *Listener {
	l := &Listener{
		registry: registry,
		logger:   observability.NewNopLogger(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// BuildFinished traces an eligible build. Failures are logged and counted;
// neither errors nor panics escape, so one bad build never affects the next.
func (l *Listener) BuildFinished(ctx context.Context, b *build.Build) {
	if b == nil {
		return
	}
	finish := b.Finish(l.now())
	started := time.Now()
	log := l.logger.With(
		observability.Int64("build_id", b.BuildID),
		observability.String("build_type_id", b.BuildTypeID),
	)

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic while tracing build",
				observability.String("panic", fmt.Sprint(r)),
				observability.String("stack", string(debug.Stack())))
			l.metrics.RecordBuild(observability.ResultFailed, time.Since(started), 0)
		}
	}()

	if !feature.IsEligible(b) {
		log.Debug("build not eligible for tracing")
		l.metrics.RecordBuild(observability.ResultSkipped, 0, 0)
		return
	}

	spans, err := l.trace(ctx, b, finish)
	if err != nil {
		log.Error("failed to trace build", observability.Err(err))
		l.metrics.RecordBuild(observability.ResultFailed, time.Since(started), 0)
		return
	}

	elapsed := time.Since(started)
	log.Info("build traced",
		observability.Int("spans", spans),
		observability.Float64("elapsed_ms", float64(elapsed.Microseconds())/1000))
	l.metrics.RecordBuild(observability.ResultTraced, elapsed, spans)
}

// Trace traces b without the eligibility check and returns the number of
// stage spans emitted. A build without a build type is rejected before any
// span is opened.
func (l *Listener) Trace(ctx context.Context, b *build.Build) (int, error) {
	return l.trace(ctx, b, b.Finish(l.now()))
}

func (l *Listener) trace(ctx context.Context, b *build.Build, finish int64) (int, error) {
	values, err := l.statistics(ctx, b)
	if err != nil {
		return 0, err
	}

	snapshot, err := b.Snapshot(values, finish)
	if err != nil {
		return 0, err
	}
	intervals, err := timeline.Build(snapshot)
	if err != nil {
		return 0, err
	}

	h, err := l.registry.Get(ctx, feature.ReporterURL(b), b.ExternalID())
	if err != nil {
		return 0, err
	}
	l.metrics.SetTracers(l.registry.Len())

	ctx, root := tracing.StartRoot(ctx, h, b)
	spans := tracing.Emit(ctx, h, root, intervals)
	tracing.FinishRoot(root, finish)

	return spans, nil
}

func (l *Listener) statistics(ctx context.Context, b *build.Build) (map[string]float64, error) {
	if b.Statistics != nil || l.stats == nil {
		return b.Statistics, nil
	}
	return l.stats.Statistics(ctx, b.BuildID)
}
