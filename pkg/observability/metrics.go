// Copyright 2026 CICD AI Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "build_tracer"

// Build outcomes.
const (
	ResultTraced  = "traced"
	ResultSkipped = "skipped"
	ResultFailed  = "failed"
)

// Notification outcomes.
const (
	OutcomeAccepted  = "accepted"
	OutcomeRejected  = "rejected"
	OutcomeDropped   = "dropped"
	OutcomeDuplicate = "duplicate"
)

// Metrics provides metrics collection. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	builds        *prometheus.CounterVec
	spans         prometheus.Counter
	duration      prometheus.Histogram
	tracers       prometheus.Gauge
	notifications *prometheus.CounterVec
}

// NewMetrics creates a metrics collector with its own registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "builds_total",
			Help:      "Finished builds handled, by result.",
		}, []string{"result"}),
		spans: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "stage_spans_total",
			Help:      "Stage and step spans emitted.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "build_processing_seconds",
			Help:      "Time spent turning one build into a trace.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		tracers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "tracers",
			Help:      "Cached tracer clients, one per collector endpoint.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "notifications_total",
			Help:      "Build-finished notifications received, by source and outcome.",
		}, []string{"source", "outcome"}),
	}

	m.registry.MustRegister(
		m.builds, m.spans, m.duration, m.tracers, m.notifications,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler returns the HTTP handler exposing the metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordBuild records the outcome of one build.
func (m *Metrics) RecordBuild(result string, elapsed time.Duration, spans int) {
	if m == nil {
		return
	}
	m.builds.WithLabelValues(result).Inc()
	if result == ResultSkipped {
		return
	}
	m.duration.Observe(elapsed.Seconds())
	m.spans.Add(float64(spans))
}

// SetTracers records the number of cached tracer clients.
func (m *Metrics) SetTracers(n int) {
	if m == nil {
		return
	}
	m.tracers.Set(float64(n))
}

// RecordNotification records an incoming notification.
func (m *Metrics) RecordNotification(source, outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(source, outcome).Inc()
}
