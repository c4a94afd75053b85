// Copyright 2026 CICD AI Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package tracing turns reconstructed build timelines into OpenTelemetry
// traces. It owns one tracer client per collector endpoint for the life of
// the process and emits the root and stage spans of each build.
package tracing

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/cicd-ai-toolkit/build-tracer/pkg/errors"
)

// ScopeName is the instrumentation scope of all emitted spans.
const ScopeName = "github.com/cicd-ai-toolkit/build-tracer/pkg/tracing"

// Exporter protocols.
const (
	ProtocolHTTP = "http"
	ProtocolGRPC = "grpc"
)

// Handle is a tracer client bound to exactly one collector endpoint.
type Handle struct {
	endpoint string
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// NewHandle wraps a tracer provider reporting to endpoint.
func NewHandle(endpoint string, provider *sdktrace.TracerProvider) *Handle {
	return &Handle{
		endpoint: endpoint,
		provider: provider,
		tracer:   provider.Tracer(ScopeName),
	}
}

// Endpoint returns the collector address the handle reports to.
func (h *Handle) Endpoint() string { return h.endpoint }

// Tracer returns the underlying OpenTelemetry tracer.
func (h *Handle) Tracer() trace.Tracer { return h.tracer }

// Shutdown flushes and stops the provider.
func (h *Handle) Shutdown(ctx context.Context) error {
	return h.provider.Shutdown(ctx)
}

// Factory creates a tracer client for a collector endpoint. serviceName is
// the service the resulting spans are reported under.
type Factory func(ctx context.Context, endpoint, serviceName string) (*Handle, error)

// ExporterOptions configures OTLPFactory.
type ExporterOptions struct {
	// Protocol is ProtocolHTTP (default) or ProtocolGRPC
	Protocol string
	// Insecure disables TLS towards the collector
	Insecure bool
}

// OTLPFactory returns a Factory that exports spans over OTLP with a batching
// processor and samples every span.
func OTLPFactory(opts ExporterOptions) Factory {
	return func(ctx context.Context, endpoint, serviceName string) (*Handle, error) {
		exporter, err := newExporter(ctx, opts, endpoint)
		if err != nil {
			return nil, errors.ExportError(fmt.Sprintf("create exporter for %s", endpoint), err)
		}

		res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
		if err != nil {
			_ = exporter.Shutdown(ctx)
			return nil, errors.ExportError("build resource", err)
		}

		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.AlwaysSample()),
		)
		return NewHandle(endpoint, tp), nil
	}
}

func newExporter(ctx context.Context, opts ExporterOptions, endpoint string) (sdktrace.SpanExporter, error) {
	switch strings.ToLower(opts.Protocol) {
	case "", ProtocolHTTP:
		httpOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint)}
		if opts.Insecure {
			httpOpts = append(httpOpts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, httpOpts...)
	case ProtocolGRPC:
		grpcOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(endpoint)}
		if opts.Insecure {
			grpcOpts = append(grpcOpts, otlptracegrpc.WithInsecure())
		}
		return otlptracegrpc.New(ctx, grpcOpts...)
	default:
		return nil, fmt.Errorf("unsupported protocol %q", opts.Protocol)
	}
}
