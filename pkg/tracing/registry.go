// Copyright 2026 CICD AI Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package tracing

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// DefaultEndpoint is used when a build does not configure a collector.
const DefaultEndpoint = "localhost:5778"

// Registry caches one Handle per collector endpoint.
//
// Handles are created lazily and never replaced or evicted. Two callers
// racing on a new endpoint may both create a handle; the first one stored
// wins and the other is shut down.
type Registry struct {
	mu              sync.RWMutex
	handles         map[string]*Handle
	factory         Factory
	defaultEndpoint string
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithDefaultEndpoint overrides DefaultEndpoint.
func WithDefaultEndpoint(endpoint string) RegistryOption {
	return func(r *Registry) {
		if endpoint != "" {
			r.defaultEndpoint = endpoint
		}
	}
}

// NewRegistry creates a registry that builds handles with factory.
func NewRegistry(factory Factory, opts ...RegistryOption) *Registry {
	r := &Registry{
		handles:         make(map[string]*Handle),
		factory:         factory,
		defaultEndpoint: DefaultEndpoint,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the handle for endpoint, creating it on first use. An empty
// endpoint selects the default one. serviceName only applies when the
// handle is created.
func (r *Registry) Get(ctx context.Context, endpoint, serviceName string) (*Handle, error) {
	if endpoint == "" {
		endpoint = r.defaultEndpoint
	}

	r.mu.RLock()
	h, ok := r.handles[endpoint]
	r.mu.RUnlock()
	if ok {
		return h, nil
	}

	created, err := r.factory(ctx, endpoint, serviceName)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if existing, ok := r.handles[endpoint]; ok {
		r.mu.Unlock()
		_ = created.Shutdown(ctx)
		return existing, nil
	}
	r.handles[endpoint] = created
	r.mu.Unlock()

	return created, nil
}

// Len returns the number of cached handles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}

// Endpoints returns the cached endpoints in sorted order.
func (r *Registry) Endpoints() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handles))
	for ep := range r.handles {
		out = append(out, ep)
	}
	sort.Strings(out)
	return out
}

// Shutdown flushes and stops every handle. It is meant for process exit;
// the registry must not be used afterwards.
func (r *Registry) Shutdown(ctx context.Context) error {
	var errs []error
	for _, h := range r.snapshot() {
		errs = append(errs, h.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

func (r *Registry) snapshot() []*Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Handle, 0, len(r.handles))
	for _, h := range r.handles {
		out = append(out, h)
	}
	return out
}
