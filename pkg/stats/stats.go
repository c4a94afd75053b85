// Copyright 2026 CICD AI Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package stats reads the duration statistics recorded for finished builds.
//
// Statistics are keyed by well-known names such as
// "buildStageDuration:sourcesUpdate" and hold millisecond values. A build
// without recorded statistics yields an empty set, never an error.
package stats

import (
	"context"
	"sync"
)

// Store supplies a read-only statistics snapshot per build.
type Store interface {
	Statistics(ctx context.Context, buildID int64) (map[string]float64, error)
}

// MemoryStore keeps statistics in memory.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[int64]map[string]float64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[int64]map[string]float64)}
}

// Put replaces the statistics of a build.
func (s *MemoryStore) Put(buildID int64, values map[string]float64) {
	cp := make(map[string]float64, len(values))
	for k, v := range values {
		cp[k] = v
	}
	s.mu.Lock()
	s.values[buildID] = cp
	s.mu.Unlock()
}

// Statistics returns a copy of the build's statistics.
func (s *MemoryStore) Statistics(_ context.Context, buildID int64) (map[string]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.values[buildID]
	out := make(map[string]float64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out, nil
}
