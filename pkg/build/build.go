// Copyright 2026 CICD AI Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package build models the build-finished notification delivered by the CI
// server and the build configuration it refers to.
package build

import (
	"fmt"
	"time"

	"github.com/cicd-ai-toolkit/build-tracer/pkg/errors"
	"github.com/cicd-ai-toolkit/build-tracer/pkg/timeline"
)

// Build is a normalized build-finished notification.
type Build struct {
	// BuildID is the server-wide numeric build id
	BuildID int64 `json:"buildId" yaml:"buildId"`

	// BuildTypeID is the internal build configuration id
	BuildTypeID string `json:"buildTypeId" yaml:"buildTypeId"`

	// ProjectID is the owning project id
	ProjectID string `json:"projectId" yaml:"projectId"`

	// StartTime and FinishTime are epoch milliseconds.
	// A zero FinishTime means "now" to the consumer.
	StartTime  int64 `json:"startTime" yaml:"startTime"`
	FinishTime int64 `json:"finishTime,omitempty" yaml:"finishTime,omitempty"`

	// Branch is nil for builds without branch support
	Branch *Branch `json:"branch,omitempty" yaml:"branch,omitempty"`

	Personal bool `json:"personal" yaml:"personal"`

	// BuildType is nil when the configuration was removed before the
	// notification was processed
	BuildType *BuildType `json:"buildType,omitempty" yaml:"buildType,omitempty"`

	// Statistics optionally carries the build's duration statistics inline
	Statistics map[string]float64 `json:"statistics,omitempty" yaml:"statistics,omitempty"`
}

// Branch describes the VCS branch a build ran on.
type Branch struct {
	Name      string `json:"name" yaml:"name"`
	IsDefault bool   `json:"default" yaml:"default"`
}

// BuildType is the build configuration a build was started from.
type BuildType struct {
	ExternalID string    `json:"externalId" yaml:"externalId"`
	Runners    []Runner  `json:"runners,omitempty" yaml:"runners,omitempty"`
	Features   []Feature `json:"features,omitempty" yaml:"features,omitempty"`
}

// Runner is one configured build step.
type Runner struct {
	ID                 string `json:"id" yaml:"id"`
	Name               string `json:"name,omitempty" yaml:"name,omitempty"`
	RunTypeDisplayName string `json:"runType,omitempty" yaml:"runType,omitempty"`
}

// DisplayName returns the runner name, falling back to its run type.
func (r Runner) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.RunTypeDisplayName
}

// Feature is a build feature attached to a configuration.
type Feature struct {
	Type       string            `json:"type" yaml:"type"`
	Parameters map[string]string `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// ExternalID returns the build type external id, or the internal id when
// the configuration is unknown.
func (b *Build) ExternalID() string {
	if b.BuildType != nil && b.BuildType.ExternalID != "" {
		return b.BuildType.ExternalID
	}
	return b.BuildTypeID
}

// FeaturesOfType returns the attached features of the given type.
func (b *Build) FeaturesOfType(featureType string) []Feature {
	if b.BuildType == nil {
		return nil
	}
	var out []Feature
	for _, f := range b.BuildType.Features {
		if f.Type == featureType {
			out = append(out, f)
		}
	}
	return out
}

// Finish returns the finish time in epoch milliseconds, using now when the
// notification did not carry one.
func (b *Build) Finish(now time.Time) int64 {
	if b.FinishTime > 0 {
		return b.FinishTime
	}
	return now.UnixMilli()
}

// Validate checks the fields every notification must carry.
func (b *Build) Validate() error {
	if b.BuildID <= 0 {
		return errors.ValidationError(fmt.Sprintf("invalid build id %d", b.BuildID), nil)
	}
	if b.BuildTypeID == "" {
		return errors.ValidationError("missing build type id", nil)
	}
	if b.StartTime <= 0 {
		return errors.ValidationError("missing start time", nil).WithContext("build_id", b.BuildID)
	}
	if b.FinishTime != 0 && b.FinishTime < b.StartTime {
		return errors.ValidationError("finish time precedes start time", nil).WithContext("build_id", b.BuildID)
	}
	return nil
}

// Snapshot assembles the timing snapshot of the build from the given
// statistics. Step order follows the configured runners; a runner id listed
// twice keeps its first position and its last name.
func (b *Build) Snapshot(stats map[string]float64, finishTime int64) (timeline.Snapshot, error) {
	if b.BuildType == nil {
		return timeline.Snapshot{}, errors.PreconditionError("unknown build type", timeline.ErrNoBuildType).
			WithContext("build_id", b.BuildID)
	}

	order := make([]string, 0, len(b.BuildType.Runners))
	names := make(map[string]string, len(b.BuildType.Runners))
	for _, r := range b.BuildType.Runners {
		if _, seen := names[r.ID]; !seen {
			order = append(order, r.ID)
		}
		names[r.ID] = r.DisplayName()
	}

	return timeline.Snapshot{
		BuildTypeID:      b.BuildTypeID,
		StartTime:        b.StartTime,
		FinishTime:       finishTime,
		Durations:        stats,
		StepOrder:        order,
		StepDisplayNames: names,
	}, nil
}
