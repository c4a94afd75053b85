// Copyright 2026 CICD AI Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package feature describes the build tracing feature and decides which
// builds it applies to.
package feature

import (
	"strings"

	"github.com/cicd-ai-toolkit/build-tracer/pkg/build"
)

const (
	// Type is the build feature type that enables tracing.
	Type = "BuildTracing"
	// DisplayName is the user-facing feature name.
	DisplayName = "Build Tracing"
	// ParamReporterURL holds the collector endpoint (host:port).
	ParamReporterURL = "reporterUrl"
)

// Descriptor describes how the feature may be attached.
type Descriptor struct {
	Type             string
	DisplayName      string
	MultiplePerBuild bool
	RequiresAgent    bool
}

// Tracing is the descriptor of the build tracing feature.
var Tracing = Descriptor{
	Type:             Type,
	DisplayName:      DisplayName,
	MultiplePerBuild: false,
	RequiresAgent:    false,
}

// IsEligible reports whether a finished build should be traced: it ran on
// the default branch (or without branches), is not personal, has a build
// configuration, and that configuration has the tracing feature attached.
func IsEligible(b *build.Build) bool {
	if b == nil {
		return false
	}
	if b.Branch != nil && !b.Branch.IsDefault {
		return false
	}
	if b.Personal || b.BuildType == nil {
		return false
	}
	return len(b.FeaturesOfType(Type)) > 0
}

// ReporterURL returns the collector endpoint configured on the build's
// tracing feature, or "" when none is set.
func ReporterURL(b *build.Build) string {
	features := b.FeaturesOfType(Type)
	if len(features) == 0 {
		return ""
	}
	return strings.TrimSpace(features[0].Parameters[ParamReporterURL])
}
