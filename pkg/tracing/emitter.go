// Copyright 2026 CICD AI Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/cicd-ai-toolkit/build-tracer/pkg/build"
	"github.com/cicd-ai-toolkit/build-tracer/pkg/timeline"
)

// RootSpanName names the span covering a whole build.
const RootSpanName = "build"

// Root span attribute keys.
var (
	AttrBuildID     = attribute.Key("buildId")
	AttrBuildTypeID = attribute.Key("buildTypeId")
	AttrProjectID   = attribute.Key("projectId")
)

// StartRoot opens the root span of a build at its start time.
func StartRoot(ctx context.Context, h *Handle, b *build.Build) (context.Context, trace.Span) {
	return h.Tracer().Start(ctx, RootSpanName,
		trace.WithTimestamp(millisToTime(float64(b.StartTime))),
		trace.WithAttributes(
			AttrBuildID.Int64(b.BuildID),
			AttrBuildTypeID.String(b.BuildTypeID),
			AttrProjectID.String(b.ProjectID),
		),
	)
}

// FinishRoot closes the root span at finish (epoch milliseconds).
func FinishRoot(root trace.Span, finish int64) {
	root.End(trace.WithTimestamp(millisToTime(float64(finish))))
}

// Emit creates one finished child span of root per interval, in order, and
// returns how many were emitted. Nothing more is emitted once root is no
// longer recording.
func Emit(ctx context.Context, h *Handle, root trace.Span, intervals []timeline.Interval) int {
	parent := trace.ContextWithSpan(ctx, root)
	emitted := 0
	for _, iv := range intervals {
		if !root.IsRecording() {
			break
		}
		_, span := h.Tracer().Start(parent, iv.Name, trace.WithTimestamp(millisToTime(iv.Start)))
		span.End(trace.WithTimestamp(millisToTime(iv.Finish)))
		emitted++
	}
	return emitted
}

// millisToTime converts epoch milliseconds to a time with microsecond
// resolution.
func millisToTime(ms float64) time.Time {
	return time.UnixMicro(int64(ms * 1000))
}
