// Copyright 2026 CICD AI Toolkit. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package timeline reconstructs the wall-clock stages of a finished build
// from its recorded stage durations.
//
// The result is a sequence of contiguous intervals that starts at the build's
// start time and always ends exactly at its finish time. Fixed phases come
// first and last, configured build steps in between, and a trailing interval
// absorbs whatever time no phase or step accounts for.
package timeline

import (
	"errors"
	"sort"
	"strings"
)

// StepKeyPrefix prefixes the statistics key of every executed build step.
// The remainder of the key is the step (runner) id.
const StepKeyPrefix = "buildStageDuration:buildStep"

// TrailingName names the interval that reconciles unattributed time.
const TrailingName = "Not Calculated Yet Finish Stages"

// ErrNoBuildType is returned when a snapshot has no build configuration.
var ErrNoBuildType = errors.New("snapshot has no build type")

// Phase is a fixed infrastructure stage of a build.
type Phase struct {
	Key  string
	Name string
}

// Fixed phases. Their position in LeadingPhases and TrailingPhases is the
// order in which they are laid out.
var (
	Checkout    = Phase{Key: "buildStageDuration:sourcesUpdate", Name: "Build Checkout Time"}
	Resolving   = Phase{Key: "buildStageDuration:dependenciesResolving", Name: "Artifact Dependencies Resolving Time"}
	Preparation = Phase{Key: "buildStageDuration:firstStepPreparation", Name: "Build Preparation"}
	Publishing  = Phase{Key: "buildStageDuration:artifactsPublishing", Name: "Build Artifacts Publishing Time"}
	Finishing   = Phase{Key: "buildStageDuration:buildFinishing", Name: "Build Finishing"}

	LeadingPhases  = []Phase{Checkout, Resolving, Preparation}
	TrailingPhases = []Phase{Publishing, Finishing}
)

// Snapshot is the read-only timing data of one finished build.
// Times are epoch milliseconds; durations are milliseconds.
type Snapshot struct {
	BuildTypeID      string
	StartTime        int64
	FinishTime       int64
	Durations        map[string]float64
	StepOrder        []string
	StepDisplayNames map[string]string
}

// Interval is a named [Start, Finish] range in epoch milliseconds.
type Interval struct {
	Name   string
	Start  float64
	Finish float64
}

// Duration returns the interval length in milliseconds.
func (i Interval) Duration() float64 {
	return i.Finish - i.Start
}

type step struct {
	id       string
	duration float64
}

// Build lays out the snapshot's phases and steps back to back, starting at
// the snapshot start time. Phases and steps without a recorded duration are
// omitted. The last interval is always the trailing one and finishes at the
// snapshot finish time, or at its own start when the recorded durations
// already overrun the build.
func Build(s Snapshot) ([]Interval, error) {
	if s.BuildTypeID == "" {
		return nil, ErrNoBuildType
	}

	steps := orderedSteps(s.Durations, s.StepOrder)
	intervals := make([]Interval, 0, len(LeadingPhases)+len(steps)+len(TrailingPhases)+1)
	cursor := float64(s.StartTime)

	addPhases := func(phases []Phase) {
		for _, p := range phases {
			d, ok := s.Durations[p.Key]
			if !ok {
				continue
			}
			intervals, cursor = appendInterval(intervals, p.Name, cursor, d)
		}
	}

	addPhases(LeadingPhases)
	for _, st := range steps {
		intervals, cursor = appendInterval(intervals, s.displayName(st.id), cursor, st.duration)
	}
	addPhases(TrailingPhases)

	finish := float64(s.FinishTime)
	if finish < cursor {
		finish = cursor
	}
	intervals = append(intervals, Interval{Name: TrailingName, Start: cursor, Finish: finish})

	return intervals, nil
}

func appendInterval(intervals []Interval, name string, cursor, d float64) ([]Interval, float64) {
	// negative durations are bad data; they must not move time backwards
	if d < 0 {
		d = 0
	}
	next := cursor + d
	return append(intervals, Interval{Name: name, Start: cursor, Finish: next}), next
}

func (s Snapshot) displayName(id string) string {
	if name := s.StepDisplayNames[id]; name != "" {
		return name
	}
	return id
}

// orderedSteps extracts step durations and orders them by the step's position
// in order. Steps missing from order follow all known steps, sorted by id.
func orderedSteps(durations map[string]float64, order []string) []step {
	position := make(map[string]int, len(order))
	for i, id := range order {
		if _, seen := position[id]; !seen {
			position[id] = i
		}
	}

	var steps []step
	for key, d := range durations {
		if !strings.HasPrefix(key, StepKeyPrefix) {
			continue
		}
		steps = append(steps, step{id: strings.TrimPrefix(key, StepKeyPrefix), duration: d})
	}

	sort.Slice(steps, func(i, j int) bool {
		pi, iKnown := position[steps[i].id]
		pj, jKnown := position[steps[j].id]
		switch {
		case iKnown && jKnown:
			return pi < pj
		case iKnown != jKnown:
			return iKnown
		default:
			return steps[i].id < steps[j].id
		}
	})
	return steps
}
