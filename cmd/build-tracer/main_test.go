package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cicd-ai-toolkit/build-tracer/pkg/config"
	"github.com/cicd-ai-toolkit/build-tracer/pkg/errors"
	"github.com/cicd-ai-toolkit/build-tracer/pkg/timeline"
)

const singleYAML = `
buildId: 101
buildTypeId: bt12
projectId: Proj
startTime: 1000
finishTime: 5000
buildType:
  externalId: Proj_Build
  runners:
    - id: "1"
      name: Compile
statistics:
  buildStageDuration:sourcesUpdate: 500
  buildStageDuration:buildStep1: 2000
`

const listJSON = `[
  {"buildId": 1, "buildTypeId": "bt", "startTime": 10, "personal": true},
  {"buildId": 2, "buildTypeId": "bt", "startTime": 20, "branch": {"name": "feature", "default": false}}
]`

func TestParseBuilds(t *testing.T) {
	builds, err := parseBuilds([]byte(singleYAML))
	if err != nil {
		t.Fatalf("parseBuilds() error = %v", err)
	}
	if len(builds) != 1 {
		t.Fatalf("got %d builds, want 1", len(builds))
	}
	b := builds[0]
	if b.BuildID != 101 || b.ExternalID() != "Proj_Build" {
		t.Errorf("unexpected build %+v", b)
	}
	if got := b.Statistics[timeline.StepKeyPrefix+"1"]; got != 2000 {
		t.Errorf("step statistic = %v, want 2000", got)
	}

	builds, err = parseBuilds([]byte(listJSON))
	if err != nil {
		t.Fatalf("parseBuilds() error = %v", err)
	}
	if len(builds) != 2 || !builds[0].Personal || builds[1].Branch == nil || builds[1].Branch.Name != "feature" {
		t.Errorf("unexpected builds %+v", builds)
	}
}

func TestParseBuildsErrors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"malformed", "buildId: [1"},
		{"invalid build", "buildId: 1\nstartTime: 10\n"},
		{"wrong shape", "buildId: notanumber\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseBuilds([]byte(tc.input))
			if !errors.IsType(err, errors.ErrValidation) {
				t.Errorf("parseBuilds() error = %v, want validation error", err)
			}
		})
	}
}

func TestPrintTimelines(t *testing.T) {
	builds, err := parseBuilds([]byte(singleYAML))
	if err != nil {
		t.Fatalf("parseBuilds() error = %v", err)
	}

	var out bytes.Buffer
	if err := printTimelines(&out, builds, time.UnixMilli(0)); err != nil {
		t.Fatalf("printTimelines() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 5:\n%s", len(lines), out.String())
	}
	if lines[0] != "build 101 (Proj_Build)" {
		t.Errorf("header = %q", lines[0])
	}
	for i, want := range [][]string{
		{timeline.Checkout.Name, "1000", "1500", "500"},
		{"Compile", "1500", "3500", "2000"},
		{timeline.TrailingName, "3500", "5000", "1500"},
	} {
		fields := lines[i+2]
		for _, f := range want {
			if !strings.Contains(fields, f) {
				t.Errorf("line %q does not contain %q", fields, f)
			}
		}
	}
}

func TestPrintTimelinesWithoutBuildType(t *testing.T) {
	builds, err := parseBuilds([]byte("buildId: 1\nbuildTypeId: bt\nstartTime: 10\n"))
	if err != nil {
		t.Fatalf("parseBuilds() error = %v", err)
	}
	if err := printTimelines(&bytes.Buffer{}, builds, time.Now()); !errors.IsType(err, errors.ErrPrecondition) {
		t.Errorf("printTimelines() error = %v, want precondition error", err)
	}
}

func TestReplaySkipsIneligible(t *testing.T) {
	builds, err := parseBuilds([]byte(listJSON))
	if err != nil {
		t.Fatalf("parseBuilds() error = %v", err)
	}

	var out bytes.Buffer
	if err := replay(context.Background(), &out, config.DefaultConfig(), builds); err != nil {
		t.Fatalf("replay() error = %v", err)
	}
	if got := strings.Count(out.String(), "skipped, not eligible"); got != 2 {
		t.Errorf("expected 2 skipped builds, got output:\n%s", out.String())
	}
}

func TestReadBuildsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "build.yaml")
	if err := os.WriteFile(path, []byte(singleYAML), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if _, err := readBuildsFile(path); err != nil {
		t.Errorf("readBuildsFile() error = %v", err)
	}
	if _, err := readBuildsFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.HasPrefix(out.String(), "build-tracer version: ") {
		t.Errorf("unexpected output %q", out.String())
	}
}
