package feature

import (
	"testing"

	"github.com/cicd-ai-toolkit/build-tracer/pkg/build"
)

func tracedBuild() *build.Build {
	return &build.Build{
		BuildID:     7,
		BuildTypeID: "bt7",
		ProjectID:   "proj",
		StartTime:   1000,
		Branch:      &build.Branch{Name: "main", IsDefault: true},
		BuildType: &build.BuildType{
			ExternalID: "Proj_Build",
			Features: []build.Feature{
				{Type: Type, Parameters: map[string]string{ParamReporterURL: "jaeger:4318"}},
			},
		},
	}
}

func TestIsEligible(t *testing.T) {
	testCases := []struct {
		name     string
		mutate   func(b *build.Build)
		expected bool
	}{
		{"default branch with feature", func(b *build.Build) {}, true},
		{"no branch support", func(b *build.Build) { b.Branch = nil }, true},
		{"non-default branch", func(b *build.Build) { b.Branch = &build.Branch{Name: "feature/x"} }, false},
		{"personal build", func(b *build.Build) { b.Personal = true }, false},
		{"no build type", func(b *build.Build) { b.BuildType = nil }, false},
		{"feature not attached", func(b *build.Build) { b.BuildType.Features = nil }, false},
		{"other feature only", func(b *build.Build) {
			b.BuildType.Features = []build.Feature{{Type: "swabra"}}
		}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b := tracedBuild()
			tc.mutate(b)
			if got := IsEligible(b); got != tc.expected {
				t.Errorf("IsEligible() = %v, want %v", got, tc.expected)
			}
		})
	}

	if IsEligible(nil) {
		t.Error("nil build must not be eligible")
	}
}

func TestReporterURL(t *testing.T) {
	b := tracedBuild()
	if got := ReporterURL(b); got != "jaeger:4318" {
		t.Errorf("ReporterURL() = %q", got)
	}

	b.BuildType.Features[0].Parameters = nil
	if got := ReporterURL(b); got != "" {
		t.Errorf("expected empty endpoint, got %q", got)
	}

	b.BuildType = nil
	if got := ReporterURL(b); got != "" {
		t.Errorf("expected empty endpoint without build type, got %q", got)
	}
}

func TestDescriptor(t *testing.T) {
	if Tracing.Type != "BuildTracing" || Tracing.MultiplePerBuild || Tracing.RequiresAgent {
		t.Errorf("unexpected descriptor %+v", Tracing)
	}
}
