// Package version provides version information for build-tracer.
// These variables are set via ldflags during the build process.
package version

import "runtime"

const name = "build-tracer"

// Version is the current version of the binary.
// Set via -ldflags "-X github.com/cicd-ai-toolkit/build-tracer/pkg/version.Version=..."
var Version = "dev"

// BuildDate is the date when the binary was built.
// Set via -ldflags "-X github.com/cicd-ai-toolkit/build-tracer/pkg/version.BuildDate=..."
var BuildDate = "unknown"

// GitCommit is the git commit hash used to build the binary.
// Set via -ldflags "-X github.com/cicd-ai-toolkit/build-tracer/pkg/version.GitCommit=..."
var GitCommit = "unknown"

// String returns the bare version.
func String() string {
	return Version
}

// FullString returns the version prefixed with the binary name.
func FullString() string {
	if Version == "dev" {
		return name + " development version"
	}
	return name + " " + Version
}

// Info returns all version information as a map.
func Info() map[string]string {
	return map[string]string{
		"version":   Version,
		"buildDate": BuildDate,
		"gitCommit": GitCommit,
		"goVersion": runtime.Version(),
	}
}
