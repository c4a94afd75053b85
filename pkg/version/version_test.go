package version

import (
	"runtime"
	"testing"
)

func TestFullString(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "dev"
	if got := FullString(); got != "build-tracer development version" {
		t.Errorf("FullString() = %q", got)
	}

	Version = "1.2.0"
	if got := FullString(); got != "build-tracer 1.2.0" {
		t.Errorf("FullString() = %q", got)
	}
	if String() != "1.2.0" {
		t.Errorf("String() = %q", String())
	}
}

func TestInfo(t *testing.T) {
	info := Info()
	for _, key := range []string{"version", "buildDate", "gitCommit", "goVersion"} {
		if _, ok := info[key]; !ok {
			t.Errorf("Info() missing %q", key)
		}
	}
	if info["goVersion"] != runtime.Version() {
		t.Errorf("unexpected go version %q", info["goVersion"])
	}
}
