package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestTracerErrorMessage(t *testing.T) {
	cause := errors.New("connection refused")
	err := ExportError("create tracer", cause)

	want := "[EXPORT] create tracer: connection refused"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}

	bare := ValidationError("missing build id", nil)
	if bare.Error() != "[VALIDATION] missing build id" {
		t.Errorf("unexpected message %q", bare.Error())
	}
}

func TestIsType(t *testing.T) {
	wrapped := fmt.Errorf("handle build: %w", PreconditionError("no build type", nil))

	testCases := []struct {
		name     string
		err      error
		errType  ErrorType
		expected bool
	}{
		{"nil", nil, ErrConfig, false},
		{"plain error", errors.New("x"), ErrConfig, false},
		{"matching", ConfigError("bad", nil), ErrConfig, true},
		{"other type", ConfigError("bad", nil), ErrStats, false},
		{"wrapped", wrapped, ErrPrecondition, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsType(tc.err, tc.errType); got != tc.expected {
				t.Errorf("IsType() = %v, want %v", got, tc.expected)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(TransportError("dial", nil)) {
		t.Error("transport errors should be retryable")
	}
	for _, err := range []error{
		ExportError("x", nil),
		StatsError("x", nil),
		PreconditionError("x", nil),
		errors.New("x"),
	} {
		if IsRetryable(err) {
			t.Errorf("%v should not be retryable", err)
		}
	}
}

func TestWithContext(t *testing.T) {
	err := StatsError("query failed", nil).WithContext("build_id", int64(42))
	if err.Context["build_id"] != int64(42) {
		t.Errorf("context not recorded: %v", err.Context)
	}
}
