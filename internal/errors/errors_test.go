package errors

import (
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := Newf(UnsupportedLanguage, "no front-end for %q", "rust")
	want := `[UNSUPPORTED_LANGUAGE] no front-end for "rust"`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	wrapped := New(DetectorFailure, "detector unreachable", fmt.Errorf("dial refused"))
	if wrapped.Error() != "[DETECTOR_FAILURE] detector unreachable: dial refused" {
		t.Errorf("Error() = %q", wrapped.Error())
	}
}

func TestCodeOfUnwrapsChains(t *testing.T) {
	inner := Newf(Timeout, "call deadline elapsed")
	outer := fmt.Errorf("worker 3: %w", inner)

	if CodeOf(outer) != Timeout {
		t.Errorf("CodeOf = %s, want TIMEOUT", CodeOf(outer))
	}
	if !IsCode(outer, Timeout) {
		t.Error("IsCode failed through a wrapped chain")
	}
}

func TestCodeOfPlainError(t *testing.T) {
	if CodeOf(fmt.Errorf("plain")) != InternalError {
		t.Error("plain errors should map to INTERNAL_ERROR")
	}
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := New(InternalError, "wrapper", cause)
	if err.Unwrap() != cause {
		t.Error("Unwrap did not return the cause")
	}
}
