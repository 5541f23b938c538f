package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeNotFound, "resource not found")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, err.Code)
	}
	if err.Message != "resource not found" {
		t.Errorf("expected message 'resource not found', got %s", err.Message)
	}
	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeBuildFailed, "build failed", cause)

	if err.Code != ErrCodeBuildFailed {
		t.Errorf("expected code %s, got %s", ErrCodeBuildFailed, err.Code)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to be wrapped")
	}
}

func TestWrapWithContext(t *testing.T) {
	cause := errors.New("timeout")
	ctx := map[string]any{
		"tier":     "rag-service",
		"resource": "deployment/rag-service",
	}

	err := WrapWithContext(ErrCodeReadinessTimeout, "gate timed out", cause, ctx)

	if err.Code != ErrCodeReadinessTimeout {
		t.Errorf("expected code %s, got %s", ErrCodeReadinessTimeout, err.Code)
	}
	if err.Context == nil {
		t.Fatal("expected context to be set")
	}
	if err.Context["tier"] != "rag-service" {
		t.Errorf("expected tier to be rag-service")
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		err      *StructuredError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(ErrCodeNotFound, "not found"),
			expected: "[NOT_FOUND] not found",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeApplyFailed, "apply rag-service.yaml", errors.New("forbidden")),
			expected: "[APPLY_FAILED] apply rag-service.yaml: forbidden",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(ErrCodeInternal, "wrapped", cause)

	unwrapped := err.Unwrap()
	if !errors.Is(unwrapped, cause) {
		t.Errorf("expected unwrapped error to be original cause")
	}

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is should work with Unwrap")
	}
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "plain error", err: errors.New("boom"), want: true},
		{name: "push failed", err: New(ErrCodePushFailed, "push"), want: true},
		{name: "readiness timeout", err: New(ErrCodeReadinessTimeout, "gate"), want: true},
		{name: "advisory", err: New(ErrCodeVerificationAdvisory, "pods starting"), want: false},
		{name: "skipped", err: New(ErrCodeOptionalStageSkipped, "no pod"), want: false},
		{name: "warning wrapped by fmt", err: fmt.Errorf("seed: %w", New(ErrCodeOptionalStageWarning, "3 failed")), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFatal(tt.err); got != tt.want {
				t.Errorf("IsFatal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasCode(t *testing.T) {
	inner := New(ErrCodeReadinessTimeout, "deployment/rag-service")
	outer := Wrap(ErrCodeApplyFailed, "tier rag-service", inner)

	if !HasCode(outer, ErrCodeApplyFailed) {
		t.Error("expected outer code to match")
	}
	if !HasCode(outer, ErrCodeReadinessTimeout) {
		t.Error("expected inner code to match")
	}
	if HasCode(outer, ErrCodeBuildFailed) {
		t.Error("unexpected BUILD_FAILED match")
	}
	if CodeOf(outer) != ErrCodeApplyFailed {
		t.Errorf("CodeOf() = %s, want %s", CodeOf(outer), ErrCodeApplyFailed)
	}
}
