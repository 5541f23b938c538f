// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a structured error classification.
type ErrorCode string

const (
	// ErrCodeNotFound indicates a requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeTimeout indicates an operation exceeded its time limit.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeInternal indicates an internal system error.
	ErrCodeInternal ErrorCode = "INTERNAL"
	// ErrCodeInvalidRequest indicates malformed or invalid input.
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
)

// Pipeline failures. Each of these aborts a deployment run.
const (
	// ErrCodePrerequisiteMissing indicates a missing build tool, cluster client
	// configuration, or an unreachable control plane.
	ErrCodePrerequisiteMissing ErrorCode = "PREREQUISITE_MISSING"
	// ErrCodeBuildFailed indicates a container image build failure.
	ErrCodeBuildFailed ErrorCode = "BUILD_FAILED"
	// ErrCodePushFailed indicates a container image push failure.
	ErrCodePushFailed ErrorCode = "PUSH_FAILED"
	// ErrCodeRewriteFailed indicates a manifest could not be read or written.
	ErrCodeRewriteFailed ErrorCode = "REWRITE_FAILED"
	// ErrCodeApplyFailed indicates the control plane rejected a manifest.
	ErrCodeApplyFailed ErrorCode = "APPLY_FAILED"
	// ErrCodeReadinessTimeout indicates a gated resource did not become available in time.
	ErrCodeReadinessTimeout ErrorCode = "READINESS_TIMEOUT"
)

// Non-fatal outcomes. These are logged and the pipeline continues.
const (
	// ErrCodeVerificationAdvisory indicates live state looked unhealthy after apply.
	ErrCodeVerificationAdvisory ErrorCode = "VERIFICATION_ADVISORY"
	// ErrCodeOptionalStageSkipped indicates an optional stage had nothing to act on.
	ErrCodeOptionalStageSkipped ErrorCode = "OPTIONAL_STAGE_SKIPPED"
	// ErrCodeOptionalStageWarning indicates an optional stage partially failed.
	ErrCodeOptionalStageWarning ErrorCode = "OPTIONAL_STAGE_WARNING"
)

// StructuredError provides structured error information for better observability.
// It includes an error code for programmatic handling, a human-readable message,
// the underlying cause, and optional context for debugging.
type StructuredError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As support.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// Fatal reports whether the error code aborts a deployment run.
func (c ErrorCode) Fatal() bool {
	switch c {
	case ErrCodeVerificationAdvisory, ErrCodeOptionalStageSkipped, ErrCodeOptionalStageWarning:
		return false
	default:
		return true
	}
}

// New creates a new StructuredError with the given code and message.
func New(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
	}
}

// NewWithContext creates a new StructuredError with context information.
func NewWithContext(code ErrorCode, message string, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Context: context,
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(code ErrorCode, message string, cause error) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithContext wraps an error with additional context information.
func WrapWithContext(code ErrorCode, message string, cause error, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: context,
	}
}

// CodeOf returns the code of the outermost StructuredError in the chain,
// or an empty code when err carries none.
func CodeOf(err error) ErrorCode {
	var se *StructuredError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ""
}

// HasCode reports whether any StructuredError in the chain carries code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		var se *StructuredError
		if !stderrors.As(err, &se) {
			return false
		}
		if se.Code == code {
			return true
		}
		err = se.Cause
	}
	return false
}

// IsFatal reports whether err should abort the pipeline. Errors without a
// structured code are treated as fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	code := CodeOf(err)
	if code == "" {
		return true
	}
	return code.Fatal()
}
