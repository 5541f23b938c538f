// Package errors provides structured error types for better observability
// and programmatic error handling across the deployment pipeline.
//
// Pipeline failures (PREREQUISITE_MISSING, BUILD_FAILED, PUSH_FAILED,
// REWRITE_FAILED, APPLY_FAILED, READINESS_TIMEOUT) abort a run. Advisory codes
// (VERIFICATION_ADVISORY, OPTIONAL_STAGE_SKIPPED, OPTIONAL_STAGE_WARNING) are
// logged and the run continues; use IsFatal to tell them apart.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeApplyFailed,
//	    "failed to apply tier rag-service",
//	    cause,
//	    map[string]any{
//	        "tier":     "rag-service",
//	        "resource": "k8s/rag-service.yaml",
//	    },
//	)
package errors
