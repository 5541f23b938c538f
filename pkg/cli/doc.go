// Package cli implements the command-line interface of flightdeploy.
//
// # Overview
//
// flightdeploy promotes the flight-search assistant (vector-db, rag-service,
// llm-service and console-frontend) to a Kubernetes cluster: it builds and
// pushes the service images, rewrites the manifests to the new version,
// applies them tier by tier behind readiness gates and verifies the result.
//
// # Commands
//
// deploy - Run a full promotion:
//
//	flightdeploy deploy v1.4.0 --registry registry.example.com/team [--yes]
//
// Prompts for confirmation unless --yes is given. --seed and --probe take
// yes, no or ask and control the optional post-deployment stages.
//
// manage - Operate on a deployed namespace:
//
//	flightdeploy manage --action status --format table
//	flightdeploy manage --action logs [--service rag-service] [--follow]
//	flightdeploy manage --action scale --service llm-service --replicas 3
//	flightdeploy manage --action cleanup
//	flightdeploy manage --action test
//
// # Global Flags
//
//	--log-level   debug, info, success, warn, error (default: info)
//	--log-json    Emit structured JSON logs instead of CLI output
//	--config      YAML file with defaults for the deploy flags
//	--version     Show version information
//
// # Environment
//
//	FLIGHTDEPLOY_REGISTRY, FLIGHTDEPLOY_NAMESPACE, FLIGHTDEPLOY_VERSION and
//	KUBECONFIG supply the matching flags.
//
// # Exit Codes
//
// 0 on success or when the operator declines the confirmation; 1 on any
// prerequisite, build, push, rewrite, apply or readiness failure.
package cli
