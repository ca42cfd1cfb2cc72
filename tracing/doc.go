// Package tracing exposes OpenTelemetry spans to the evaluator runtime.  The
// global provider is installed once through Init or InitWithExporter; until
// then spans are no-ops.
package tracing
