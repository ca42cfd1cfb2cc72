// Package idgen wraps the UUID generator so that evaluator, intent and queue
// message identifiers can be stubbed in tests.  Callers must treat the
// returned values as opaque strings.
package idgen
