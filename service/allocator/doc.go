// Package allocator stands in for the cluster resource manager.  It creates
// evaluators bound to the driver, enforces the configured capacity and
// announces every allocation to the driver before returning the evaluator.
package allocator
