// Package model contains the data types shared by the evaluator state
// machine, the driver and the allocator: evaluator descriptors, context and
// task nodes, submission configurations and the intents queued for the
// driver.
//
// Nodes reference each other by identifier only.  Resolving an identifier to
// a node is the job of the driver's registries, so no type in this package
// owns another.
package model
