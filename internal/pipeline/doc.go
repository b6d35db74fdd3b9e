// Package pipeline provides a framework for executing scan steps in sequence.
//
// A scan session moves through four stages: resolving the inputs, running
// the detectors over every document, summarizing the findings into a
// report, and persisting the report. Each stage is a Step that receives the
// shared Session and can modify it.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context for long-running scans
//
// Documents themselves are processed concurrently by a BatchProcessor with
// a concurrency limit enforced by errgroup.
package pipeline
