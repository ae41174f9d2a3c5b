// Package runner drives order-recovery runs for the CLI.
//
// A Runner wraps engine.Problem.Run with the parts a single call does not
// need: run IDs, structured logs, Prometheus metrics, a trace span per run
// with one event per attempt, and persistence of the report to the run
// history store. RunBatch executes independent jobs concurrently.
package runner
