// Package scan runs one complete pass over the configured libraries.
//
// A pass holds the scan lock, runs preflight, gates on the tracker
// fingerprint sweep, then discovers and processes every library's units
// under the configured parallelism. Per-unit results are folded into a
// Summary that is persisted to the run history.
package scan
