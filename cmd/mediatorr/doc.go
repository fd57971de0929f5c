// Package main hosts the Mediatorr CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, wires the scan runner
// to the real external tools and metadata providers, and renders summaries,
// history and override tables for the terminal. Scheduling, change
// detection and artifact rules live in the internal packages; commands here
// only translate flags into calls and results into output.
package main
