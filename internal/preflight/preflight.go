package preflight

import (
	"context"

	"mediatorr/internal/config"
	"mediatorr/internal/services/command"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	// Warn marks a failed check that does not block a scan.
	Warn   bool
	Detail string
}

// Blocking reports whether the result must stop a scan.
func (r Result) Blocking() bool {
	return !r.Passed && !r.Warn
}

// RunAll executes every check applicable to cfg.
func RunAll(ctx context.Context, cfg *config.Config, exec command.Executor) []Result {
	if cfg == nil {
		return nil
	}
	var results []Result
	results = append(results, CheckDirectoryAccess("Destination directory", cfg.Paths.DestDir))
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	results = append(results, CheckFreeSpace("Destination free space", cfg.Paths.DestDir, cfg.Scan.MinFreeGiB))
	results = append(results, CheckTools(cfg)...)
	results = append(results, CheckGuessit(ctx, exec, cfg.Tools.Python))
	return results
}

// Blocking returns the results that must stop a scan.
func Blocking(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Blocking() {
			out = append(out, r)
		}
	}
	return out
}
