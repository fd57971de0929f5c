package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mediatorr/internal/config"
	"mediatorr/internal/metadata"
	"mediatorr/internal/scan"
	"mediatorr/internal/state"
	"mediatorr/internal/unit"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var jobs int
	var libraries []string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run one incremental pass over the enabled libraries",
		RunE: func(cmd *cobra.Command, args []string) error {
			libs, err := parseLibraries(libraries)
			if err != nil {
				return err
			}
			return ctx.withStore(func(cfg *config.Config, store *state.Store) error {
				summary, err := runScan(cmd, ctx, cfg, store, scan.Options{Jobs: jobs, Libraries: libs})
				if summary != nil {
					if eerr := emit(cmd, asJSON, summary, summaryRenderer(summary)); eerr != nil {
						return eerr
					}
				}
				return err
			})
		},
	}

	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "Units processed in parallel (overrides scan.parallel_jobs)")
	cmd.Flags().StringArrayVarP(&libraries, "library", "l", nil, "Restrict the pass to a library (movies, series, music); repeatable")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")
	return cmd
}

func runScan(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, store *state.Store, opts scan.Options) (*scan.Summary, error) {
	logger, err := ctx.ensureLogger()
	if err != nil {
		return nil, err
	}
	deps, err := scan.NewDependencies(cfg, store, logger)
	if err != nil {
		return nil, err
	}
	runner, err := scan.NewRunner(cfg, store, deps, logger)
	if err != nil {
		return nil, err
	}
	return runner.Run(cmd.Context(), opts)
}

func summaryRenderer(s *scan.Summary) func(io.Writer, bool) {
	return func(out io.Writer, colorize bool) {
		printSummary(out, s, colorize)
	}
}

func printSummary(out io.Writer, s *scan.Summary, colorize bool) {
	printSection(out, "Scan Summary", colorize)

	tracker := "announce list unchanged"
	kind := statusOK
	if s.Tracker.Changed {
		tracker = fmt.Sprintf("%d scanned, %d updated, %d failed", s.Tracker.Scanned, s.Tracker.Rewritten, s.Tracker.Failed)
		if s.Tracker.Failed > 0 {
			kind = statusWarn
		}
	}
	fmt.Fprintln(out, renderStatusLine("Trackers", kind, tracker, colorize))

	for _, provider := range []metadata.Provider{metadata.ProviderTMDB, metadata.ProviderITunes} {
		counts := s.Lookup(provider)
		if counts.Found+counts.Missing == 0 {
			continue
		}
		kind := statusOK
		if counts.Missing > 0 {
			kind = statusWarn
		}
		fmt.Fprintln(out, renderStatusLine(providerLabel(provider), kind,
			fmt.Sprintf("%d found, %d missing", counts.Found, counts.Missing), colorize))
	}

	kind = statusOK
	if s.Totals.Failed > 0 {
		kind = statusError
	}
	fmt.Fprintln(out, renderStatusLine("Units", kind, fmt.Sprintf("%d processed, %d reprocessed, %d skipped, %d deferred, %d failed",
		s.Totals.Processed, s.Totals.Reprocessed, s.Totals.Skipped, s.Totals.Deferred, s.Totals.Failed), colorize))
	fmt.Fprintln(out, renderStatusLine("Elapsed", statusInfo, formatElapsed(time.Duration(s.ElapsedMs)*time.Millisecond), colorize))

	var rows [][]string
	for _, lib := range unit.Libraries() {
		c := s.Libraries[lib]
		if c == nil {
			continue
		}
		rows = append(rows, []string{
			lib.Label(),
			strconv.Itoa(c.Units),
			strconv.Itoa(c.Processed),
			strconv.Itoa(c.Reprocessed),
			strconv.Itoa(c.Skipped),
			strconv.Itoa(c.Deferred),
			strconv.Itoa(c.Failed),
		})
	}
	if len(rows) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, renderTable(
			[]string{"Library", "Units", "Processed", "Reprocessed", "Skipped", "Deferred", "Failed"},
			rows,
			1, 2, 3, 4, 5, 6,
		))
	}

	if len(s.Failures) > 0 {
		fmt.Fprintln(out)
		printSection(out, "Failures", colorize)
		failures := make([][]string, 0, len(s.Failures))
		for _, f := range s.Failures {
			failures = append(failures, []string{f.Library.Label(), f.Key, f.Error})
		}
		fmt.Fprintln(out, renderTable([]string{"Library", "Unit", "Error"}, failures))
	}
}

func providerLabel(p metadata.Provider) string {
	switch p {
	case metadata.ProviderTMDB:
		return "TMDB"
	case metadata.ProviderITunes:
		return "iTunes"
	default:
		return string(p)
	}
}

// formatElapsed renders d as "1h 2m 3s", "2m 5s", "4.2s" or "850ms".
func formatElapsed(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	d = d.Round(time.Second)
	hours := int(d / time.Hour)
	minutes := int(d % time.Hour / time.Minute)
	seconds := int(d % time.Minute / time.Second)
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
