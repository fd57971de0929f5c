package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mediatorr/internal/config"
	"mediatorr/internal/scan"
	"mediatorr/internal/state"
)

type historyEntry struct {
	ID         string        `json:"id"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
	Status     string        `json:"status"`
	Summary    *scan.Summary `json:"summary,omitempty"`
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent scans",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *state.Store) error {
				runs, err := store.RecentRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				entries := make([]historyEntry, 0, len(runs))
				for _, run := range runs {
					entries = append(entries, toHistoryEntry(run))
				}
				return emit(cmd, asJSON, entries, func(out io.Writer, _ bool) {
					if len(entries) == 0 {
						fmt.Fprintln(out, "No scans recorded")
						return
					}
					fmt.Fprintln(out, renderTable(
						[]string{"Started", "Status", "Processed", "Reprocessed", "Skipped", "Failed", "Elapsed"},
						historyRows(entries),
						2, 3, 4, 5, 6,
					))
				})
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of scans to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the history as JSON")
	return cmd
}

func toHistoryEntry(run state.Run) historyEntry {
	entry := historyEntry{ID: run.ID, StartedAt: run.StartedAt, Status: run.Status}
	if !run.FinishedAt.IsZero() {
		finished := run.FinishedAt
		entry.FinishedAt = &finished
	}
	if len(run.Summary) > 0 {
		var summary scan.Summary
		if err := json.Unmarshal(run.Summary, &summary); err == nil {
			entry.Summary = &summary
		}
	}
	return entry
}

func historyRows(entries []historyEntry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		row := []string{e.StartedAt.Local().Format("2006-01-02 15:04:05"), e.Status, "-", "-", "-", "-", "-"}
		if s := e.Summary; s != nil {
			row[2] = strconv.Itoa(s.Totals.Processed)
			row[3] = strconv.Itoa(s.Totals.Reprocessed)
			row[4] = strconv.Itoa(s.Totals.Skipped)
			row[5] = strconv.Itoa(s.Totals.Failed)
			row[6] = formatElapsed(time.Duration(s.ElapsedMs) * time.Millisecond)
		}
		rows = append(rows, row)
	}
	return rows
}
