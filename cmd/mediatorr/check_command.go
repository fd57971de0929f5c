package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mediatorr/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify tools, directories and free space before scanning",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg, nil)

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			printSection(out, "Preflight", colorize)
			for _, res := range results {
				fmt.Fprintln(out, renderStatusLine(res.Name, preflightKind(res), res.Detail, colorize))
			}

			if blocking := preflight.Blocking(results); len(blocking) > 0 {
				return fmt.Errorf("%d preflight check(s) failed", len(blocking))
			}
			return nil
		},
	}
}

func preflightKind(res preflight.Result) statusKind {
	switch {
	case res.Passed:
		return statusOK
	case res.Warn:
		return statusWarn
	default:
		return statusError
	}
}
