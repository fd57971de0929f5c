package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mediatorr/internal/artifacts"
	"mediatorr/internal/config"
	"mediatorr/internal/metadata"
	"mediatorr/internal/state"
	"mediatorr/internal/unit"
)

func newOverrideCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "override",
		Short: "Pin TMDB ids for units that resolve to the wrong title",
	}
	cmd.AddCommand(newOverrideSetCommand(ctx))
	cmd.AddCommand(newOverrideRemoveCommand(ctx))
	cmd.AddCommand(newOverrideListCommand(ctx))
	return cmd
}

func newOverrideSetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set <library> <key> <tmdb-id>",
		Short: "Pin the TMDB id of a unit",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(strings.TrimSpace(args[2]), 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid TMDB id %q", args[2])
			}
			return ctx.withStore(func(cfg *config.Config, store *state.Store) error {
				u, err := overrideUnit(cfg, args[0], args[1])
				if err != nil {
					return err
				}
				if err := store.SetOverride(cmd.Context(), u.Library, u.Key, id); err != nil {
					return err
				}
				if err := dropMetadata(cfg, u); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pinned %s/%s to TMDB id %d; metadata is refreshed on the next scan\n", u.Library, u.Key, id)
				return nil
			})
		},
	}
}

func newOverrideRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <library> <key>",
		Short: "Remove a pinned TMDB id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *state.Store) error {
				u, err := overrideUnit(cfg, args[0], args[1])
				if err != nil {
					return err
				}
				removed, err := store.RemoveOverride(cmd.Context(), u.Library, u.Key)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if !removed {
					fmt.Fprintf(out, "No override for %s/%s\n", u.Library, u.Key)
					return nil
				}
				if err := dropMetadata(cfg, u); err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed override for %s/%s\n", u.Library, u.Key)
				return nil
			})
		},
	}
}

func newOverrideListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list [library]",
		Short: "List pinned TMDB ids",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var lib unit.Library
			if len(args) == 1 {
				parsed, err := unit.ParseLibrary(args[0])
				if err != nil {
					return err
				}
				lib = parsed
			}
			return ctx.withStore(func(_ *config.Config, store *state.Store) error {
				overrides, err := store.ListOverrides(cmd.Context(), lib)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(overrides) == 0 {
					fmt.Fprintln(out, "No overrides")
					return nil
				}
				rows := make([][]string, 0, len(overrides))
				for _, o := range overrides {
					rows = append(rows, []string{
						o.Library.Label(),
						o.Key,
						strconv.FormatInt(o.ID, 10),
						o.CreatedAt.Local().Format("2006-01-02 15:04"),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Library", "Unit", "TMDB ID", "Created"},
					rows,
					2,
				))
				return nil
			})
		},
	}
}

func overrideUnit(cfg *config.Config, library, key string) (unit.Unit, error) {
	u, err := resolveUnit(cfg, library, key)
	if err != nil {
		return unit.Unit{}, err
	}
	if metadata.ProviderFor(u.Library) != metadata.ProviderTMDB {
		return unit.Unit{}, errors.New("overrides apply to movies and series only")
	}
	return u, nil
}

// dropMetadata deletes the identifier note, release note and cache entry of u
// so the next scan resolves it again.
func dropMetadata(cfg *config.Config, u unit.Unit) error {
	if err := artifacts.NewStore(cfg.Presentation.Enabled, nil).DeleteMetadata(u); err != nil {
		return fmt.Errorf("delete metadata notes: %w", err)
	}
	if err := metadataCache(cfg).DeleteCache(metadata.Query{Library: u.Library, Key: u.Key}); err != nil {
		return fmt.Errorf("delete metadata cache: %w", err)
	}
	return nil
}
