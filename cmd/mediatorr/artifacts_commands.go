package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mediatorr/internal/artifacts"
	"mediatorr/internal/config"
	"mediatorr/internal/metadata"
	"mediatorr/internal/scan"
	"mediatorr/internal/state"
	"mediatorr/internal/unit"
)

func newArtifactsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artifacts",
		Short: "Inspect and remove generated artifacts",
	}
	cmd.AddCommand(newArtifactsListCommand(ctx))
	cmd.AddCommand(newArtifactsDeleteCommand(ctx))
	cmd.AddCommand(newArtifactsRegenerateCommand(ctx))
	return cmd
}

func newArtifactsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list <library>",
		Short: "List units with generated artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			lib, err := unit.ParseLibrary(args[0])
			if err != nil {
				return err
			}
			entries, err := artifacts.List(cfg.Paths.DestDir, lib)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintf(out, "No artifacts for %s\n", lib.Label())
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					e.Key,
					yesNo(e.Has(unit.ArtifactTorrent)),
					yesNo(e.Has(unit.ArtifactTechnicalNote)),
					yesNo(e.Has(unit.ArtifactIdentifierNote)),
					yesNo(e.Has(unit.ArtifactReleaseNote)),
					yesNo(e.Has(unit.ArtifactLedger)),
				})
			}
			fmt.Fprintln(out, renderTable([]string{"Unit", "Torrent", "NFO", "ID", "Prez", "Ledger"}, rows))
			return nil
		},
	}
}

func newArtifactsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <library> <key>",
		Short: "Delete every artifact of a unit, ledger included",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			u, err := resolveUnit(cfg, args[0], args[1])
			if err != nil {
				return err
			}
			removed, err := deleteUnit(cfg, u)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d artifact(s) for %s/%s\n", removed, u.Library, u.Key)
			return nil
		},
	}
}

func newArtifactsRegenerateCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "regenerate <library> <key>",
		Short: "Delete a unit's artifacts and rebuild them with a scan of its library",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *state.Store) error {
				u, err := resolveUnit(cfg, args[0], args[1])
				if err != nil {
					return err
				}
				removed, err := deleteUnit(cfg, u)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if !asJSON {
					fmt.Fprintf(out, "Removed %d artifact(s) for %s/%s, rescanning %s\n", removed, u.Library, u.Key, u.Library.Label())
				}
				summary, err := runScan(cmd, ctx, cfg, store, scan.Options{Libraries: []unit.Library{u.Library}})
				if summary != nil {
					if eerr := emit(cmd, asJSON, summary, summaryRenderer(summary)); eerr != nil {
						return eerr
					}
				}
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the scan summary as JSON")
	return cmd
}

func resolveUnit(cfg *config.Config, library, key string) (unit.Unit, error) {
	lib, err := unit.ParseLibrary(library)
	if err != nil {
		return unit.Unit{}, err
	}
	key = strings.TrimSpace(key)
	if err := artifacts.ValidateKey(key); err != nil {
		return unit.Unit{}, err
	}
	return unit.New(lib, 0, cfg.Paths.DestDir, "", nil, key), nil
}

// deleteUnit removes every artifact of u and, for TMDB libraries, its
// metadata cache entry. Music cache entries are keyed by artist and title
// and are left alone.
func deleteUnit(cfg *config.Config, u unit.Unit) (int, error) {
	removed, err := artifacts.NewStore(cfg.Presentation.Enabled, nil).Delete(u)
	if err != nil {
		return removed, err
	}
	if metadata.ProviderFor(u.Library) == metadata.ProviderTMDB {
		if err := metadataCache(cfg).DeleteCache(metadata.Query{Library: u.Library, Key: u.Key}); err != nil {
			return removed, fmt.Errorf("delete metadata cache: %w", err)
		}
	}
	return removed, nil
}

// metadataCache is a lookup-less metadata service used only for its cache
// paths.
func metadataCache(cfg *config.Config) *metadata.Service {
	return metadata.New(metadata.Options{
		TMDBCacheDir:   cfg.Paths.TMDBCacheDir,
		ITunesCacheDir: cfg.Paths.ITunesCacheDir,
	})
}
