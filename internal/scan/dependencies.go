package scan

import (
	"log/slog"
	"time"

	"mediatorr/internal/config"
	"mediatorr/internal/metadata"
	"mediatorr/internal/pipeline"
	"mediatorr/internal/services/command"
	"mediatorr/internal/services/guessit"
	"mediatorr/internal/services/itunes"
	"mediatorr/internal/services/mediainfo"
	"mediatorr/internal/services/mkbrr"
	"mediatorr/internal/services/tmdb"
	"mediatorr/internal/trackers"
)

// Archiver builds, inspects and rewrites archive descriptors.
type Archiver interface {
	pipeline.Archiver
	trackers.Modifier
}

// Dependencies are the external collaborators of a pass.
type Dependencies struct {
	Archiver Archiver
	Probe    pipeline.Probe
	Searcher pipeline.Searcher
	Guesser  pipeline.TitleGuesser
	// Executor runs preflight probes; nil uses the OS.
	Executor command.Executor
}

// NewDependencies wires the real tools and metadata providers from cfg.
// overrides may be nil.
func NewDependencies(cfg *config.Config, overrides metadata.Overrides, logger *slog.Logger) (Dependencies, error) {
	archiver, err := mkbrr.New(cfg.Tools.Mkbrr)
	if err != nil {
		return Dependencies{}, err
	}
	probe, err := mediainfo.New(cfg.Tools.MediaInfo)
	if err != nil {
		return Dependencies{}, err
	}

	opts := metadata.Options{
		Overrides:        overrides,
		TMDBCacheDir:     cfg.Paths.TMDBCacheDir,
		ITunesCacheDir:   cfg.Paths.ITunesCacheDir,
		Language:         cfg.TMDB.Language,
		FallbackLanguage: cfg.TMDB.FallbackLanguage,
		Logger:           logger,
	}
	if cfg.MetadataLookupEnabled() && cfg.TMDB.APIKey != "" {
		client, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, seconds(cfg.TMDB.TimeoutSeconds))
		if err != nil {
			return Dependencies{}, err
		}
		opts.TMDB = client
	}
	if cfg.Music.Enabled {
		opts.ITunes = itunes.New(cfg.ITunes.BaseURL, cfg.ITunes.Country, seconds(cfg.ITunes.TimeoutSeconds))
	}

	return Dependencies{
		Archiver: archiver,
		Probe:    probe,
		Searcher: metadata.New(opts),
		Guesser:  guessit.New(cfg.Tools.Python, logger),
		Executor: command.OSExecutor{},
	}, nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
