package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"mediatorr/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Movies are enabled with one source directory; other libraries are off.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Trackers.Announce = []string{"https://tracker.example/announce"}
	cfgVal.TMDB.APIKey = "test"
	cfgVal.Paths.DestDir = filepath.Join(base, "torrent")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.TMDBCacheDir = filepath.Join(base, "cache", "tmdb")
	cfgVal.Paths.ITunesCacheDir = filepath.Join(base, "cache", "itunes")
	cfgVal.Movies = config.Library{Enabled: true, Sources: []string{filepath.Join(base, "films")}}
	cfgVal.Series = config.Library{Sources: []string{filepath.Join(base, "series")}}
	cfgVal.Music = config.Library{Sources: []string{filepath.Join(base, "musiques")}}
	cfgVal.Scan.MinFreeGiB = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithTMDBKey sets the TMDB API key on the test config.
func WithTMDBKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.APIKey = key
	}
}

// WithLibraries enables exactly the named libraries ("movies", "series",
// "music").
func WithLibraries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Movies.Enabled = false
		b.cfg.Series.Enabled = false
		b.cfg.Music.Enabled = false
		for _, name := range names {
			switch name {
			case "movies":
				b.cfg.Movies.Enabled = true
			case "series":
				b.cfg.Series.Enabled = true
			case "music":
				b.cfg.Music.Enabled = true
			default:
				b.t.Fatalf("unknown library %q", name)
			}
		}
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, the default mediatorr external
// binaries are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"mkbrr", "mediainfo", "python3"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DestDir)
}
