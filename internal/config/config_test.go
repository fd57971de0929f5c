package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"mediatorr/internal/config"
)

var envKeys = []string{
	"TRACKERS", "TMDB_API_KEY", "ENABLE_FILMS", "ENABLE_SERIES", "ENABLE_MUSIQUES",
	"ENABLE_PREZ", "FILMS_DIRS", "SERIES_DIRS", "MUSIQUES_DIRS", "PARALLEL_JOBS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unsetenv %s: %v", key, err)
		}
	}
}

func TestLoadFromEnvironmentExpandsPaths(t *testing.T) {
	clearEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("TRACKERS", "https://a.example/announce, https://b.example/announce,https://a.example/announce")
	t.Setenv("TMDB_API_KEY", "env-key")
	t.Setenv("ENABLE_FILMS", "true")
	t.Setenv("ENABLE_SERIES", "1")
	t.Setenv("FILMS_DIRS", "/mnt/films/, /mnt/films2")
	t.Setenv("PARALLEL_JOBS", "4")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "mediatorr")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Paths.DestDir != filepath.Join(tempHome, "mediatorr", "torrent") {
		t.Fatalf("unexpected dest dir: %q", cfg.Paths.DestDir)
	}
	if got := strings.Join(cfg.Trackers.Announce, ","); got != "https://a.example/announce,https://b.example/announce" {
		t.Fatalf("unexpected trackers: %q", got)
	}
	if cfg.TMDB.APIKey != "env-key" {
		t.Fatalf("expected TMDB key from env, got %q", cfg.TMDB.APIKey)
	}
	if !cfg.Movies.Enabled || !cfg.Series.Enabled || cfg.Music.Enabled {
		t.Fatalf("unexpected library toggles: movies=%v series=%v music=%v", cfg.Movies.Enabled, cfg.Series.Enabled, cfg.Music.Enabled)
	}
	if got := strings.Join(cfg.Movies.Sources, ","); got != "/mnt/films,/mnt/films2" {
		t.Fatalf("unexpected movie sources: %q", got)
	}
	if cfg.Scan.ParallelJobs != 4 {
		t.Fatalf("expected 4 parallel jobs, got %d", cfg.Scan.ParallelJobs)
	}
	if !cfg.Presentation.Enabled {
		t.Fatal("expected presentation enabled by default")
	}
	if cfg.TMDB.Language != "fr-FR" || cfg.TMDB.FallbackLanguage != "en-US" {
		t.Fatalf("unexpected TMDB languages: %q / %q", cfg.TMDB.Language, cfg.TMDB.FallbackLanguage)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir, cfg.Paths.TMDBCacheDir, cfg.Paths.ITunesCacheDir, cfg.Paths.DestDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
	if cfg.FingerprintPath() != filepath.Join(wantState, "trackers.fingerprint.sha256") {
		t.Fatalf("unexpected fingerprint path: %q", cfg.FingerprintPath())
	}
}

func TestLoadCustomPathOverridesEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TMDB_API_KEY", "env-key")
	t.Setenv("ENABLE_PREZ", "true")
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "mediatorr.toml")

	type payload struct {
		Trackers struct {
			Announce []string `toml:"announce"`
		} `toml:"trackers"`
		TMDB struct {
			APIKey string `toml:"api_key"`
		} `toml:"tmdb"`
		Music struct {
			Enabled bool     `toml:"enabled"`
			Sources []string `toml:"sources"`
		} `toml:"music"`
		Presentation struct {
			Enabled bool `toml:"enabled"`
		} `toml:"presentation"`
		Scan struct {
			ParallelJobs int `toml:"parallel_jobs"`
		} `toml:"scan"`
	}
	custom := payload{}
	custom.Trackers.Announce = []string{"https://t.example/announce"}
	custom.TMDB.APIKey = "file-key"
	custom.Music.Enabled = true
	custom.Music.Sources = []string{filepath.Join(tempDir, "music")}
	custom.Presentation.Enabled = false
	custom.Scan.ParallelJobs = 0

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom config to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.TMDB.APIKey != "file-key" {
		t.Fatalf("expected file key to win, got %q", cfg.TMDB.APIKey)
	}
	if cfg.Presentation.Enabled {
		t.Fatal("expected presentation disabled by file")
	}
	if cfg.Scan.ParallelJobs != 1 {
		t.Fatalf("expected parallel jobs clamped to 1, got %d", cfg.Scan.ParallelJobs)
	}
	if !cfg.Music.Enabled || len(cfg.Music.Sources) != 1 {
		t.Fatalf("unexpected music library: %+v", cfg.Music)
	}
}

func TestValidateRejectsIncompleteConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{
			name:   "no trackers",
			mutate: func(c *config.Config) { c.Trackers.Announce = nil },
			want:   "trackers.announce",
		},
		{
			name:   "tracker without scheme",
			mutate: func(c *config.Config) { c.Trackers.Announce = []string{"tracker.example"} },
			want:   "not a URL",
		},
		{
			name: "no library",
			mutate: func(c *config.Config) {
				c.Movies.Enabled = false
			},
			want: "no library enabled",
		},
		{
			name:   "movies without tmdb key",
			mutate: func(c *config.Config) { c.TMDB.APIKey = "" },
			want:   "tmdb.api_key",
		},
		{
			name: "music does not need tmdb",
			mutate: func(c *config.Config) {
				c.Movies.Enabled = false
				c.Music.Enabled = true
				c.TMDB.APIKey = ""
			},
		},
		{
			name:   "enabled library without sources",
			mutate: func(c *config.Config) { c.Movies.Sources = nil },
			want:   "movies.sources",
		},
		{
			name:   "bad log format",
			mutate: func(c *config.Config) { c.Logging.Format = "xml" },
			want:   "logging.format",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Trackers.Announce = []string{"https://t.example/announce"}
			cfg.TMDB.APIKey = "key"
			cfg.Movies.Enabled = true
			tc.mutate(&cfg)

			err := cfg.Validate()
			if tc.want == "" {
				if err != nil {
					t.Fatalf("expected valid config, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadRejectsInvalidParallelJobsEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PARALLEL_JOBS", "many")

	if _, _, _, err := config.Load(""); err == nil || !strings.Contains(err.Error(), "PARALLEL_JOBS") {
		t.Fatalf("expected PARALLEL_JOBS error, got %v", err)
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TRACKERS", "https://t.example/announce")
	t.Setenv("TMDB_API_KEY", "key")

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if !cfg.Movies.Enabled {
		t.Fatal("expected sample to enable movies")
	}
	if cfg.TMDB.APIKey != "key" {
		t.Fatalf("expected env key to survive sample, got %q", cfg.TMDB.APIKey)
	}
}

func TestMaskedTMDBKey(t *testing.T) {
	cfg := config.Default()
	cfg.TMDB.APIKey = "abcdef123456"
	if got := cfg.MaskedTMDBKey(); got != "********3456" {
		t.Fatalf("unexpected mask: %q", got)
	}
	cfg.TMDB.APIKey = "abc"
	if got := cfg.MaskedTMDBKey(); got != "***" {
		t.Fatalf("unexpected short mask: %q", got)
	}
}
