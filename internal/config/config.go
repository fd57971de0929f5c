package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"mediatorr/internal/unit"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DestDir        string `toml:"dest_dir"`
	StateDir       string `toml:"state_dir"`
	LogDir         string `toml:"log_dir"`
	TMDBCacheDir   string `toml:"tmdb_cache_dir"`
	ITunesCacheDir string `toml:"itunes_cache_dir"`
}

// Trackers lists the announce endpoints embedded in every archive descriptor.
type Trackers struct {
	Announce []string `toml:"announce"`
}

// TMDB contains configuration for The Movie Database API.
type TMDB struct {
	APIKey           string `toml:"api_key"`
	BaseURL          string `toml:"base_url"`
	Language         string `toml:"language"`
	FallbackLanguage string `toml:"fallback_language"`
	TimeoutSeconds   int    `toml:"timeout_seconds"`
}

// ITunes contains configuration for the iTunes Search API.
type ITunes struct {
	BaseURL        string `toml:"base_url"`
	Country        string `toml:"country"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Library describes one media library and its source directories.
type Library struct {
	Enabled bool     `toml:"enabled"`
	Sources []string `toml:"sources"`
}

// Scan contains scheduling knobs for a scan pass.
type Scan struct {
	ParallelJobs int `toml:"parallel_jobs"`
	MinFreeGiB   int `toml:"min_free_gib"`
}

// PresentationImages holds the banner images embedded in release notes.
type PresentationImages struct {
	Info     string `toml:"info"`
	Synopsis string `toml:"synopsis"`
	Movie    string `toml:"movie"`
	Serie    string `toml:"serie"`
	Download string `toml:"download"`
	Link     string `toml:"link"`
}

// Presentation controls release note generation.
type Presentation struct {
	Enabled bool               `toml:"enabled"`
	Images  PresentationImages `toml:"images"`
}

// Tools names the external executables invoked by the scanner.
type Tools struct {
	Mkbrr     string `toml:"mkbrr"`
	MediaInfo string `toml:"mediainfo"`
	Python    string `toml:"python"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Mediatorr.
//
// Configuration sections by subsystem:
//   - Paths: destination tree, state, logs, metadata caches
//   - Trackers: announce endpoints written into archive descriptors
//   - TMDB / ITunes: metadata providers
//   - Movies / Series / Music: libraries and their source directories
//   - Scan: parallelism and free space threshold
//   - Presentation: release note generation
//   - Tools: external executables
//   - Logging: log format and level
type Config struct {
	Paths        Paths        `toml:"paths"`
	Trackers     Trackers     `toml:"trackers"`
	TMDB         TMDB         `toml:"tmdb"`
	ITunes       ITunes       `toml:"itunes"`
	Movies       Library      `toml:"movies"`
	Series       Library      `toml:"series"`
	Music        Library      `toml:"music"`
	Scan         Scan         `toml:"scan"`
	Presentation Presentation `toml:"presentation"`
	Tools        Tools        `toml:"tools"`
	Logging      Logging      `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/mediatorr/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()
	if err := cfg.applyEnv(); err != nil {
		return nil, "", false, err
	}

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("mediatorr.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state, log, cache, and destination directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.StateDir, c.Paths.LogDir, c.Paths.TMDBCacheDir, c.Paths.ITunesCacheDir, c.Paths.DestDir}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FingerprintPath is the file holding the digest of the announce endpoints
// used for the last completed tracker sweep.
func (c *Config) FingerprintPath() string {
	return filepath.Join(c.Paths.StateDir, "trackers.fingerprint.sha256")
}

// DatabasePath is the SQLite database holding overrides and run history.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.StateDir, "mediatorr.db")
}

// LockPath is the file lock guarding against concurrent scans.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "mediatorr.lock")
}

// MetadataLookupEnabled reports whether any enabled library needs TMDB.
func (c *Config) MetadataLookupEnabled() bool {
	return c.Movies.Enabled || c.Series.Enabled
}

// AnyLibraryEnabled reports whether at least one library is enabled.
func (c *Config) AnyLibraryEnabled() bool {
	return c.Movies.Enabled || c.Series.Enabled || c.Music.Enabled
}

// LibraryConfig returns the section configuring lib.
func (c *Config) LibraryConfig(lib unit.Library) Library {
	switch lib {
	case unit.LibraryMovies:
		return c.Movies
	case unit.LibrarySeries:
		return c.Series
	case unit.LibraryMusic:
		return c.Music
	default:
		return Library{}
	}
}

// EnabledLibraries lists the enabled libraries in processing order.
func (c *Config) EnabledLibraries() []unit.Library {
	var out []unit.Library
	for _, lib := range unit.Libraries() {
		if c.LibraryConfig(lib).Enabled {
			out = append(out, lib)
		}
	}
	return out
}

// MaskedTMDBKey returns the API key with everything but the last four characters hidden.
func (c *Config) MaskedTMDBKey() string {
	key := c.TMDB.APIKey
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the configuration as TOML.
func (c *Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}
