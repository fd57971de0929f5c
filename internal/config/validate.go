package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if len(c.Trackers.Announce) == 0 {
		return errors.New("trackers.announce must list at least one announce URL (or set TRACKERS)")
	}
	for _, tracker := range c.Trackers.Announce {
		if !strings.Contains(tracker, "://") {
			return fmt.Errorf("trackers.announce: %q is not a URL", tracker)
		}
	}
	if !c.AnyLibraryEnabled() {
		return errors.New("no library enabled; set movies.enabled, series.enabled or music.enabled")
	}
	if c.MetadataLookupEnabled() && c.TMDB.APIKey == "" {
		return errors.New("tmdb.api_key is required when movies or series are enabled (or set TMDB_API_KEY)")
	}
	if err := c.validateLibraries(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DestDir == "" {
		return errors.New("paths.dest_dir must be set")
	}
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	if c.Paths.TMDBCacheDir == "" || c.Paths.ITunesCacheDir == "" {
		return errors.New("paths.tmdb_cache_dir and paths.itunes_cache_dir must be set")
	}
	return nil
}

func (c *Config) validateLibraries() error {
	for _, lib := range c.EnabledLibraries() {
		if len(c.LibraryConfig(lib).Sources) == 0 {
			return fmt.Errorf("%s.sources must list at least one directory when %s is enabled", lib, lib)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
