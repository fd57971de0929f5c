package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// applyEnv layers the container environment variables over the defaults.
// The config file is decoded afterwards so file values win.
func (c *Config) applyEnv() error {
	if value, ok := os.LookupEnv("TRACKERS"); ok {
		c.Trackers.Announce = splitList(value)
	}
	if value, ok := os.LookupEnv("TMDB_API_KEY"); ok {
		c.TMDB.APIKey = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv("ENABLE_FILMS"); ok {
		c.Movies.Enabled = parseBool(value)
	}
	if value, ok := os.LookupEnv("ENABLE_SERIES"); ok {
		c.Series.Enabled = parseBool(value)
	}
	if value, ok := os.LookupEnv("ENABLE_MUSIQUES"); ok {
		c.Music.Enabled = parseBool(value)
	}
	if value, ok := os.LookupEnv("ENABLE_PREZ"); ok {
		c.Presentation.Enabled = parseBool(value)
	}
	if value := os.Getenv("FILMS_DIRS"); value != "" {
		c.Movies.Sources = splitList(value)
	}
	if value := os.Getenv("SERIES_DIRS"); value != "" {
		c.Series.Sources = splitList(value)
	}
	if value := os.Getenv("MUSIQUES_DIRS"); value != "" {
		c.Music.Sources = splitList(value)
	}
	if value := strings.TrimSpace(os.Getenv("PARALLEL_JOBS")); value != "" {
		jobs, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("PARALLEL_JOBS: %q is not a number", value)
		}
		c.Scan.ParallelJobs = jobs
	}
	return nil
}

func (c *Config) normalize() error {
	var err error
	pathFields := []*string{
		&c.Paths.DestDir,
		&c.Paths.StateDir,
		&c.Paths.LogDir,
		&c.Paths.TMDBCacheDir,
		&c.Paths.ITunesCacheDir,
	}
	for _, field := range pathFields {
		if *field, err = expandPath(strings.TrimSpace(*field)); err != nil {
			return err
		}
	}

	for _, lib := range []*Library{&c.Movies, &c.Series, &c.Music} {
		if lib.Sources, err = normalizeSources(lib.Sources); err != nil {
			return err
		}
	}

	c.Trackers.Announce = dedupe(c.Trackers.Announce)

	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	c.TMDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.BaseURL), "/")
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	if strings.TrimSpace(c.TMDB.Language) == "" {
		c.TMDB.Language = defaultTMDBLanguage
	}
	if strings.TrimSpace(c.TMDB.FallbackLanguage) == "" {
		c.TMDB.FallbackLanguage = defaultTMDBFallback
	}
	if c.TMDB.TimeoutSeconds <= 0 {
		c.TMDB.TimeoutSeconds = defaultLookupTimeout
	}

	c.ITunes.BaseURL = strings.TrimRight(strings.TrimSpace(c.ITunes.BaseURL), "/")
	if c.ITunes.BaseURL == "" {
		c.ITunes.BaseURL = defaultITunesBaseURL
	}
	c.ITunes.Country = strings.ToUpper(strings.TrimSpace(c.ITunes.Country))
	if c.ITunes.TimeoutSeconds <= 0 {
		c.ITunes.TimeoutSeconds = defaultLookupTimeout
	}

	if c.Scan.ParallelJobs < 1 {
		c.Scan.ParallelJobs = 1
	}
	if c.Scan.MinFreeGiB < 0 {
		c.Scan.MinFreeGiB = 0
	}

	if strings.TrimSpace(c.Tools.Mkbrr) == "" {
		c.Tools.Mkbrr = defaultMkbrrBinary
	}
	if strings.TrimSpace(c.Tools.MediaInfo) == "" {
		c.Tools.MediaInfo = defaultMediaInfoBinary
	}
	if strings.TrimSpace(c.Tools.Python) == "" {
		c.Tools.Python = defaultPythonBinary
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	return nil
}

func normalizeSources(sources []string) ([]string, error) {
	out := make([]string, 0, len(sources))
	seen := make(map[string]struct{}, len(sources))
	for _, source := range sources {
		source = strings.TrimSpace(source)
		if source == "" {
			continue
		}
		if len(source) > 1 {
			source = strings.TrimRight(source, "/")
		}
		expanded, err := expandPath(source)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[expanded]; ok {
			continue
		}
		seen[expanded] = struct{}{}
		out = append(out, expanded)
	}
	return out, nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true":
		return true
	default:
		return false
	}
}
