package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"mediatorr/internal/fileutil"
	"mediatorr/internal/logging"
	"mediatorr/internal/services"
	"mediatorr/internal/services/itunes"
	"mediatorr/internal/services/tmdb"
	"mediatorr/internal/textutil"
	"mediatorr/internal/unit"
)

const posterBaseURL = "https://image.tmdb.org/t/p/w500"

// Provider names the metadata source used for a library.
type Provider string

const (
	ProviderTMDB   Provider = "tmdb"
	ProviderITunes Provider = "itunes"
)

// ProviderFor returns the provider serving lib.
func ProviderFor(lib unit.Library) Provider {
	if lib == unit.LibraryMusic {
		return ProviderITunes
	}
	return ProviderTMDB
}

// Record is the provider-neutral view of a resolved item.
type Record struct {
	Provider      Provider
	ID            int64
	Title         string
	OriginalTitle string
	Artist        string
	Year          int
	Overview      string
	Rating        float64
	Genres        []string
	PosterURL     string
	Runtime       int
	Seasons       int
	Episodes      int
	TrackCount    int
}

// Query describes one lookup.
type Query struct {
	Library unit.Library
	// Key is the unit key; it names the TMDB cache entry and the override.
	Key    string
	Title  string
	Artist string
	Year   int
}

// TMDBClient is the subset of the TMDB client used here.
type TMDBClient interface {
	Search(ctx context.Context, kind tmdb.Kind, query string, year int, language string) (*tmdb.Response, error)
	Details(ctx context.Context, kind tmdb.Kind, id int64, language string) (*tmdb.Details, error)
}

// ITunesClient is the subset of the iTunes client used here.
type ITunesClient interface {
	Search(ctx context.Context, artist, title string) (*itunes.Track, error)
}

// Overrides supplies operator-pinned TMDB ids.
type Overrides interface {
	Override(ctx context.Context, lib unit.Library, key string) (int64, bool, error)
}

// Options configures a Service.
type Options struct {
	TMDB             TMDBClient
	ITunes           ITunesClient
	Overrides        Overrides
	TMDBCacheDir     string
	ITunesCacheDir   string
	Language         string
	FallbackLanguage string
	Logger           *slog.Logger
}

// Service performs cached lookups.
type Service struct {
	tmdb      TMDBClient
	itunes    ITunesClient
	overrides Overrides
	tmdbDir   string
	itunesDir string
	language  string
	fallback  string
	logger    *slog.Logger
}

// New builds a Service. A nil client disables the matching provider; lookups
// against it report services.ErrConfiguration.
func New(opts Options) *Service {
	language := strings.TrimSpace(opts.Language)
	if language == "" {
		language = "fr-FR"
	}
	fallback := strings.TrimSpace(opts.FallbackLanguage)
	if fallback == "" {
		fallback = "en-US"
	}
	return &Service{
		tmdb:      opts.TMDB,
		itunes:    opts.ITunes,
		overrides: opts.Overrides,
		tmdbDir:   opts.TMDBCacheDir,
		itunesDir: opts.ITunesCacheDir,
		language:  language,
		fallback:  fallback,
		logger:    logging.NewComponentLogger(opts.Logger, "metadata"),
	}
}

// CachePath returns the cache file backing q, or "" when the derived name
// would leave the cache directory.
func (s *Service) CachePath(q Query) string {
	dir, key := s.tmdbDir, textutil.CacheKey(string(tmdbKind(q.Library)), q.Key)
	if q.Library == unit.LibraryMusic {
		dir, key = s.itunesDir, textutil.CacheKey(q.Artist, q.Title)
	}
	path := filepath.Join(dir, key+".json")
	if !fileutil.Within(dir, path) || filepath.Dir(path) != filepath.Clean(dir) {
		s.logger.Warn("metadata cache key rejected",
			logging.String("key", key),
			logging.String(logging.FieldEventType, "cache_key_rejected"),
			logging.String(logging.FieldImpact, "lookup is not cached"),
		)
		return ""
	}
	return path
}

// HasCache reports whether a cache entry exists for q. It does not decode it.
func (s *Service) HasCache(q Query) bool {
	path := s.CachePath(q)
	return path != "" && fileutil.Exists(path)
}

// DeleteCache drops the cache entry for q.
func (s *Service) DeleteCache(q Query) error {
	path := s.CachePath(q)
	if path == "" {
		return nil
	}
	return fileutil.RemoveIfExists(path)
}

// Cached returns the decoded cache entry for q, or false when absent or
// corrupt. Corrupt entries are removed.
func (s *Service) Cached(q Query) (*Record, bool) {
	path := s.CachePath(q)
	if q.Library == unit.LibraryMusic {
		var track itunes.Track
		if !s.readCache(path, &track) {
			return nil, false
		}
		return fromTrack(track), true
	}
	var details tmdb.Details
	if !s.readCache(path, &details) {
		return nil, false
	}
	return fromDetails(details), true
}

// Lookup resolves q from cache or provider. A miss is reported as
// services.ErrNotFound; callers degrade any error to a negative note.
func (s *Service) Lookup(ctx context.Context, q Query) (*Record, error) {
	if record, ok := s.Cached(q); ok {
		return record, nil
	}
	if q.Library == unit.LibraryMusic {
		return s.lookupITunes(ctx, q)
	}
	return s.lookupTMDB(ctx, q)
}

func (s *Service) lookupTMDB(ctx context.Context, q Query) (*Record, error) {
	if s.tmdb == nil {
		return nil, services.Wrap(services.ErrConfiguration, "metadata", "tmdb", "tmdb client not configured", nil)
	}
	kind := tmdbKind(q.Library)

	id, pinned, err := s.override(ctx, q)
	if err != nil {
		return nil, err
	}
	if !pinned {
		id, err = s.search(ctx, kind, q)
		if err != nil {
			return nil, err
		}
	}

	details, err := s.tmdb.Details(ctx, kind, id, s.language)
	if err != nil || details == nil {
		s.logger.Debug("tmdb details fallback",
			logging.Int64("tmdb_id", id),
			logging.String("language", s.fallback),
			logging.Error(err),
		)
		details, err = s.tmdb.Details(ctx, kind, id, s.fallback)
		if err != nil {
			return nil, err
		}
		if details == nil {
			return nil, services.Wrap(services.ErrNotFound, "metadata", "tmdb details", fmt.Sprintf("id %d", id), nil)
		}
	}

	s.writeCache(s.CachePath(q), details)
	return fromDetails(*details), nil
}

func (s *Service) override(ctx context.Context, q Query) (int64, bool, error) {
	if s.overrides == nil {
		return 0, false, nil
	}
	id, ok, err := s.overrides.Override(ctx, q.Library, q.Key)
	if err != nil {
		return 0, false, fmt.Errorf("load override: %w", err)
	}
	if ok {
		s.logger.Info("using metadata override",
			logging.String(logging.FieldUnit, q.Key),
			logging.Int64("tmdb_id", id),
			logging.String(logging.FieldDecisionType, "metadata_override"),
		)
	}
	return id, ok, nil
}

func (s *Service) search(ctx context.Context, kind tmdb.Kind, q Query) (int64, error) {
	title := textutil.CleanTitle(q.Title)
	if title == "" {
		return 0, services.Wrap(services.ErrNotFound, "metadata", "tmdb search", "empty title after cleaning", nil)
	}
	var lastErr error
	for _, language := range []string{s.language, s.fallback} {
		resp, err := s.tmdb.Search(ctx, kind, title, q.Year, language)
		if err != nil {
			lastErr = err
			continue
		}
		if resp != nil && len(resp.Results) > 0 && resp.Results[0].ID > 0 {
			return resp.Results[0].ID, nil
		}
	}
	if lastErr != nil {
		return 0, lastErr
	}
	return 0, services.Wrap(services.ErrNotFound, "metadata", "tmdb search", fmt.Sprintf("no match for %q", title), nil)
}

func (s *Service) lookupITunes(ctx context.Context, q Query) (*Record, error) {
	if s.itunes == nil {
		return nil, services.Wrap(services.ErrConfiguration, "metadata", "itunes", "itunes client not configured", nil)
	}
	track, err := s.itunes.Search(ctx, q.Artist, q.Title)
	if err != nil {
		return nil, err
	}
	s.writeCache(s.CachePath(q), track)
	return fromTrack(*track), nil
}

func (s *Service) readCache(path string, out any) bool {
	if path == "" {
		return false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("cache read failed", logging.String("path", path), logging.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.logger.Warn("corrupt metadata cache removed",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "cache_corrupt"),
		)
		_ = os.Remove(path)
		return false
	}
	return true
}

func (s *Service) writeCache(path string, value any) {
	if path == "" {
		return
	}
	data, err := json.MarshalIndent(value, "", "  ")
	if err == nil {
		if err = os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
			err = fileutil.WriteFileAtomic(path, data, 0o644)
		}
	}
	if err != nil {
		s.logger.Warn("metadata cache write failed",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "cache_write_failed"),
			logging.String(logging.FieldImpact, "lookup repeated on next rebuild"),
		)
	}
}

func tmdbKind(lib unit.Library) tmdb.Kind {
	if lib == unit.LibrarySeries {
		return tmdb.KindTV
	}
	return tmdb.KindMovie
}

func fromDetails(d tmdb.Details) *Record {
	record := &Record{
		Provider:      ProviderTMDB,
		ID:            d.ID,
		Title:         d.DisplayTitle(),
		OriginalTitle: firstNonEmpty(d.OriginalTitle, d.OriginalName),
		Year:          d.Year(),
		Overview:      strings.TrimSpace(d.Overview),
		Rating:        d.VoteAverage,
		Runtime:       d.Runtime,
		Seasons:       d.NumberOfSeasons,
		Episodes:      d.NumberOfEpisodes,
	}
	for _, g := range d.Genres {
		if name := strings.TrimSpace(g.Name); name != "" {
			record.Genres = append(record.Genres, name)
		}
	}
	if d.PosterPath != "" {
		record.PosterURL = posterBaseURL + d.PosterPath
	}
	return record
}

func fromTrack(t itunes.Track) *Record {
	record := &Record{
		Provider:   ProviderITunes,
		ID:         t.ID(),
		Title:      t.DisplayTitle(),
		Artist:     t.ArtistName,
		TrackCount: t.TrackCount,
		PosterURL:  strings.Replace(t.ArtworkURL100, "100x100", "600x600", 1),
	}
	if len(t.ReleaseDate) >= 4 {
		if year, err := strconv.Atoi(t.ReleaseDate[:4]); err == nil {
			record.Year = year
		}
	}
	if genre := strings.TrimSpace(t.PrimaryGenreName); genre != "" {
		record.Genres = []string{genre}
	}
	return record
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
