// Package discovery walks the source directories of each library and turns
// raw entries into units.
package discovery

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"mediatorr/internal/logging"
	"mediatorr/internal/unit"
)

var (
	videoExtensions   = []string{".mkv", ".mp4", ".avi", ".mov", ".flv", ".wmv", ".m4v"}
	audioExtensions   = []string{".mp3", ".flac", ".aac", ".wav"}
	partialExtensions = []string{".part", ".tmp", ".crdownload"}
)

// IsVideo reports whether path has a video extension.
func IsVideo(path string) bool { return hasExtension(path, videoExtensions) }

// IsAudio reports whether path has an audio extension.
func IsAudio(path string) bool { return hasExtension(path, audioExtensions) }

func hasExtension(path string, exts []string) bool {
	return slices.Contains(exts, strings.ToLower(filepath.Ext(path)))
}

// Walker enumerates units below the destination root.
type Walker struct {
	destRoot string
	logger   *slog.Logger
}

// New builds a Walker whose units are rooted at destRoot.
func New(destRoot string, logger *slog.Logger) *Walker {
	return &Walker{destRoot: destRoot, logger: logging.NewComponentLogger(logger, "discovery")}
}

// Discover lists the units of lib found under sources. Missing sources are
// logged and skipped. Units sharing a key with an earlier unit are dropped so
// no two units write the same output directory.
func (w *Walker) Discover(ctx context.Context, lib unit.Library, sources []string) ([]unit.Unit, error) {
	logger := w.logger.With(logging.String(logging.FieldLibrary, string(lib)))
	var units []unit.Unit
	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := os.Stat(source)
		if err != nil || !info.IsDir() {
			logging.WarnWithContext(logger, "source directory not found", "source_missing",
				logging.String("source", source),
				logging.String(logging.FieldErrorHint, "check the library sources in the config"),
				logging.String(logging.FieldImpact, "source skipped"),
			)
			continue
		}
		var found []unit.Unit
		switch lib {
		case unit.LibraryMovies:
			found, err = w.movies(source, sources)
		case unit.LibrarySeries:
			found, err = w.series(source)
		case unit.LibraryMusic:
			found, err = w.music(source)
		default:
			return nil, errors.New("unknown library " + string(lib))
		}
		if err != nil {
			return nil, err
		}
		units = append(units, found...)
	}
	units = w.dedupe(logger, units)
	logger.Info("discovery complete", logging.Int("units", len(units)), logging.Int("sources", len(sources)))
	return units, nil
}

func (w *Walker) dedupe(logger *slog.Logger, units []unit.Unit) []unit.Unit {
	seen := make(map[string]string, len(units))
	out := units[:0]
	for _, u := range units {
		if prev, ok := seen[u.Key]; ok {
			if prev != u.Entry {
				logging.WarnWithContext(logger, "unit key collision, entry ignored", "unit_key_collision",
					logging.String(logging.FieldUnit, u.Key),
					logging.String("entry", u.Entry),
					logging.String("kept", prev),
					logging.String(logging.FieldErrorHint, "rename one of the entries"),
					logging.String(logging.FieldImpact, "entry not processed"),
				)
			}
			continue
		}
		seen[u.Key] = u.Entry
		out = append(out, u)
	}
	return out
}

// movies yields one file unit per video found recursively. A file living in
// a sub-folder of a source root carries that folder's first .nfo.
func (w *Walker) movies(source string, roots []string) ([]unit.Unit, error) {
	files, err := collect(source, IsVideo)
	if err != nil {
		return nil, err
	}
	units := make([]unit.Unit, 0, len(files))
	for _, file := range files {
		u := unit.New(unit.LibraryMovies, unit.DomainVideoFile, w.destRoot, file, []string{file}, unit.FileKey(file))
		if dir := filepath.Dir(file); !isRoot(dir, roots) {
			u.SourceDescriptor = FindDescriptor(dir)
		}
		units = append(units, u)
	}
	return units, nil
}

// series yields a file unit per top-level video and a folder unit per
// top-level directory holding videos.
func (w *Walker) series(source string) ([]unit.Unit, error) {
	entries, err := os.ReadDir(source)
	if err != nil {
		return nil, err
	}
	var units []unit.Unit
	for _, entry := range entries {
		full := filepath.Join(source, entry.Name())
		switch {
		case entry.Type().IsRegular() && IsVideo(entry.Name()):
			units = append(units, unit.New(unit.LibrarySeries, unit.DomainVideoFile, w.destRoot, full, []string{full}, unit.FileKey(full)))
		case entry.IsDir():
			files, err := collect(full, IsVideo)
			if err != nil {
				return nil, err
			}
			if len(files) == 0 {
				continue
			}
			u := unit.New(unit.LibrarySeries, unit.DomainVideoFolder, w.destRoot, full, files, unit.FolderKey(full, files, true))
			u.SourceDescriptor = FindDescriptor(full)
			units = append(units, u)
		}
	}
	return units, nil
}

// music yields an entry unit per top-level audio file or directory. A
// directory still receiving partial downloads yields a pending unit.
func (w *Walker) music(source string) ([]unit.Unit, error) {
	entries, err := os.ReadDir(source)
	if err != nil {
		return nil, err
	}
	var units []unit.Unit
	for _, entry := range entries {
		full := filepath.Join(source, entry.Name())
		switch {
		case entry.Type().IsRegular() && IsAudio(entry.Name()):
			units = append(units, unit.New(unit.LibraryMusic, unit.DomainAudioEntry, w.destRoot, full, []string{full}, unit.FileKey(full)))
		case entry.IsDir():
			key := unit.FolderKey(full, nil, false)
			partial, err := collect(full, func(p string) bool { return hasExtension(p, partialExtensions) })
			if err != nil {
				return nil, err
			}
			if len(partial) > 0 {
				u := unit.New(unit.LibraryMusic, unit.DomainAudioEntry, w.destRoot, full, nil, key)
				u.Pending = true
				units = append(units, u)
				continue
			}
			files, err := collect(full, IsAudio)
			if err != nil {
				return nil, err
			}
			if len(files) == 0 {
				continue
			}
			units = append(units, unit.New(unit.LibraryMusic, unit.DomainAudioEntry, w.destRoot, full, files, key))
		}
	}
	return units, nil
}

// collect returns the sorted regular files under root accepted by match.
// Hidden entries are skipped.
func collect(root string, match func(string) bool) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
				return nil
			}
			return err
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && match(path) {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(out)
	return out, nil
}

// FindDescriptor returns the first .nfo directly inside dir, or "".
func FindDescriptor(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		if entry.Type().IsRegular() && strings.HasSuffix(strings.ToLower(entry.Name()), ".nfo") {
			return filepath.Join(dir, entry.Name())
		}
	}
	return ""
}

func isRoot(dir string, roots []string) bool {
	dir = filepath.Clean(dir)
	for _, root := range roots {
		if filepath.Clean(root) == dir {
			return true
		}
	}
	return false
}
