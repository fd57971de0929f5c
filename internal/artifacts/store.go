package artifacts

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"mediatorr/internal/fileutil"
	"mediatorr/internal/logging"
	"mediatorr/internal/unit"
)

// Set lists which expected artifacts are missing for a unit.
type Set struct {
	Torrent          bool
	TechnicalNote    bool
	IdentifierNote   bool
	ReleaseNote      bool
	SourceDescriptor bool
}

// Empty reports whether nothing is missing, i.e. the unit is complete.
func (s Set) Empty() bool {
	return !s.Torrent && !s.TechnicalNote && !s.IdentifierNote && !s.ReleaseNote && !s.SourceDescriptor
}

// Has reports whether artifact a is missing.
func (s Set) Has(a unit.Artifact) bool {
	switch a {
	case unit.ArtifactTorrent:
		return s.Torrent
	case unit.ArtifactTechnicalNote:
		return s.TechnicalNote
	case unit.ArtifactIdentifierNote:
		return s.IdentifierNote
	case unit.ArtifactReleaseNote:
		return s.ReleaseNote
	case unit.ArtifactSourceDescriptor:
		return s.SourceDescriptor
	default:
		return false
	}
}

// List returns the missing artifacts in build order.
func (s Set) List() []unit.Artifact {
	var out []unit.Artifact
	for _, a := range buildOrder {
		if s.Has(a) {
			out = append(out, a)
		}
	}
	return out
}

func (s Set) String() string {
	names := make([]string, 0, 5)
	for _, a := range s.List() {
		names = append(names, a.String())
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}

var buildOrder = []unit.Artifact{
	unit.ArtifactSourceDescriptor,
	unit.ArtifactTechnicalNote,
	unit.ArtifactTorrent,
	unit.ArtifactIdentifierNote,
	unit.ArtifactReleaseNote,
}

// rebuildable artifacts are dropped when a unit's sources change. The
// identifier note and the ledger survive.
var rebuildable = []unit.Artifact{
	unit.ArtifactTorrent,
	unit.ArtifactTechnicalNote,
	unit.ArtifactReleaseNote,
}

// Store resolves expected artifacts against the current configuration.
type Store struct {
	presentation bool
	logger       *slog.Logger
}

// NewStore builds a store. presentation decides whether release notes are
// expected.
func NewStore(presentation bool, logger *slog.Logger) *Store {
	return &Store{presentation: presentation, logger: logging.NewComponentLogger(logger, "artifacts")}
}

// Required lists the artifacts a complete unit must have.
func (s *Store) Required(u unit.Unit) []unit.Artifact {
	required := []unit.Artifact{unit.ArtifactTorrent, unit.ArtifactTechnicalNote, unit.ArtifactIdentifierNote}
	if s.presentation {
		required = append(required, unit.ArtifactReleaseNote)
	}
	if u.SourceDescriptor != "" {
		required = append(required, unit.ArtifactSourceDescriptor)
	}
	return required
}

// Missing checks every required artifact for existence.
func (s *Store) Missing(u unit.Unit) Set {
	var set Set
	for _, a := range s.Required(u) {
		if fileutil.Exists(u.Path(a)) {
			continue
		}
		switch a {
		case unit.ArtifactTorrent:
			set.Torrent = true
		case unit.ArtifactTechnicalNote:
			set.TechnicalNote = true
		case unit.ArtifactIdentifierNote:
			set.IdentifierNote = true
		case unit.ArtifactReleaseNote:
			set.ReleaseNote = true
		case unit.ArtifactSourceDescriptor:
			set.SourceDescriptor = true
		}
	}
	return set
}

// Invalidate removes the rebuildable artifacts so the next build regenerates
// them. Failures are logged and swallowed; calling it twice is harmless.
func (s *Store) Invalidate(u unit.Unit) {
	for _, a := range rebuildable {
		if err := fileutil.RemoveIfExists(u.Path(a)); err != nil {
			s.logger.Debug("invalidate artifact failed",
				logging.String(logging.FieldUnit, u.Key),
				logging.String("artifact", a.String()),
				logging.Error(err),
			)
		}
	}
}

// DeleteMetadata removes the identifier and release notes, forcing the next
// scan to resolve metadata again.
func (s *Store) DeleteMetadata(u unit.Unit) error {
	var errs []error
	for _, a := range []unit.Artifact{unit.ArtifactIdentifierNote, unit.ArtifactReleaseNote} {
		if err := fileutil.RemoveIfExists(u.Path(a)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Delete removes every artifact of the unit, ledger included, then the output
// directory itself when it is left empty. Unrelated files are kept.
func (s *Store) Delete(u unit.Unit) (int, error) {
	if err := ValidateKey(u.Key); err != nil {
		return 0, err
	}
	all := []unit.Artifact{
		unit.ArtifactTorrent,
		unit.ArtifactTechnicalNote,
		unit.ArtifactIdentifierNote,
		unit.ArtifactReleaseNote,
		unit.ArtifactSourceDescriptor,
		unit.ArtifactLedger,
	}
	removed := 0
	var errs []error
	for _, a := range all {
		path := u.Path(a)
		if !fileutil.Exists(path) {
			continue
		}
		if err := os.Remove(path); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	if err := os.Remove(u.OutputDir); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("output directory kept", logging.String("dir", u.OutputDir), logging.Error(err))
	}
	return removed, errors.Join(errs...)
}

// ValidateKey rejects keys that would escape the library subtree.
func ValidateKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return fmt.Errorf("invalid unit key %q", key)
	}
	return nil
}

// Entry summarizes one output directory under a library subtree.
type Entry struct {
	Key     string
	Present []unit.Artifact
}

// Has reports whether artifact a exists for the entry.
func (e Entry) Has(a unit.Artifact) bool {
	for _, p := range e.Present {
		if p == a {
			return true
		}
	}
	return false
}

// List enumerates produced units of lib under destRoot in key order.
func List(destRoot string, lib unit.Library) ([]Entry, error) {
	root := filepath.Join(destRoot, lib.Subtree())
	dirs, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", root, err)
	}
	entries := make([]Entry, 0, len(dirs))
	for _, dir := range dirs {
		if !dir.IsDir() {
			continue
		}
		u := unit.New(lib, 0, destRoot, "", nil, dir.Name())
		entry := Entry{Key: dir.Name()}
		for _, a := range []unit.Artifact{
			unit.ArtifactTorrent,
			unit.ArtifactTechnicalNote,
			unit.ArtifactIdentifierNote,
			unit.ArtifactReleaseNote,
			unit.ArtifactSourceDescriptor,
			unit.ArtifactLedger,
		} {
			if fileutil.Exists(u.Path(a)) {
				entry.Present = append(entry.Present, a)
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
