package unit

import (
	"path/filepath"
)

// Domain is the closed set of unit shapes. Each domain shares the pipeline
// but differs in identity rules and in how artifacts are derived.
type Domain int

const (
	DomainVideoFile Domain = iota + 1
	DomainVideoFolder
	DomainAudioEntry
)

func (d Domain) String() string {
	switch d {
	case DomainVideoFile:
		return "video-file"
	case DomainVideoFolder:
		return "video-folder"
	case DomainAudioEntry:
		return "audio-entry"
	default:
		return "unknown"
	}
}

// Artifact identifies one derived output file of a unit.
type Artifact int

const (
	ArtifactTorrent Artifact = iota + 1
	ArtifactTechnicalNote
	ArtifactIdentifierNote
	ArtifactReleaseNote
	ArtifactSourceDescriptor
	ArtifactLedger
)

// Suffix is appended to the unit key to form the artifact's file name.
func (a Artifact) Suffix() string {
	switch a {
	case ArtifactTorrent:
		return ".torrent"
	case ArtifactTechnicalNote:
		return ".nfo"
	case ArtifactIdentifierNote:
		return ".txt"
	case ArtifactReleaseNote:
		return ".prez.txt"
	case ArtifactSourceDescriptor:
		return ".source.nfo"
	case ArtifactLedger:
		return ".srcinfo"
	default:
		return ""
	}
}

func (a Artifact) String() string {
	switch a {
	case ArtifactTorrent:
		return "torrent"
	case ArtifactTechnicalNote:
		return "technical-note"
	case ArtifactIdentifierNote:
		return "identifier-note"
	case ArtifactReleaseNote:
		return "release-note"
	case ArtifactSourceDescriptor:
		return "source-descriptor"
	case ArtifactLedger:
		return "ledger"
	default:
		return "unknown"
	}
}

// Unit is one tracked work item.
type Unit struct {
	Library Library
	Domain  Domain
	// Entry is the discovered source path: the file itself for single-file
	// units, the folder for aggregates. It is what the archiver packages.
	Entry string
	// SourcePaths are the constituent files, sorted, never empty for a
	// processable unit.
	SourcePaths []string
	Key         string
	OutputDir   string
	// SourceDescriptor is a co-located .nfo to copy beside the artifacts.
	SourceDescriptor string
	// Pending marks a folder still being downloaded; no work is attempted.
	Pending bool
}

// Aggregate reports whether the unit is a folder over several files.
func (u Unit) Aggregate() bool {
	switch u.Domain {
	case DomainVideoFolder:
		return true
	case DomainAudioEntry:
		return len(u.SourcePaths) != 1 || u.SourcePaths[0] != u.Entry
	default:
		return false
	}
}

// LedgerKind is the kind recorded in the unit's ledger.
func (u Unit) LedgerKind() string {
	if u.Aggregate() {
		return "folder"
	}
	return "file"
}

// Path returns the location of artifact a for this unit.
func (u Unit) Path(a Artifact) string {
	return filepath.Join(u.OutputDir, u.Key+a.Suffix())
}

// ReferenceFile is the file probed for technical metadata and title guessing.
func (u Unit) ReferenceFile() string {
	if len(u.SourcePaths) == 0 {
		return u.Entry
	}
	return u.SourcePaths[0]
}

// New builds a unit rooted at destRoot/<library subtree>/<key>.
func New(lib Library, domain Domain, destRoot, entry string, sources []string, key string) Unit {
	return Unit{
		Library:     lib,
		Domain:      domain,
		Entry:       entry,
		SourcePaths: sources,
		Key:         key,
		OutputDir:   filepath.Join(destRoot, lib.Subtree(), key),
	}
}
