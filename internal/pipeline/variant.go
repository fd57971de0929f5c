package pipeline

import (
	"context"

	"mediatorr/internal/metadata"
	"mediatorr/internal/notes"
	"mediatorr/internal/unit"
)

// variant captures what differs between unit domains.
type variant interface {
	query(ctx context.Context, g TitleGuesser, u unit.Unit) metadata.Query
	folderStats(u unit.Unit) *notes.FolderStats
}

func variantFor(d unit.Domain) (variant, bool) {
	switch d {
	case unit.DomainVideoFile:
		return videoFile{}, true
	case unit.DomainVideoFolder:
		return videoFolder{}, true
	case unit.DomainAudioEntry:
		return audioEntry{}, true
	default:
		return nil, false
	}
}

type videoFile struct{}

func (videoFile) query(ctx context.Context, g TitleGuesser, u unit.Unit) metadata.Query {
	guess := g.Guess(ctx, u.ReferenceFile())
	return metadata.Query{Library: u.Library, Key: u.Key, Title: guess.Title, Year: guess.Year}
}

func (videoFile) folderStats(unit.Unit) *notes.FolderStats { return nil }

type videoFolder struct{}

func (videoFolder) query(ctx context.Context, g TitleGuesser, u unit.Unit) metadata.Query {
	guess := g.Guess(ctx, u.ReferenceFile())
	return metadata.Query{Library: u.Library, Key: u.Key, Title: guess.Title, Year: guess.Year}
}

func (videoFolder) folderStats(u unit.Unit) *notes.FolderStats {
	return &notes.FolderStats{Files: len(u.SourcePaths), TotalBytes: totalSize(u.SourcePaths)}
}

type audioEntry struct{}

func (audioEntry) query(ctx context.Context, g TitleGuesser, u unit.Unit) metadata.Query {
	guess := g.Guess(ctx, u.ReferenceFile())
	title := guess.Title
	if u.Aggregate() && guess.Album != "" {
		title = guess.Album
	}
	return metadata.Query{Library: u.Library, Key: u.Key, Title: title, Artist: guess.Artist, Year: guess.Year}
}

func (audioEntry) folderStats(u unit.Unit) *notes.FolderStats {
	if !u.Aggregate() {
		return nil
	}
	return &notes.FolderStats{Files: len(u.SourcePaths), TotalBytes: totalSize(u.SourcePaths)}
}
