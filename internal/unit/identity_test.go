package unit_test

import (
	"path/filepath"
	"testing"

	"mediatorr/internal/unit"
)

func TestFolderKeySeasonPack(t *testing.T) {
	tests := []struct {
		name     string
		folder   string
		files    []string
		collapse bool
		want     string
	}{
		{
			name:     "two episodes collapse to season",
			folder:   "/series/Show.S01E01",
			files:    []string{"Show.S01E01.mkv", "Show.S01E02.mkv"},
			collapse: true,
			want:     "Show.S01",
		},
		{
			name:     "single episode keeps folder name",
			folder:   "/series/Show.S01E01",
			files:    []string{"Show.S01E01.mkv"},
			collapse: true,
			want:     "Show.S01E01",
		},
		{
			name:     "multi episode suffix collapses",
			folder:   "/series/Show S02E01-E10 1080p",
			files:    []string{"a/Show.s02e01.mkv", "a/Show.s02e02.mkv", "a/Show.s02e03.mkv"},
			collapse: true,
			want:     "Show.S02.1080p",
		},
		{
			name:     "multiple seasons keep folder name",
			folder:   "/series/Show.S01E01",
			files:    []string{"Show.S01E01.mkv", "Show.S02E01.mkv"},
			collapse: true,
			want:     "Show.S01E01",
		},
		{
			name:     "no markers keep folder name",
			folder:   "/series/Show Complete",
			files:    []string{"part1.mkv", "part2.mkv"},
			collapse: true,
			want:     "Show.Complete",
		},
		{
			name:     "same episode twice is not a pack",
			folder:   "/series/Show.S01E05",
			files:    []string{"Show.S01E05.mkv", "Show.S01E05.sample.mkv"},
			collapse: true,
			want:     "Show.S01E05",
		},
		{
			name:     "audio folders never collapse",
			folder:   "/musiques/Album S01E01",
			files:    []string{"S01E01.flac", "S01E02.flac"},
			collapse: false,
			want:     "Album.S01E01",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := unit.FolderKey(tc.folder, tc.files, tc.collapse); got != tc.want {
				t.Fatalf("FolderKey = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFileKey(t *testing.T) {
	if got := unit.FileKey("/films/sub/The Movie 2020 1080p.mkv"); got != "The.Movie.2020.1080p" {
		t.Fatalf("FileKey = %q", got)
	}
}

func TestUnitLayout(t *testing.T) {
	u := unit.New(unit.LibrarySeries, unit.DomainVideoFolder, "/dest", "/series/Show", []string{"/series/Show/e1.mkv"}, "Show.S01")
	if u.OutputDir != filepath.Join("/dest", "series", "Show.S01") {
		t.Fatalf("unexpected output dir %q", u.OutputDir)
	}
	want := map[unit.Artifact]string{
		unit.ArtifactTorrent:          "Show.S01.torrent",
		unit.ArtifactTechnicalNote:    "Show.S01.nfo",
		unit.ArtifactIdentifierNote:   "Show.S01.txt",
		unit.ArtifactReleaseNote:      "Show.S01.prez.txt",
		unit.ArtifactSourceDescriptor: "Show.S01.source.nfo",
		unit.ArtifactLedger:           "Show.S01.srcinfo",
	}
	for artifact, name := range want {
		if got := u.Path(artifact); got != filepath.Join(u.OutputDir, name) {
			t.Fatalf("%s path = %q", artifact, got)
		}
	}
	if u.LedgerKind() != "folder" {
		t.Fatalf("expected folder ledger kind, got %q", u.LedgerKind())
	}
}

func TestAudioEntryKind(t *testing.T) {
	file := unit.New(unit.LibraryMusic, unit.DomainAudioEntry, "/dest", "/m/song.mp3", []string{"/m/song.mp3"}, "song")
	if file.Aggregate() || file.LedgerKind() != "file" {
		t.Fatalf("expected single audio file to be a file unit")
	}
	folder := unit.New(unit.LibraryMusic, unit.DomainAudioEntry, "/dest", "/m/Album", []string{"/m/Album/01.flac"}, "Album")
	if !folder.Aggregate() || folder.LedgerKind() != "folder" {
		t.Fatalf("expected album folder to be an aggregate")
	}
	if folder.OutputDir != filepath.Join("/dest", "musiques", "Album") {
		t.Fatalf("unexpected music output dir %q", folder.OutputDir)
	}
}

func TestParseLibrary(t *testing.T) {
	for input, want := range map[string]unit.Library{
		"films":    unit.LibraryMovies,
		"Movies":   unit.LibraryMovies,
		"series":   unit.LibrarySeries,
		"musiques": unit.LibraryMusic,
	} {
		got, err := unit.ParseLibrary(input)
		if err != nil || got != want {
			t.Fatalf("ParseLibrary(%q) = %q, %v", input, got, err)
		}
	}
	if _, err := unit.ParseLibrary("books"); err == nil {
		t.Fatal("expected error for unknown library")
	}
}
