package artifacts_test

import (
	"os"
	"path/filepath"
	"testing"

	"mediatorr/internal/artifacts"
	"mediatorr/internal/logging"
	"mediatorr/internal/unit"
)

func newUnit(t *testing.T, descriptor bool) unit.Unit {
	t.Helper()
	dest := t.TempDir()
	u := unit.New(unit.LibraryMovies, unit.DomainVideoFile, dest, "/films/Film.mkv", []string{"/films/Film.mkv"}, "Film")
	if descriptor {
		u.SourceDescriptor = "/films/sub/Film.nfo"
	}
	if err := os.MkdirAll(u.OutputDir, 0o755); err != nil {
		t.Fatal(err)
	}
	return u
}

func touch(t *testing.T, u unit.Unit, artifacts ...unit.Artifact) {
	t.Helper()
	for _, a := range artifacts {
		if err := os.WriteFile(u.Path(a), []byte(a.String()), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestMissingHonorsConfiguration(t *testing.T) {
	u := newUnit(t, false)
	touch(t, u, unit.ArtifactTorrent, unit.ArtifactTechnicalNote, unit.ArtifactIdentifierNote)

	withoutPrez := artifacts.NewStore(false, logging.NewNop())
	if set := withoutPrez.Missing(u); !set.Empty() {
		t.Fatalf("expected complete without presentation, missing %s", set)
	}

	withPrez := artifacts.NewStore(true, logging.NewNop())
	set := withPrez.Missing(u)
	if set.Empty() || !set.ReleaseNote {
		t.Fatalf("expected release note missing, got %s", set)
	}
	if set.String() != "release-note" {
		t.Fatalf("unexpected set string %q", set.String())
	}
}

func TestMissingSourceDescriptorOnlyWhenPresentAtSource(t *testing.T) {
	store := artifacts.NewStore(false, logging.NewNop())
	u := newUnit(t, true)
	touch(t, u, unit.ArtifactTorrent, unit.ArtifactTechnicalNote, unit.ArtifactIdentifierNote)

	set := store.Missing(u)
	if !set.SourceDescriptor {
		t.Fatalf("expected source descriptor missing, got %s", set)
	}
	touch(t, u, unit.ArtifactSourceDescriptor)
	if set := store.Missing(u); !set.Empty() {
		t.Fatalf("expected complete, got %s", set)
	}
}

func TestMissingEverythingInBuildOrder(t *testing.T) {
	store := artifacts.NewStore(true, logging.NewNop())
	u := newUnit(t, true)
	got := store.Missing(u).List()
	want := []unit.Artifact{
		unit.ArtifactSourceDescriptor,
		unit.ArtifactTechnicalNote,
		unit.ArtifactTorrent,
		unit.ArtifactIdentifierNote,
		unit.ArtifactReleaseNote,
	}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: got %s want %s", i, got[i], want[i])
		}
	}
}

func TestInvalidateKeepsIdentifierNoteAndLedger(t *testing.T) {
	store := artifacts.NewStore(true, logging.NewNop())
	u := newUnit(t, false)
	touch(t, u, unit.ArtifactTorrent, unit.ArtifactTechnicalNote, unit.ArtifactIdentifierNote, unit.ArtifactReleaseNote, unit.ArtifactLedger)

	store.Invalidate(u)
	store.Invalidate(u)

	for _, a := range []unit.Artifact{unit.ArtifactTorrent, unit.ArtifactTechnicalNote, unit.ArtifactReleaseNote} {
		if _, err := os.Stat(u.Path(a)); !os.IsNotExist(err) {
			t.Fatalf("expected %s removed, stat err=%v", a, err)
		}
	}
	for _, a := range []unit.Artifact{unit.ArtifactIdentifierNote, unit.ArtifactLedger} {
		if _, err := os.Stat(u.Path(a)); err != nil {
			t.Fatalf("expected %s kept: %v", a, err)
		}
	}
}

func TestDeleteRemovesEverythingAndEmptyDir(t *testing.T) {
	store := artifacts.NewStore(true, logging.NewNop())
	u := newUnit(t, false)
	touch(t, u, unit.ArtifactTorrent, unit.ArtifactTechnicalNote, unit.ArtifactIdentifierNote, unit.ArtifactLedger)

	removed, err := store.Delete(u)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if removed != 4 {
		t.Fatalf("removed = %d, want 4", removed)
	}
	if _, err := os.Stat(u.OutputDir); !os.IsNotExist(err) {
		t.Fatalf("expected output dir removed, stat err=%v", err)
	}
}

func TestDeleteKeepsForeignFiles(t *testing.T) {
	store := artifacts.NewStore(true, logging.NewNop())
	u := newUnit(t, false)
	touch(t, u, unit.ArtifactTorrent)
	foreign := filepath.Join(u.OutputDir, "notes.md")
	if err := os.WriteFile(foreign, []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Delete(u); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(foreign); err != nil {
		t.Fatalf("expected foreign file kept: %v", err)
	}
}

func TestDeleteRejectsEscapingKeys(t *testing.T) {
	store := artifacts.NewStore(true, logging.NewNop())
	for _, key := range []string{"", "..", "../etc", "a/b"} {
		u := unit.New(unit.LibraryMovies, unit.DomainVideoFile, t.TempDir(), "", nil, key)
		if _, err := store.Delete(u); err == nil {
			t.Fatalf("expected key %q rejected", key)
		}
	}
}

func TestDeleteMetadata(t *testing.T) {
	store := artifacts.NewStore(true, logging.NewNop())
	u := newUnit(t, false)
	touch(t, u, unit.ArtifactTorrent, unit.ArtifactIdentifierNote, unit.ArtifactReleaseNote)
	if err := store.DeleteMetadata(u); err != nil {
		t.Fatalf("DeleteMetadata: %v", err)
	}
	set := store.Missing(u)
	if !set.IdentifierNote || !set.ReleaseNote || set.Torrent {
		t.Fatalf("unexpected missing set %s", set)
	}
}

func TestList(t *testing.T) {
	dest := t.TempDir()
	for _, key := range []string{"B", "A"} {
		u := unit.New(unit.LibrarySeries, unit.DomainVideoFolder, dest, "", nil, key)
		if err := os.MkdirAll(u.OutputDir, 0o755); err != nil {
			t.Fatal(err)
		}
		touch(t, u, unit.ArtifactTorrent)
	}
	entries, err := artifacts.List(dest, unit.LibrarySeries)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 || entries[0].Key != "A" || entries[1].Key != "B" {
		t.Fatalf("unexpected entries %+v", entries)
	}
	if !entries[0].Has(unit.ArtifactTorrent) || entries[0].Has(unit.ArtifactLedger) {
		t.Fatalf("unexpected presence %+v", entries[0])
	}
	none, err := artifacts.List(dest, unit.LibraryMusic)
	if err != nil || len(none) != 0 {
		t.Fatalf("expected empty list for missing subtree, got %v %v", none, err)
	}
}
