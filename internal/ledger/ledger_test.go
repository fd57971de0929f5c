package ledger_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"mediatorr/internal/ledger"
)

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestUnchangedAfterWrite(t *testing.T) {
	dir := t.TempDir()
	a := writeSource(t, dir, "a.mkv", "aaaa")
	b := writeSource(t, dir, "b.mkv", "bb")
	path := filepath.Join(dir, "unit.srcinfo")

	if !ledger.HasChanged(path, ledger.KindFolder, []string{a, b}) {
		t.Fatal("missing ledger must read as changed")
	}
	if err := ledger.Write(path, ledger.KindFolder, []string{a, b}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if ledger.HasChanged(path, ledger.KindFolder, []string{a, b}) {
		t.Fatal("expected unchanged right after write")
	}
	if ledger.HasChanged(path, ledger.KindFolder, []string{b, a}) {
		t.Fatal("file order must not matter")
	}
}

func TestChangeDetection(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(t *testing.T, dir string, files []string) (string, []string)
	}{
		{
			name: "size change",
			mutate: func(t *testing.T, dir string, files []string) (string, []string) {
				writeSource(t, dir, "a.mkv", "aaaaaaaa")
				return ledger.KindFolder, files
			},
		},
		{
			name: "mtime change",
			mutate: func(t *testing.T, dir string, files []string) (string, []string) {
				later := time.Now().Add(time.Hour)
				if err := os.Chtimes(files[1], later, later); err != nil {
					t.Fatal(err)
				}
				return ledger.KindFolder, files
			},
		},
		{
			name: "file added",
			mutate: func(t *testing.T, dir string, files []string) (string, []string) {
				c := writeSource(t, dir, "c.mkv", "c")
				return ledger.KindFolder, append(files, c)
			},
		},
		{
			name: "file renamed",
			mutate: func(t *testing.T, dir string, files []string) (string, []string) {
				renamed := filepath.Join(dir, "z.mkv")
				if err := os.Rename(files[1], renamed); err != nil {
					t.Fatal(err)
				}
				return ledger.KindFolder, []string{files[0], renamed}
			},
		},
		{
			name: "kind mismatch",
			mutate: func(t *testing.T, dir string, files []string) (string, []string) {
				return ledger.KindFile, files
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			files := []string{writeSource(t, dir, "a.mkv", "aaaa"), writeSource(t, dir, "b.mkv", "bb")}
			old := time.Now().Add(-time.Hour)
			for _, f := range files {
				if err := os.Chtimes(f, old, old); err != nil {
					t.Fatal(err)
				}
			}
			path := filepath.Join(dir, "unit.srcinfo")
			if err := ledger.Write(path, ledger.KindFolder, files); err != nil {
				t.Fatalf("Write: %v", err)
			}
			kind, current := tc.mutate(t, dir, files)
			if !ledger.HasChanged(path, kind, current) {
				t.Fatal("expected change to be detected")
			}
		})
	}
}

func TestCorruptLedgerReadsAsChanged(t *testing.T) {
	dir := t.TempDir()
	a := writeSource(t, dir, "a.mkv", "a")
	path := filepath.Join(dir, "unit.srcinfo")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if !ledger.HasChanged(path, ledger.KindFile, []string{a}) {
		t.Fatal("corrupt ledger must read as changed")
	}
	if !ledger.Exists(path) {
		t.Fatal("corrupt ledger still exists on disk")
	}
	if err := ledger.Write(path, ledger.KindFile, []string{a}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if ledger.HasChanged(path, ledger.KindFile, []string{a}) {
		t.Fatal("expected rewrite to heal the ledger")
	}
}

func TestVanishedFileGetsZeroFingerprint(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "gone.mkv")
	path := filepath.Join(dir, "unit.srcinfo")

	if err := ledger.Write(path, ledger.KindFile, []string{missing}); err != nil {
		t.Fatalf("Write must not fail on vanished file: %v", err)
	}
	record, err := ledger.Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(record.Files) != 1 || record.Files[0].Size != 0 || record.Files[0].ModTimeMs != 0 {
		t.Fatalf("expected zero fingerprint, got %+v", record.Files)
	}
	if ledger.HasChanged(path, ledger.KindFile, []string{missing}) {
		t.Fatal("a still-missing file matches its zero fingerprint")
	}
	writeSource(t, dir, "gone.mkv", "back")
	if !ledger.HasChanged(path, ledger.KindFile, []string{missing}) {
		t.Fatal("a reappearing file must read as changed")
	}
}
