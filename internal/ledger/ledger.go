package ledger

import (
	"encoding/json"
	"fmt"
	"os"

	"mediatorr/internal/fileutil"
)

const (
	KindFile   = "file"
	KindFolder = "folder"
)

// Fingerprint captures the cheap identity of one source file.
type Fingerprint struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
	// ModTimeMs is fractional epoch milliseconds.
	ModTimeMs float64 `json:"mtimeMs"`
}

// Record is the persisted ledger of a unit.
type Record struct {
	Kind  string        `json:"kind"`
	Files []Fingerprint `json:"files"`
}

// Take stats every file. A file that cannot be stat'ed gets a zero
// fingerprint instead of failing the snapshot.
func Take(files []string) []Fingerprint {
	out := make([]Fingerprint, 0, len(files))
	for _, file := range files {
		out = append(out, fingerprint(file))
	}
	return out
}

func fingerprint(path string) Fingerprint {
	info, err := os.Stat(path)
	if err != nil {
		return Fingerprint{Path: path}
	}
	return Fingerprint{
		Path:      path,
		Size:      info.Size(),
		ModTimeMs: float64(info.ModTime().UnixNano()) / 1e6,
	}
}

// Write records the current fingerprints of files at path, replacing any
// previous record.
func Write(path, kind string, files []string) error {
	record := Record{Kind: kind, Files: Take(files)}
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, payload, 0o644); err != nil {
		return fmt.Errorf("write ledger %s: %w", path, err)
	}
	return nil
}

// Read loads the record at path.
func Read(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, err
	}
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return Record{}, fmt.Errorf("decode ledger %s: %w", path, err)
	}
	return record, nil
}

// Exists reports whether a ledger file is present at path.
func Exists(path string) bool {
	return fileutil.Exists(path)
}

// HasChanged returns false only when the ledger at path exists, is of the
// expected kind, and lists exactly the current fingerprints of files.
func HasChanged(path, kind string, files []string) bool {
	record, err := Read(path)
	if err != nil {
		return true
	}
	return record.Differs(kind, files)
}

// Differs compares the record against the current state of files.
func (r Record) Differs(kind string, files []string) bool {
	if r.Kind != kind || len(r.Files) != len(files) {
		return true
	}
	stored := make(map[string]Fingerprint, len(r.Files))
	for _, fp := range r.Files {
		stored[fp.Path] = fp
	}
	for _, file := range files {
		prev, ok := stored[file]
		if !ok {
			return true
		}
		current := fingerprint(file)
		if prev.Size != current.Size || prev.ModTimeMs != current.ModTimeMs {
			return true
		}
	}
	return false
}
