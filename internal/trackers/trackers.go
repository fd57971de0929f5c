// Package trackers gates a scan on the announce list fingerprint. When the
// configured announce endpoints differ from the last persisted fingerprint,
// every torrent already in the destination tree is rewritten before any unit
// is processed.
package trackers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"mediatorr/internal/fileutil"
	"mediatorr/internal/logging"
	"mediatorr/internal/scheduler"
)

// Compute returns the hex sha256 of the sorted, deduplicated endpoints joined
// with '|'. Order and duplicates do not affect the result.
func Compute(endpoints []string) string {
	sorted := slices.Clone(endpoints)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)
	sum := sha256.Sum256([]byte(strings.Join(sorted, "|")))
	return hex.EncodeToString(sum[:])
}

// Modifier rewrites the announce list of an existing torrent.
type Modifier interface {
	Modify(ctx context.Context, torrent string, trackers []string) (string, error)
}

// Sweep reports what the gate did.
type Sweep struct {
	Changed   bool
	Digest    string
	Scanned   int
	Rewritten int
	Failed    int
	Elapsed   time.Duration
}

// Gate compares and persists the fingerprint and runs the rewrite sweep.
type Gate struct {
	path     string
	destRoot string
	modifier Modifier
	parallel int
	logger   *slog.Logger
}

// NewGate builds a Gate persisting its digest at path and sweeping destRoot.
func NewGate(path, destRoot string, modifier Modifier, parallel int, logger *slog.Logger) *Gate {
	return &Gate{
		path:     path,
		destRoot: destRoot,
		modifier: modifier,
		parallel: parallel,
		logger:   logging.NewComponentLogger(logger, "trackers"),
	}
}

// Previous returns the persisted digest, or "" when none was ever written.
func (g *Gate) Previous() (string, error) {
	data, err := os.ReadFile(g.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read tracker fingerprint: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Run rewrites every torrent under the destination when endpoints changed and
// then persists the new digest. Individual rewrite failures are counted, not
// returned; the digest is still persisted so the sweep runs once per change.
// A cancelled sweep leaves the old digest in place.
func (g *Gate) Run(ctx context.Context, endpoints []string) (Sweep, error) {
	start := time.Now()
	sweep := Sweep{Digest: Compute(endpoints)}
	previous, err := g.Previous()
	if err != nil {
		return sweep, err
	}
	if previous == sweep.Digest {
		g.logger.Debug("tracker fingerprint unchanged", logging.String("digest", sweep.Digest[:12]))
		return sweep, nil
	}
	sweep.Changed = true

	torrents, err := g.torrents()
	if err != nil {
		return sweep, err
	}
	sweep.Scanned = len(torrents)
	g.logger.Info("announce list changed, rewriting torrents",
		logging.Int("torrents", len(torrents)),
		logging.Bool("first_run", previous == ""),
		logging.String(logging.FieldDecisionType, "tracker_sweep"),
	)

	results := scheduler.Run(ctx, torrents, g.parallel, func(ctx context.Context, torrent string) (string, error) {
		return g.modifier.Modify(ctx, torrent, endpoints)
	})
	for _, res := range results {
		if res.Err != nil {
			sweep.Failed++
			logging.WarnWithContext(g.logger, "torrent rewrite failed", "tracker_rewrite_failed",
				logging.String("torrent", torrents[res.Index]),
				logging.Error(res.Err),
				logging.String(logging.FieldErrorHint, "check mkbrr output; regenerate the unit if the torrent is damaged"),
				logging.String(logging.FieldImpact, "torrent keeps its previous announce list"),
			)
			continue
		}
		sweep.Rewritten++
	}
	sweep.Elapsed = time.Since(start)

	if err := ctx.Err(); err != nil {
		return sweep, err
	}
	if err := os.MkdirAll(filepath.Dir(g.path), 0o755); err != nil {
		return sweep, fmt.Errorf("create state dir: %w", err)
	}
	if err := fileutil.WriteFileAtomic(g.path, []byte(sweep.Digest), 0o644); err != nil {
		return sweep, fmt.Errorf("persist tracker fingerprint: %w", err)
	}
	g.logger.Info("tracker sweep complete",
		logging.Int("scanned", sweep.Scanned),
		logging.Int("rewritten", sweep.Rewritten),
		logging.Int("failed", sweep.Failed),
		logging.Duration("elapsed", sweep.Elapsed),
	)
	return sweep, nil
}

func (g *Gate) torrents() ([]string, error) {
	var out []string
	err := filepath.WalkDir(g.destRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".torrent") {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list torrents: %w", err)
	}
	return out, nil
}
