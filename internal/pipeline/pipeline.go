package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"mediatorr/internal/artifacts"
	"mediatorr/internal/fileutil"
	"mediatorr/internal/ledger"
	"mediatorr/internal/logging"
	"mediatorr/internal/metadata"
	"mediatorr/internal/notes"
	"mediatorr/internal/services"
	"mediatorr/internal/services/guessit"
	"mediatorr/internal/unit"
)

// Archiver creates torrents and reads their payload size.
type Archiver interface {
	Create(ctx context.Context, path, output string, trackers []string) (string, error)
	Inspect(ctx context.Context, torrent string) (int64, error)
}

// Probe returns free-form technical metadata for a file.
type Probe interface {
	Inspect(ctx context.Context, path string) (string, error)
}

// Searcher resolves identifier metadata with a cache.
type Searcher interface {
	HasCache(q metadata.Query) bool
	Cached(q metadata.Query) (*metadata.Record, bool)
	Lookup(ctx context.Context, q metadata.Query) (*metadata.Record, error)
}

// TitleGuesser guesses the title of a media file. It never fails.
type TitleGuesser interface {
	Guess(ctx context.Context, path string) guessit.Guess
}

// Options wires a Pipeline.
type Options struct {
	Archiver Archiver
	Probe    Probe
	Searcher Searcher
	Guesser  TitleGuesser
	Store    *artifacts.Store
	// Release renders release notes; nil when presentation is disabled.
	Release  *notes.Renderer
	Trackers []string
	Now      func() time.Time
	Logger   *slog.Logger
}

// Pipeline processes units.
type Pipeline struct {
	archiver Archiver
	probe    Probe
	searcher Searcher
	guesser  TitleGuesser
	store    *artifacts.Store
	release  *notes.Renderer
	trackers []string
	now      func() time.Time
	logger   *slog.Logger
}

// New builds a Pipeline.
func New(opts Options) *Pipeline {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		archiver: opts.Archiver,
		probe:    opts.Probe,
		searcher: opts.Searcher,
		guesser:  opts.Guesser,
		store:    opts.Store,
		release:  opts.Release,
		trackers: opts.Trackers,
		now:      now,
		logger:   logging.NewComponentLogger(opts.Logger, "pipeline"),
	}
}

// Classify computes the state of u from its artifacts and ledger.
func (p *Pipeline) Classify(u unit.Unit) (State, artifacts.Set) {
	missing := p.store.Missing(u)
	if !missing.Empty() {
		return StateIncomplete, missing
	}
	path := u.Path(unit.ArtifactLedger)
	if !ledger.Exists(path) {
		return StateLegacy, missing
	}
	if ledger.HasChanged(path, u.LedgerKind(), u.SourcePaths) {
		return StateStale, missing
	}
	return StateUnchanged, missing
}

// Process runs the state machine for u. Failures are reported in the result,
// never returned separately.
func (p *Pipeline) Process(ctx context.Context, u unit.Unit) (result Result) {
	start := time.Now()
	ctx = services.WithUnit(services.WithLibrary(ctx, string(u.Library)), u.Key)
	logger := logging.WithContext(ctx, p.logger)

	result = Result{Library: u.Library, Key: u.Key, Provider: metadata.ProviderFor(u.Library)}
	defer func() { result.Elapsed = time.Since(start) }()

	if u.Pending {
		logger.Info("partial download in progress, deferring",
			logging.String("entry", u.Entry),
			logging.String(logging.FieldDecisionType, "unit_deferred"),
		)
		result.Outcome = OutcomeDeferred
		return result
	}
	v, ok := variantFor(u.Domain)
	if !ok || len(u.SourcePaths) == 0 {
		result.Outcome = OutcomeFailed
		result.Err = services.Wrap(services.ErrValidation, "pipeline", "process", fmt.Sprintf("unit %q has no processable sources", u.Key), nil)
		return result
	}

	state, missing := p.Classify(u)
	result.State = state
	switch state {
	case StateLegacy:
		if err := ledger.Write(u.Path(unit.ArtifactLedger), u.LedgerKind(), u.SourcePaths); err != nil {
			logging.WarnWithContext(logger, "ledger write failed", "ledger_write_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "unit is classified again next run"),
			)
		}
		logger.Debug("complete unit without ledger, ledger recorded", logging.Args(logging.DecisionAttrs("unit_state", state.String(), "legacy item")...)...)
		result.Outcome = OutcomeSkipped
		return result
	case StateUnchanged:
		logger.Debug("unit unchanged", logging.Args(logging.DecisionAttrs("unit_state", state.String(), "ledger matches")...)...)
		result.Outcome = OutcomeSkipped
		return result
	case StateStale:
		logger.Info("source changed, reprocessing", logging.Args(logging.DecisionAttrs("unit_state", state.String(), "ledger differs")...)...)
		p.store.Invalidate(u)
		missing = p.store.Missing(u)
		result.Outcome = OutcomeReprocessed
	default:
		logger.Info("building unit",
			logging.String("missing", missing.String()),
			logging.Int("files", len(u.SourcePaths)),
			logging.String("domain", u.Domain.String()),
		)
		result.Outcome = OutcomeProcessed
	}

	if err := p.build(ctx, logger, v, u, missing, &result); err != nil {
		result.Outcome = OutcomeFailed
		result.Err = err
		logging.ErrorWithContext(logger, "unit failed", "unit_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "fix the cause and rerun; completed artifacts are kept"),
		)
		return result
	}

	if err := ledger.Write(u.Path(unit.ArtifactLedger), u.LedgerKind(), u.SourcePaths); err != nil {
		logging.WarnWithContext(logger, "ledger write failed", "ledger_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "unit may be reprocessed next run"),
		)
	}
	logger.Info("unit "+result.Outcome.String(), logging.Int("artifacts_built", len(result.Built)))
	return result
}

func (p *Pipeline) build(ctx context.Context, logger *slog.Logger, v variant, u unit.Unit, missing artifacts.Set, result *Result) error {
	if err := os.MkdirAll(u.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if missing.SourceDescriptor {
		if err := fileutil.CopyFile(u.SourceDescriptor, u.Path(unit.ArtifactSourceDescriptor)); err != nil {
			logging.WarnWithContext(logger, "source descriptor copy failed", "source_nfo_copy_failed",
				logging.String("source", u.SourceDescriptor),
				logging.Error(err),
				logging.String(logging.FieldImpact, "unit stays incomplete and is retried next run"),
			)
		} else {
			result.Built = append(result.Built, unit.ArtifactSourceDescriptor)
		}
	}

	if missing.TechnicalNote {
		if err := p.writeTechnical(ctx, logger, v, u); err != nil {
			return err
		}
		result.Built = append(result.Built, unit.ArtifactTechnicalNote)
	}

	if missing.Torrent {
		output := u.Path(unit.ArtifactTorrent)
		if _, err := p.archiver.Create(ctx, u.Entry, output, p.trackers); err != nil {
			_ = fileutil.RemoveIfExists(output)
			return fmt.Errorf("create torrent: %w", err)
		}
		result.Built = append(result.Built, unit.ArtifactTorrent)
	}

	q := v.query(ctx, p.guesser, u)
	var record *metadata.Record
	note := u.Path(unit.ArtifactIdentifierNote)
	if fileutil.Exists(note) && p.searcher.HasCache(q) {
		if missing.ReleaseNote {
			record, _ = p.searcher.Cached(q)
		}
	} else {
		record = p.lookup(ctx, logger, q, result)
		if err := fileutil.WriteFileAtomic(note, []byte(notes.Identifier(result.Provider, record)), 0o644); err != nil {
			return fmt.Errorf("write identifier note: %w", err)
		}
		result.Built = append(result.Built, unit.ArtifactIdentifierNote)
	}

	if missing.ReleaseNote && p.release != nil {
		if err := p.writeRelease(ctx, logger, u, record); err != nil {
			return err
		}
		result.Built = append(result.Built, unit.ArtifactReleaseNote)
	}
	return nil
}

func (p *Pipeline) writeTechnical(ctx context.Context, logger *slog.Logger, v variant, u unit.Unit) error {
	reference := u.ReferenceFile()
	text, err := p.probe.Inspect(ctx, reference)
	if err != nil {
		logging.WarnWithContext(logger, "probe failed, writing technical note without details", "probe_failed",
			logging.String("file", reference),
			logging.Error(err),
			logging.String(logging.FieldImpact, "technical note body is empty"),
		)
		text = ""
	}
	body := notes.Technical(u.Key, p.now(), reference, text, v.folderStats(u))
	if err := fileutil.WriteFileAtomic(u.Path(unit.ArtifactTechnicalNote), []byte(body), 0o644); err != nil {
		return fmt.Errorf("write technical note: %w", err)
	}
	return nil
}

func (p *Pipeline) lookup(ctx context.Context, logger *slog.Logger, q metadata.Query, result *Result) *metadata.Record {
	record, err := p.searcher.Lookup(ctx, q)
	if err != nil || record == nil {
		result.Lookup = LookupMissing
		attrs := []logging.Attr{
			logging.String("title", q.Title),
			logging.String("provider", string(result.Provider)),
			logging.String(logging.FieldImpact, "negative identifier note written"),
		}
		if err != nil {
			attrs = append(attrs, logging.Error(err))
		}
		if err != nil && !services.IsLookupFailure(err) {
			attrs = append(attrs, logging.String(logging.FieldErrorHint, "check the metadata provider configuration"))
		} else {
			attrs = append(attrs, logging.String(logging.FieldErrorHint, "set an override if the title is known"))
		}
		logging.WarnWithContext(logger, "metadata not found", "lookup_missing", attrs...)
		return nil
	}
	result.Lookup = LookupFound
	logger.Debug("metadata resolved",
		logging.String("provider", string(result.Provider)),
		logging.Int64("id", record.ID),
		logging.String("title", record.Title),
	)
	return record
}

func (p *Pipeline) writeRelease(ctx context.Context, logger *slog.Logger, u unit.Unit, record *metadata.Record) error {
	size, err := p.archiver.Inspect(ctx, u.Path(unit.ArtifactTorrent))
	if err != nil || size <= 0 {
		logger.Debug("torrent inspect failed, summing source sizes", logging.Error(err))
		size = totalSize(u.SourcePaths)
	}
	var summary notes.Summary
	if data, err := os.ReadFile(u.Path(unit.ArtifactTechnicalNote)); err == nil {
		summary = notes.Summarize(string(data))
	}
	text, err := p.release.Render(notes.Release{
		Name:         u.Key,
		Series:       u.Library == unit.LibrarySeries,
		Record:       record,
		Technical:    summary,
		PayloadBytes: size,
		Files:        len(u.SourcePaths),
	})
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(u.Path(unit.ArtifactReleaseNote), []byte(text), 0o644); err != nil {
		return fmt.Errorf("write release note: %w", err)
	}
	return nil
}

func totalSize(files []string) int64 {
	var total int64
	for _, file := range files {
		if info, err := os.Stat(file); err == nil {
			total += info.Size()
		}
	}
	return total
}
