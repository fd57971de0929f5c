package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"mediatorr/internal/artifacts"
	"mediatorr/internal/config"
	"mediatorr/internal/discovery"
	"mediatorr/internal/logging"
	"mediatorr/internal/notes"
	"mediatorr/internal/pipeline"
	"mediatorr/internal/preflight"
	"mediatorr/internal/scheduler"
	"mediatorr/internal/services"
	"mediatorr/internal/state"
	"mediatorr/internal/trackers"
	"mediatorr/internal/unit"
)

// ErrScanInProgress is returned when another process holds the scan lock.
var ErrScanInProgress = errors.New("another mediatorr scan is already running")

// Options narrows a single pass.
type Options struct {
	// Jobs overrides scan.parallel_jobs when positive.
	Jobs int
	// Libraries restricts the pass; empty means every enabled library.
	Libraries []unit.Library
}

// Runner executes passes.
type Runner struct {
	cfg    *config.Config
	store  *state.Store
	deps   Dependencies
	base   *slog.Logger
	logger *slog.Logger
	now    func() time.Time
}

// NewRunner builds a Runner recording its history in store.
func NewRunner(cfg *config.Config, store *state.Store, deps Dependencies, logger *slog.Logger) (*Runner, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("scan runner requires config and state store")
	}
	if deps.Archiver == nil || deps.Probe == nil || deps.Searcher == nil || deps.Guesser == nil {
		return nil, errors.New("scan runner requires archiver, probe, searcher and guesser")
	}
	return &Runner{
		cfg:    cfg,
		store:  store,
		deps:   deps,
		base:   logger,
		logger: logging.NewComponentLogger(logger, "scan"),
		now:    time.Now,
	}, nil
}

// Run executes one pass. The returned summary is non-nil whenever the pass
// started, including when it ended with an error.
func (r *Runner) Run(ctx context.Context, opts Options) (*Summary, error) {
	libs, err := r.libraries(opts.Libraries)
	if err != nil {
		return nil, err
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = r.cfg.Scan.ParallelJobs
	}

	lock := flock.New(r.cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire scan lock: %w", err)
	}
	if !ok {
		return nil, ErrScanInProgress
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("failed to release scan lock", logging.Error(err))
		}
	}()

	if blocking := preflight.Blocking(preflight.RunAll(ctx, r.cfg, r.deps.Executor)); len(blocking) > 0 {
		return nil, services.Wrap(services.ErrConfiguration, "scan", "preflight", describe(blocking), nil)
	}

	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, r.logger)

	started := r.now()
	summary := newSummary(runID, started)
	if err := r.store.BeginRun(ctx, runID, started); err != nil {
		return nil, err
	}
	logger.Info("scan started",
		logging.Int("jobs", jobs),
		logging.String("libraries", joinLibraries(libs)),
	)

	runErr := r.execute(ctx, logger, libs, jobs, summary)
	summary.finish(r.now())

	status := state.RunCompleted
	if runErr != nil {
		status = state.RunFailed
	}
	if err := r.store.FinishRun(context.WithoutCancel(ctx), runID, summary.FinishedAt, status, summary); err != nil {
		logger.Warn("failed to record run", logging.Error(err))
	}

	logger.Info("scan finished",
		logging.String("status", status),
		logging.Int("processed", summary.Totals.Processed),
		logging.Int("reprocessed", summary.Totals.Reprocessed),
		logging.Int("skipped", summary.Totals.Skipped),
		logging.Int("deferred", summary.Totals.Deferred),
		logging.Int("failed", summary.Totals.Failed),
		logging.Int64("elapsed_ms", summary.ElapsedMs),
	)
	return summary, runErr
}

// execute runs the tracker gate and then every library in order.
func (r *Runner) execute(ctx context.Context, logger *slog.Logger, libs []unit.Library, jobs int, summary *Summary) error {
	gate := trackers.NewGate(r.cfg.FingerprintPath(), r.cfg.Paths.DestDir, r.deps.Archiver, jobs, r.base)
	sweep, err := gate.Run(ctx, r.cfg.Trackers.Announce)
	summary.setSweep(sweep)
	if err != nil {
		return fmt.Errorf("tracker sweep: %w", err)
	}

	proc := r.pipeline(r.base)
	walker := discovery.New(r.cfg.Paths.DestDir, r.base)
	for _, lib := range libs {
		if err := ctx.Err(); err != nil {
			return err
		}
		libCtx := services.WithLibrary(ctx, string(lib))
		units, err := walker.Discover(libCtx, lib, r.cfg.LibraryConfig(lib).Sources)
		if err != nil {
			return fmt.Errorf("discover %s: %w", lib, err)
		}
		logger.Info("library discovered",
			logging.String("library", string(lib)),
			logging.Int("units", len(units)),
		)

		results := scheduler.Run(libCtx, units, jobs, func(ctx context.Context, u unit.Unit) (pipeline.Result, error) {
			return proc.Process(services.WithUnit(ctx, u.Key), u), nil
		})
		for _, res := range results {
			result := res.Value
			if res.Err != nil {
				result = pipeline.Failed(units[res.Index], res.Err)
				logging.ErrorWithContext(logger, "unit aborted", "unit_aborted",
					logging.String("library", string(lib)),
					logging.String("unit", units[res.Index].Key),
					logging.Error(res.Err),
				)
			}
			summary.Add(result)
		}
	}
	return ctx.Err()
}

func (r *Runner) pipeline(logger *slog.Logger) *pipeline.Pipeline {
	var release *notes.Renderer
	if r.cfg.Presentation.Enabled {
		images := r.cfg.Presentation.Images
		release = notes.NewRenderer(notes.Images{
			Info:     images.Info,
			Synopsis: images.Synopsis,
			Movie:    images.Movie,
			Serie:    images.Serie,
			Download: images.Download,
			Link:     images.Link,
		})
	}
	return pipeline.New(pipeline.Options{
		Archiver: r.deps.Archiver,
		Probe:    r.deps.Probe,
		Searcher: r.deps.Searcher,
		Guesser:  r.deps.Guesser,
		Store:    artifacts.NewStore(r.cfg.Presentation.Enabled, logger),
		Release:  release,
		Trackers: r.cfg.Trackers.Announce,
		Now:      r.now,
		Logger:   logger,
	})
}

// libraries resolves the requested subset against the enabled libraries,
// keeping processing order.
func (r *Runner) libraries(requested []unit.Library) ([]unit.Library, error) {
	enabled := r.cfg.EnabledLibraries()
	if len(requested) == 0 {
		if len(enabled) == 0 {
			return nil, services.Wrap(services.ErrConfiguration, "scan", "libraries", "no library is enabled", nil)
		}
		return enabled, nil
	}
	for _, lib := range requested {
		if !slices.Contains(enabled, lib) {
			return nil, services.Wrap(services.ErrValidation, "scan", "libraries", fmt.Sprintf("library %s is not enabled", lib), nil)
		}
	}
	var out []unit.Library
	for _, lib := range enabled {
		if slices.Contains(requested, lib) {
			out = append(out, lib)
		}
	}
	return out, nil
}

func describe(results []preflight.Result) string {
	parts := make([]string, 0, len(results))
	for _, res := range results {
		parts = append(parts, fmt.Sprintf("%s: %s", res.Name, res.Detail))
	}
	return "preflight failed: " + strings.Join(parts, "; ")
}

func joinLibraries(libs []unit.Library) string {
	names := make([]string, 0, len(libs))
	for _, lib := range libs {
		names = append(names, string(lib))
	}
	return strings.Join(names, ",")
}
