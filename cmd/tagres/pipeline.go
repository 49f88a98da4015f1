package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"tagres/internal/checksum"
	"tagres/internal/config"
	"tagres/internal/faults"
	"tagres/internal/history"
	"tagres/internal/index"
	"tagres/internal/logging"
	"tagres/internal/resources"
	"tagres/internal/tagging"
	"tagres/internal/tagrun"
)

// rootCollector is the CLI's resource-root registrar. It keeps roots in the
// order they were first announced.
type rootCollector struct {
	roots []string
}

func (r *rootCollector) AddResourceRoot(dir string) {
	for _, existing := range r.roots {
		if existing == dir {
			return
		}
	}
	r.roots = append(r.roots, dir)
}

// prepared holds everything a tagging pass needs that is derived from config.
type prepared struct {
	cfg     *config.Config
	options tagrun.Options
	groups  []resources.Enumerated
}

func prepareRun(cfg *config.Config, logger *slog.Logger) (*prepared, error) {
	if err := cfg.ValidateForRun(); err != nil {
		return nil, faults.Wrap(faults.ErrConfiguration, "config", "validate", "", err)
	}
	alg, err := checksum.Lookup(cfg.Tagging.Checksum)
	if err != nil {
		return nil, err
	}
	enc, err := index.LookupEncoding(cfg.Tagging.IndexEncoding)
	if err != nil {
		return nil, err
	}
	tagger, err := tagging.New(cfg.Tagging.UntaggedSearchPattern, cfg.Tagging.TaggedReplacementPattern, alg, logger)
	if err != nil {
		return nil, err
	}
	groups, err := resources.EnumerateAll(resourceGroups(cfg))
	if err != nil {
		return nil, err
	}
	include := resources.NotHidden
	if cfg.Tagging.IncludeHidden {
		include = resources.All
	}
	return &prepared{
		cfg: cfg,
		options: tagrun.Options{
			OutputDir:     cfg.Paths.OutputDir,
			IndexFilename: cfg.Tagging.IndexFilename,
			Encoding:      enc,
			Tagger:        tagger,
			Include:       include,
			Logger:        logger,
		},
		groups: groups,
	}, nil
}

func resourceGroups(cfg *config.Config) []resources.Group {
	groups := make([]resources.Group, 0, len(cfg.Resources))
	for _, res := range cfg.Resources {
		groups = append(groups, resources.Group{
			Directory: res.Directory,
			Includes:  res.Includes,
			Excludes:  res.Excludes,
		})
	}
	return groups
}

// executeRun performs one locked tagging pass and records it in history when
// enabled. History failures are logged and never fail the run.
func executeRun(ctx context.Context, p *prepared, logger *slog.Logger) (*tagrun.Result, string, []string, error) {
	cfg := p.cfg
	lock, err := tagrun.LockOutput(cfg.Paths.OutputDir)
	if err != nil {
		return nil, "", nil, err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Debug("release output lock failed", logging.Error(err))
		}
	}()

	runID := uuid.NewString()
	var recorder *history.Recorder
	if cfg.History.Enabled {
		store, err := history.Open(cfg.HistoryPath())
		if err != nil {
			logging.WarnWithContext(logger, "history unavailable", "history_open_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "this run will not appear in tagres history"),
			)
		} else {
			defer store.Close()
			recorder, err = store.Begin(ctx, history.RunInfo{
				OutputDir: cfg.Paths.OutputDir,
				IndexPath: cfg.IndexPath(),
				Checksum:  p.options.Tagger.Algorithm().Name(),
			})
			if err != nil {
				logging.WarnWithContext(logger, "history record failed", "history_begin_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "this run will not appear in tagres history"),
				)
			} else {
				runID = recorder.ID()
			}
		}
	}

	ctx = logging.WithRunID(ctx, runID)
	runLogger := logging.WithContext(ctx, logger)
	registrar := &rootCollector{}

	opts := p.options
	opts.Logger = runLogger
	opts.Registrar = registrar
	if recorder != nil {
		opts.Observer = func(e tagrun.Entry) {
			recorder.Add(history.Entry{
				BaseDir:     e.BaseDir,
				Original:    e.Original,
				Tagged:      e.Tagged,
				Fingerprint: e.ID,
				Bytes:       e.Bytes,
			})
		}
	}

	runLogger.Info("tagging started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("output", cfg.Paths.OutputDir),
		logging.Int("groups", len(p.groups)),
	)
	result, runErr := tagrun.Run(ctx, opts, p.groups)

	if recorder != nil {
		skipped := 0
		if result != nil {
			skipped = result.Skipped
		}
		if _, err := recorder.Finish(context.WithoutCancel(ctx), history.Outcome{Skipped: skipped, Err: runErr}); err != nil {
			logging.WarnWithContext(runLogger, "history update failed", "history_finish_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "the run may show as running in tagres history"),
			)
		}
	}
	if runErr != nil {
		logging.ErrorWithContext(runLogger, "tagging failed", "run_failed",
			logging.Error(runErr),
			logging.String("error_kind", faults.Kind(runErr)),
		)
	}
	return result, runID, registrar.roots, runErr
}

func printRunSummary(out io.Writer, result *tagrun.Result, runID string, roots []string) {
	fmt.Fprintf(out, "Tagged %d resources (%d skipped)\n", len(result.Entries), result.Skipped)
	fmt.Fprintf(out, "Index: %s\n", result.IndexPath)
	for _, root := range roots {
		fmt.Fprintf(out, "Resource root: %s\n", root)
	}
	fmt.Fprintf(out, "Run: %s\n", runID)
}
