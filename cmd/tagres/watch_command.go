package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tagres/internal/logging"
	"tagres/internal/tagrun"
	"tagres/internal/watch"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Tag resources, then re-tag whenever they change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if err := cfg.ValidateForRun(); err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			out := cmd.OutOrStdout()

			runOnce := func(ctx context.Context) error {
				p, err := prepareRun(cfg, logger)
				if err != nil {
					return err
				}
				result, runID, roots, err := executeRun(ctx, p, logger)
				if err != nil {
					return err
				}
				printRunSummary(out, result, runID, roots)
				return nil
			}

			if err := runOnce(runCtx); err != nil {
				logging.ErrorWithContext(logger, "initial run failed", "watch_initial_failed",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "fix the problem and save a resource to retry"),
				)
			}

			roots := make([]string, 0, len(cfg.Resources))
			for _, res := range cfg.Resources {
				roots = append(roots, res.Directory)
			}
			watcher, err := watch.New(watch.Options{
				Roots:    roots,
				Ignore:   []string{cfg.Paths.OutputDir, tagrun.LockPath(cfg.Paths.OutputDir)},
				Debounce: time.Duration(cfg.Watch.DebounceMillis) * time.Millisecond,
				Logger:   logger,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Watching %d resource directories (Ctrl+C to stop)\n", len(roots))
			return watcher.Run(runCtx, func(ctx context.Context, _ []string) error {
				return runOnce(ctx)
			})
		},
	}
}
