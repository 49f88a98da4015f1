package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tagres/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded tagging runs",
	}
	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryPruneCommand(ctx))
	return historyCmd
}

func (c *commandContext) withHistory(fn func(*history.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				runs, err := store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						shortID(run.ID),
						humanize.Time(run.StartedAt),
						statusLabel(out, run.Status),
						strconv.Itoa(run.Tagged),
						strconv.Itoa(run.Skipped),
						run.Checksum,
						run.OutputDir,
					})
				}
				fmt.Fprintln(out, renderTable(out,
					[]string{"Run", "Started", "Status", "Tagged", "Skipped", "Checksum", "Output"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show (0 for all)")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show RUN_ID",
		Short: "Show one run and its entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				run, entries, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Run:      %s\n", run.ID)
				fmt.Fprintf(out, "Status:   %s\n", statusLabel(out, run.Status))
				fmt.Fprintf(out, "Started:  %s (%s)\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"), humanize.Time(run.StartedAt))
				if d := run.Duration(); d > 0 {
					fmt.Fprintf(out, "Duration: %s\n", d.Round(time.Millisecond))
				}
				fmt.Fprintf(out, "Output:   %s\n", run.OutputDir)
				fmt.Fprintf(out, "Index:    %s\n", run.IndexPath)
				fmt.Fprintf(out, "Checksum: %s\n", run.Checksum)
				if run.ErrorMessage != "" {
					fmt.Fprintf(out, "Error:    [%s] %s\n", run.ErrorKind, run.ErrorMessage)
				}
				if len(entries) == 0 {
					return nil
				}
				rows := make([][]string, 0, len(entries))
				var total uint64
				for _, e := range entries {
					rows = append(rows, []string{e.Original, e.Tagged, e.Fingerprint, humanize.Bytes(uint64(e.Bytes))})
					total += uint64(e.Bytes)
				}
				fmt.Fprintln(out, renderTable(out,
					[]string{"Original", "Tagged", "Checksum", "Size"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
				))
				fmt.Fprintf(out, "%d entries, %s copied\n", len(entries), humanize.Bytes(total))
				return nil
			})
		},
	}
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var keep int
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the most recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				removed, err := store.Prune(cmd.Context(), keep)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d runs\n", removed)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 50, "Number of recent runs to keep")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func statusLabel(out io.Writer, status string) string {
	if !isTerminal(out) {
		return status
	}
	switch status {
	case history.StatusSucceeded:
		return color.New(color.FgGreen).Sprint(status)
	case history.StatusFailed:
		return color.New(color.FgRed, color.Bold).Sprint(status)
	default:
		return color.New(color.FgYellow).Sprint(status)
	}
}
