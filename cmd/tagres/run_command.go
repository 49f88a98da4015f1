package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tagres/internal/checksum"
	"tagres/internal/tagrun"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var outputDir string
	var resourceDirs []string
	var includes []string
	var excludes []string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Tag every configured resource and write the index",
		Long: "Fingerprint each resource, copy it to its tagged name below the output\n" +
			"directory and write the original=tagged index. --resource adds groups on\n" +
			"top of the configured ones; --include and --exclude apply to those groups.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if strings.TrimSpace(outputDir) != "" {
				if err := cfg.SetOutputDir(outputDir); err != nil {
					return err
				}
			}
			for _, dir := range resourceDirs {
				if err := cfg.AddResource(dir, includes, excludes); err != nil {
					return err
				}
			}

			p, err := prepareRun(cfg, logger)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if dryRun {
				result, err := tagrun.Plan(cmd.Context(), p.options, p.groups)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(result.Entries))
				for _, e := range result.Entries {
					rows = append(rows, []string{e.Original, e.Tagged, checksum.Format(e.Fingerprint)})
				}
				fmt.Fprintln(out, renderTable(out, []string{"Original", "Tagged", "Checksum"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))
				fmt.Fprintf(out, "Would tag %d resources (%d skipped) into %s\n", len(result.Entries), result.Skipped, cfg.Paths.OutputDir)
				return nil
			}

			result, runID, roots, err := executeRun(cmd.Context(), p, logger)
			if err != nil {
				return err
			}
			printRunSummary(out, result, runID, roots)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (overrides paths.output_dir)")
	cmd.Flags().StringArrayVarP(&resourceDirs, "resource", "r", nil, "Additional resource directory (repeatable)")
	cmd.Flags().StringArrayVar(&includes, "include", nil, "Include glob for --resource groups (repeatable)")
	cmd.Flags().StringArrayVar(&excludes, "exclude", nil, "Exclude glob for --resource groups (repeatable)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the tagged names without writing anything")
	return cmd
}
