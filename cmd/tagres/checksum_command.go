package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tagres/internal/checksum"
)

func newChecksumCommand(ctx *commandContext) *cobra.Command {
	var algorithm string
	cmd := &cobra.Command{
		Use:   "checksum FILE...",
		Short: "Print content fingerprints",
		Long:  "Print the fingerprint of each file. Available algorithms: " + strings.Join(checksum.Names(), ", ") + ".",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			name := cfg.Tagging.Checksum
			if strings.TrimSpace(algorithm) != "" {
				name = algorithm
			}
			alg, err := checksum.Lookup(name)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, path := range args {
				value, err := checksum.File(path, alg, logger)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s  %s\n", checksum.Format(value), path)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", "", "Checksum algorithm (defaults to tagging.checksum)")
	return cmd
}
