package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tagres/internal/config"
	"tagres/internal/index"
)

func newIndexCommand(ctx *commandContext) *cobra.Command {
	indexCmd := &cobra.Command{
		Use:   "index",
		Short: "Inspect generated index files",
	}
	indexCmd.AddCommand(newIndexShowCommand(ctx))
	return indexCmd
}

func newIndexShowCommand(ctx *commandContext) *cobra.Command {
	var encodingName string
	var lookup string

	cmd := &cobra.Command{
		Use:   "show [PATH]",
		Short: "Print the original to tagged mapping",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := cfg.IndexPath()
			if len(args) == 1 {
				if path, err = config.ExpandPath(args[0]); err != nil {
					return err
				}
			}
			name := cfg.Tagging.IndexEncoding
			if strings.TrimSpace(encodingName) != "" {
				name = encodingName
			}
			enc, err := index.LookupEncoding(name)
			if err != nil {
				return err
			}
			idx, err := index.Load(path, enc)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if lookup != "" {
				tagged, ok := idx.Lookup(lookup)
				if !ok {
					return fmt.Errorf("%s is not listed in %s", lookup, path)
				}
				fmt.Fprintln(out, tagged)
				return nil
			}

			rows := make([][]string, 0, idx.Len())
			for _, e := range idx.Entries() {
				rows = append(rows, []string{e.Original, e.Tagged})
			}
			fmt.Fprintln(out, renderTable(out, []string{"Original", "Tagged"}, rows, nil))
			fmt.Fprintf(out, "%d entries in %s\n", idx.Len(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&encodingName, "encoding", "", "Index charset (defaults to tagging.index_encoding)")
	cmd.Flags().StringVar(&lookup, "lookup", "", "Print only the tagged name for this original path")
	return cmd
}
