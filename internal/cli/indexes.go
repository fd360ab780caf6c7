/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/suparena/docstore/database"
	"github.com/suparena/docstore/registry"
)

// IndexesOptions holds flags for the indexes command.
type IndexesOptions struct {
	*RootOptions
	File  string
	Apply bool
}

// NewIndexesCommand creates the indexes command.
func NewIndexesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IndexesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "indexes",
		Short: "Show or create collection indexes",
		Long: `Show or create collection indexes.

Indexes come from a YAML file given with --file, or from the models
registered in the process otherwise. The docstore binary registers no
models itself, so it needs --file. Without --apply the plan is printed.

Example:
  docstore indexes --file indexes.yaml --apply`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndexes(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "index file")
	cmd.Flags().BoolVar(&opts.Apply, "apply", false, "create the indexes on the configured database")

	return cmd
}

func runIndexes(cmd *cobra.Command, opts *IndexesOptions) error {
	idx := registry.Indexes()
	if opts.File == "" && len(idx) == 0 {
		return fmt.Errorf("no models registered: pass an index file with --file")
	}
	if opts.File != "" {
		var err error
		if idx, err = registry.LoadIndexFile(opts.File); err != nil {
			return err
		}
	}

	if opts.Apply {
		cfg, logger, err := opts.load()
		if err != nil {
			return err
		}
		cfg.Database.AutoIndex = false
		db, err := database.Connect(cmd.Context(), *cfg, database.WithLogger(logger))
		if err != nil {
			return err
		}
		defer db.Close(context.WithoutCancel(cmd.Context()))
		if err := db.EnsureIndexes(cmd.Context(), idx); err != nil {
			return err
		}
	}

	return opts.print(cmd.OutOrStdout(), idx, func(w io.Writer) {
		colls := registry.Collections(idx)
		if len(colls) == 0 {
			fmt.Fprintln(w, "no indexes")
			return
		}
		for _, c := range colls {
			fmt.Fprintf(w, "%s\n", c)
			for _, s := range idx[c] {
				keys := make([]string, 0, len(s.Keys))
				for _, k := range s.Keys {
					order := k.Order
					if order == 0 {
						order = 1
					}
					keys = append(keys, fmt.Sprintf("%s:%d", k.Field, order))
				}
				flags := ""
				if s.Unique {
					flags += " unique"
				}
				if s.Sparse {
					flags += " sparse"
				}
				fmt.Fprintf(w, "  %s %v%s\n", s.Name, keys, flags)
			}
		}
	})
}
