/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/suparena/docstore"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := docstore.GetVersionInfo()
			return rootOpts.print(cmd.OutOrStdout(), info, func(w io.Writer) {
				fmt.Fprintf(w, "docstore version %s\n", info.Version)
				fmt.Fprintf(w, "Git commit: %s\n", info.GitCommit)
				fmt.Fprintf(w, "Build date: %s\n", info.BuildDate)
				fmt.Fprintf(w, "Go version: %s\n", info.GoVersion)
			})
		},
	}
}
