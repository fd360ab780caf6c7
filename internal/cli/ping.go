/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/suparena/docstore/database"
)

// NewPingCommand creates the ping command.
func NewPingCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Connect to the configured database and ping it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := rootOpts.load()
			if err != nil {
				return err
			}
			// indexes are the indexes command's job
			cfg.Database.AutoIndex = false

			start := time.Now()
			db, err := database.Connect(cmd.Context(), *cfg,
				database.WithLogger(logger), database.WithMetrics(database.NewMetrics(nil)))
			if err != nil {
				return err
			}
			defer db.Close(context.WithoutCancel(cmd.Context()))

			result := struct {
				Database string        `json:"database"`
				Latency  time.Duration `json:"latencyNs"`
			}{cfg.Database.Name, time.Since(start)}
			return rootOpts.print(cmd.OutOrStdout(), result, func(w io.Writer) {
				fmt.Fprintf(w, "ok: %s reachable in %s\n", result.Database, result.Latency.Round(time.Millisecond))
			})
		},
	}
}
