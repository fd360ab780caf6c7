/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package cli implements the docstore command line tool.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/suparena/docstore/database"
	"github.com/suparena/docstore/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigDir string
	Format    string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "docstore",
		Short:         "Inspect and prepare docstore databases",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigDir, "config-dir", "", "extra directory searched for config.yaml")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewVersionCommand(opts))
	cmd.AddCommand(NewPingCommand(opts))
	cmd.AddCommand(NewIndexesCommand(opts))

	return cmd
}

func (o *RootOptions) load() (*database.Config, zerolog.Logger, error) {
	var paths []string
	if o.ConfigDir != "" {
		paths = append(paths, o.ConfigDir)
	}
	cfg, err := database.Load(paths...)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	logCfg := cfg.Logging
	if logCfg.Output == "" || logCfg.Output == "stdout" {
		// stdout carries command output
		logCfg.Output = "stderr"
	}
	return cfg, logging.NewLogger(logCfg), nil
}

func (o *RootOptions) print(w io.Writer, v any, text func(io.Writer)) error {
	if o.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}
