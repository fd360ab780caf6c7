/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package logging builds the zerolog loggers used by the database layer and
// the command line tool.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config contains logger configuration options.
type Config struct {
	// Level is the minimum log level (trace, debug, info, warn, error, fatal, panic).
	Level string `mapstructure:"level"`

	// Format is the output format (json, console, pretty).
	Format string `mapstructure:"format"`

	// Output is the output destination (stdout, stderr).
	Output string `mapstructure:"output"`

	// AddSource adds source file and line number to log entries.
	AddSource bool `mapstructure:"add_source"`

	// TimeFormat is the time format for timestamps.
	TimeFormat string `mapstructure:"time_format"`

	// Writer overrides Output when set.
	Writer io.Writer `mapstructure:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "json",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	}
}

// NewLogger creates a zerolog logger from cfg. The level applies to the
// returned logger only.
func NewLogger(cfg Config) zerolog.Logger {
	output := cfg.Writer
	if output == nil {
		switch strings.ToLower(cfg.Output) {
		case "stderr":
			output = os.Stderr
		default:
			output = os.Stdout
		}
	}

	timeFormat := cfg.TimeFormat
	if timeFormat == "" {
		timeFormat = time.RFC3339
	}

	switch strings.ToLower(cfg.Format) {
	case "console", "pretty":
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: timeFormat,
		}
	}

	ctx := zerolog.New(output).With().Timestamp()
	if cfg.AddSource {
		ctx = ctx.Caller()
	}
	return ctx.Logger().Level(ParseLevel(cfg.Level))
}

// ParseLevel converts a level name to a zerolog.Level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// WithCollection adds the collection name to a logger.
func WithCollection(logger zerolog.Logger, collection string) zerolog.Logger {
	return logger.With().Str("collection", collection).Logger()
}
