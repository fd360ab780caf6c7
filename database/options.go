/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package database

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var debug atomic.Bool

// SetDebug turns command logging on or off for the whole process.
func SetDebug(on bool) { debug.Store(on) }

// Debug reports whether command logging is on.
func Debug() bool { return debug.Load() }

// Option configures CreateOptions and Connect.
type Option func(*settings)

type settings struct {
	logger  zerolog.Logger
	metrics *Metrics
}

// WithLogger sets the logger for connection events and debug command lines.
func WithLogger(l zerolog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithMetrics records command counts and durations.
func WithMetrics(m *Metrics) Option {
	return func(s *settings) { s.metrics = m }
}

func newSettings(opts []Option) settings {
	s := settings{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

var timeoutSetters = map[string]func(*options.ClientOptions, time.Duration){
	"connecttimeoutms":         func(o *options.ClientOptions, d time.Duration) { o.SetConnectTimeout(d) },
	"serverselectiontimeoutms": func(o *options.ClientOptions, d time.Duration) { o.SetServerSelectionTimeout(d) },
	"sockettimeoutms":          func(o *options.ClientOptions, d time.Duration) { o.SetSocketTimeout(d) },
	"heartbeatfrequencyms":     func(o *options.ClientOptions, d time.Duration) { o.SetHeartbeatInterval(d) },
	"timeoutms":                func(o *options.ClientOptions, d time.Duration) { o.SetTimeout(d) },
}

// CreateOptions builds the driver client options for cfg and attaches the
// command monitor. Outside production it also sets the process debug flag
// to cfg.Database.Debug.
func CreateOptions(cfg Config, opts ...Option) *options.ClientOptions {
	s := newSettings(opts)

	if cfg.App.Env != Production {
		SetDebug(cfg.Database.Debug)
	}

	co := options.Client().ApplyURI(cfg.Database.URI)
	if cfg.App.Name != "" {
		co.SetAppName(cfg.App.Name)
	}
	if cfg.Database.MaxPoolSize > 0 {
		co.SetMaxPoolSize(cfg.Database.MaxPoolSize)
	}
	for name, ms := range cfg.Database.TimeoutOptions {
		if set, ok := timeoutSetters[strings.ToLower(name)]; ok && ms > 0 {
			set(co, time.Duration(ms)*time.Millisecond)
		}
	}
	co.SetMonitor(NewCommandMonitor(s.logger, s.metrics))
	return co
}
