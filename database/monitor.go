/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package database

import (
	"context"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/event"
)

// NewCommandMonitor returns a driver monitor that feeds metrics, when not
// nil, and logs every command at debug level while Debug is on.
func NewCommandMonitor(logger zerolog.Logger, metrics *Metrics) *event.CommandMonitor {
	return &event.CommandMonitor{
		Started: func(_ context.Context, evt *event.CommandStartedEvent) {
			if !Debug() {
				return
			}
			logger.Debug().
				Str("database", evt.DatabaseName).
				Str("command", evt.CommandName).
				Int64("request_id", evt.RequestID).
				RawJSON("body", []byte(evt.Command.String())).
				Msg("mongo command started")
		},
		Succeeded: func(_ context.Context, evt *event.CommandSucceededEvent) {
			metrics.observe(evt.CommandName, "succeeded", evt.Duration)
			if !Debug() {
				return
			}
			logger.Debug().
				Str("command", evt.CommandName).
				Int64("request_id", evt.RequestID).
				Dur("duration", evt.Duration).
				Msg("mongo command succeeded")
		},
		Failed: func(_ context.Context, evt *event.CommandFailedEvent) {
			metrics.observe(evt.CommandName, "failed", evt.Duration)
			if !Debug() {
				return
			}
			logger.Debug().
				Str("command", evt.CommandName).
				Int64("request_id", evt.RequestID).
				Dur("duration", evt.Duration).
				Str("failure", evt.Failure).
				Msg("mongo command failed")
		},
	}
}
