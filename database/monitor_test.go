/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package database

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/event"

	"github.com/suparena/docstore/logging"
)

func TestCommandMonitor(t *testing.T) {
	t.Cleanup(func() { SetDebug(false) })
	ctx := context.Background()

	var buf bytes.Buffer
	logger := logging.NewLogger(logging.Config{Level: "debug", Writer: &buf})
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	monitor := NewCommandMonitor(logger, metrics)

	body, err := bson.Marshal(bson.D{{Key: "find", Value: "users"}})
	require.NoError(t, err)
	started := &event.CommandStartedEvent{Command: body, DatabaseName: "test", CommandName: "find", RequestID: 7}
	succeeded := &event.CommandSucceededEvent{CommandFinishedEvent: event.CommandFinishedEvent{CommandName: "find", RequestID: 7, Duration: 3 * time.Millisecond}}
	failed := &event.CommandFailedEvent{CommandFinishedEvent: event.CommandFinishedEvent{CommandName: "insert", RequestID: 8, Duration: time.Millisecond}, Failure: "E11000"}

	SetDebug(false)
	monitor.Started(ctx, started)
	monitor.Succeeded(ctx, succeeded)
	assert.Empty(t, buf.String(), "commands are only logged in debug")

	SetDebug(true)
	monitor.Started(ctx, started)
	monitor.Succeeded(ctx, succeeded)
	monitor.Failed(ctx, failed)
	out := buf.String()
	assert.Contains(t, out, `"command":"find"`)
	assert.Contains(t, out, `"body":{`)
	assert.Contains(t, out, `"request_id":7`)
	assert.Contains(t, out, "mongo command failed")

	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.Commands.WithLabelValues("find", "succeeded")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.Commands.WithLabelValues("insert", "failed")))
	assert.Equal(t, 2, testutil.CollectAndCount(metrics.CommandDuration))

	// metrics are optional
	NewCommandMonitor(logger, nil).Succeeded(ctx, succeeded)
}
