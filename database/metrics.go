/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package database

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the Prometheus metrics fed by the command monitor.
type Metrics struct {
	// Commands counts commands by name and status (succeeded, failed).
	Commands *prometheus.CounterVec

	// CommandDuration observes command round trips in seconds.
	CommandDuration *prometheus.HistogramVec
}

// NewMetrics registers the metrics with reg. A nil reg leaves them
// unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Commands: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docstore",
			Name:      "commands_total",
			Help:      "Total number of store commands by outcome",
		}, []string{"command", "status"}),
		CommandDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "docstore",
			Name:      "command_duration_seconds",
			Help:      "Duration of store commands in seconds",
			Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"command"}),
	}
}

func (m *Metrics) observe(command, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.Commands.WithLabelValues(command, status).Inc()
	m.CommandDuration.WithLabelValues(command).Observe(d.Seconds())
}
