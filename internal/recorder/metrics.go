// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package recorder

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/holomush/chatcmdlog/internal/classifier"
)

// ChatEvents counts chat events by classification outcome.
// Use RegisterMetrics to register this with a Prometheus registry.
var ChatEvents = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "chatcmdlog_chat_events_total",
		Help: "Total number of chat events by outcome",
	},
	[]string{"outcome"},
)

// LogEntries tracks the number of entries in the command log.
var LogEntries = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "chatcmdlog_log_entries",
	Help: "Current number of entries in the command log",
})

// Wipes counts command log wipes triggered by a new save.
var Wipes = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "chatcmdlog_wipes_total",
	Help: "Total number of command log wipes",
})

// PersistFailures counts failed writes of the command log.
var PersistFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "chatcmdlog_persist_failures_total",
		Help: "Total number of failed command log writes by operation",
	},
	[]string{"operation"},
)

// RegisterMetrics registers recorder metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(ChatEvents, LogEntries, Wipes, PersistFailures)

	for _, reason := range classifier.Reasons {
		ChatEvents.WithLabelValues(string(reason))
	}
	ChatEvents.WithLabelValues(string(ReasonNoConnection))
}
