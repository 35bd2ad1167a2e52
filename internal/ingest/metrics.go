// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package ingest

import "github.com/prometheus/client_golang/prometheus"

// Event status label values.
const (
	StatusDispatched = "dispatched"
	StatusFailed     = "failed"
	StatusInvalid    = "invalid"
)

// Events counts host events by type and status.
// Invalid lines are counted with type "unknown".
var Events = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "chatcmdlog_ingest_events_total",
		Help: "Total number of host events by type and status",
	},
	[]string{"type", "status"},
)

// ConnectedPlayers tracks the roster size.
var ConnectedPlayers = prometheus.NewGauge(prometheus.GaugeOpts{
	Name: "chatcmdlog_connected_players",
	Help: "Current number of connected players",
})

// RegisterMetrics registers ingest metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Events, ConnectedPlayers)
}
