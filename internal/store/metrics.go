// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Operation status labels.
const (
	StatusSuccess  = "success"
	StatusNotFound = "not_found"
	StatusError    = "error"
)

// Operations is the counter for document store operations.
// Use RegisterMetrics to register this with a Prometheus registry.
var Operations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "chatcmdlog_store_operations_total",
		Help: "Total number of document store operations",
	},
	[]string{"backend", "op", "status"},
)

// OperationDuration is the histogram for document store operation latency.
// Use RegisterMetrics to register this with a Prometheus registry.
var OperationDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "chatcmdlog_store_operation_duration_seconds",
		Help:    "Document store operation duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"backend", "op"},
)

// RegisterMetrics registers store metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Operations)
	reg.MustRegister(OperationDuration)
}

// instrumented records metrics around another DocumentStore.
type instrumented struct {
	next    DocumentStore
	backend string
}

// Instrument wraps ds so every call is counted and timed under backend.
func Instrument(ds DocumentStore, backend string) DocumentStore {
	return &instrumented{next: ds, backend: backend}
}

func (s *instrumented) Read(ctx context.Context, name string) ([]byte, error) {
	start := time.Now()
	data, err := s.next.Read(ctx, name)
	s.record("read", start, err)
	//nolint:wrapcheck // decorator passes the backend error through untouched
	return data, err
}

func (s *instrumented) Write(ctx context.Context, name string, data []byte) error {
	start := time.Now()
	err := s.next.Write(ctx, name, data)
	s.record("write", start, err)
	//nolint:wrapcheck // decorator passes the backend error through untouched
	return err
}

func (s *instrumented) record(op string, start time.Time, err error) {
	status := StatusSuccess
	switch {
	case errors.Is(err, ErrNotFound):
		status = StatusNotFound
	case err != nil:
		status = StatusError
	}
	Operations.WithLabelValues(s.backend, op, status).Inc()
	OperationDuration.WithLabelValues(s.backend, op).Observe(time.Since(start).Seconds())
}
