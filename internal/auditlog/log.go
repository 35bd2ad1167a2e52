// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package auditlog keeps the append-only command log and writes it through
// to a document store on every change.
package auditlog

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/goccy/go-json"
	"github.com/samber/oops"

	"github.com/holomush/chatcmdlog/internal/store"
	"github.com/holomush/chatcmdlog/pkg/errutil"
)

// DocumentName is the logical name of the log document.
const DocumentName = "CommandChatLogger"

// CodeDataLoad marks an absent or unreadable log document.
const CodeDataLoad = "DATA_LOAD_ERROR"

// Log is the in-memory command log and its persisted copy.
//
// Log is not safe for concurrent use; callers serialize access.
type Log struct {
	store   store.DocumentStore
	name    string
	logger  *slog.Logger
	entries []Entry
}

// Option configures a Log.
type Option func(*Log)

// WithDocumentName overrides DocumentName.
func WithDocumentName(name string) Option {
	return func(l *Log) {
		l.name = name
	}
}

// WithLogger sets the logger for load diagnostics and persist failures.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Log) {
		l.logger = logger
	}
}

// New creates an empty Log backed by ds. Call Load to read existing entries.
func New(ds store.DocumentStore, opts ...Option) *Log {
	l := &Log{
		store:  ds,
		name:   DocumentName,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// DocumentName returns the name the log is stored under.
func (l *Log) DocumentName() string {
	return l.name
}

// Load replaces the in-memory entries with the persisted ones and returns a
// copy. An absent or unreadable document is treated as a first run: the
// log starts empty and the empty document is written immediately.
func (l *Log) Load(ctx context.Context) []Entry {
	entries, err := l.read(ctx)
	if err != nil {
		l.logger.Debug("starting with an empty command log", "document", l.name, "reason", err.Error())
		l.entries = nil
		if err := l.persist(ctx); err != nil {
			errutil.LogError(l.logger, "failed to persist empty command log", err)
		}
		return nil
	}

	l.entries = entries
	return l.Entries()
}

// Append adds entry and persists the whole log. On a persist failure the
// entry is kept in memory and written with the next successful persist.
func (l *Log) Append(ctx context.Context, entry Entry) error {
	l.entries = append(l.entries, entry)
	return l.persist(ctx)
}

// WipeAll removes every entry and persists the empty log.
func (l *Log) WipeAll(ctx context.Context) error {
	l.entries = nil
	return l.persist(ctx)
}

// Entries returns a copy of the log in insertion order.
func (l *Log) Entries() []Entry {
	return slices.Clone(l.entries)
}

// Len returns the number of entries.
func (l *Log) Len() int {
	return len(l.entries)
}

func (l *Log) read(ctx context.Context) ([]Entry, error) {
	raw, err := l.store.Read(ctx, l.name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, oops.Code(CodeDataLoad).With("document", l.name).Errorf("log document does not exist")
		}
		return nil, oops.Code(CodeDataLoad).With("document", l.name).Wrap(err)
	}

	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, oops.Code(CodeDataLoad).With("document", l.name).Wrap(err)
	}
	return entries, nil
}

func (l *Log) persist(ctx context.Context) error {
	entries := l.entries
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return store.ErrPersist(l.name, err)
	}
	if err := l.store.Write(ctx, l.name, data); err != nil {
		return store.ErrPersist(l.name, err)
	}
	return nil
}
