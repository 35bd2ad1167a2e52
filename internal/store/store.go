// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package store provides whole-document storage backends.
//
// A document is an opaque byte slice addressed by a logical name. Writes
// replace the previous document in full; a reader never observes a partial
// write.
package store

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/samber/oops"
)

// ErrNotFound is returned when no document exists under a name.
var ErrNotFound = errors.New("document not found")

// DocumentStore reads and writes whole documents by name.
type DocumentStore interface {
	// Read returns the stored document or ErrNotFound.
	Read(ctx context.Context, name string) ([]byte, error)

	// Write replaces the document stored under name.
	Write(ctx context.Context, name string, data []byte) error
}

// validateName rejects names that could escape a backend's namespace.
func validateName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return oops.With("name", name).
			Errorf("invalid document name %q", name)
	}
	return nil
}

// MemoryStore is an in-memory DocumentStore for tests and ephemeral runs.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

// Read returns a copy of the stored document.
func (s *MemoryStore) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, oops.Wrap(err)
	}
	if err := validateName(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.docs[name]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Write stores a copy of data under name.
func (s *MemoryStore) Write(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return oops.Wrap(err)
	}
	if err := validateName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[name] = append([]byte(nil), data...)
	return nil
}

// Delete removes a document. Missing documents are ignored.
func (s *MemoryStore) Delete(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, name)
}
