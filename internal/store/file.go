// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/samber/oops"

	"github.com/holomush/chatcmdlog/internal/xdg"
)

const fileExt = ".json"

// FileStore keeps each document in <dir>/<name>.json.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, oops.Code("INVALID_CONFIG").Errorf("file store directory is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, oops.With("dir", dir).Wrap(err)
	}
	if err := xdg.EnsureDir(abs); err != nil {
		return nil, err
	}
	return &FileStore{dir: abs}, nil
}

// Dir returns the directory documents are stored in.
func (s *FileStore) Dir() string {
	return s.dir
}

// Path returns the file path used for name.
func (s *FileStore) Path(name string) string {
	return filepath.Join(s.dir, name+fileExt)
}

// Read loads the document file.
func (s *FileStore) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, oops.Wrap(err)
	}
	if err := validateName(name); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, oops.With("path", s.Path(name)).Wrap(err)
	}
	return data, nil
}

// Write replaces the document file atomically: the data goes to a temp file
// in the same directory, is synced, then renamed over the target.
func (s *FileStore) Write(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return oops.Wrap(err)
	}
	if err := validateName(name); err != nil {
		return err
	}

	target := s.Path(name)
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return oops.With("path", target).Wrap(err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return oops.With("path", tmpPath).Wrap(err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return oops.With("path", tmpPath).Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		return oops.With("path", tmpPath).Wrap(err)
	}
	if err := os.Chmod(tmpPath, 0o600); err != nil {
		return oops.With("path", tmpPath).Wrap(err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		return oops.With("path", target).Wrap(err)
	}
	committed = true
	return nil
}
