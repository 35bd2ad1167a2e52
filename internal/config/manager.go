// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package config

import (
	"context"
	"log/slog"

	"github.com/holomush/chatcmdlog/internal/store"
	"github.com/holomush/chatcmdlog/pkg/errutil"
)

// Manager reads and writes the configuration document.
type Manager struct {
	store  store.DocumentStore
	name   string
	logger *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithDocumentName overrides DocumentName.
func WithDocumentName(name string) Option {
	return func(m *Manager) {
		m.name = name
	}
}

// WithLogger sets the logger used for repair warnings and persist failures.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager backed by ds.
func NewManager(ds store.DocumentStore, opts ...Option) *Manager {
	m := &Manager{
		store:  ds,
		name:   DocumentName,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DocumentName returns the name the configuration is stored under.
func (m *Manager) DocumentName() string {
	return m.name
}

// LoadDefault returns Default and persists it. It always succeeds; a failed
// write is logged.
func (m *Manager) LoadDefault(ctx context.Context) Configuration {
	cfg := Default()
	if err := m.Save(ctx, cfg); err != nil {
		errutil.LogError(m.logger, "failed to persist default configuration", err)
	}
	return cfg
}

// Load reads, repairs, and re-saves the configuration. The repaired form is
// written back even when nothing changed.
//
// A missing, unreadable, or malformed document yields a CONFIG_PARSE_ERROR;
// callers fall back to LoadDefault.
func (m *Manager) Load(ctx context.Context) (Configuration, error) {
	raw, err := m.store.Read(ctx, m.name)
	if err != nil {
		return Configuration{}, ErrConfigParse(m.name, err)
	}

	cfg, repairs, err := Parse(raw)
	if err != nil {
		return Configuration{}, err
	}

	for _, repair := range repairs {
		if IsInvalidLogMode(repair) {
			m.logger.Warn("invalid log mode in config, defaulting to PlayersOnly",
				"document", m.name,
				"log_mode", valueOf(repair),
			)
			continue
		}
		m.logger.Debug("repaired config value", "document", m.name, "repair", repair.Error())
	}

	if err := m.Save(ctx, cfg); err != nil {
		errutil.LogError(m.logger, "failed to persist repaired configuration", err)
	}
	return cfg, nil
}

// Save writes the whole configuration, replacing any previous version.
func (m *Manager) Save(ctx context.Context, cfg Configuration) error {
	data, err := Marshal(cfg)
	if err != nil {
		return store.ErrPersist(m.name, err)
	}
	if err := m.store.Write(ctx, m.name, data); err != nil {
		return store.ErrPersist(m.name, err)
	}
	return nil
}
