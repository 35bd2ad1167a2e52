// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/holomush/chatcmdlog/internal/auditlog"
	"github.com/holomush/chatcmdlog/internal/config"
	"github.com/holomush/chatcmdlog/internal/logging"
	"github.com/holomush/chatcmdlog/internal/store"
	"github.com/holomush/chatcmdlog/internal/xdg"
)

// envPrefix selects the environment variables read into the process config.
// A double underscore separates nested keys: CHATCMDLOG_STORAGE__BACKEND.
const envPrefix = "CHATCMDLOG_"

// Storage backends.
const (
	backendFile   = "file"
	backendBadger = "badger"
	backendMemory = "memory"
)

var (
	logFormats      = []string{"json", "text"}
	storageBackends = []string{backendFile, backendBadger, backendMemory}
)

// appConfig is the process configuration. The operator configuration that
// controls what gets recorded lives in a document, see internal/config.
type appConfig struct {
	LogFormat   string          `koanf:"log_format"`
	LogLevel    string          `koanf:"log_level"`
	MetricsAddr string          `koanf:"metrics_addr"`
	Input       string          `koanf:"input"`
	Storage     storageConfig   `koanf:"storage"`
	Documents   documentsConfig `koanf:"documents"`
}

type storageConfig struct {
	Backend   string `koanf:"backend"`
	ConfigDir string `koanf:"config_dir"`
	DataDir   string `koanf:"data_dir"`
}

type documentsConfig struct {
	Config string `koanf:"config"`
	Data   string `koanf:"data"`
}

// Default values for process configuration.
const (
	defaultLogFormat   = "json"
	defaultLogLevel    = "info"
	defaultMetricsAddr = "127.0.0.1:9100"
	defaultInput       = "-"
)

func defaultAppConfig() appConfig {
	cfg := appConfig{
		LogFormat:   defaultLogFormat,
		LogLevel:    defaultLogLevel,
		MetricsAddr: defaultMetricsAddr,
		Input:       defaultInput,
		Storage:     storageConfig{Backend: backendFile},
		Documents: documentsConfig{
			Config: config.DocumentName,
			Data:   auditlog.DocumentName,
		},
	}
	// Left blank when HOME is unset; Validate reports it for disk backends.
	if dir, err := xdg.ConfigDir(); err == nil {
		cfg.Storage.ConfigDir = dir
	}
	if dir, err := xdg.DataDir(); err == nil {
		cfg.Storage.DataDir = dir
	}
	return cfg
}

// flagKeys maps command-line flags to process config keys.
var flagKeys = map[string]string{
	"log-format":      "log_format",
	"log-level":       "log_level",
	"metrics-addr":    "metrics_addr",
	"input":           "input",
	"storage":         "storage.backend",
	"config-dir":      "storage.config_dir",
	"data-dir":        "storage.data_dir",
	"config-document": "documents.config",
	"data-document":   "documents.data",
}

// loadAppConfig layers defaults, the YAML file at path (if any), the
// environment and explicitly set flags, in increasing priority.
func loadAppConfig(flags *pflag.FlagSet, path string) (*appConfig, error) {
	k := koanf.New(".")

	defaults := defaultAppConfig()
	if err := k.Load(structs.Provider(&defaults, "koanf"), nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").Wrapf(err, "load defaults")
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrapf(err, "load config file")
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").Wrapf(err, "load environment")
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").Wrapf(err, "load flags")
		}
	}

	cfg := &appConfig{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").Wrapf(err, "unmarshal configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey turns CHATCMDLOG_STORAGE__DATA_DIR into storage.data_dir.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Validate checks that the configuration is usable.
func (c *appConfig) Validate() error {
	invalid := func(key string, value any, msg string) error {
		return oops.Code("CONFIG_INVALID").With("key", key).With("value", value).Errorf("%s", msg)
	}

	if !slices.Contains(logFormats, c.LogFormat) {
		return invalid("log_format", c.LogFormat, "log_format must be 'json' or 'text'")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return invalid("log_level", c.LogLevel, "log_level must be debug, info, warn or error")
	}
	if c.Input == "" {
		return invalid("input", c.Input, "input is required")
	}
	if !slices.Contains(storageBackends, c.Storage.Backend) {
		return invalid("storage.backend", c.Storage.Backend, "storage.backend must be file, badger or memory")
	}
	if c.Storage.Backend != backendMemory {
		if c.Storage.ConfigDir == "" {
			return invalid("storage.config_dir", c.Storage.ConfigDir, "storage.config_dir is required")
		}
		if c.Storage.DataDir == "" {
			return invalid("storage.data_dir", c.Storage.DataDir, "storage.data_dir is required")
		}
	}
	if c.Documents.Config == "" || c.Documents.Data == "" {
		return invalid("documents", c.Documents, "document names must not be empty")
	}
	if c.Storage.Backend == backendFile && sameDir(c.Storage.ConfigDir, c.Storage.DataDir) &&
		strings.EqualFold(c.Documents.Config, c.Documents.Data) {
		return invalid("storage.data_dir", c.Storage.DataDir,
			"storage.config_dir and storage.data_dir must differ when both documents share a name")
	}
	return nil
}

// sameDir reports whether a and b name the same directory after cleaning.
func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

// stores holds the opened document stores.
type stores struct {
	config store.DocumentStore
	data   store.DocumentStore
	close  func() error
}

// openStores opens the document stores for the configured backend. The
// operator configuration is a JSON file for the file and badger backends
// so it stays hand-editable; badger only holds the command log.
func openStores(_ context.Context, cfg *appConfig) (*stores, error) {
	noop := func() error { return nil }

	if cfg.Storage.Backend == backendMemory {
		return &stores{
			config: store.Instrument(store.NewMemoryStore(), backendMemory),
			data:   store.Instrument(store.NewMemoryStore(), backendMemory),
			close:  noop,
		}, nil
	}

	configStore, err := store.NewFileStore(cfg.Storage.ConfigDir)
	if err != nil {
		return nil, err
	}
	s := &stores{config: store.Instrument(configStore, backendFile), close: noop}

	switch cfg.Storage.Backend {
	case backendBadger:
		if err := xdg.EnsureDir(cfg.Storage.DataDir); err != nil {
			return nil, err
		}
		db, err := store.OpenBadgerStore(filepath.Join(cfg.Storage.DataDir, "badger"))
		if err != nil {
			return nil, err
		}
		s.data = store.Instrument(db, backendBadger)
		s.close = db.Close
	default:
		dataStore, err := store.NewFileStore(cfg.Storage.DataDir)
		if err != nil {
			return nil, err
		}
		s.data = store.Instrument(dataStore, backendFile)
	}
	return s, nil
}

// openInput returns the event stream named by input. "-" is the command's
// standard input, which is never closed by the returned func.
func openInput(cmd *cobra.Command, input string) (io.Reader, func() error, error) {
	if input == defaultInput {
		return cmd.InOrStdin(), func() error { return nil }, nil
	}
	f, err := os.Open(input) //nolint:gosec // operator-supplied path
	if err != nil {
		return nil, nil, oops.With("input", input).Wrapf(err, "open event stream")
	}
	return f, f.Close, nil
}
