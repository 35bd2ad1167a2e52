// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/chatcmdlog/internal/auditlog"
	"github.com/holomush/chatcmdlog/internal/config"
	"github.com/holomush/chatcmdlog/pkg/errutil"
)

// testFlags mirrors the flags NewRootCmd and NewRunCmd register.
func testFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	cmd := NewRootCmd()
	run, _, err := cmd.Find([]string{"run"})
	require.NoError(t, err)
	flags := run.Flags()
	flags.AddFlagSet(cmd.PersistentFlags())
	require.NoError(t, flags.Parse(args))
	return flags
}

func TestLoadAppConfig_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_DATA_HOME", "")

	cfg, err := loadAppConfig(testFlags(t), "")
	require.NoError(t, err)

	assert.Equal(t, defaultLogFormat, cfg.LogFormat)
	assert.Equal(t, defaultLogLevel, cfg.LogLevel)
	assert.Equal(t, defaultMetricsAddr, cfg.MetricsAddr)
	assert.Equal(t, "-", cfg.Input)
	assert.Equal(t, backendFile, cfg.Storage.Backend)
	assert.Equal(t, filepath.Join(home, ".config", "chatcmdlog"), cfg.Storage.ConfigDir)
	assert.Equal(t, filepath.Join(home, ".local", "share", "chatcmdlog"), cfg.Storage.DataDir)
	assert.Equal(t, config.DocumentName, cfg.Documents.Config)
	assert.Equal(t, auditlog.DocumentName, cfg.Documents.Data)
}

func TestLoadAppConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chatcmdlog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_format: text
log_level: debug
metrics_addr: ""
storage:
  backend: badger
  data_dir: /from/file
documents:
  data: FileLog
`), 0o600))

	t.Setenv("HOME", dir)
	t.Setenv("CHATCMDLOG_LOG_LEVEL", "warn")
	t.Setenv("CHATCMDLOG_STORAGE__DATA_DIR", "/from/env")

	cfg, err := loadAppConfig(testFlags(t, "--data-dir", "/from/flag", "--input", "events.jsonl"), path)
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.LogFormat, "file overrides defaults")
	assert.Empty(t, cfg.MetricsAddr, "file can disable metrics")
	assert.Equal(t, backendBadger, cfg.Storage.Backend)
	assert.Equal(t, "FileLog", cfg.Documents.Data)
	assert.Equal(t, "warn", cfg.LogLevel, "env overrides file")
	assert.Equal(t, "/from/flag", cfg.Storage.DataDir, "flags override env")
	assert.Equal(t, "events.jsonl", cfg.Input)
}

func TestLoadAppConfig_UnchangedFlagsKeepLowerLayers(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CHATCMDLOG_LOG_FORMAT", "text")

	cfg, err := loadAppConfig(testFlags(t), "")
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoadAppConfig_MissingFile(t *testing.T) {
	_, err := loadAppConfig(testFlags(t), filepath.Join(t.TempDir(), "missing.yaml"))

	errutil.AssertErrorCode(t, err, "CONFIG_LOAD_FAILED")
}

func TestAppConfig_Validate(t *testing.T) {
	valid := func() appConfig {
		return appConfig{
			LogFormat: "json",
			LogLevel:  "info",
			Input:     "-",
			Storage:   storageConfig{Backend: backendFile, ConfigDir: "/c", DataDir: "/d"},
			Documents: documentsConfig{Config: "a", Data: "b"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*appConfig)
		key    string
	}{
		{"log format", func(c *appConfig) { c.LogFormat = "xml" }, "log_format"},
		{"log level", func(c *appConfig) { c.LogLevel = "loud" }, "log_level"},
		{"input", func(c *appConfig) { c.Input = "" }, "input"},
		{"backend", func(c *appConfig) { c.Storage.Backend = "postgres" }, "storage.backend"},
		{"config dir", func(c *appConfig) { c.Storage.ConfigDir = "" }, "storage.config_dir"},
		{"data dir", func(c *appConfig) { c.Storage.Backend = backendBadger; c.Storage.DataDir = "" }, "storage.data_dir"},
		{"document name", func(c *appConfig) { c.Documents.Data = "" }, "documents"},
		{"shared file location", func(c *appConfig) {
			c.Storage.DataDir = "/c/"
			c.Documents = documentsConfig{Config: "CommandChatLogger", Data: "commandchatlogger"}
		}, "storage.data_dir"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
			errutil.AssertErrorContext(t, err, "key", tt.key)
		})
	}

	t.Run("valid", func(t *testing.T) {
		cfg := valid()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("shared directory with distinct documents", func(t *testing.T) {
		cfg := valid()
		cfg.Storage.DataDir = cfg.Storage.ConfigDir
		assert.NoError(t, cfg.Validate())
	})

	t.Run("shared directory under badger", func(t *testing.T) {
		cfg := valid()
		cfg.Storage.Backend = backendBadger
		cfg.Storage.DataDir = cfg.Storage.ConfigDir
		cfg.Documents = documentsConfig{Config: "CommandChatLogger", Data: "CommandChatLogger"}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("memory needs no directories", func(t *testing.T) {
		cfg := valid()
		cfg.Storage = storageConfig{Backend: backendMemory}
		assert.NoError(t, cfg.Validate())
	})
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "log_level", envKey("CHATCMDLOG_LOG_LEVEL"))
	assert.Equal(t, "storage.data_dir", envKey("CHATCMDLOG_STORAGE__DATA_DIR"))
	assert.Equal(t, "documents.config", envKey("CHATCMDLOG_DOCUMENTS__CONFIG"))
}

func TestOpenStores(t *testing.T) {
	ctx := context.Background()

	for _, backend := range storageBackends {
		t.Run(backend, func(t *testing.T) {
			root := t.TempDir()
			cfg := &appConfig{Storage: storageConfig{
				Backend:   backend,
				ConfigDir: filepath.Join(root, "config"),
				DataDir:   filepath.Join(root, "data"),
			}}

			s, err := openStores(ctx, cfg)
			require.NoError(t, err)
			t.Cleanup(func() { assert.NoError(t, s.close()) })

			require.NoError(t, s.config.Write(ctx, "CommandChatLogger", []byte(`{"config":true}`)))
			require.NoError(t, s.data.Write(ctx, "CommandChatLogger", []byte(`[]`)))

			raw, err := s.config.Read(ctx, "CommandChatLogger")
			require.NoError(t, err)
			assert.JSONEq(t, `{"config":true}`, string(raw), "config and data documents do not collide")

			if backend != backendMemory {
				assert.FileExists(t, filepath.Join(root, "config", "CommandChatLogger.json"))
			}
		})
	}
}

func TestLoadAppConfig_RejectsSharedDocumentFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()

	_, err := loadAppConfig(testFlags(t, "--config-dir", dir, "--data-dir", dir), "")

	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
	errutil.AssertErrorContext(t, err, "key", "storage.data_dir")
}
