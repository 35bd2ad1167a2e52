// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/holomush/chatcmdlog/internal/logging"
)

// configFile is the --config flag shared by all subcommands.
var configFile string

// NewRootCmd creates the root command for the chatcmdlog CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chatcmdlog",
		Short: "Audit log of player chat commands",
		Long: `chatcmdlog watches a game server's chat events and keeps a
filtered, timestamped log of the slash commands players type.`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "process config file (YAML)")
	flags.String("log-format", defaultLogFormat, "log format (json or text)")
	flags.String("log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	flags.String("storage", backendFile, "storage backend for the command log (file, badger, memory)")
	flags.String("config-dir", "", "directory of the operator configuration document (default: XDG_CONFIG_HOME/chatcmdlog)")
	flags.String("data-dir", "", "directory of the command log (default: XDG_DATA_HOME/chatcmdlog)")
	flags.String("config-document", "", "operator configuration document name")
	flags.String("data-document", "", "command log document name")

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewConfigCmd())

	return cmd
}

// setupCommand loads the process config for cmd and installs the default
// logger.
func setupCommand(cmd *cobra.Command) (*appConfig, *slog.Logger, error) {
	cfg, err := loadAppConfig(cmd.Flags(), configFile)
	if err != nil {
		return nil, nil, err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logging.SetDefault(serviceName, version, cfg.LogFormat, level, cmd.ErrOrStderr()), nil
}
