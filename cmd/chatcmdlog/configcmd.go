// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/holomush/chatcmdlog/internal/config"
	"github.com/holomush/chatcmdlog/pkg/errutil"
)

// NewConfigCmd creates the config subcommand.
func NewConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Load, repair and print the operator configuration",
		Long: `Load the operator configuration document the same way the recorder
does at startup, write the repaired document back, and print it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setupCommand(cmd)
			if err != nil {
				return err
			}

			stores, err := openStores(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := stores.close(); closeErr != nil {
					errutil.LogError(logger, "failed to close storage", closeErr)
				}
			}()

			m := config.NewManager(stores.config,
				config.WithDocumentName(cfg.Documents.Config),
				config.WithLogger(logger),
			)
			operator, err := m.Load(cmd.Context())
			if err != nil {
				errutil.LogWarn(logger, "error loading config, using default", err)
				operator = m.LoadDefault(cmd.Context())
			}

			doc, err := config.Marshal(operator)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(doc))
			return err
		},
	}
}
