// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/chatcmdlog/internal/auditlog"
	"github.com/holomush/chatcmdlog/internal/config"
	"github.com/holomush/chatcmdlog/internal/ingest"
	"github.com/holomush/chatcmdlog/internal/observability"
	"github.com/holomush/chatcmdlog/internal/recorder"
	"github.com/holomush/chatcmdlog/internal/store"
	"github.com/holomush/chatcmdlog/pkg/errutil"
)

const shutdownTimeout = 5 * time.Second

// NewRunCmd creates the run subcommand.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Record chat commands from a host event stream",
		Long: `Read newline-delimited JSON host events from --input (stdin by
default) and record qualifying chat commands until the stream ends or the
process receives SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setupCommand(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runRecorder(ctx, cmd, cfg, logger)
		},
	}

	cmd.Flags().String("input", defaultInput, "event stream path, - for stdin")
	cmd.Flags().String("metrics-addr", defaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")

	return cmd
}

// runRecorder wires the stores, recorder, event stream and observability
// server and blocks until the stream ends or ctx is cancelled.
func runRecorder(ctx context.Context, cmd *cobra.Command, cfg *appConfig, logger *slog.Logger) error {
	logger = logger.With("run_id", ulid.Make().String())

	stores, err := openStores(ctx, cfg)
	if err != nil {
		return oops.Wrapf(err, "open storage")
	}
	defer func() {
		if closeErr := stores.close(); closeErr != nil {
			errutil.LogError(logger, "failed to close storage", closeErr)
		}
	}()

	roster := ingest.NewRoster()
	rec, err := recorder.New(
		config.NewManager(stores.config,
			config.WithDocumentName(cfg.Documents.Config),
			config.WithLogger(logger),
		),
		auditlog.New(stores.data,
			auditlog.WithDocumentName(cfg.Documents.Data),
			auditlog.WithLogger(logger),
		),
		roster,
		recorder.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	stream, err := ingest.NewStream(rec, roster, ingest.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var obsServer *observability.Server
	if cfg.MetricsAddr != "" {
		obsServer = observability.NewServer(cfg.MetricsAddr, rec.Ready,
			observability.WithLogger(logger),
			observability.WithBuildInfo(version),
			observability.WithRegistrations(store.RegisterMetrics, recorder.RegisterMetrics, ingest.RegisterMetrics),
		)
		obsErrCh, err := obsServer.Start()
		if err != nil {
			return oops.Wrapf(err, "start observability server")
		}
		go monitorServerErrors(ctx, cancel, obsErrCh, logger)
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer shutdownCancel()
			if stopErr := obsServer.Stop(shutdownCtx); stopErr != nil {
				errutil.LogWarn(logger, "error stopping observability server", stopErr)
			}
		}()
	}

	rec.Init(ctx)

	in, closeInput, err := openInput(cmd, cfg.Input)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := closeInput(); closeErr != nil {
			logger.Debug("error closing event stream", "error", closeErr)
		}
	}()

	logger.Info("recording chat commands",
		"input", cfg.Input,
		"storage", cfg.Storage.Backend,
		"config_document", cfg.Documents.Config,
		"data_document", cfg.Documents.Data,
	)

	err = stream.Run(ctx, in)
	if errors.Is(err, context.Canceled) {
		logger.Info("shutting down")
		return nil
	}
	return err
}

// monitorServerErrors cancels ctx when the server reports a failure.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, logger *slog.Logger) {
	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok && err != nil {
			errutil.LogError(logger, "observability server failed", err)
			cancel()
		}
	}
}
