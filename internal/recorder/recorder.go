// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package recorder wires configuration, classification, and the command log
// to the host's lifecycle and chat hooks.
package recorder

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/holomush/chatcmdlog/internal/auditlog"
	"github.com/holomush/chatcmdlog/internal/classifier"
	"github.com/holomush/chatcmdlog/internal/config"
	"github.com/holomush/chatcmdlog/pkg/errutil"
)

var tracer = otel.Tracer("chatcmdlog/recorder")

// ReasonNoConnection is reported for chat from a player the host has no
// live connection for.
const ReasonNoConnection classifier.Reason = "no_connection"

// PrivilegeResolver is the host capability that reports a player's auth
// level. ok is false when the player has no live connection.
type PrivilegeResolver interface {
	Privilege(ctx context.Context, playerID uint64) (level classifier.PrivilegeLevel, ok bool)
}

// ChatEvent is a chat message delivered by the host.
type ChatEvent struct {
	PlayerID   uint64
	PlayerName string
	Message    string
	Channel    int
}

// Recorder owns the live configuration and command log. Every hook holds
// one lock, so hooks never interleave.
type Recorder struct {
	mu         sync.Mutex
	configs    *config.Manager
	log        *auditlog.Log
	classifier *classifier.Classifier
	privileges PrivilegeResolver
	logger     *slog.Logger

	cfg   config.Configuration
	ready atomic.Bool
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithClassifier replaces the default classifier.
func WithClassifier(c *classifier.Classifier) Option {
	return func(r *Recorder) {
		r.classifier = c
	}
}

// WithLogger sets the logger for lifecycle and failure messages.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// New creates a Recorder. Init must be called before any other hook.
func New(configs *config.Manager, log *auditlog.Log, privileges PrivilegeResolver, opts ...Option) (*Recorder, error) {
	if configs == nil {
		return nil, errNilDependency("config manager")
	}
	if log == nil {
		return nil, errNilDependency("command log")
	}
	if privileges == nil {
		return nil, errNilDependency("privilege resolver")
	}

	r := &Recorder{
		configs:    configs,
		log:        log,
		classifier: classifier.New(),
		privileges: privileges,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Init loads the configuration and the command log.
func (r *Recorder) Init(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.loadConfig(ctx)
	r.log.Load(ctx)
	LogEntries.Set(float64(r.log.Len()))
	r.ready.Store(true)

	r.logger.InfoContext(ctx, "command logger initialized",
		"enabled", r.cfg.Enabled,
		"log_mode", r.cfg.LogMode,
		"ignored_commands", len(r.cfg.IgnoredCommands),
		"entries", r.log.Len(),
	)
}

// Reload re-reads the configuration document.
func (r *Recorder) Reload(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.ready.Load() {
		return ErrNotInitialized("reload")
	}
	r.loadConfig(ctx)
	r.logger.InfoContext(ctx, "configuration reloaded", "enabled", r.cfg.Enabled, "log_mode", r.cfg.LogMode)
	return nil
}

// loadConfig falls back to the defaults when the document cannot be parsed.
func (r *Recorder) loadConfig(ctx context.Context) {
	cfg, err := r.configs.Load(ctx)
	if err != nil {
		errutil.LogWarn(r.logger, "error loading config, using default", err)
		cfg = r.configs.LoadDefault(ctx)
	}
	r.cfg = cfg
}

// OnNewSave wipes the command log when WipeOnReset is set. wiped reports
// whether the in-memory log was cleared; err reports a failed write.
func (r *Recorder) OnNewSave(ctx context.Context) (wiped bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.ready.Load() {
		return false, ErrNotInitialized("new_save")
	}
	if !r.cfg.WipeOnReset {
		return false, nil
	}

	err = r.log.WipeAll(ctx)
	LogEntries.Set(0)
	Wipes.Inc()
	if err != nil {
		PersistFailures.WithLabelValues("wipe").Inc()
		errutil.LogError(r.logger, "failed to persist wiped command log", err)
		return true, err
	}

	r.logger.InfoContext(ctx, "server wipe detected, command log wiped", "document", r.log.DocumentName())
	return true, nil
}

// OnPlayerChat classifies a chat message and appends it to the log when it
// qualifies. A failed write is logged and returned; the entry stays in
// memory.
func (r *Recorder) OnPlayerChat(ctx context.Context, ev ChatEvent) (decision classifier.Decision, err error) {
	ctx, span := tracer.Start(ctx, "recorder.player_chat",
		trace.WithAttributes(
			attribute.Int64("player.id", int64(ev.PlayerID)), //nolint:gosec // attribute only, wraparound is harmless
			attribute.Int("chat.channel", ev.Channel),
		),
	)
	defer func() {
		span.SetAttributes(attribute.String("chat.outcome", string(decision.Reason)))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.ready.Load() {
		return classifier.Decision{}, ErrNotInitialized("player_chat")
	}

	level, ok := r.privileges.Privilege(ctx, ev.PlayerID)
	if !ok {
		ChatEvents.WithLabelValues(string(ReasonNoConnection)).Inc()
		return classifier.Decision{Reason: ReasonNoConnection}, nil
	}

	decision = r.classifier.Classify(classifier.Event{
		PlayerName: ev.PlayerName,
		PlayerID:   ev.PlayerID,
		Privilege:  level,
		Message:    ev.Message,
	}, r.cfg)
	ChatEvents.WithLabelValues(string(decision.Reason)).Inc()

	if !decision.Record {
		return decision, nil
	}

	err = r.log.Append(ctx, decision.Entry)
	LogEntries.Set(float64(r.log.Len()))
	if err != nil {
		PersistFailures.WithLabelValues("append").Inc()
		errutil.LogError(r.logger, "failed to persist command log entry", err)
		return decision, err
	}

	r.logger.DebugContext(ctx, "command recorded",
		"player_id", ev.PlayerID,
		"command", decision.Command,
	)
	return decision, nil
}

// Ready reports whether Init has completed.
func (r *Recorder) Ready() bool {
	return r.ready.Load()
}

// Config returns a copy of the live configuration.
func (r *Recorder) Config() config.Configuration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cfg.Clone()
}

// Entries returns a copy of the command log.
func (r *Recorder) Entries() []auditlog.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.log.Entries()
}
