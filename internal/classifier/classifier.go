// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package classifier decides which chat messages become command log entries.
package classifier

import (
	"strings"
	"time"

	"github.com/holomush/chatcmdlog/internal/auditlog"
	"github.com/holomush/chatcmdlog/internal/config"
)

// PrivilegeLevel is the host's auth level for a player.
type PrivilegeLevel int

// Privilege levels reported by the host.
const (
	PrivilegeRegular   PrivilegeLevel = 0
	PrivilegeModerator PrivilegeLevel = 1
	PrivilegeOwner     PrivilegeLevel = 2
)

// IsStaff reports whether the level is moderator or above.
func (p PrivilegeLevel) IsStaff() bool {
	return p >= PrivilegeModerator
}

// Reason explains a classification outcome.
type Reason string

// Classification outcomes.
const (
	ReasonRecorded   Reason = "recorded"
	ReasonDisabled   Reason = "disabled"
	ReasonNotCommand Reason = "not_command"
	ReasonLogMode    Reason = "log_mode"
	ReasonIgnored    Reason = "ignored"
)

// Reasons lists every outcome, for metric pre-registration.
var Reasons = []Reason{ReasonRecorded, ReasonDisabled, ReasonNotCommand, ReasonLogMode, ReasonIgnored}

// Event is one chat message as delivered by the host.
type Event struct {
	PlayerName string
	PlayerID   uint64
	Privilege  PrivilegeLevel
	Message    string
}

// Decision is the result of classifying an Event. Entry is only set when
// Record is true.
type Decision struct {
	Record  bool
	Reason  Reason
	Command string
	Entry   auditlog.Entry
}

// Classifier applies the log mode and ignore list to chat events.
type Classifier struct {
	now func() time.Time
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithClock replaces time.Now as the source of entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Classifier) {
		c.now = now
	}
}

// New creates a Classifier.
func New(opts ...Option) *Classifier {
	c := &Classifier{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ExtractCommand returns the command token of a chat message: the text
// after the leading "/" up to the first space. ok is false when message is
// not a command.
func ExtractCommand(message string) (command string, ok bool) {
	rest, found := strings.CutPrefix(message, "/")
	if !found {
		return "", false
	}
	command, _, _ = strings.Cut(rest, " ")
	return command, true
}

// Classify decides whether ev is recorded under cfg.
func (c *Classifier) Classify(ev Event, cfg config.Configuration) Decision {
	if !cfg.Enabled {
		return Decision{Reason: ReasonDisabled}
	}

	command, ok := ExtractCommand(ev.Message)
	if !ok {
		return Decision{Reason: ReasonNotCommand}
	}

	if !modeAllows(cfg.LogMode, ev.Privilege) {
		return Decision{Reason: ReasonLogMode, Command: command}
	}

	if cfg.IsIgnored(command) {
		return Decision{Reason: ReasonIgnored, Command: command}
	}

	name := ev.PlayerName
	if name == "" {
		name = auditlog.UnknownPlayer
	}

	return Decision{
		Record:  true,
		Reason:  ReasonRecorded,
		Command: command,
		Entry: auditlog.Entry{
			Timestamp:   auditlog.FormatTimestamp(c.now()),
			PlayerName:  name,
			SteamID:     ev.PlayerID,
			Command:     command,
			FullMessage: ev.Message,
		},
	}
}

// modeAllows applies the log mode. Unknown modes behave as PlayersOnly.
func modeAllows(mode config.LogMode, level PrivilegeLevel) bool {
	switch mode {
	case config.LogEveryone:
		return true
	case config.LogAdminsOnly:
		return level.IsStaff()
	default:
		return !level.IsStaff()
	}
}
