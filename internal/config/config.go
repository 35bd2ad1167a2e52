// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package config loads, repairs, and persists the operator configuration
// that controls which chat commands are recorded.
package config

import (
	"slices"
	"strings"
)

// DocumentName is the logical name of the configuration document.
const DocumentName = "CommandChatLogger"

// LogMode selects which privilege tier's commands are recorded.
type LogMode string

// Log modes.
const (
	LogPlayersOnly LogMode = "PlayersOnly" // regular players only
	LogAdminsOnly  LogMode = "AdminsOnly"  // moderators and owners only
	LogEveryone    LogMode = "Everyone"    // both
)

// LogModes lists the valid modes in canonical spelling.
var LogModes = []LogMode{LogPlayersOnly, LogAdminsOnly, LogEveryone}

// ParseLogMode matches s case-insensitively, ignoring surrounding
// whitespace, and returns the canonical mode.
func ParseLogMode(s string) (LogMode, bool) {
	s = strings.TrimSpace(s)
	for _, m := range LogModes {
		if strings.EqualFold(s, string(m)) {
			return m, true
		}
	}
	return "", false
}

// DefaultIgnoredCommands seeds an empty ignore list.
var DefaultIgnoredCommands = []string{"mymini", "nomini", "fmini"}

// Configuration is the validated operator configuration.
type Configuration struct {
	Enabled         bool
	LogMode         LogMode
	WipeOnReset     bool
	IgnoredCommands []string
}

// Default returns the built-in configuration.
func Default() Configuration {
	return Configuration{
		Enabled:         true,
		LogMode:         LogPlayersOnly,
		WipeOnReset:     true,
		IgnoredCommands: slices.Clone(DefaultIgnoredCommands),
	}
}

// IsIgnored reports whether command matches an ignore-list entry,
// ignoring case.
func (c Configuration) IsIgnored(command string) bool {
	for _, ignored := range c.IgnoredCommands {
		if strings.EqualFold(ignored, command) {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no memory with c.
func (c Configuration) Clone() Configuration {
	c.IgnoredCommands = slices.Clone(c.IgnoredCommands)
	return c
}
