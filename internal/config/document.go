// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package config

import (
	"bytes"
	"strings"

	"github.com/goccy/go-json"
	"github.com/samber/oops"
)

// Field names as they appear in the configuration document.
const (
	FieldEnabled         = "Plugin Enabled"
	FieldLogMode         = "Log Mode (PlayersOnly/AdminsOnly/Everyone)"
	FieldWipeOnReset     = "Wipe Data File On Server Wipe"
	FieldIgnoredCommands = "Ignored Commands (without /)"
)

// Document is the on-disk shape of the configuration.
type Document struct {
	Enabled         bool     `json:"Plugin Enabled" jsonschema:"description=Master switch for command logging"`
	LogMode         string   `json:"Log Mode (PlayersOnly/AdminsOnly/Everyone)" jsonschema:"enum=PlayersOnly,enum=AdminsOnly,enum=Everyone"`
	WipeOnReset     bool     `json:"Wipe Data File On Server Wipe" jsonschema:"description=Clear the command log when the server starts a new save"`
	IgnoredCommands []string `json:"Ignored Commands (without /)" jsonschema:"description=Command names that are never logged"`
}

// Document returns the persisted form of c.
func (c Configuration) Document() Document {
	return Document{
		Enabled:         c.Enabled,
		LogMode:         string(c.LogMode),
		WipeOnReset:     c.WipeOnReset,
		IgnoredCommands: append([]string{}, c.IgnoredCommands...),
	}
}

// Marshal encodes c as an indented JSON document. Output is deterministic.
func Marshal(c Configuration) ([]byte, error) {
	data, err := json.MarshalIndent(c.Document(), "", "  ")
	if err != nil {
		return nil, oops.Wrap(err)
	}
	return data, nil
}

// Parse decodes raw and repairs it. Fields missing from raw keep their
// default values. The returned repairs are CONFIG_VALUE_ERRORs describing
// every change Normalize made; they are informational, not failures.
func Parse(raw []byte) (Configuration, []error, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Configuration{}, nil, ErrConfigParse(DocumentName, oops.Errorf("document is empty"))
	}
	if bytes.Equal(trimmed, []byte("null")) {
		return Configuration{}, nil, ErrConfigParse(DocumentName, oops.Errorf("document is null"))
	}

	def := Default()
	doc := Document{
		Enabled:     def.Enabled,
		LogMode:     string(def.LogMode),
		WipeOnReset: def.WipeOnReset,
	}
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return Configuration{}, nil, ErrConfigParse(DocumentName, err)
	}

	cfg, repairs := Normalize(doc)
	return cfg, repairs, nil
}

// Normalize turns a raw document into a valid Configuration:
//   - ignore-list entries are trimmed, blanks dropped, and duplicates removed
//     case-insensitively keeping the first spelling seen;
//   - an ignore list left empty is replaced by DefaultIgnoredCommands;
//   - a blank log mode becomes PlayersOnly, a recognized one is rewritten in
//     canonical spelling, and anything else becomes PlayersOnly.
func Normalize(doc Document) (Configuration, []error) {
	cfg := Configuration{
		Enabled:     doc.Enabled,
		WipeOnReset: doc.WipeOnReset,
	}

	var repairs []error
	cfg.IgnoredCommands, repairs = normalizeIgnored(doc.IgnoredCommands)

	mode, repair := normalizeLogMode(doc.LogMode)
	cfg.LogMode = mode
	if repair != nil {
		repairs = append(repairs, repair)
	}

	return cfg, repairs
}

func normalizeIgnored(raw []string) ([]string, []error) {
	var repairs []error
	cleaned := make([]string, 0, len(raw))

	for _, entry := range raw {
		command := strings.TrimSpace(entry)
		if command == "" {
			repairs = append(repairs, ErrConfigValue(FieldIgnoredCommands, entry, ReasonBlank))
			continue
		}
		if containsFold(cleaned, command) {
			repairs = append(repairs, ErrConfigValue(FieldIgnoredCommands, entry, ReasonDuplicate))
			continue
		}
		cleaned = append(cleaned, command)
	}

	if len(cleaned) == 0 {
		repairs = append(repairs, ErrConfigValue(FieldIgnoredCommands, "", ReasonEmpty))
		return append([]string{}, DefaultIgnoredCommands...), repairs
	}
	return cleaned, repairs
}

func normalizeLogMode(raw string) (LogMode, error) {
	if strings.TrimSpace(raw) == "" {
		return LogPlayersOnly, ErrConfigValue(FieldLogMode, raw, ReasonBlank)
	}
	mode, ok := ParseLogMode(raw)
	if !ok {
		return LogPlayersOnly, ErrConfigValue(FieldLogMode, raw, ReasonInvalid)
	}
	if string(mode) != raw {
		return mode, ErrConfigValue(FieldLogMode, raw, ReasonNonCanonical)
	}
	return mode, nil
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}
