// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package ingest decodes the host's newline-delimited JSON event stream and
// dispatches it to the recorder.
package ingest

import (
	"bytes"

	"github.com/goccy/go-json"
	"github.com/samber/oops"

	"github.com/holomush/chatcmdlog/internal/classifier"
)

// CodeInvalidEvent marks a host event line that cannot be dispatched.
const CodeInvalidEvent = "INVALID_EVENT"

// EventType identifies a host event.
type EventType string

// Host event types.
const (
	EventInit       EventType = "init"
	EventNewSave    EventType = "new_save"
	EventReload     EventType = "reload"
	EventConnect    EventType = "connect"
	EventDisconnect EventType = "disconnect"
	EventChat       EventType = "chat"
)

// EventTypes lists every known event type.
var EventTypes = []EventType{EventInit, EventNewSave, EventReload, EventConnect, EventDisconnect, EventChat}

// HostEvent is one decoded line of the event stream.
type HostEvent struct {
	Type      EventType `json:"type"`
	PlayerID  uint64    `json:"player_id,omitempty"`
	Name      string    `json:"name,omitempty"`
	AuthLevel int       `json:"auth_level,omitempty"`
	Message   string    `json:"message,omitempty"`
	Channel   int       `json:"channel,omitempty"`
}

// Privilege returns the auth level as a classifier privilege.
func (e HostEvent) Privilege() classifier.PrivilegeLevel {
	return classifier.PrivilegeLevel(e.AuthLevel)
}

func (t EventType) hasPlayer() bool {
	switch t {
	case EventConnect, EventDisconnect, EventChat:
		return true
	default:
		return false
	}
}

// Decode parses a single event line.
func Decode(line []byte) (HostEvent, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return HostEvent{}, oops.Code(CodeInvalidEvent).Errorf("empty event line")
	}

	var ev HostEvent
	if err := json.Unmarshal(line, &ev); err != nil {
		return HostEvent{}, oops.Code(CodeInvalidEvent).Wrapf(err, "malformed event")
	}

	if !isKnown(ev.Type) {
		return HostEvent{}, oops.Code(CodeInvalidEvent).
			With("type", string(ev.Type)).
			Errorf("unknown event type %q", ev.Type)
	}
	// Player ids are Steam ids, which are never 0, so an explicit 0 is
	// rejected together with an absent player_id.
	if ev.Type.hasPlayer() && ev.PlayerID == 0 {
		return HostEvent{}, oops.Code(CodeInvalidEvent).
			With("type", string(ev.Type)).
			Errorf("%s event requires player_id", ev.Type)
	}
	if ev.Type == EventConnect && (ev.AuthLevel < int(classifier.PrivilegeRegular) || ev.AuthLevel > int(classifier.PrivilegeOwner)) {
		return HostEvent{}, oops.Code(CodeInvalidEvent).
			With("type", string(ev.Type)).
			With("auth_level", ev.AuthLevel).
			Errorf("auth_level out of range")
	}
	return ev, nil
}

func isKnown(t EventType) bool {
	for _, known := range EventTypes {
		if t == known {
			return true
		}
	}
	return false
}
